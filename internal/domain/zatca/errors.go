package zatca

import (
	"fmt"
	"strings"
)

// ValidationError is returned by EncodeTLV when the invoice data breaks one or
// more e-invoicing rules. Messages holds every violation.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid ZATCA invoice data: " + strings.Join(e.Messages, "; ")
}

// EncodingError is returned when a field cannot be represented in a TLV record
type EncodingError struct {
	Tag    Tag
	Length int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("ZATCA TLV field %s is %d bytes, exceeds %d byte limit", e.Tag, e.Length, maxValueLength)
}

// DecodeError is returned when a TLV payload is truncated or malformed
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed ZATCA TLV payload at byte %d: %s", e.Offset, e.Reason)
}
