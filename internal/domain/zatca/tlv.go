package zatca

import (
	"encoding/base64"
	"encoding/hex"
)

// Tag identifies a field in the TLV payload
type Tag byte

const (
	TagSellerName  Tag = 1
	TagVATNumber   Tag = 2
	TagTimestamp   Tag = 3
	TagTotalAmount Tag = 4
	TagVATAmount   Tag = 5
)

const maxValueLength = 255

// String returns the field name for a tag
func (t Tag) String() string {
	switch t {
	case TagSellerName:
		return "seller_name"
	case TagVATNumber:
		return "vat_number"
	case TagTimestamp:
		return "timestamp"
	case TagTotalAmount:
		return "total_amount"
	case TagVATAmount:
		return "vat_amount"
	default:
		return "unknown"
	}
}

// TLV is an encoded e-invoicing payload
type TLV []byte

// Bytes returns the raw payload
func (t TLV) Bytes() []byte {
	return []byte(t)
}

// Hex returns the payload as lowercase hex with no separators
func (t TLV) Hex() string {
	return hex.EncodeToString(t)
}

// Base64 returns the payload in standard base64, the form read by the
// ZATCA mobile verification app
func (t TLV) Base64() string {
	return base64.StdEncoding.EncodeToString(t)
}

// EncodeTLV validates data and encodes it as a TLV payload. Invalid data
// yields a *ValidationError; a field over 255 bytes yields an *EncodingError.
// The timestamp must already be in ISO 8601 form, see NormalizeTimestamp.
func EncodeTLV(data InvoiceData) (TLV, error) {
	if result := Validate(data); !result.Valid {
		return nil, &ValidationError{Messages: result.Errors}
	}

	fields := []struct {
		tag   Tag
		value string
	}{
		{TagSellerName, data.SellerName},
		{TagVATNumber, data.VATNumber},
		{TagTimestamp, data.Timestamp},
		{TagTotalAmount, FormatAmount(data.TotalAmount)},
		{TagVATAmount, FormatAmount(data.VATAmount)},
	}

	size := 0
	for _, f := range fields {
		size += 2 + len(f.value)
	}

	out := make([]byte, 0, size)
	for _, f := range fields {
		n := len(f.value)
		if n > maxValueLength {
			return nil, &EncodingError{Tag: f.tag, Length: n}
		}
		out = append(out, byte(f.tag), byte(n))
		out = append(out, f.value...)
	}

	return TLV(out), nil
}

// DecodedInvoice holds the raw string fields read back from a payload
type DecodedInvoice struct {
	SellerName  string `json:"seller_name"`
	VATNumber   string `json:"vat_number"`
	Timestamp   string `json:"timestamp"`
	TotalAmount string `json:"total_amount"`
	VATAmount   string `json:"vat_amount"`
}

// DecodeTLV parses a payload produced by EncodeTLV. Unknown tags are skipped.
func DecodeTLV(payload []byte) (DecodedInvoice, error) {
	var out DecodedInvoice
	for i := 0; i < len(payload); {
		if i+2 > len(payload) {
			return DecodedInvoice{}, &DecodeError{Offset: i, Reason: "truncated record header"}
		}
		tag := Tag(payload[i])
		n := int(payload[i+1])
		start := i + 2
		if start+n > len(payload) {
			return DecodedInvoice{}, &DecodeError{Offset: i, Reason: "value exceeds payload length"}
		}
		value := string(payload[start : start+n])

		switch tag {
		case TagSellerName:
			out.SellerName = value
		case TagVATNumber:
			out.VATNumber = value
		case TagTimestamp:
			out.Timestamp = value
		case TagTotalAmount:
			out.TotalAmount = value
		case TagVATAmount:
			out.VATAmount = value
		}
		i = start + n
	}
	return out, nil
}

// DecodeTLVHex parses a hex encoded payload
func DecodeTLVHex(s string) (DecodedInvoice, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return DecodedInvoice{}, &DecodeError{Offset: 0, Reason: err.Error()}
	}
	return DecodeTLV(b)
}

// DecodeTLVBase64 parses a base64 encoded payload
func DecodeTLVBase64(s string) (DecodedInvoice, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return DecodedInvoice{}, &DecodeError{Offset: 0, Reason: err.Error()}
	}
	return DecodeTLV(b)
}
