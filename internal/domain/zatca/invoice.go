package zatca

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation messages. Callers match on these strings, keep them stable.
const (
	MsgSellerNameRequired   = "Seller name is required"
	MsgVATNumberInvalid     = "VAT number must be exactly 15 digits"
	MsgTimestampInvalid     = "Valid ISO 8601 timestamp is required"
	MsgTotalAmountNegative  = "Total amount must be a non-negative number"
	MsgVATAmountNegative    = "VAT amount must be a non-negative number"
	MsgVATAmountExceedTotal = "VAT amount cannot exceed total amount"
)

var (
	vatNumberPattern = regexp.MustCompile(`^[0-9]{15}$`)
	timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)
	datePattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// InvoiceData holds the fields encoded into the e-invoicing QR code
type InvoiceData struct {
	SellerName  string          `json:"seller_name"`
	VATNumber   string          `json:"vat_number"`
	Timestamp   string          `json:"timestamp"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
}

// ValidationResult lists every rule the invoice data violates
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate checks invoice data against the e-invoicing rules. All rules are
// evaluated; Errors holds one message per violated rule in a fixed order.
func Validate(data InvoiceData) ValidationResult {
	errs := []string{}

	if strings.TrimSpace(data.SellerName) == "" {
		errs = append(errs, MsgSellerNameRequired)
	}
	if !vatNumberPattern.MatchString(data.VATNumber) {
		errs = append(errs, MsgVATNumberInvalid)
	}
	if !timestampPattern.MatchString(data.Timestamp) {
		errs = append(errs, MsgTimestampInvalid)
	}
	if data.TotalAmount.IsNegative() {
		errs = append(errs, MsgTotalAmountNegative)
	}
	if data.VATAmount.IsNegative() {
		errs = append(errs, MsgVATAmountNegative)
	}
	if data.VATAmount.GreaterThan(data.TotalAmount) {
		errs = append(errs, MsgVATAmountExceedTotal)
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// NormalizeTimestamp turns a bare invoice date (YYYY-MM-DD) into an ISO 8601
// timestamp at midnight UTC. Any other input is returned trimmed but otherwise
// unchanged so that Validate can report it.
func NormalizeTimestamp(value string) string {
	value = strings.TrimSpace(value)
	if datePattern.MatchString(value) {
		return value + "T00:00:00Z"
	}
	return value
}

// Normalized returns a copy of data with the timestamp normalized and the
// seller name and VAT number trimmed
func (d InvoiceData) Normalized() InvoiceData {
	d.SellerName = strings.TrimSpace(d.SellerName)
	d.VATNumber = strings.TrimSpace(d.VATNumber)
	d.Timestamp = NormalizeTimestamp(d.Timestamp)
	return d
}

// FormatAmount renders an amount the way it is encoded: exactly two decimals
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
