package zatca

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validInvoice() InvoiceData {
	return InvoiceData{
		SellerName:  "Test Company",
		VATNumber:   "123456789012345",
		Timestamp:   NormalizeTimestamp("2024-01-15"),
		TotalAmount: decimal.RequireFromString("1000.50"),
		VATAmount:   decimal.RequireFromString("150.00"),
	}
}

func TestValidate_ValidInvoice(t *testing.T) {
	result := Validate(validInvoice())

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.NotNil(t, result.Errors)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*InvoiceData)
		expected []string
	}{
		{
			"short VAT number",
			func(d *InvoiceData) { d.VATNumber = "123456789" },
			[]string{MsgVATNumberInvalid},
		},
		{
			"VAT number with letters",
			func(d *InvoiceData) { d.VATNumber = "12345678901234A" },
			[]string{MsgVATNumberInvalid},
		},
		{
			"blank seller name",
			func(d *InvoiceData) { d.SellerName = "   " },
			[]string{MsgSellerNameRequired},
		},
		{
			"bare date timestamp",
			func(d *InvoiceData) { d.Timestamp = "2024-01-15" },
			[]string{MsgTimestampInvalid},
		},
		{
			"timestamp without zone",
			func(d *InvoiceData) { d.Timestamp = "2024-01-15T10:30:00" },
			[]string{MsgTimestampInvalid},
		},
		{
			"VAT exceeds total",
			func(d *InvoiceData) {
				d.TotalAmount = decimal.NewFromInt(100)
				d.VATAmount = decimal.NewFromInt(150)
			},
			[]string{MsgVATAmountExceedTotal},
		},
		{
			"negative total",
			func(d *InvoiceData) {
				d.TotalAmount = decimal.NewFromInt(-1)
				d.VATAmount = decimal.Zero
			},
			[]string{MsgTotalAmountNegative, MsgVATAmountExceedTotal},
		},
		{
			"negative VAT",
			func(d *InvoiceData) { d.VATAmount = decimal.NewFromInt(-5) },
			[]string{MsgVATAmountNegative},
		},
		{
			"everything wrong",
			func(d *InvoiceData) {
				*d = InvoiceData{
					TotalAmount: decimal.NewFromInt(10),
					VATAmount:   decimal.NewFromInt(20),
				}
			},
			[]string{MsgSellerNameRequired, MsgVATNumberInvalid, MsgTimestampInvalid, MsgVATAmountExceedTotal},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validInvoice()
			tt.mutate(&data)

			result := Validate(data)

			assert.False(t, result.Valid)
			assert.Equal(t, tt.expected, result.Errors)
		})
	}
}

func TestValidate_TimestampForms(t *testing.T) {
	for _, ts := range []string{
		"2024-01-15T00:00:00Z",
		"2024-01-15T10:30:00.123Z",
		"2024-01-15T10:30:00+03:00",
		"2024-01-15T10:30:00.5-05:30",
	} {
		t.Run(ts, func(t *testing.T) {
			data := validInvoice()
			data.Timestamp = ts
			assert.True(t, Validate(data).Valid)
		})
	}
}

func TestNormalizeTimestamp(t *testing.T) {
	assert.Equal(t, "2024-01-15T00:00:00Z", NormalizeTimestamp("2024-01-15"))
	assert.Equal(t, "2024-01-15T00:00:00Z", NormalizeTimestamp(" 2024-01-15 "))
	assert.Equal(t, "2024-01-15T10:30:00+03:00", NormalizeTimestamp("2024-01-15T10:30:00+03:00"))
	assert.Equal(t, "15/01/2024", NormalizeTimestamp("15/01/2024"))
}

func TestInvoiceData_Normalized(t *testing.T) {
	data := InvoiceData{SellerName: " Acme ", VATNumber: " 300000000000003 ", Timestamp: "2024-03-01"}

	n := data.Normalized()

	assert.Equal(t, "Acme", n.SellerName)
	assert.Equal(t, "300000000000003", n.VATNumber)
	assert.Equal(t, "2024-03-01T00:00:00Z", n.Timestamp)
	assert.Equal(t, " Acme ", data.SellerName)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1000.50", FormatAmount(decimal.RequireFromString("1000.5")))
	assert.Equal(t, "150.00", FormatAmount(decimal.NewFromInt(150)))
	assert.Equal(t, "0.00", FormatAmount(decimal.Zero))
	assert.Equal(t, "10.13", FormatAmount(decimal.RequireFromString("10.125")))
}
