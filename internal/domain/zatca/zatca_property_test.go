//go:build property

package zatca

import (
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

// TestTLVProperties checks encoder invariants over generated invoices
func TestTLVProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(4242)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	invoiceGen := func(name string, totalCents, vatCents int64) InvoiceData {
		if vatCents > totalCents {
			vatCents = totalCents
		}
		return InvoiceData{
			SellerName:  name,
			VATNumber:   "300000000000003",
			Timestamp:   "2024-06-30T12:00:00Z",
			TotalAmount: decimal.New(totalCents, -2),
			VATAmount:   decimal.New(vatCents, -2),
		}
	}

	properties.Property("decode inverts encode", prop.ForAll(
		func(name string, totalCents, vatCents int64) bool {
			data := invoiceGen("S"+name, totalCents, vatCents)
			if len(data.SellerName) > 255 {
				return true
			}
			tlv, err := EncodeTLV(data)
			if err != nil {
				return false
			}
			decoded, err := DecodeTLV(tlv.Bytes())
			if err != nil {
				return false
			}
			return decoded.SellerName == data.SellerName &&
				decoded.VATNumber == data.VATNumber &&
				decoded.Timestamp == data.Timestamp &&
				decoded.TotalAmount == FormatAmount(data.TotalAmount) &&
				decoded.VATAmount == FormatAmount(data.VATAmount)
		},
		gen.AnyString().SuchThat(func(s string) bool { return utf8.ValidString(s) }),
		gen.Int64Range(0, 1_000_000_00),
		gen.Int64Range(0, 1_000_000_00),
	))

	properties.Property("payload length is the sum of record sizes", prop.ForAll(
		func(name string, totalCents int64) bool {
			data := invoiceGen("S"+name, totalCents, 0)
			tlv, err := EncodeTLV(data)
			if err != nil {
				return false
			}
			want := 10 + len(data.SellerName) + len(data.VATNumber) + len(data.Timestamp) +
				len(FormatAmount(data.TotalAmount)) + len(FormatAmount(data.VATAmount))
			return len(tlv.Bytes()) == want
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) < 200 }),
		gen.Int64Range(0, 1_000_000_00),
	))

	properties.TestingRun(t)
}
