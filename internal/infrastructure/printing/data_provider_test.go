package printing

import (
	"context"
	"testing"
	"time"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/zatca"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleDocument() *DocumentData {
	due := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	return &DocumentData{
		Company: CompanyInfo{
			Name:      "Acme Trading Co.",
			VATNumber: "300000000000003",
			LogoURL:   "https://cdn.example.com/logo.png",
		},
		Client: ClientInfo{
			Name:  "Ahmed Al-Harbi",
			Email: "ahmed@example.com",
		},
		Order: OrderInfo{
			OrderNumber: "ORD-2024-0001",
			IssuedAt:    time.Date(2024, 1, 15, 10, 30, 0, 0, time.FixedZone("AST", 3*3600)),
			DueDate:     &due,
			Items: []LineItem{
				{Description: "Consulting", Quantity: dec("2"), UnitPrice: dec("100")},
				{Description: "License", Quantity: dec("1"), UnitPrice: dec("800")},
			},
			PaidAmount: dec("500"),
			Currency:   "SAR",
		},
	}
}

func TestOrderInfo_ComputeTotals(t *testing.T) {
	t.Run("from line items with default VAT", func(t *testing.T) {
		totals := sampleDocument().Order.ComputeTotals()
		assert.Equal(t, "1000.00", totals.Subtotal.StringFixed(2))
		assert.Equal(t, "15", totals.VATRate.String())
		assert.Equal(t, "150.00", totals.VATAmount.StringFixed(2))
		assert.Equal(t, "1150.00", totals.Total.StringFixed(2))
		assert.Equal(t, "650.00", totals.BalanceDue.StringFixed(2))
	})

	t.Run("explicit subtotal, discount and rate", func(t *testing.T) {
		order := OrderInfo{Subtotal: dec("200"), DiscountAmount: dec("50"), VATRate: dec("5")}
		totals := order.ComputeTotals()
		assert.Equal(t, "150.00", totals.Subtotal.StringFixed(2))
		assert.Equal(t, "7.50", totals.VATAmount.StringFixed(2))
		assert.Equal(t, "157.50", totals.Total.StringFixed(2))
	})

	t.Run("VAT is rounded to halalas", func(t *testing.T) {
		order := OrderInfo{Subtotal: dec("869.57")}
		assert.Equal(t, "130.44", order.ComputeTotals().VATAmount.StringFixed(2))
	})
}

func TestDocumentData_Context(t *testing.T) {
	doc := sampleDocument()
	doc.Values = map[string]any{"projectName": "Tower B", "clientName": "Override"}
	now := time.Date(2024, 1, 20, 8, 0, 0, 0, time.UTC)

	ctx := doc.Context(now)

	assert.Equal(t, "Acme Trading Co.", ctx["companyName"])
	assert.Equal(t, "https://cdn.example.com/logo.png", ctx["companyLogo"])
	assert.Equal(t, "Override", ctx["clientName"])
	assert.Equal(t, "Tower B", ctx["projectName"])
	assert.Equal(t, "2024-01-20", ctx["currentDate"])
	assert.Equal(t, "2024-02-15", ctx["dueDate"])
	assert.Equal(t, "1000.00", ctx["subtotal"])
	assert.Equal(t, "150.00", ctx["vatAmount"])
	assert.Equal(t, "1150.00", ctx["totalAmount"])
	assert.Equal(t, "650.00", ctx["balanceDue"])

	for _, key := range []string{"companyPhone", "invoiceNumber", "orderDate", "clientVatNumber"} {
		assert.NotContains(t, ctx, key)
	}

	items, ok := ctx["items"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0]["lineNumber"])
	assert.Equal(t, "Consulting", items[0]["description"])
	assert.Equal(t, "200.00", items[0]["lineTotal"])
	assert.Equal(t, "800.00", items[1]["unitPrice"])
}

func TestDocumentData_ContextRendersWithEngine(t *testing.T) {
	content := `<h1>{{companyName}}</h1>{{#each items}}<p>{{lineNumber}}. {{description}} {{formatCurrency (multiply quantity unitPrice)}}</p>{{/each}}<b>{{formatCurrency totalAmount}}</b>`

	out, err := NewTemplateEngine(WithMissingValuePolicy(MissingValueStrict)).
		Render(context.Background(), content, sampleDocument().Context(time.Now()))
	require.NoError(t, err)
	assert.Equal(t,
		"<h1>Acme Trading Co.</h1><p>1. Consulting SAR 200.00</p><p>2. License SAR 800.00</p><b>SAR 1,150.00</b>",
		out)
}

func TestDocumentData_InvoiceData(t *testing.T) {
	doc := sampleDocument()

	data := doc.InvoiceData(time.Now())
	assert.Equal(t, "Acme Trading Co.", data.SellerName)
	assert.Equal(t, "300000000000003", data.VATNumber)
	assert.Equal(t, "2024-01-15T07:30:00Z", data.Timestamp)
	assert.True(t, data.TotalAmount.Equal(dec("1150")))
	assert.True(t, data.VATAmount.Equal(dec("150")))
	assert.True(t, zatca.Validate(data).Valid)

	t.Run("missing issue time uses now", func(t *testing.T) {
		doc.Order.IssuedAt = time.Time{}
		now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, "2024-05-01T12:00:00Z", doc.InvoiceData(now).Timestamp)
	})
}

func TestInMemoryDataProvider(t *testing.T) {
	p := NewInMemoryDataProvider()
	tenantID, docID := uuid.New(), uuid.New()
	p.Put(tenantID, docID, sampleDocument())

	got, err := p.GetData(context.Background(), tenantID, docID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-2024-0001", got.Order.OrderNumber)

	_, err = p.GetData(context.Background(), uuid.New(), docID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
