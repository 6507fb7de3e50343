package printing

import (
	"context"
	"sync"
	"time"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/zatca"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultVATRate is the Saudi standard VAT rate in percent
var DefaultVATRate = decimal.NewFromInt(15)

var hundred = decimal.NewFromInt(100)

// DataProvider loads the records a document is rendered from. The CRM owns
// these records; implementations fetch them by document ID.
type DataProvider interface {
	GetData(ctx context.Context, tenantID, documentID uuid.UUID) (*DocumentData, error)
}

// DocumentData is everything a document template can draw on
type DocumentData struct {
	Company CompanyInfo `json:"company"`
	Client  ClientInfo  `json:"client"`
	Order   OrderInfo   `json:"order"`
	// Values holds custom placeholder values; they override derived values
	Values map[string]any `json:"values,omitempty"`
}

// CompanyInfo is the issuing company
type CompanyInfo struct {
	Name      string `json:"name"`
	NameAr    string `json:"nameAr"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	VATNumber string `json:"vatNumber"`
	CRNumber  string `json:"crNumber"`
	LogoURL   string `json:"logoUrl"`
}

// ClientInfo is the customer the document is addressed to
type ClientInfo struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	VATNumber string `json:"vatNumber"`
}

// LineItem is one order line
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Total returns quantity * unit price rounded to two decimals
func (i LineItem) Total() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice).Round(2)
}

// OrderInfo is the commercial content of the document
type OrderInfo struct {
	OrderNumber   string     `json:"orderNumber"`
	InvoiceNumber string     `json:"invoiceNumber"`
	IssuedAt      time.Time  `json:"issuedAt"`
	OrderDate     *time.Time `json:"orderDate,omitempty"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	Items         []LineItem `json:"items"`
	// Subtotal is used only when there are no line items
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	// VATRate in percent; zero means DefaultVATRate
	VATRate    decimal.Decimal `json:"vatRate"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
	Currency   string          `json:"currency"`
}

// Totals are the derived amounts of an order
type Totals struct {
	Subtotal   decimal.Decimal
	VATRate    decimal.Decimal
	VATAmount  decimal.Decimal
	Total      decimal.Decimal
	BalanceDue decimal.Decimal
}

// ComputeTotals derives subtotal, VAT and total. The subtotal is net of the
// order discount and VAT is charged on it.
func (o OrderInfo) ComputeTotals() Totals {
	subtotal := o.Subtotal
	if len(o.Items) > 0 {
		subtotal = decimal.Zero
		for _, item := range o.Items {
			subtotal = subtotal.Add(item.Total())
		}
	}
	subtotal = subtotal.Sub(o.DiscountAmount).Round(2)

	rate := o.VATRate
	if rate.IsZero() {
		rate = DefaultVATRate
	}
	vat := subtotal.Mul(rate).Div(hundred).Round(2)
	total := subtotal.Add(vat)

	return Totals{
		Subtotal:   subtotal,
		VATRate:    rate,
		VATAmount:  vat,
		Total:      total,
		BalanceDue: total.Sub(o.PaidAmount),
	}
}

// Context flattens the records into the variables understood by templates.
// Empty fields are left out so the renderer's missing-value policy applies.
func (d *DocumentData) Context(now time.Time) map[string]any {
	ctx := make(map[string]any, 40)
	put := func(key, value string) {
		if value != "" {
			ctx[key] = value
		}
	}

	put("companyName", d.Company.Name)
	put("companyNameAr", d.Company.NameAr)
	put("companyEmail", d.Company.Email)
	put("companyPhone", d.Company.Phone)
	put("companyAddress", d.Company.Address)
	put("companyVatNumber", d.Company.VATNumber)
	put("companyCrNumber", d.Company.CRNumber)
	put("companyLogo", d.Company.LogoURL)

	put("clientName", d.Client.Name)
	put("clientEmail", d.Client.Email)
	put("clientPhone", d.Client.Phone)
	put("clientAddress", d.Client.Address)
	put("clientVatNumber", d.Client.VATNumber)

	put("orderNumber", d.Order.OrderNumber)
	put("invoiceNumber", d.Order.InvoiceNumber)
	put("currentDate", now.Format(time.DateOnly))
	if d.Order.OrderDate != nil {
		put("orderDate", d.Order.OrderDate.Format(time.DateOnly))
	}
	if d.Order.DueDate != nil {
		put("dueDate", d.Order.DueDate.Format(time.DateOnly))
	}
	put("currency", d.Order.Currency)

	totals := d.Order.ComputeTotals()
	put("subtotal", totals.Subtotal.StringFixed(2))
	put("vatRate", totals.VATRate.String())
	put("vatAmount", totals.VATAmount.StringFixed(2))
	put("discountAmount", d.Order.DiscountAmount.StringFixed(2))
	put("totalAmount", totals.Total.StringFixed(2))
	put("paidAmount", d.Order.PaidAmount.StringFixed(2))
	put("balanceDue", totals.BalanceDue.StringFixed(2))

	items := make([]map[string]any, len(d.Order.Items))
	for i, item := range d.Order.Items {
		items[i] = map[string]any{
			"lineNumber":  i + 1,
			"description": item.Description,
			"quantity":    item.Quantity.String(),
			"unitPrice":   item.UnitPrice.StringFixed(2),
			"lineTotal":   item.Total().StringFixed(2),
		}
	}
	ctx["items"] = items

	for k, v := range d.Values {
		ctx[k] = v
	}

	return ctx
}

// InvoiceData derives the ZATCA QR fields. The timestamp is the issue time,
// or now when the order has none.
func (d *DocumentData) InvoiceData(now time.Time) zatca.InvoiceData {
	issued := d.Order.IssuedAt
	if issued.IsZero() {
		issued = now
	}
	totals := d.Order.ComputeTotals()
	return zatca.InvoiceData{
		SellerName:  d.Company.Name,
		VATNumber:   d.Company.VATNumber,
		Timestamp:   issued.UTC().Format(time.RFC3339),
		TotalAmount: totals.Total,
		VATAmount:   totals.VATAmount,
	}
}

// InMemoryDataProvider serves documents registered with Put. The CLI and
// tests use it in place of a CRM client.
type InMemoryDataProvider struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]map[uuid.UUID]*DocumentData
}

// NewInMemoryDataProvider creates an empty provider
func NewInMemoryDataProvider() *InMemoryDataProvider {
	return &InMemoryDataProvider{docs: make(map[uuid.UUID]map[uuid.UUID]*DocumentData)}
}

// Put registers data for a tenant's document
func (p *InMemoryDataProvider) Put(tenantID, documentID uuid.UUID, data *DocumentData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.docs[tenantID] == nil {
		p.docs[tenantID] = make(map[uuid.UUID]*DocumentData)
	}
	p.docs[tenantID][documentID] = data
}

// GetData returns shared.ErrNotFound for unknown documents
func (p *InMemoryDataProvider) GetData(_ context.Context, tenantID, documentID uuid.UUID) (*DocumentData, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	data, ok := p.docs[tenantID][documentID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return data, nil
}

var _ DataProvider = (*InMemoryDataProvider)(nil)
