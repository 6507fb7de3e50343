package document_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizdocs/backend/internal/application/document"
	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/templating"
	infra "github.com/bizdocs/backend/internal/infrastructure/printing"
	"github.com/bizdocs/backend/internal/infrastructure/qrcode"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleDocumentData() *infra.DocumentData {
	return &infra.DocumentData{
		Company: infra.CompanyInfo{Name: "Acme Trading", VATNumber: "310122393500003"},
		Client:  infra.ClientInfo{Name: "Sara Ali"},
		Order: infra.OrderInfo{
			InvoiceNumber: "INV-1001",
			IssuedAt:      time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
			Subtotal:      mustDecimal("100"),
		},
	}
}

func TestService_RenderDocument_InlineContent(t *testing.T) {
	svc, templates, _ := newTestService()

	resp, err := svc.RenderDocument(context.Background(), uuid.New(), document.RenderDocumentRequest{
		DocumentType: "QUOTATION",
		Content:      "<h1>{{companyName}}</h1><p>{{clientName}}</p><p>{{totalAmount}}</p>",
		Data:         sampleDocumentData(),
	})

	require.NoError(t, err)
	assert.Equal(t, "<h1>Acme Trading</h1><p>Sara Ali</p><p>115.00</p>", resp.HTML)
	assert.Equal(t, document.TemplateSourceInline, resp.TemplateSource)
	assert.Empty(t, resp.TemplateID)
	assert.Empty(t, resp.Warnings)
	templates.AssertNotCalled(t, "FindDefault", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_RenderDocument_InjectsQRCode(t *testing.T) {
	svc, _, _ := newTestService()

	resp, err := svc.RenderDocument(context.Background(), uuid.New(), document.RenderDocumentRequest{
		DocumentType: "INVOICE",
		Content:      `<img src="{{zatcaQRCode}}">`,
		Data:         sampleDocumentData(),
	})

	require.NoError(t, err)
	assert.Contains(t, resp.HTML, `<img src="data:image/png;base64,`)
	assert.NotContains(t, resp.HTML, qrcode.PlaceholderDataURL)
	assert.Empty(t, resp.Warnings)
}

func TestService_RenderDocument_QRCodeFallback(t *testing.T) {
	svc, _, _ := newTestService()

	data := sampleDocumentData()
	data.Company.VATNumber = ""

	resp, err := svc.RenderDocument(context.Background(), uuid.New(), document.RenderDocumentRequest{
		DocumentType: "INVOICE",
		Content:      `<img src="{{zatcaQRCode}}">`,
		Data:         data,
	})

	require.NoError(t, err)
	assert.Equal(t, `<img src="`+qrcode.PlaceholderDataURL+`">`, resp.HTML)
	assert.Equal(t, []string{document.WarningQRCodeFallback}, resp.Warnings)
}

func TestService_RenderDocument_ValuesOverrideData(t *testing.T) {
	svc, _, _ := newTestService()

	resp, err := svc.RenderDocument(context.Background(), uuid.New(), document.RenderDocumentRequest{
		DocumentType: "CONTRACT",
		Content:      "{{clientName}} / {{projectCode}}",
		Data:         sampleDocumentData(),
		Values:       map[string]any{"clientName": "Omar", "projectCode": "P-7"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Omar / P-7", resp.HTML)
}

func TestService_RenderDocument_StoredTemplateWithPlaceholderDefaults(t *testing.T) {
	svc, templates, _ := newTestService()
	ctx := context.Background()
	tenantID := uuid.New()

	tmpl := newStoredTemplate(t, tenantID, templating.DocTypeContract, "Agreement", "{{clientName}}: {{projectCode}}")
	require.NoError(t, tmpl.SetPlaceholders([]templating.Placeholder{
		{Key: "projectCode", Label: "Project Code", Type: templating.VariableTypeText, DefaultValue: "N/A"},
	}))
	templates.On("FindByIDForTenant", mock.Anything, tenantID, tmpl.ID).Return(tmpl, nil)

	resp, err := svc.RenderDocument(ctx, tenantID, document.RenderDocumentRequest{
		DocumentType: "CONTRACT",
		TemplateID:   &tmpl.ID,
		Data:         sampleDocumentData(),
	})

	require.NoError(t, err)
	assert.Equal(t, "Sara Ali: N/A", resp.HTML)
	assert.Equal(t, tmpl.ID.String(), resp.TemplateID)
	assert.Equal(t, document.TemplateSourceStored, resp.TemplateSource)
}

func TestService_RenderDocument_TemplateDocTypeMismatch(t *testing.T) {
	svc, templates, _ := newTestService()
	ctx := context.Background()
	tenantID := uuid.New()

	tmpl := newStoredTemplate(t, tenantID, templating.DocTypeContract, "Agreement", "{{clientName}}")
	templates.On("FindByIDForTenant", mock.Anything, tenantID, tmpl.ID).Return(tmpl, nil)

	_, err := svc.RenderDocument(ctx, tenantID, document.RenderDocumentRequest{
		DocumentType: "INVOICE",
		TemplateID:   &tmpl.ID,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestService_RenderDocument_DefaultTemplate(t *testing.T) {
	svc, templates, _ := newTestService()
	ctx := context.Background()
	tenantID := uuid.New()

	tmpl := newStoredTemplate(t, tenantID, templating.DocTypeQuotation, "Quote", "Quote for {{clientName}}")
	templates.On("FindDefault", mock.Anything, tenantID, templating.DocTypeQuotation).Return(tmpl, nil)

	resp, err := svc.RenderDocument(ctx, tenantID, document.RenderDocumentRequest{
		DocumentType: "QUOTATION",
		Data:         sampleDocumentData(),
	})

	require.NoError(t, err)
	assert.Equal(t, "Quote for Sara Ali", resp.HTML)
	assert.Equal(t, document.TemplateSourceStored, resp.TemplateSource)
}

func TestService_RenderDocument_BuiltinFallback(t *testing.T) {
	svc, templates, _ := newTestService()
	ctx := context.Background()
	tenantID := uuid.New()

	templates.On("FindDefault", mock.Anything, tenantID, templating.DocTypeReceipt).Return(nil, nil)

	resp, err := svc.RenderDocument(ctx, tenantID, document.RenderDocumentRequest{
		DocumentType: "RECEIPT",
		Data:         sampleDocumentData(),
	})

	require.NoError(t, err)
	assert.Equal(t, document.TemplateSourceBuiltin, resp.TemplateSource)
	assert.Equal(t, "A5", resp.PaperSize)
	assert.Contains(t, resp.HTML, "Acme Trading")
}

func TestService_RenderDocument_StrictMissingValues(t *testing.T) {
	engine := infra.NewTemplateEngine(infra.WithMissingValuePolicy(infra.MissingValueStrict))
	templates := new(MockTemplateRepository)
	variables := new(MockVariableRepository)
	svc := document.NewService(templates, variables, engine)

	_, err := svc.RenderDocument(context.Background(), uuid.New(), document.RenderDocumentRequest{
		DocumentType: "CONTRACT",
		Content:      "{{clientName}} {{projectCode}}",
	})

	var missing *infra.MissingVariablesError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"clientName", "projectCode"}, missing.Names)
}

func TestService_RenderDocument_SyntaxError(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.RenderDocument(context.Background(), uuid.New(), document.RenderDocumentRequest{
		DocumentType: "CONTRACT",
		Content:      "{{#each items}}{{description}}",
	})

	var syntaxErr *infra.TemplateSyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestService_RenderDocument_InvalidDocType(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.RenderDocument(context.Background(), uuid.New(), document.RenderDocumentRequest{
		DocumentType: "MEMO",
		Content:      "x",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestService_RenderDocument_DataProvider(t *testing.T) {
	tenantID := uuid.New()
	documentID := uuid.New()
	provider := infra.NewInMemoryDataProvider()
	provider.Put(tenantID, documentID, sampleDocumentData())

	svc, _, _ := newTestService(document.WithDataProvider(provider))
	ctx := context.Background()

	resp, err := svc.RenderDocument(ctx, tenantID, document.RenderDocumentRequest{
		DocumentType: "QUOTATION",
		Content:      "{{invoiceNumber}} {{clientName}}",
		DocumentID:   &documentID,
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-1001 Sara Ali", resp.HTML)

	unknown := uuid.New()
	_, err = svc.RenderDocument(ctx, tenantID, document.RenderDocumentRequest{
		DocumentType: "QUOTATION",
		Content:      "{{clientName}}",
		DocumentID:   &unknown,
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_RenderDocument_DocumentIDWithoutProvider(t *testing.T) {
	svc, _, _ := newTestService()
	id := uuid.New()

	_, err := svc.RenderDocument(context.Background(), uuid.New(), document.RenderDocumentRequest{
		DocumentType: "QUOTATION",
		Content:      "{{clientName}}",
		DocumentID:   &id,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestService_GeneratePDF(t *testing.T) {
	renderer := new(MockPDFRenderer)
	storage := new(MockPDFStorage)
	ctx := context.Background()
	tenantID := uuid.New()
	documentID := uuid.New()
	provider := infra.NewInMemoryDataProvider()
	provider.Put(tenantID, documentID, sampleDocumentData())
	svc, _, _ := newTestService(document.WithPDF(renderer, storage), document.WithDataProvider(provider), document.WithDefaultLocale("ar-SA"))

	expiresAt := fixedNow.Add(time.Hour)
	renderer.On("Render", mock.Anything, mock.MatchedBy(func(req *infra.RenderRequest) bool {
		return req.HTML == "<p>Acme Trading</p>" &&
			req.Title == "Quotation - Q-42" &&
			req.Locale == "ar-SA" &&
			req.PaperSize == templating.PaperSizeA4
	})).Return(&infra.RenderResult{PDFData: []byte("%PDF-1.7"), PageCount: 1}, nil)
	storage.On("Store", mock.Anything, mock.MatchedBy(func(req *infra.StoreRequest) bool {
		return req.TenantID == tenantID &&
			req.DocumentID == documentID &&
			req.DocumentType == templating.DocTypeQuotation &&
			string(req.PDFData) == "%PDF-1.7"
	})).Return(&infra.StoreResult{Key: "pdfs/key.pdf", URL: "https://cdn.example/key.pdf", ExpiresAt: expiresAt, Size: 8}, nil)

	resp, err := svc.GeneratePDF(ctx, tenantID, document.GeneratePDFRequest{
		RenderDocumentRequest: document.RenderDocumentRequest{
			DocumentType: "QUOTATION",
			Content:      "<p>{{companyName}}</p>",
			DocumentID:   &documentID,
		},
		DocumentNumber: "Q-42",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/key.pdf", resp.URL)
	assert.Equal(t, "pdfs/key.pdf", resp.Key)
	assert.Equal(t, expiresAt, resp.ExpiresAt)
	assert.Equal(t, 1, resp.PageCount)
	renderer.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestService_GeneratePDF_RendererFailure(t *testing.T) {
	renderer := new(MockPDFRenderer)
	storage := new(MockPDFStorage)
	svc, _, _ := newTestService(document.WithPDF(renderer, storage))

	renderer.On("Render", mock.Anything, mock.Anything).
		Return(nil, infra.NewRenderError(infra.ErrCodeRenderTimeout, "timed out", nil))

	_, err := svc.GeneratePDF(context.Background(), uuid.New(), document.GeneratePDFRequest{
		RenderDocumentRequest: document.RenderDocumentRequest{DocumentType: "QUOTATION", Content: "x"},
	})

	var renderErr *infra.RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, infra.ErrCodeRenderTimeout, renderErr.Code)
	storage.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
}

func TestService_GeneratePDF_StorageNotConfigured(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GeneratePDF(context.Background(), uuid.New(), document.GeneratePDFRequest{
		RenderDocumentRequest: document.RenderDocumentRequest{DocumentType: "QUOTATION", Content: "x"},
	})

	var renderErr *infra.RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, infra.ErrCodeStorageNotEnabled, renderErr.Code)
}
