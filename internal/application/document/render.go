package document

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/templating"
	"github.com/bizdocs/backend/internal/domain/zatca"
	infra "github.com/bizdocs/backend/internal/infrastructure/printing"
	"github.com/bizdocs/backend/internal/infrastructure/qrcode"
	"github.com/bizdocs/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// qrVariable is the context key the QR image data URL is injected under
const qrVariable = "zatcaQRCode"

// WarningQRCodeFallback is reported when the QR code could not be generated
const WarningQRCodeFallback = "ZATCA QR code could not be generated; a placeholder image was used"

// =============================================================================
// ZATCA Operations
// =============================================================================

// ValidateInvoice checks invoice data against the e-invoicing rules. Input is
// normalized first, as it is for QR generation, so a bare date is accepted.
func (s *Service) ValidateInvoice(req InvoiceRequest) zatca.ValidationResult {
	return zatca.Validate(req.ToInvoiceData().Normalized())
}

// GenerateInvoiceQR validates the invoice and renders its QR code. Invalid
// data yields a *zatca.ValidationError listing every failed rule.
func (s *Service) GenerateInvoiceQR(ctx context.Context, req InvoiceRequest) (*QRCodeResponse, error) {
	qr, err := s.qr.Generate(ctx, req.ToInvoiceData())
	if err != nil {
		return nil, err
	}
	s.metrics.QRCodeGenerated(ctx, false)
	return &QRCodeResponse{
		Payload:  qr.Payload,
		Encoding: string(s.qr.Encoding()),
		DataURL:  qr.DataURL,
	}, nil
}

// =============================================================================
// Rendering
// =============================================================================

// renderedDocument is an HTML document and the template that produced it
type renderedDocument struct {
	html     string
	template *templating.DocumentTemplate
	source   string
	locale   string
	warnings []string
}

// RenderDocument fills a template with document data and returns the HTML.
// Template syntax errors surface as *printing.TemplateSyntaxError and, under
// the strict policy, missing values as *printing.MissingVariablesError.
func (s *Service) RenderDocument(ctx context.Context, tenantID uuid.UUID, req RenderDocumentRequest) (_ *RenderDocumentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "render",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrDocType, req.DocumentType)
	defer func() { telemetry.EndSpan(span, err) }()

	start := time.Now()
	doc, err := s.render(ctx, tenantID, req)
	if err != nil {
		s.metrics.DocumentRendered(ctx, req.DocumentType, "", time.Since(start), err)
		return nil, err
	}
	s.metrics.DocumentRendered(ctx, req.DocumentType, doc.source, time.Since(start), nil)
	telemetry.SetAttributes(span, telemetry.SpanAttrTemplateSource, doc.source)

	resp := &RenderDocumentResponse{
		HTML:           doc.html,
		TemplateSource: doc.source,
		DocumentType:   string(doc.template.DocumentType),
		PaperSize:      string(doc.template.PaperSize),
		Orientation:    string(doc.template.Orientation),
		Margins:        toMarginsDTO(doc.template.Margins),
		Locale:         doc.locale,
		Warnings:       doc.warnings,
	}
	if doc.source == TemplateSourceStored {
		resp.TemplateID = doc.template.ID.String()
	}
	return resp, nil
}

// GeneratePDF renders a document, converts it to PDF and stores it. The
// response carries a presigned download URL.
func (s *Service) GeneratePDF(ctx context.Context, tenantID uuid.UUID, req GeneratePDFRequest) (_ *PDFResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "generate_pdf",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrDocType, req.DocumentType)
	defer func() { telemetry.EndSpan(span, err) }()

	start := time.Now()
	var size int64
	defer func() { s.metrics.PDFGenerated(ctx, req.DocumentType, size, time.Since(start), err) }()

	if s.storage == nil {
		return nil, infra.NewRenderError(infra.ErrCodeStorageNotEnabled, "PDF storage is not configured", nil)
	}

	doc, err := s.render(ctx, tenantID, req.RenderDocumentRequest)
	if err != nil {
		return nil, err
	}

	title := doc.template.DocumentType.DisplayName()
	if req.DocumentNumber != "" {
		title = fmt.Sprintf("%s - %s", title, req.DocumentNumber)
	}

	pdf, err := s.renderer.Render(ctx, &infra.RenderRequest{
		HTML:        doc.html,
		PaperSize:   doc.template.PaperSize,
		Orientation: doc.template.Orientation,
		Margins:     doc.template.Margins,
		Title:       title,
		Locale:      doc.locale,
	})
	if err != nil {
		s.logger.Error("PDF rendering failed",
			zap.Error(err),
			zap.String("tenantId", tenantID.String()),
			zap.String("docType", string(doc.template.DocumentType)))
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	documentID := uuid.Nil
	if req.DocumentID != nil {
		documentID = *req.DocumentID
	}

	stored, err := s.storage.Store(ctx, &infra.StoreRequest{
		TenantID:     tenantID,
		DocumentType: doc.template.DocumentType,
		DocumentID:   documentID,
		PDFData:      pdf.PDFData,
	})
	if err != nil {
		s.logger.Error("PDF storage failed",
			zap.Error(err),
			zap.String("tenantId", tenantID.String()))
		return nil, fmt.Errorf("failed to store PDF: %w", err)
	}

	size = stored.Size
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTemplateSource, doc.source,
		telemetry.SpanAttrPDFSize, stored.Size,
		telemetry.SpanAttrPDFPages, pdf.PageCount)

	s.logger.Info("PDF generated",
		zap.String("tenantId", tenantID.String()),
		zap.String("docType", string(doc.template.DocumentType)),
		zap.String("key", stored.Key),
		zap.Int("pages", pdf.PageCount),
		zap.Duration("renderDuration", pdf.RenderDuration))

	resp := &PDFResponse{
		Key:            stored.Key,
		URL:            stored.URL,
		ExpiresAt:      stored.ExpiresAt,
		Size:           stored.Size,
		PageCount:      pdf.PageCount,
		TemplateSource: doc.source,
		Warnings:       doc.warnings,
	}
	if doc.source == TemplateSourceStored {
		resp.TemplateID = doc.template.ID.String()
	}
	return resp, nil
}

func (s *Service) render(ctx context.Context, tenantID uuid.UUID, req RenderDocumentRequest) (*renderedDocument, error) {
	docType := templating.DocType(req.DocumentType)
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid document type")
	}

	template, source, err := s.resolveTemplate(ctx, tenantID, docType, req)
	if err != nil {
		return nil, err
	}

	data, err := s.resolveData(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	values := data.Context(now)
	for _, p := range template.Placeholders {
		if _, ok := values[p.Key]; !ok && p.DefaultValue != "" {
			values[p.Key] = p.DefaultValue
		}
	}

	doc := &renderedDocument{template: template, source: source, locale: req.Locale}
	if doc.locale == "" {
		doc.locale = s.locale
	}

	if _, supplied := values[qrVariable]; !supplied && needsQRCode(docType, template.Content) {
		qr, err := s.qr.Generate(ctx, data.InvoiceData(now))
		if err != nil {
			s.logger.Warn("ZATCA QR code generation failed, using placeholder",
				zap.Error(err),
				zap.String("tenantId", tenantID.String()),
				zap.String("docType", string(docType)))
			values[qrVariable] = qrcode.PlaceholderDataURL
			doc.warnings = append(doc.warnings, WarningQRCodeFallback)
			s.metrics.QRCodeGenerated(ctx, true)
		} else {
			values[qrVariable] = qr.DataURL
			s.metrics.QRCodeGenerated(ctx, false)
		}
	}

	html, err := s.engine.Render(ctx, template.Content, values)
	if err != nil {
		return nil, err
	}
	doc.html = html
	return doc, nil
}

// resolveTemplate picks inline content, an explicit template, the company
// default or the built-in template, in that order
func (s *Service) resolveTemplate(ctx context.Context, tenantID uuid.UUID, docType templating.DocType, req RenderDocumentRequest) (*templating.DocumentTemplate, string, error) {
	if req.Content != "" {
		template, err := templating.NewDocumentTemplate(tenantID, docType, "Inline", req.Content, templating.PaperSizeA4)
		if err != nil {
			return nil, "", err
		}
		return template, TemplateSourceInline, nil
	}

	if req.TemplateID != nil {
		template, err := s.findTemplate(ctx, tenantID, *req.TemplateID)
		if err != nil {
			return nil, "", err
		}
		if template.DocumentType != docType {
			return nil, "", shared.NewDomainError("INVALID_INPUT", "Template does not belong to this document type")
		}
		if !template.CanBeUsed() {
			return nil, "", shared.NewDomainError("INVALID_STATE", "Template is not available for use")
		}
		return template, TemplateSourceStored, nil
	}

	template, err := s.templates.FindDefault(ctx, tenantID, docType)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get default template: %w", err)
	}
	if template != nil && template.CanBeUsed() {
		return template, TemplateSourceStored, nil
	}

	builtin, ok := infra.BuiltinTemplateFor(docType)
	if !ok {
		return nil, "", shared.NewDomainError("NOT_FOUND", "No default template found for this document type")
	}
	template, err = builtin.ToDocumentTemplate(tenantID)
	if err != nil {
		return nil, "", err
	}
	return template, TemplateSourceBuiltin, nil
}

func (s *Service) resolveData(ctx context.Context, tenantID uuid.UUID, req RenderDocumentRequest) (*infra.DocumentData, error) {
	data := &infra.DocumentData{}
	switch {
	case req.DocumentID != nil && s.data != nil:
		found, err := s.data.GetData(ctx, tenantID, *req.DocumentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("NOT_FOUND", "Document not found")
			}
			return nil, fmt.Errorf("failed to load document data: %w", err)
		}
		copied := *found
		data = &copied
	case req.Data != nil:
		copied := *req.Data
		data = &copied
	case req.DocumentID != nil:
		return nil, shared.NewDomainError("INVALID_INPUT", "Document lookup is not configured; pass the document data instead")
	}

	if len(req.Values) > 0 {
		values := make(map[string]any, len(data.Values)+len(req.Values))
		for k, v := range data.Values {
			values[k] = v
		}
		for k, v := range req.Values {
			values[k] = v
		}
		data.Values = values
	}
	return data, nil
}

func needsQRCode(docType templating.DocType, content string) bool {
	return docType.RequiresZATCAQRCode() || slices.Contains(templating.DetectVariables(content), qrVariable)
}
