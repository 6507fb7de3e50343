package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/templating"
	"github.com/bizdocs/backend/internal/domain/zatca"
	"github.com/bizdocs/backend/internal/infrastructure/event"
	infra "github.com/bizdocs/backend/internal/infrastructure/printing"
	"github.com/bizdocs/backend/internal/infrastructure/qrcode"
	"github.com/bizdocs/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QRGenerator renders ZATCA QR codes
type QRGenerator interface {
	Generate(ctx context.Context, data zatca.InvoiceData) (*qrcode.QRCode, error)
	Encoding() qrcode.PayloadEncoding
}

// PDFStorage stores rendered PDFs
type PDFStorage interface {
	Store(ctx context.Context, req *infra.StoreRequest) (*infra.StoreResult, error)
}

// Metrics records document operation metrics
type Metrics interface {
	AnalysisCompleted(ctx context.Context, newVariables int)
	DocumentRendered(ctx context.Context, docType, source string, d time.Duration, err error)
	PDFGenerated(ctx context.Context, docType string, size int64, d time.Duration, err error)
	QRCodeGenerated(ctx context.Context, fallback bool)
}

type noopMetrics struct{}

func (noopMetrics) AnalysisCompleted(context.Context, int)                                 {}
func (noopMetrics) DocumentRendered(context.Context, string, string, time.Duration, error) {}
func (noopMetrics) PDFGenerated(context.Context, string, int64, time.Duration, error)      {}
func (noopMetrics) QRCodeGenerated(context.Context, bool)                                  {}

// Service handles document template, variable and rendering operations
type Service struct {
	templates templating.DocumentTemplateRepository
	variables templating.VariableRepository
	engine    *infra.TemplateEngine
	qr        QRGenerator
	renderer  infra.PDFRenderer
	storage   PDFStorage
	data      infra.DataProvider
	events    shared.EventBus
	metrics   Metrics
	locale    string
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithQRGenerator sets the QR code generator
func WithQRGenerator(qr QRGenerator) Option {
	return func(s *Service) {
		s.qr = qr
	}
}

// WithPDF enables PDF generation
func WithPDF(renderer infra.PDFRenderer, storage PDFStorage) Option {
	return func(s *Service) {
		s.renderer = renderer
		s.storage = storage
	}
}

// WithDataProvider sets the source of document records looked up by ID
func WithDataProvider(provider infra.DataProvider) Option {
	return func(s *Service) {
		s.data = provider
	}
}

// WithEventBus sets the bus analysis events are published on
func WithEventBus(bus shared.EventBus) Option {
	return func(s *Service) {
		s.events = bus
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithDefaultLocale sets the locale used when a render request has none
func WithDefaultLocale(locale string) Option {
	return func(s *Service) {
		s.locale = locale
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a new Service and subscribes a VariableUsageHandler to
// its event bus. Without WithEventBus a synchronous in-memory bus is used.
func NewService(
	templates templating.DocumentTemplateRepository,
	variables templating.VariableRepository,
	engine *infra.TemplateEngine,
	opts ...Option,
) *Service {
	s := &Service{
		templates: templates,
		variables: variables,
		engine:    engine,
		renderer:  infra.DisabledRenderer{},
		metrics:   noopMetrics{},
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = infra.NewTemplateEngine(infra.WithTemplateLogger(s.logger))
	}
	if s.qr == nil {
		s.qr = qrcode.NewGenerator(qrcode.DefaultConfig(), qrcode.WithLogger(s.logger))
	}
	if s.events == nil {
		s.events = event.NewInMemoryEventBus(s.logger)
	}
	s.events.Subscribe(NewVariableUsageHandler(variables, s.now))
	return s
}

// =============================================================================
// Variable Analysis
// =============================================================================

// AnalyzeTemplate detects and classifies the variables of raw HTML or a
// stored template against the company's registry. Usage of every detected
// variable is recorded and new custom variables join the registry.
func (s *Service) AnalyzeTemplate(ctx context.Context, tenantID uuid.UUID, req AnalyzeTemplateRequest) (resp *AnalysisResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "template", "analyze", telemetry.SpanAttrTenantID, tenantID.String())
	defer func() { telemetry.EndSpan(span, err) }()

	hasContent := strings.TrimSpace(req.Content) != ""
	if hasContent == (req.TemplateID != nil) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Provide either content or template_id")
	}

	known, err := s.variables.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load variables: %w", err)
	}

	content := req.Content
	placeholders := toPlaceholders(req.Placeholders)
	templateID := uuid.Nil

	if req.TemplateID != nil {
		template, err := s.findTemplate(ctx, tenantID, *req.TemplateID)
		if err != nil {
			return nil, err
		}
		content = template.Content
		placeholders = append(append([]templating.Placeholder(nil), template.Placeholders...), placeholders...)
		templateID = template.ID
	}

	result := templating.AnalyzeTemplateVariables(content, known, placeholders)
	s.publish(ctx, templating.NewVariablesDetectedEventForTenant(tenantID, templateID, result))

	resp = toAnalysisResponse(result, s.engine.Validate(content))
	if templateID != uuid.Nil {
		resp.TemplateIDs = []string{templateID.String()}
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrVariableCount, len(result.DetectedVariables),
		telemetry.SpanAttrNewVariables, len(result.NewVariables))
	s.metrics.AnalysisCompleted(ctx, len(result.NewVariables))

	s.logger.Info("template analyzed",
		zap.String("tenantId", tenantID.String()),
		zap.Int("detected", len(result.DetectedVariables)),
		zap.Int("new", len(result.NewVariables)))

	return resp, nil
}

// AnalyzeTemplates analyzes several stored templates and merges the results.
// IDs that do not exist are reported rather than failing the request.
func (s *Service) AnalyzeTemplates(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (*AnalysisResponse, error) {
	if len(ids) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one template ID is required")
	}

	templates, err := s.templates.FindByIDsForTenant(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	if len(templates) == 0 {
		return nil, shared.NewDomainError("NOT_FOUND", "Template not found")
	}

	known, err := s.variables.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load variables: %w", err)
	}

	found := make(map[uuid.UUID]struct{}, len(templates))
	results := make([]templating.VariableDetectionResult, 0, len(templates))
	var problems []infra.SyntaxProblem
	templateIDs := make([]string, 0, len(templates))

	for i := range templates {
		t := &templates[i]
		found[t.ID] = struct{}{}
		templateIDs = append(templateIDs, t.ID.String())

		result := t.AnalyzeVariables(known)
		results = append(results, result)
		problems = append(problems, s.engine.Validate(t.Content)...)
		s.publish(ctx, t.GetDomainEvents()...)
		t.ClearDomainEvents()
	}

	merged := templating.MergeDetections(results...)
	s.metrics.AnalysisCompleted(ctx, len(merged.NewVariables))

	resp := toAnalysisResponse(merged, problems)
	resp.TemplateIDs = templateIDs
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			resp.MissingIDs = append(resp.MissingIDs, id.String())
		}
	}

	return resp, nil
}

// ListVariables returns the company's variable registry
func (s *Service) ListVariables(ctx context.Context, tenantID uuid.UUID) ([]VariableDTO, error) {
	vars, err := s.variables.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variables: %w", err)
	}
	return toVariableDTOs(vars), nil
}

// DeleteVariable removes a variable from the company's registry
func (s *Service) DeleteVariable(ctx context.Context, tenantID uuid.UUID, key string) error {
	if !templating.IsValidVariableKey(key) {
		return shared.NewDomainError("INVALID_INPUT", "Invalid variable key")
	}
	if err := s.variables.Delete(ctx, tenantID, key); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "Variable not found")
		}
		return fmt.Errorf("failed to delete variable: %w", err)
	}

	s.logger.Info("template variable deleted",
		zap.String("tenantId", tenantID.String()),
		zap.String("key", key))

	return nil
}

// Catalog returns the system variable catalog. With commonOnly set only the
// entries offered in the editor's quick-insert list are returned.
func (s *Service) Catalog(commonOnly bool) []CatalogEntryDTO {
	entries := templating.SystemCatalog()
	if commonOnly {
		entries = templating.CommonSystemVariables()
	}
	out := make([]CatalogEntryDTO, len(entries))
	for i, e := range entries {
		out[i] = toCatalogEntryDTO(e)
	}
	return out
}

// =============================================================================
// Template Operations
// =============================================================================

// CreateTemplate creates a new document template
func (s *Service) CreateTemplate(ctx context.Context, tenantID uuid.UUID, req CreateTemplateRequest) (*TemplateResponse, error) {
	docType := templating.DocType(req.DocumentType)
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid document type")
	}

	exists, err := s.templates.ExistsByDocTypeAndName(ctx, tenantID, docType, req.Name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check template existence: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Template with this name already exists for this document type")
	}

	paperSize := templating.PaperSizeA4
	if req.PaperSize != "" {
		paperSize = templating.PaperSize(req.PaperSize)
	}

	template, err := templating.NewDocumentTemplate(tenantID, docType, req.Name, req.Content, paperSize)
	if err != nil {
		return nil, err
	}

	if req.Description != "" {
		if err := template.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}
	if req.Orientation != "" {
		if err := template.SetOrientation(templating.Orientation(req.Orientation)); err != nil {
			return nil, err
		}
	}
	if req.Margins != nil {
		if err := template.SetMargins(req.Margins.toDomain()); err != nil {
			return nil, err
		}
	}
	if len(req.Placeholders) > 0 {
		if err := template.SetPlaceholders(toPlaceholders(req.Placeholders)); err != nil {
			return nil, err
		}
	}
	if req.IsDefault {
		if err := s.templates.ClearDefaultForDocType(ctx, tenantID, docType); err != nil {
			return nil, fmt.Errorf("failed to clear existing default: %w", err)
		}
		if err := template.SetAsDefault(); err != nil {
			return nil, err
		}
	}

	if err := s.saveAndAnalyze(ctx, template); err != nil {
		return nil, err
	}

	s.logger.Info("document template created",
		zap.String("id", template.ID.String()),
		zap.String("name", template.Name),
		zap.String("docType", string(template.DocumentType)))

	return toTemplateResponse(template), nil
}

// GetTemplate retrieves a template by ID
func (s *Service) GetTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.findTemplate(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}
	return toTemplateResponse(template), nil
}

// ListTemplates retrieves a paginated list of templates
func (s *Service) ListTemplates(ctx context.Context, tenantID uuid.UUID, req ListTemplatesRequest) (*ListTemplatesResponse, error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	if req.DocType != "" {
		docType := templating.DocType(req.DocType)
		if !docType.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid document type")
		}
		filter.Filters["document_type"] = string(docType)
	}
	if req.Status != "" {
		status := templating.TemplateStatus(req.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid template status")
		}
		filter.Filters["status"] = string(status)
	}

	templates, err := s.templates.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	total, err := s.templates.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count templates: %w", err)
	}

	items := make([]TemplateResponse, len(templates))
	for i := range templates {
		items[i] = *toTemplateResponse(&templates[i])
		items[i].Content = ""
	}

	return &ListTemplatesResponse{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Size:  filter.PageSize,
	}, nil
}

// UpdateTemplate updates an existing template
func (s *Service) UpdateTemplate(ctx context.Context, tenantID, templateID uuid.UUID, req UpdateTemplateRequest) (*TemplateResponse, error) {
	template, err := s.findTemplate(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != template.Name {
		exists, err := s.templates.ExistsByDocTypeAndName(ctx, tenantID, template.DocumentType, *req.Name, &templateID)
		if err != nil {
			return nil, fmt.Errorf("failed to check template existence: %w", err)
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Template with this name already exists for this document type")
		}
	}

	if req.Name != nil || req.Description != nil {
		name := template.Name
		if req.Name != nil {
			name = *req.Name
		}
		description := template.Description
		if req.Description != nil {
			description = *req.Description
		}
		if err := template.Update(name, description); err != nil {
			return nil, err
		}
	}
	if req.Content != nil {
		if err := template.UpdateContent(*req.Content); err != nil {
			return nil, err
		}
	}
	if req.Placeholders != nil {
		if err := template.SetPlaceholders(toPlaceholders(*req.Placeholders)); err != nil {
			return nil, err
		}
	}
	if req.PaperSize != nil {
		if err := template.SetPaperSize(templating.PaperSize(*req.PaperSize)); err != nil {
			return nil, err
		}
	}
	if req.Orientation != nil {
		if err := template.SetOrientation(templating.Orientation(*req.Orientation)); err != nil {
			return nil, err
		}
	}
	if req.Margins != nil {
		if err := template.SetMargins(req.Margins.toDomain()); err != nil {
			return nil, err
		}
	}
	if req.Active != nil && *req.Active != (template.Status == templating.TemplateStatusActive) {
		if *req.Active {
			err = template.Activate()
		} else {
			err = template.Deactivate()
		}
		if err != nil {
			return nil, err
		}
	}

	if req.Content != nil || req.Placeholders != nil {
		err = s.saveAndAnalyze(ctx, template)
	} else {
		err = s.save(ctx, template)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("document template updated",
		zap.String("id", template.ID.String()),
		zap.String("name", template.Name))

	return toTemplateResponse(template), nil
}

// DeleteTemplate deletes a template. The default template of a document
// type cannot be deleted.
func (s *Service) DeleteTemplate(ctx context.Context, tenantID, templateID uuid.UUID) error {
	template, err := s.findTemplate(ctx, tenantID, templateID)
	if err != nil {
		return err
	}

	if template.IsDefault {
		return shared.NewDomainError("INVALID_STATE", "Cannot delete default template. Set another template as default first.")
	}

	if err := s.templates.DeleteForTenant(ctx, tenantID, templateID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "Template not found")
		}
		return fmt.Errorf("failed to delete template: %w", err)
	}

	s.logger.Info("document template deleted",
		zap.String("id", templateID.String()))

	return nil
}

// SetDefaultTemplate makes a template the default for its document type
func (s *Service) SetDefaultTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.findTemplate(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}
	if template.Status != templating.TemplateStatusActive {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot set inactive template as default")
	}
	if template.IsDefault {
		return toTemplateResponse(template), nil
	}

	if err := s.templates.ClearDefaultForDocType(ctx, tenantID, template.DocumentType); err != nil {
		return nil, fmt.Errorf("failed to clear existing default: %w", err)
	}
	if err := template.SetAsDefault(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, template); err != nil {
		return nil, err
	}

	s.logger.Info("document template set as default",
		zap.String("id", template.ID.String()),
		zap.String("docType", string(template.DocumentType)))

	return toTemplateResponse(template), nil
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Service) findTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (*templating.DocumentTemplate, error) {
	template, err := s.templates.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Template not found")
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return template, nil
}

// saveAndAnalyze persists the template after recording the variables its
// content uses
func (s *Service) saveAndAnalyze(ctx context.Context, template *templating.DocumentTemplate) error {
	known, err := s.variables.FindAllForTenant(ctx, template.TenantID)
	if err != nil {
		return fmt.Errorf("failed to load variables: %w", err)
	}
	template.AnalyzeVariables(known)
	return s.save(ctx, template)
}

func (s *Service) save(ctx context.Context, template *templating.DocumentTemplate) error {
	if err := s.templates.Save(ctx, template); err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	s.publish(ctx, template.GetDomainEvents()...)
	template.ClearDomainEvents()
	return nil
}

// publish never fails the caller; handler errors are logged by the bus
func (s *Service) publish(ctx context.Context, events ...shared.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err))
	}
}
