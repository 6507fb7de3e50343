package document

import (
	"time"

	"github.com/bizdocs/backend/internal/domain/templating"
	"github.com/bizdocs/backend/internal/domain/zatca"
	infra "github.com/bizdocs/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Variable DTOs
// =============================================================================

// VariableDTO represents a template variable
type VariableDTO struct {
	Key         string     `json:"key"`
	Label       string     `json:"label"`
	Type        string     `json:"type"`
	Required    bool       `json:"required"`
	Category    string     `json:"category"`
	Description string     `json:"description,omitempty"`
	UsageCount  int        `json:"usage_count"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}

// PlaceholderDTO declares a custom variable on a template
type PlaceholderDTO struct {
	Key          string `json:"key" binding:"required,max=100"`
	Label        string `json:"label" binding:"max=200"`
	Type         string `json:"type" binding:"omitempty,oneof=text number date currency boolean image"`
	Required     bool   `json:"required"`
	DefaultValue string `json:"default_value"`
}

// CatalogEntryDTO represents a system catalog entry
type CatalogEntryDTO struct {
	Key          string `json:"key"`
	Label        string `json:"label"`
	Type         string `json:"type"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	ExampleValue string `json:"example_value"`
	IsCommon     bool   `json:"is_common"`
}

// AnalyzeTemplateRequest analyzes raw HTML or a stored template.
// Exactly one of Content and TemplateID must be set.
type AnalyzeTemplateRequest struct {
	Content      string           `json:"content"`
	TemplateID   *uuid.UUID       `json:"template_id"`
	Placeholders []PlaceholderDTO `json:"placeholders" binding:"omitempty,dive"`
}

// AnalyzeTemplatesRequest analyzes several stored templates and merges the results
type AnalyzeTemplatesRequest struct {
	TemplateIDs []uuid.UUID `json:"template_ids" binding:"required,min=1,max=50"`
}

// SyntaxProblemDTO is one template syntax error
type SyntaxProblemDTO struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// AnalysisResponse is the outcome of a variable analysis
type AnalysisResponse struct {
	TemplateIDs       []string           `json:"template_ids,omitempty"`
	MissingIDs        []string           `json:"missing_template_ids,omitempty"`
	DetectedVariables []VariableDTO      `json:"detected_variables"`
	ExistingVariables []VariableDTO      `json:"existing_variables"`
	NewVariables      []VariableDTO      `json:"new_variables"`
	Recommendations   []string           `json:"recommendations"`
	SyntaxErrors      []SyntaxProblemDTO `json:"syntax_errors"`
	Valid             bool               `json:"valid"`
}

// =============================================================================
// Template DTOs
// =============================================================================

// CreateTemplateRequest represents a request to create a document template
type CreateTemplateRequest struct {
	DocumentType string           `json:"document_type" binding:"required"`
	Name         string           `json:"name" binding:"required,min=1,max=100"`
	Description  string           `json:"description" binding:"max=500"`
	Content      string           `json:"content" binding:"required"`
	PaperSize    string           `json:"paper_size"`
	Orientation  string           `json:"orientation"`
	Margins      *MarginsDTO      `json:"margins"`
	Placeholders []PlaceholderDTO `json:"placeholders" binding:"omitempty,dive"`
	IsDefault    bool             `json:"is_default"`
}

// UpdateTemplateRequest represents a request to update a document template
type UpdateTemplateRequest struct {
	Name         *string           `json:"name" binding:"omitempty,min=1,max=100"`
	Description  *string           `json:"description" binding:"omitempty,max=500"`
	Content      *string           `json:"content"`
	PaperSize    *string           `json:"paper_size"`
	Orientation  *string           `json:"orientation"`
	Margins      *MarginsDTO       `json:"margins"`
	Placeholders *[]PlaceholderDTO `json:"placeholders"`
	Active       *bool             `json:"active"`
}

// ListTemplatesRequest represents a request to list templates
type ListTemplatesRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
	DocType  string `form:"doc_type"`
	Status   string `form:"status"`
}

// TemplateResponse represents a document template
type TemplateResponse struct {
	ID           string           `json:"id"`
	TenantID     string           `json:"tenant_id"`
	DocumentType string           `json:"document_type"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Content      string           `json:"content,omitempty"`
	Placeholders []PlaceholderDTO `json:"placeholders"`
	PaperSize    string           `json:"paper_size"`
	Orientation  string           `json:"orientation"`
	Margins      MarginsDTO       `json:"margins"`
	IsDefault    bool             `json:"is_default"`
	Status       string           `json:"status"`
	Version      int              `json:"version"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ListTemplatesResponse represents a paginated list of templates
type ListTemplatesResponse struct {
	Items []TemplateResponse `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Size  int                `json:"size"`
}

// MarginsDTO represents page margins in millimeters
type MarginsDTO struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// =============================================================================
// ZATCA DTOs
// =============================================================================

// InvoiceRequest carries the five fields encoded in a ZATCA QR code
type InvoiceRequest struct {
	SellerName  string          `json:"seller_name"`
	VATNumber   string          `json:"vat_number"`
	Timestamp   string          `json:"timestamp"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
}

// ToInvoiceData converts the request into domain invoice data
func (r InvoiceRequest) ToInvoiceData() zatca.InvoiceData {
	return zatca.InvoiceData{
		SellerName:  r.SellerName,
		VATNumber:   r.VATNumber,
		Timestamp:   r.Timestamp,
		TotalAmount: r.TotalAmount,
		VATAmount:   r.VATAmount,
	}
}

// QRCodeResponse is a rendered ZATCA QR code
type QRCodeResponse struct {
	Payload  string `json:"payload"`
	Encoding string `json:"encoding"`
	DataURL  string `json:"data_url"`
}

// =============================================================================
// Rendering DTOs
// =============================================================================

// Template sources reported by RenderDocument
const (
	TemplateSourceStored  = "stored"
	TemplateSourceBuiltin = "builtin"
	TemplateSourceInline  = "inline"
)

// RenderDocumentRequest renders a document to HTML.
//
// The template is Content when given, otherwise TemplateID, otherwise the
// company's default for DocumentType, otherwise the built-in template.
// Records come from DocumentID through the data provider or from Data;
// Values override individual variables.
type RenderDocumentRequest struct {
	DocumentType string              `json:"document_type" binding:"required"`
	TemplateID   *uuid.UUID          `json:"template_id"`
	Content      string              `json:"content"`
	DocumentID   *uuid.UUID          `json:"document_id"`
	Data         *infra.DocumentData `json:"data"`
	Values       map[string]any      `json:"values"`
	Locale       string              `json:"locale"`
}

// RenderDocumentResponse is a rendered HTML document
type RenderDocumentResponse struct {
	HTML           string     `json:"html"`
	TemplateID     string     `json:"template_id,omitempty"`
	TemplateSource string     `json:"template_source"`
	DocumentType   string     `json:"document_type"`
	PaperSize      string     `json:"paper_size"`
	Orientation    string     `json:"orientation"`
	Margins        MarginsDTO `json:"margins"`
	Locale         string     `json:"locale,omitempty"`
	Warnings       []string   `json:"warnings,omitempty"`
}

// GeneratePDFRequest renders a document and stores it as a PDF
type GeneratePDFRequest struct {
	RenderDocumentRequest
	DocumentNumber string `json:"document_number" binding:"max=100"`
}

// PDFResponse describes a stored PDF
type PDFResponse struct {
	Key            string    `json:"key"`
	URL            string    `json:"url"`
	ExpiresAt      time.Time `json:"expires_at"`
	Size           int64     `json:"size"`
	PageCount      int       `json:"page_count"`
	TemplateID     string    `json:"template_id,omitempty"`
	TemplateSource string    `json:"template_source"`
	Warnings       []string  `json:"warnings,omitempty"`
}

// =============================================================================
// Conversions
// =============================================================================

func toVariableDTO(v templating.TemplateVariable) VariableDTO {
	return VariableDTO{
		Key:         v.Key,
		Label:       v.Label,
		Type:        string(v.Type),
		Required:    v.Required,
		Category:    string(v.Category),
		Description: v.Description,
		UsageCount:  v.UsageCount,
		LastUsedAt:  v.LastUsedAt,
	}
}

func toVariableDTOs(vars []templating.TemplateVariable) []VariableDTO {
	out := make([]VariableDTO, len(vars))
	for i, v := range vars {
		out[i] = toVariableDTO(v)
	}
	return out
}

func toCatalogEntryDTO(e templating.CatalogEntry) CatalogEntryDTO {
	return CatalogEntryDTO{
		Key:          e.Key,
		Label:        e.Label,
		Type:         string(e.Type),
		Category:     string(e.Category),
		Description:  e.Description,
		ExampleValue: e.ExampleValue,
		IsCommon:     e.IsCommon,
	}
}

func toPlaceholders(dtos []PlaceholderDTO) []templating.Placeholder {
	out := make([]templating.Placeholder, len(dtos))
	for i, p := range dtos {
		varType := templating.VariableType(p.Type)
		if p.Type == "" {
			varType = templating.InferVariableType(p.Key)
		}
		label := p.Label
		if label == "" {
			label = templating.FormatLabel(p.Key)
		}
		out[i] = templating.Placeholder{
			Key:          p.Key,
			Label:        label,
			Type:         varType,
			Required:     p.Required,
			DefaultValue: p.DefaultValue,
		}
	}
	return out
}

func toPlaceholderDTOs(placeholders []templating.Placeholder) []PlaceholderDTO {
	out := make([]PlaceholderDTO, len(placeholders))
	for i, p := range placeholders {
		out[i] = PlaceholderDTO{
			Key:          p.Key,
			Label:        p.Label,
			Type:         string(p.Type),
			Required:     p.Required,
			DefaultValue: p.DefaultValue,
		}
	}
	return out
}

func toSyntaxProblemDTOs(problems []infra.SyntaxProblem) []SyntaxProblemDTO {
	out := make([]SyntaxProblemDTO, len(problems))
	for i, p := range problems {
		out[i] = SyntaxProblemDTO{Line: p.Line, Message: p.Message}
	}
	return out
}

func toMarginsDTO(m templating.Margins) MarginsDTO {
	return MarginsDTO{Top: m.Top, Right: m.Right, Bottom: m.Bottom, Left: m.Left}
}

func (m MarginsDTO) toDomain() templating.Margins {
	return templating.Margins{Top: m.Top, Right: m.Right, Bottom: m.Bottom, Left: m.Left}
}

func toTemplateResponse(t *templating.DocumentTemplate) *TemplateResponse {
	return &TemplateResponse{
		ID:           t.ID.String(),
		TenantID:     t.TenantID.String(),
		DocumentType: string(t.DocumentType),
		Name:         t.Name,
		Description:  t.Description,
		Content:      t.Content,
		Placeholders: toPlaceholderDTOs(t.Placeholders),
		PaperSize:    string(t.PaperSize),
		Orientation:  string(t.Orientation),
		Margins:      toMarginsDTO(t.Margins),
		IsDefault:    t.IsDefault,
		Status:       string(t.Status),
		Version:      t.GetVersion(),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func toAnalysisResponse(result templating.VariableDetectionResult, problems []infra.SyntaxProblem) *AnalysisResponse {
	recs := result.Recommendations
	if recs == nil {
		recs = []string{}
	}
	return &AnalysisResponse{
		DetectedVariables: toVariableDTOs(result.DetectedVariables),
		ExistingVariables: toVariableDTOs(result.ExistingVariables),
		NewVariables:      toVariableDTOs(result.NewVariables),
		Recommendations:   recs,
		SyntaxErrors:      toSyntaxProblemDTOs(problems),
		Valid:             len(problems) == 0,
	}
}
