package templating

import (
	"strings"
	"time"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentTemplate is a company's branded HTML template for one document type.
// It is the aggregate root for template-related operations.
type DocumentTemplate struct {
	shared.TenantAggregateRoot
	DocumentType DocType
	Name         string
	Description  string
	Content      string // HTML with {{variable}} tokens
	Placeholders []Placeholder
	PaperSize    PaperSize
	Orientation  Orientation
	Margins      Margins
	IsDefault    bool
	Status       TemplateStatus
}

// NewDocumentTemplate creates a new document template for a company
func NewDocumentTemplate(
	tenantID uuid.UUID,
	docType DocType,
	name string,
	content string,
	paperSize PaperSize,
) (*DocumentTemplate, error) {
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOC_TYPE", "Invalid document type")
	}
	if err := validateTemplateName(name); err != nil {
		return nil, err
	}
	if err := validateTemplateContent(content); err != nil {
		return nil, err
	}
	if !paperSize.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAPER_SIZE", "Invalid paper size")
	}

	template := &DocumentTemplate{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		DocumentType:        docType,
		Name:                strings.TrimSpace(name),
		Content:             content,
		Placeholders:        []Placeholder{},
		PaperSize:           paperSize,
		Orientation:         OrientationPortrait,
		Margins:             DefaultMargins(),
		Status:              TemplateStatusActive,
	}

	template.AddDomainEvent(NewTemplateCreatedEvent(template))

	return template, nil
}

// Update updates the template's name and description
func (t *DocumentTemplate) Update(name, description string) error {
	if err := validateTemplateName(name); err != nil {
		return err
	}

	t.Name = strings.TrimSpace(name)
	t.Description = strings.TrimSpace(description)
	t.touch()

	t.AddDomainEvent(NewTemplateUpdatedEvent(t))

	return nil
}

// UpdateContent replaces the template HTML
func (t *DocumentTemplate) UpdateContent(content string) error {
	if err := validateTemplateContent(content); err != nil {
		return err
	}

	t.Content = content
	t.touch()

	t.AddDomainEvent(NewTemplateUpdatedEvent(t))

	return nil
}

// SetPlaceholders replaces the template's custom variable declarations
func (t *DocumentTemplate) SetPlaceholders(placeholders []Placeholder) error {
	if err := validatePlaceholders(placeholders); err != nil {
		return err
	}

	t.Placeholders = append([]Placeholder(nil), placeholders...)
	t.touch()

	return nil
}

// SetPaperSize sets the paper size
func (t *DocumentTemplate) SetPaperSize(paperSize PaperSize) error {
	if !paperSize.IsValid() {
		return shared.NewDomainError("INVALID_PAPER_SIZE", "Invalid paper size")
	}

	t.PaperSize = paperSize
	t.touch()

	return nil
}

// SetOrientation sets the page orientation
func (t *DocumentTemplate) SetOrientation(orientation Orientation) error {
	if !orientation.IsValid() {
		return shared.NewDomainError("INVALID_ORIENTATION", "Invalid orientation value")
	}

	t.Orientation = orientation
	t.touch()

	return nil
}

// SetMargins sets the page margins
func (t *DocumentTemplate) SetMargins(margins Margins) error {
	validated, err := NewMargins(margins.Top, margins.Right, margins.Bottom, margins.Left)
	if err != nil {
		return err
	}

	t.Margins = validated
	t.touch()

	return nil
}

// SetAsDefault marks this template as the default for its document type.
// The caller clears the flag on the previous default.
func (t *DocumentTemplate) SetAsDefault() error {
	if t.Status != TemplateStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Cannot set inactive template as default")
	}
	if t.IsDefault {
		return nil
	}

	t.IsDefault = true
	t.touch()

	t.AddDomainEvent(NewTemplateSetAsDefaultEvent(t))

	return nil
}

// UnsetDefault removes the default flag from this template
func (t *DocumentTemplate) UnsetDefault() {
	if !t.IsDefault {
		return
	}

	t.IsDefault = false
	t.touch()
}

// Activate activates the template
func (t *DocumentTemplate) Activate() error {
	if t.Status == TemplateStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Template is already active")
	}

	t.Status = TemplateStatusActive
	t.touch()

	return nil
}

// Deactivate deactivates the template
func (t *DocumentTemplate) Deactivate() error {
	if t.Status == TemplateStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Template is already inactive")
	}
	if t.IsDefault {
		return shared.NewDomainError("INVALID_STATE", "Cannot deactivate a default template. Set another template as default first.")
	}

	t.Status = TemplateStatusInactive
	t.touch()

	return nil
}

// CanBeUsed returns true if the template can be used to generate documents
func (t *DocumentTemplate) CanBeUsed() bool {
	return t.Status == TemplateStatusActive && t.Content != ""
}

// AnalyzeVariables detects and classifies the variables used by this template
// against the company's known variables and this template's placeholders.
func (t *DocumentTemplate) AnalyzeVariables(known []TemplateVariable) VariableDetectionResult {
	result := AnalyzeTemplateVariables(t.Content, known, t.Placeholders)
	t.AddDomainEvent(NewVariablesDetectedEvent(t, result))
	return result
}

func (t *DocumentTemplate) touch() {
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

func validateTemplateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return shared.NewDomainError("INVALID_NAME", "Template name cannot be empty")
	}
	if len(trimmed) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Template name cannot exceed 100 characters")
	}
	return nil
}

func validateTemplateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return shared.NewDomainError("INVALID_CONTENT", "Template content cannot be empty")
	}
	if len(content) > 1024*1024 {
		return shared.NewDomainError("INVALID_CONTENT", "Template content cannot exceed 1MB")
	}
	return nil
}
