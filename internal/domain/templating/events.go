package templating

import (
	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeDocumentTemplate is the aggregate type of DocumentTemplate events
const AggregateTypeDocumentTemplate = "DocumentTemplate"

// Event type constants for DocumentTemplate
const (
	EventTypeTemplateCreated      = "DocumentTemplateCreated"
	EventTypeTemplateUpdated      = "DocumentTemplateUpdated"
	EventTypeTemplateSetAsDefault = "DocumentTemplateSetAsDefault"
	EventTypeVariablesDetected    = "TemplateVariablesDetected"
)

// TemplateCreatedEvent is published when a new document template is created
type TemplateCreatedEvent struct {
	shared.BaseDomainEvent
	TemplateID   uuid.UUID `json:"template_id"`
	DocumentType DocType   `json:"document_type"`
	Name         string    `json:"name"`
}

// NewTemplateCreatedEvent creates a new TemplateCreatedEvent
func NewTemplateCreatedEvent(t *DocumentTemplate) *TemplateCreatedEvent {
	return &TemplateCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeTemplateCreated,
			AggregateTypeDocumentTemplate,
			t.ID,
			t.TenantID,
		),
		TemplateID:   t.ID,
		DocumentType: t.DocumentType,
		Name:         t.Name,
	}
}

// TemplateUpdatedEvent is published when a template's metadata or content changes
type TemplateUpdatedEvent struct {
	shared.BaseDomainEvent
	TemplateID   uuid.UUID `json:"template_id"`
	DocumentType DocType   `json:"document_type"`
	Name         string    `json:"name"`
}

// NewTemplateUpdatedEvent creates a new TemplateUpdatedEvent
func NewTemplateUpdatedEvent(t *DocumentTemplate) *TemplateUpdatedEvent {
	return &TemplateUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeTemplateUpdated,
			AggregateTypeDocumentTemplate,
			t.ID,
			t.TenantID,
		),
		TemplateID:   t.ID,
		DocumentType: t.DocumentType,
		Name:         t.Name,
	}
}

// TemplateSetAsDefaultEvent is published when a template becomes the default for its type
type TemplateSetAsDefaultEvent struct {
	shared.BaseDomainEvent
	TemplateID   uuid.UUID `json:"template_id"`
	DocumentType DocType   `json:"document_type"`
}

// NewTemplateSetAsDefaultEvent creates a new TemplateSetAsDefaultEvent
func NewTemplateSetAsDefaultEvent(t *DocumentTemplate) *TemplateSetAsDefaultEvent {
	return &TemplateSetAsDefaultEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeTemplateSetAsDefault,
			AggregateTypeDocumentTemplate,
			t.ID,
			t.TenantID,
		),
		TemplateID:   t.ID,
		DocumentType: t.DocumentType,
	}
}

// VariablesDetectedEvent is published after a template has been analyzed.
// Subscribers use it to record variable usage in the company's registry.
type VariablesDetectedEvent struct {
	shared.BaseDomainEvent
	TemplateID uuid.UUID          `json:"template_id"`
	Detected   []TemplateVariable `json:"detected"`
	New        []TemplateVariable `json:"new"`
}

// NewVariablesDetectedEvent creates a new VariablesDetectedEvent
func NewVariablesDetectedEvent(t *DocumentTemplate, result VariableDetectionResult) *VariablesDetectedEvent {
	return NewVariablesDetectedEventForTenant(t.TenantID, t.ID, result)
}

// NewVariablesDetectedEventForTenant creates a VariablesDetectedEvent for ad-hoc
// analyses that are not bound to a stored template (templateID may be uuid.Nil).
func NewVariablesDetectedEventForTenant(tenantID, templateID uuid.UUID, result VariableDetectionResult) *VariablesDetectedEvent {
	return &VariablesDetectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeVariablesDetected,
			AggregateTypeDocumentTemplate,
			templateID,
			tenantID,
		),
		TemplateID: templateID,
		Detected:   append([]TemplateVariable(nil), result.DetectedVariables...),
		New:        append([]TemplateVariable(nil), result.NewVariables...),
	}
}
