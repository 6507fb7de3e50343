package templating

import (
	"context"
	"time"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentTemplateRepository defines the interface for document template persistence
type DocumentTemplateRepository interface {
	// FindByIDForTenant finds a template by ID within a specific company
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*DocumentTemplate, error)

	// FindByIDsForTenant finds templates by ID, preserving the order of ids.
	// Missing IDs are skipped.
	FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]DocumentTemplate, error)

	// FindAllForTenant finds all templates for a company
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]DocumentTemplate, error)

	// FindDefault finds the default template for a document type.
	// Returns nil without error if no default is set.
	FindDefault(ctx context.Context, tenantID uuid.UUID, docType DocType) (*DocumentTemplate, error)

	// Save saves a template (insert or update)
	Save(ctx context.Context, template *DocumentTemplate) error

	// DeleteForTenant deletes a template by ID within a company
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant returns the total count of templates for a company
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByDocTypeAndName checks for a name clash within a document type
	ExistsByDocTypeAndName(ctx context.Context, tenantID uuid.UUID, docType DocType, name string, excludeID *uuid.UUID) (bool, error)

	// ClearDefaultForDocType clears the default flag for all templates of a document type
	ClearDefaultForDocType(ctx context.Context, tenantID uuid.UUID, docType DocType) error
}

// VariableRepository persists a company's variable registry
type VariableRepository interface {
	// FindAllForTenant returns every variable known to a company, ordered by key
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]TemplateVariable, error)

	// FindByKeys returns the variables with the given keys
	FindByKeys(ctx context.Context, tenantID uuid.UUID, keys []string) ([]TemplateVariable, error)

	// SaveAll inserts or updates the given variables
	SaveAll(ctx context.Context, tenantID uuid.UUID, vars []TemplateVariable) error

	// RecordUsage counts one detection of each variable at the given time.
	// Unknown keys are added with a count of one; known keys keep their
	// definition and have their count incremented in place.
	RecordUsage(ctx context.Context, tenantID uuid.UUID, vars []TemplateVariable, at time.Time) error

	// Delete removes a variable; only called on explicit user request
	Delete(ctx context.Context, tenantID uuid.UUID, key string) error
}
