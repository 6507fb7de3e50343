package persistence

import (
	"context"
	"time"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/templating"
	"github.com/bizdocs/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormVariableRepository implements VariableRepository using GORM
type GormVariableRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormVariableRepository creates a new GormVariableRepository
func NewGormVariableRepository(db *gorm.DB) *GormVariableRepository {
	return &GormVariableRepository{db: db, now: time.Now}
}

// FindAllForTenant returns every variable known to a company, ordered by key
func (r *GormVariableRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]templating.TemplateVariable, error) {
	var variableModels []models.TemplateVariableModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("variable_key ASC").
		Find(&variableModels).Error; err != nil {
		return nil, err
	}
	return toDomainVariables(variableModels), nil
}

// FindByKeys returns the variables with the given keys
func (r *GormVariableRepository) FindByKeys(ctx context.Context, tenantID uuid.UUID, keys []string) ([]templating.TemplateVariable, error) {
	if len(keys) == 0 {
		return []templating.TemplateVariable{}, nil
	}

	var variableModels []models.TemplateVariableModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND variable_key IN ?", tenantID, keys).
		Order("variable_key ASC").
		Find(&variableModels).Error; err != nil {
		return nil, err
	}
	return toDomainVariables(variableModels), nil
}

// SaveAll upserts the given variables keyed on (tenant_id, variable_key).
// created_at is kept from the first insert.
func (r *GormVariableRepository) SaveAll(ctx context.Context, tenantID uuid.UUID, vars []templating.TemplateVariable) error {
	if len(vars) == 0 {
		return nil
	}

	now := r.now()
	variableModels := make([]*models.TemplateVariableModel, len(vars))
	for i, v := range vars {
		variableModels[i] = models.TemplateVariableModelFromDomain(tenantID, v, now)
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "variable_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"label", "type", "required", "category", "description",
				"usage_count", "last_used_at", "updated_at",
			}),
		}).
		Create(&variableModels).Error
}

// RecordUsage upserts one detection of each variable. New keys are inserted
// with usage_count 1; existing rows keep their definition and are
// incremented by the database, so concurrent callers never overwrite each
// other's counts.
func (r *GormVariableRepository) RecordUsage(ctx context.Context, tenantID uuid.UUID, vars []templating.TemplateVariable, at time.Time) error {
	if len(vars) == 0 {
		return nil
	}

	now := r.now()
	seen := make(map[string]struct{}, len(vars))
	variableModels := make([]*models.TemplateVariableModel, 0, len(vars))
	for _, v := range vars {
		// one statement may not touch the same conflict row twice
		if _, dup := seen[v.Key]; dup {
			continue
		}
		seen[v.Key] = struct{}{}
		v.UsageCount = 1
		v.LastUsedAt = &at
		variableModels = append(variableModels, models.TemplateVariableModelFromDomain(tenantID, v, now))
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "variable_key"}},
			DoUpdates: clause.Assignments(map[string]any{
				"usage_count":  gorm.Expr("template_variables.usage_count + 1"),
				"last_used_at": at,
				"updated_at":   now,
			}),
		}).
		Create(&variableModels).Error
}

// Delete removes a variable from a company's registry
func (r *GormVariableRepository) Delete(ctx context.Context, tenantID uuid.UUID, key string) error {
	result := r.db.WithContext(ctx).Delete(&models.TemplateVariableModel{}, "tenant_id = ? AND variable_key = ?", tenantID, key)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toDomainVariables(variableModels []models.TemplateVariableModel) []templating.TemplateVariable {
	vars := make([]templating.TemplateVariable, len(variableModels))
	for i := range variableModels {
		vars[i] = variableModels[i].ToDomain()
	}
	return vars
}

// Ensure GormVariableRepository implements VariableRepository
var _ templating.VariableRepository = (*GormVariableRepository)(nil)
