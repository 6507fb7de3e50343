package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/templating"
	"github.com/bizdocs/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentTemplateRepository implements DocumentTemplateRepository using GORM
type GormDocumentTemplateRepository struct {
	db *gorm.DB
}

// NewGormDocumentTemplateRepository creates a new GormDocumentTemplateRepository
func NewGormDocumentTemplateRepository(db *gorm.DB) *GormDocumentTemplateRepository {
	return &GormDocumentTemplateRepository{db: db}
}

// FindByIDForTenant finds a template by ID within a specific company
func (r *GormDocumentTemplateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*templating.DocumentTemplate, error) {
	var model models.DocumentTemplateModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDsForTenant finds templates by ID in the order the IDs were given.
// Unknown IDs are skipped.
func (r *GormDocumentTemplateRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]templating.DocumentTemplate, error) {
	if len(ids) == 0 {
		return []templating.DocumentTemplate{}, nil
	}

	var templateModels []models.DocumentTemplateModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&templateModels).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.DocumentTemplateModel, len(templateModels))
	for i := range templateModels {
		byID[templateModels[i].ID] = &templateModels[i]
	}

	templates := make([]templating.DocumentTemplate, 0, len(templateModels))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		model, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		templates = append(templates, *model.ToDomain())
	}
	return templates, nil
}

// FindAllForTenant finds all templates for a company
func (r *GormDocumentTemplateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]templating.DocumentTemplate, error) {
	var templateModels []models.DocumentTemplateModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.DocumentTemplateModel{}).Where("tenant_id = ?", tenantID), filter)

	if err := query.Find(&templateModels).Error; err != nil {
		return nil, err
	}

	templates := make([]templating.DocumentTemplate, len(templateModels))
	for i, model := range templateModels {
		templates[i] = *model.ToDomain()
	}
	return templates, nil
}

// FindDefault finds the default template for a document type within a company
func (r *GormDocumentTemplateRepository) FindDefault(ctx context.Context, tenantID uuid.UUID, docType templating.DocType) (*templating.DocumentTemplate, error) {
	var model models.DocumentTemplateModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_type = ? AND is_default = ?", tenantID, string(docType), true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // No default template, return nil without error
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save saves a template (insert or update)
func (r *GormDocumentTemplateRepository) Save(ctx context.Context, template *templating.DocumentTemplate) error {
	model := models.DocumentTemplateModelFromDomain(template)
	return r.db.WithContext(ctx).Save(model).Error
}

// DeleteForTenant deletes a template by ID within a company
func (r *GormDocumentTemplateRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DocumentTemplateModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant returns the total count of templates for a company
func (r *GormDocumentTemplateRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.DocumentTemplateModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByDocTypeAndName checks if a template with the given doc type and name exists
func (r *GormDocumentTemplateRepository) ExistsByDocTypeAndName(ctx context.Context, tenantID uuid.UUID, docType templating.DocType, name string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.DocumentTemplateModel{}).
		Where("tenant_id = ? AND document_type = ? AND name = ?", tenantID, string(docType), strings.TrimSpace(name))

	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ClearDefaultForDocType clears the default flag for all templates of a document type
func (r *GormDocumentTemplateRepository) ClearDefaultForDocType(ctx context.Context, tenantID uuid.UUID, docType templating.DocType) error {
	return r.db.WithContext(ctx).
		Model(&models.DocumentTemplateModel{}).
		Where("tenant_id = ? AND document_type = ? AND is_default = ?", tenantID, string(docType), true).
		Update("is_default", false).Error
}

// applyFilter applies filter options to the query
func (r *GormDocumentTemplateRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	query = query.Order(templateSortColumns.clause(filter.OrderBy, filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormDocumentTemplateRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		// LOWER ... LIKE rather than ILIKE so the query also runs on SQLite
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "document_type", "doc_type":
			query = query.Where("document_type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "is_default":
			query = query.Where("is_default = ?", value)
		case "paper_size":
			query = query.Where("paper_size = ?", value)
		}
	}

	return query
}

// Ensure GormDocumentTemplateRepository implements DocumentTemplateRepository
var _ templating.DocumentTemplateRepository = (*GormDocumentTemplateRepository)(nil)
