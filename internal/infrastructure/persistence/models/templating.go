package models

import (
	"time"

	"github.com/bizdocs/backend/internal/domain/templating"
	"github.com/google/uuid"
)

// PlaceholderModel is the JSON form of a template placeholder declaration
type PlaceholderModel struct {
	Key          string `json:"key"`
	Label        string `json:"label"`
	Type         string `json:"type"`
	Required     bool   `json:"required"`
	DefaultValue string `json:"default_value,omitempty"`
}

// DocumentTemplateModel is the GORM model for document_templates table
type DocumentTemplateModel struct {
	TenantAggregateModel
	DocumentType string             `gorm:"column:document_type;type:varchar(50);not null"`
	Name         string             `gorm:"type:varchar(100);not null"`
	Description  string             `gorm:"type:text"`
	Content      string             `gorm:"type:text;not null"`
	Placeholders []PlaceholderModel `gorm:"type:jsonb;serializer:json"`
	PaperSize    string             `gorm:"column:paper_size;type:varchar(20);not null;default:'A4'"`
	Orientation  string             `gorm:"type:varchar(20);not null;default:'PORTRAIT'"`
	MarginTop    int                `gorm:"column:margin_top;not null;default:15"`
	MarginRight  int                `gorm:"column:margin_right;not null;default:15"`
	MarginBottom int                `gorm:"column:margin_bottom;not null;default:15"`
	MarginLeft   int                `gorm:"column:margin_left;not null;default:15"`
	IsDefault    bool               `gorm:"column:is_default;not null;default:false"`
	Status       string             `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for DocumentTemplateModel
func (DocumentTemplateModel) TableName() string {
	return "document_templates"
}

// ToDomain converts DocumentTemplateModel to domain DocumentTemplate
func (m *DocumentTemplateModel) ToDomain() *templating.DocumentTemplate {
	t := &templating.DocumentTemplate{
		DocumentType: templating.DocType(m.DocumentType),
		Name:         m.Name,
		Description:  m.Description,
		Content:      m.Content,
		Placeholders: make([]templating.Placeholder, 0, len(m.Placeholders)),
		PaperSize:    templating.PaperSize(m.PaperSize),
		Orientation:  templating.Orientation(m.Orientation),
		Margins: templating.Margins{
			Top:    m.MarginTop,
			Right:  m.MarginRight,
			Bottom: m.MarginBottom,
			Left:   m.MarginLeft,
		},
		IsDefault: m.IsDefault,
		Status:    templating.TemplateStatus(m.Status),
	}
	m.PopulateTenantAggregateRoot(&t.TenantAggregateRoot)

	for _, p := range m.Placeholders {
		t.Placeholders = append(t.Placeholders, templating.Placeholder{
			Key:          p.Key,
			Label:        p.Label,
			Type:         templating.VariableType(p.Type),
			Required:     p.Required,
			DefaultValue: p.DefaultValue,
		})
	}
	return t
}

// DocumentTemplateModelFromDomain creates a DocumentTemplateModel from domain DocumentTemplate
func DocumentTemplateModelFromDomain(t *templating.DocumentTemplate) *DocumentTemplateModel {
	m := &DocumentTemplateModel{
		DocumentType: string(t.DocumentType),
		Name:         t.Name,
		Description:  t.Description,
		Content:      t.Content,
		Placeholders: make([]PlaceholderModel, 0, len(t.Placeholders)),
		PaperSize:    string(t.PaperSize),
		Orientation:  string(t.Orientation),
		MarginTop:    t.Margins.Top,
		MarginRight:  t.Margins.Right,
		MarginBottom: t.Margins.Bottom,
		MarginLeft:   t.Margins.Left,
		IsDefault:    t.IsDefault,
		Status:       string(t.Status),
	}
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)

	for _, p := range t.Placeholders {
		m.Placeholders = append(m.Placeholders, PlaceholderModel{
			Key:          p.Key,
			Label:        p.Label,
			Type:         string(p.Type),
			Required:     p.Required,
			DefaultValue: p.DefaultValue,
		})
	}
	return m
}

// TemplateVariableModel is the GORM model for template_variables table.
// (tenant_id, variable_key) is the primary key.
type TemplateVariableModel struct {
	TenantID    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Key         string     `gorm:"column:variable_key;type:varchar(100);primaryKey"`
	Label       string     `gorm:"type:varchar(200);not null"`
	Type        string     `gorm:"type:varchar(20);not null;default:'text'"`
	Required    bool       `gorm:"not null;default:false"`
	Category    string     `gorm:"type:varchar(20);not null"`
	Description string     `gorm:"type:text"`
	UsageCount  int        `gorm:"column:usage_count;not null;default:0"`
	LastUsedAt  *time.Time `gorm:"column:last_used_at"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for TemplateVariableModel
func (TemplateVariableModel) TableName() string {
	return "template_variables"
}

// ToDomain converts TemplateVariableModel to domain TemplateVariable
func (m *TemplateVariableModel) ToDomain() templating.TemplateVariable {
	return templating.TemplateVariable{
		Key:         m.Key,
		Label:       m.Label,
		Type:        templating.VariableType(m.Type),
		Required:    m.Required,
		Category:    templating.VariableCategory(m.Category),
		Description: m.Description,
		UsageCount:  m.UsageCount,
		LastUsedAt:  m.LastUsedAt,
	}
}

// TemplateVariableModelFromDomain creates a TemplateVariableModel for a company's variable
func TemplateVariableModelFromDomain(tenantID uuid.UUID, v templating.TemplateVariable, now time.Time) *TemplateVariableModel {
	return &TemplateVariableModel{
		TenantID:    tenantID,
		Key:         v.Key,
		Label:       v.Label,
		Type:        string(v.Type),
		Required:    v.Required,
		Category:    string(v.Category),
		Description: v.Description,
		UsageCount:  v.UsageCount,
		LastUsedAt:  v.LastUsedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
