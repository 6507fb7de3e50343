package handler

import (
	"context"
	"time"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/templating"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockTemplateRepository struct {
	mock.Mock
}

func (m *mockTemplateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*templating.DocumentTemplate, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*templating.DocumentTemplate), args.Error(1)
}

func (m *mockTemplateRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]templating.DocumentTemplate, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]templating.DocumentTemplate), args.Error(1)
}

func (m *mockTemplateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]templating.DocumentTemplate, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]templating.DocumentTemplate), args.Error(1)
}

func (m *mockTemplateRepository) FindDefault(ctx context.Context, tenantID uuid.UUID, docType templating.DocType) (*templating.DocumentTemplate, error) {
	args := m.Called(ctx, tenantID, docType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*templating.DocumentTemplate), args.Error(1)
}

func (m *mockTemplateRepository) Save(ctx context.Context, template *templating.DocumentTemplate) error {
	return m.Called(ctx, template).Error(0)
}

func (m *mockTemplateRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *mockTemplateRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTemplateRepository) ExistsByDocTypeAndName(ctx context.Context, tenantID uuid.UUID, docType templating.DocType, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, docType, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockTemplateRepository) ClearDefaultForDocType(ctx context.Context, tenantID uuid.UUID, docType templating.DocType) error {
	return m.Called(ctx, tenantID, docType).Error(0)
}

type mockVariableRepository struct {
	mock.Mock
}

func (m *mockVariableRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]templating.TemplateVariable, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]templating.TemplateVariable), args.Error(1)
}

func (m *mockVariableRepository) FindByKeys(ctx context.Context, tenantID uuid.UUID, keys []string) ([]templating.TemplateVariable, error) {
	args := m.Called(ctx, tenantID, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]templating.TemplateVariable), args.Error(1)
}

func (m *mockVariableRepository) SaveAll(ctx context.Context, tenantID uuid.UUID, vars []templating.TemplateVariable) error {
	return m.Called(ctx, tenantID, vars).Error(0)
}

func (m *mockVariableRepository) RecordUsage(ctx context.Context, tenantID uuid.UUID, vars []templating.TemplateVariable, at time.Time) error {
	return m.Called(ctx, tenantID, vars, at).Error(0)
}

func (m *mockVariableRepository) Delete(ctx context.Context, tenantID uuid.UUID, key string) error {
	return m.Called(ctx, tenantID, key).Error(0)
}
