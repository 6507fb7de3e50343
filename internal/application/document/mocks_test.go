package document_test

import (
	"context"
	"time"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/bizdocs/backend/internal/domain/templating"
	infra "github.com/bizdocs/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Implementations
// =============================================================================

type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*templating.DocumentTemplate, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*templating.DocumentTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]templating.DocumentTemplate, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]templating.DocumentTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]templating.DocumentTemplate, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]templating.DocumentTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindDefault(ctx context.Context, tenantID uuid.UUID, docType templating.DocType) (*templating.DocumentTemplate, error) {
	args := m.Called(ctx, tenantID, docType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*templating.DocumentTemplate), args.Error(1)
}

func (m *MockTemplateRepository) Save(ctx context.Context, template *templating.DocumentTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockTemplateRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTemplateRepository) ExistsByDocTypeAndName(ctx context.Context, tenantID uuid.UUID, docType templating.DocType, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, docType, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTemplateRepository) ClearDefaultForDocType(ctx context.Context, tenantID uuid.UUID, docType templating.DocType) error {
	args := m.Called(ctx, tenantID, docType)
	return args.Error(0)
}

type MockVariableRepository struct {
	mock.Mock
}

func (m *MockVariableRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]templating.TemplateVariable, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]templating.TemplateVariable), args.Error(1)
}

func (m *MockVariableRepository) FindByKeys(ctx context.Context, tenantID uuid.UUID, keys []string) ([]templating.TemplateVariable, error) {
	args := m.Called(ctx, tenantID, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]templating.TemplateVariable), args.Error(1)
}

func (m *MockVariableRepository) SaveAll(ctx context.Context, tenantID uuid.UUID, vars []templating.TemplateVariable) error {
	args := m.Called(ctx, tenantID, vars)
	return args.Error(0)
}

func (m *MockVariableRepository) RecordUsage(ctx context.Context, tenantID uuid.UUID, vars []templating.TemplateVariable, at time.Time) error {
	args := m.Called(ctx, tenantID, vars, at)
	return args.Error(0)
}

func (m *MockVariableRepository) Delete(ctx context.Context, tenantID uuid.UUID, key string) error {
	args := m.Called(ctx, tenantID, key)
	return args.Error(0)
}

type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) Render(ctx context.Context, req *infra.RenderRequest) (*infra.RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.RenderResult), args.Error(1)
}

func (m *MockPDFRenderer) Close() error {
	return m.Called().Error(0)
}

type MockPDFStorage struct {
	mock.Mock
}

func (m *MockPDFStorage) Store(ctx context.Context, req *infra.StoreRequest) (*infra.StoreResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.StoreResult), args.Error(1)
}
