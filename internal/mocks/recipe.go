package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/devdish/devdish/backend/internal/blob"
	"github.com/devdish/devdish/backend/internal/model"
	"github.com/devdish/devdish/backend/internal/query"
	"github.com/devdish/devdish/backend/internal/service"
	"github.com/devdish/devdish/backend/internal/types"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

var _ service.IRecipeService = (*MockRecipeService)(nil)

func (m *MockRecipeService) recipe(args mock.Arguments) (*model.Recipe, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) Create(ctx context.Context, ownerID uuid.UUID, req *types.CreateRecipeRequest) (*model.Recipe, error) {
	return m.recipe(m.Called(ctx, ownerID, req))
}

func (m *MockRecipeService) Get(ctx context.Context, ownerID, id uuid.UUID) (*model.Recipe, error) {
	return m.recipe(m.Called(ctx, ownerID, id))
}

func (m *MockRecipeService) Update(ctx context.Context, ownerID, id uuid.UUID, req *types.UpdateRecipeRequest) (*model.Recipe, error) {
	return m.recipe(m.Called(ctx, ownerID, id, req))
}

func (m *MockRecipeService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockRecipeService) List(ctx context.Context, ownerID uuid.UUID, f query.Filter) (*query.Result, error) {
	args := m.Called(ctx, ownerID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*query.Result), args.Error(1)
}

func (m *MockRecipeService) Tags(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRecipeService) Stats(ctx context.Context, ownerID uuid.UUID) (*model.RecipeStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RecipeStats), args.Error(1)
}

func (m *MockRecipeService) SetImage(ctx context.Context, ownerID, id uuid.UUID, up *service.Upload) (*model.Recipe, error) {
	return m.recipe(m.Called(ctx, ownerID, id, up))
}

func (m *MockRecipeService) Image(ctx context.Context, id uuid.UUID) (*blob.Object, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blob.Object), args.Error(1)
}
