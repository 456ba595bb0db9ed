package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/devdish/devdish/backend/internal/model"
	"github.com/devdish/devdish/backend/internal/query"
	"github.com/devdish/devdish/backend/internal/service"
	"github.com/devdish/devdish/backend/internal/types"
)

// MockInteractionService is a mock implementation of the public recipe service
type MockInteractionService struct {
	mock.Mock
}

var _ service.IInteractionService = (*MockInteractionService)(nil)

func (m *MockInteractionService) result(args mock.Arguments) (*query.Result, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*query.Result), args.Error(1)
}

func (m *MockInteractionService) ListPublic(ctx context.Context, f query.Filter) (*query.Result, error) {
	return m.result(m.Called(ctx, f))
}

func (m *MockInteractionService) GetPublic(ctx context.Context, publicID string) (*model.Recipe, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockInteractionService) RecordView(ctx context.Context, id uuid.UUID) bool {
	return m.Called(ctx, id).Bool(0)
}

func (m *MockInteractionService) ToggleLike(ctx context.Context, id, userID uuid.UUID) (*types.LikeResponse, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.LikeResponse), args.Error(1)
}

func (m *MockInteractionService) Liked(ctx context.Context, userID uuid.UUID, f query.Filter) (*query.Result, error) {
	return m.result(m.Called(ctx, userID, f))
}
