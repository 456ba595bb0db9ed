package testhelpers

import (
	"bytes"
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/devdish/devdish/backend/internal/blob"
)

// MockBlobStore is a mock implementation of blob.Store
type MockBlobStore struct {
	mock.Mock
}

var _ blob.Store = (*MockBlobStore)(nil)

func (m *MockBlobStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, r, size, contentType)
	return args.Error(0)
}

func (m *MockBlobStore) Get(ctx context.Context, key string) (*blob.Object, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blob.Object), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// NewObject wraps data as a stored object for Get expectations.
func NewObject(data []byte, contentType string) *blob.Object {
	return &blob.Object{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: contentType,
		Size:        int64(len(data)),
	}
}
