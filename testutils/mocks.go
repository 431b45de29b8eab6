package testutils

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/CyborPunk-2077/article-scraper/internal/inference"
	"github.com/CyborPunk-2077/article-scraper/internal/storage"
)

// MockBlobStore is a testify mock of the blob store interface.
type MockBlobStore struct {
	mock.Mock
}

var _ storage.BlobStore = (*MockBlobStore)(nil)

// Put records the call and returns the configured error.
func (m *MockBlobStore) Put(ctx context.Context, role storage.Role, key string, data []byte, contentType string) error {
	args := m.Called(ctx, role, key, data, contentType)
	return args.Error(0)
}

// Get records the call and returns the configured bytes.
func (m *MockBlobStore) Get(ctx context.Context, role storage.Role, key string) ([]byte, error) {
	args := m.Called(ctx, role, key)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	data, _ := args.Get(0).([]byte)
	return data, nil
}

// Exists records the call and returns the configured flag.
func (m *MockBlobStore) Exists(ctx context.Context, role storage.Role, key string) (bool, error) {
	args := m.Called(ctx, role, key)
	return args.Bool(0), args.Error(1)
}

// List records the call and returns the configured keys.
func (m *MockBlobStore) List(ctx context.Context, role storage.Role, prefix string) ([]string, error) {
	args := m.Called(ctx, role, prefix)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	keys, _ := args.Get(0).([]string)
	return keys, nil
}

// Sessions records the call and returns the configured ids.
func (m *MockBlobStore) Sessions(ctx context.Context, role storage.Role) ([]string, error) {
	args := m.Called(ctx, role)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	ids, _ := args.Get(0).([]string)
	return ids, nil
}

// Healthy records the call and returns the configured error.
func (m *MockBlobStore) Healthy(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockInference is a testify mock of the inference service interface.
type MockInference struct {
	mock.Mock
}

var _ inference.Service = (*MockInference)(nil)

// Summarize records the call and returns the configured summary.
func (m *MockInference) Summarize(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

// Caption records the call and returns the configured caption.
func (m *MockInference) Caption(ctx context.Context, image []byte) (string, error) {
	args := m.Called(ctx, image)
	return args.String(0), args.Error(1)
}
