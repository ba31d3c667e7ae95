package storage

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"recipe-admin/internal/model"
)

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Upload(ctx context.Context, name string, r io.Reader) (model.UploadedImage, error) {
	args := m.Called(ctx, name, r)
	return args.Get(0).(model.UploadedImage), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStore) DeleteByURL(ctx context.Context, rawURL string) error {
	args := m.Called(ctx, rawURL)
	return args.Error(0)
}
