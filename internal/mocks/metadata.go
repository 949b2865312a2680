package mocks

import (
	"context"

	"github.com/brettbedarf/mirrorfs"
	"github.com/stretchr/testify/mock"
)

// MockMetadataIndex implements mirrorfs.MetadataIndex for testing across packages
type MockMetadataIndex struct {
	mock.Mock
}

func (m *MockMetadataIndex) Upsert(ctx context.Context, md mirrorfs.FileMetadata) error {
	args := m.Called(ctx, md)
	return args.Error(0)
}

func (m *MockMetadataIndex) List(ctx context.Context) ([]mirrorfs.FileMetadata, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mirrorfs.FileMetadata), args.Error(1)
}

var _ mirrorfs.MetadataIndex = (*MockMetadataIndex)(nil)
