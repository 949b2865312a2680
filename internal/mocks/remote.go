package mocks

import (
	"context"

	"github.com/brettbedarf/mirrorfs"
	"github.com/brettbedarf/mirrorfs/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
)

// MockRemoteMirror implements mirrorfs.RemoteMirror for testing across packages
type MockRemoteMirror struct {
	mock.Mock
}

func (m *MockRemoteMirror) Push(ctx context.Context, localPath string) error {
	args := m.Called(ctx, localPath)
	return args.Error(0)
}

func (m *MockRemoteMirror) Fetch(ctx context.Context, name string, saveDir string) (string, error) {
	args := m.Called(ctx, name, saveDir)

	// Handle function return types (for tests that write the fetched file)
	if fn, ok := args.Get(0).(func(context.Context, string, string) string); ok {
		return fn(ctx, name, saveDir), args.Error(1)
	}
	return args.String(0), args.Error(1)
}

func (m *MockRemoteMirror) List(ctx context.Context) ([]mirrorfs.RemoteEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mirrorfs.RemoteEntry), args.Error(1)
}

func (m *MockRemoteMirror) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

var _ mirrorfs.RemoteMirror = (*MockRemoteMirror)(nil)

// MockRemoteProvider implements mirrorfs.RemoteProvider for testing across packages
type MockRemoteProvider struct {
	mock.Mock
}

func (m *MockRemoteProvider) NewRemote(ctx context.Context, cfg *config.Config, disk afero.Fs) (mirrorfs.RemoteMirror, error) {
	args := m.Called(ctx, cfg, disk)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(mirrorfs.RemoteMirror), args.Error(1)
}

var _ mirrorfs.RemoteProvider = (*MockRemoteProvider)(nil)
