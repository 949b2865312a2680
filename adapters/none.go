package adapters

import (
	"context"

	"github.com/brettbedarf/mirrorfs"
	"github.com/brettbedarf/mirrorfs/config"
	"github.com/spf13/afero"
)

// NoneProvider builds a remote that stores nothing
type NoneProvider struct{}

func (NoneProvider) NewRemote(context.Context, *config.Config, afero.Fs) (mirrorfs.RemoteMirror, error) {
	return NoneRemote{}, nil
}

// NoneRemote accepts pushes and holds no objects
type NoneRemote struct{}

func (NoneRemote) Push(context.Context, string) error { return nil }

func (NoneRemote) Fetch(context.Context, string, string) (string, error) {
	return "", mirrorfs.ErrRemoteNotFound
}

func (NoneRemote) List(context.Context) ([]mirrorfs.RemoteEntry, error) { return nil, nil }

func (NoneRemote) Delete(context.Context, string) error { return mirrorfs.ErrRemoteNotFound }

var _ mirrorfs.RemoteMirror = NoneRemote{}
