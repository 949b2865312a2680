package adapters

import (
	"context"
	"fmt"

	"github.com/brettbedarf/mirrorfs"
	"github.com/brettbedarf/mirrorfs/config"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/spf13/afero"
)

// Registry maps remote types to the providers that build them
type Registry struct {
	providers *xsync.Map[string, mirrorfs.RemoteProvider]
}

func NewRegistry() *Registry {
	return &Registry{providers: xsync.NewMap[string, mirrorfs.RemoteProvider]()}
}

// Register ties a provider to a remote type. The first registration for a
// type wins; later ones are ignored.
func (r *Registry) Register(remoteType string, provider mirrorfs.RemoteProvider) {
	r.providers.LoadOrStore(remoteType, provider)
}

// GetProvider returns the provider registered for remoteType
func (r *Registry) GetProvider(remoteType string) (mirrorfs.RemoteProvider, error) {
	provider, ok := r.providers.Load(remoteType)
	if !ok {
		return nil, fmt.Errorf("no provider for remote type %q", remoteType)
	}
	return provider, nil
}

// NewRemote builds the remote mirror selected by cfg.RemoteType
func (r *Registry) NewRemote(ctx context.Context, cfg *config.Config, disk afero.Fs) (mirrorfs.RemoteMirror, error) {
	provider, err := r.GetProvider(cfg.RemoteType)
	if err != nil {
		return nil, err
	}
	return provider.NewRemote(ctx, cfg, disk)
}
