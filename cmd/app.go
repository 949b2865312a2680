package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/brettbedarf/mirrorfs/adapters"
	"github.com/brettbedarf/mirrorfs/config"
	"github.com/brettbedarf/mirrorfs/filesystem"
	"github.com/brettbedarf/mirrorfs/internal/event"
	"github.com/brettbedarf/mirrorfs/internal/util"
	"github.com/brettbedarf/mirrorfs/metadata"
	"github.com/brettbedarf/mirrorfs/service"
)

// app holds the wired collaborators shared by the serve, shell and mount
// commands
type app struct {
	svc    *service.Service
	events *event.Emitter
	index  *metadata.Index
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := util.GetLogger("main")
	disk := afero.NewOsFs()

	store := filesystem.NewFS(filesystem.NewPersister(disk, cfg.StorePath))
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("load %s: %w", cfg.StorePath, err)
	}

	index, err := metadata.Open(cfg.MetadataPath)
	if err != nil {
		return nil, fmt.Errorf("open metadata %s: %w", cfg.MetadataPath, err)
	}

	registry := adapters.NewRegistry()
	adapters.RegisterBuiltins(registry)
	remote, err := registry.NewRemote(ctx, cfg, disk)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("remote %s: %w", cfg.RemoteType, err), index.Close())
	}

	events := event.NewEmitter()
	svc := service.New(cfg, service.Deps{
		FS:       store,
		Disk:     service.NewDisk(disk, cfg.DataDir),
		Remote:   remote,
		Metadata: index,
		Events:   events,
	})
	logger.Info().
		Str("store", cfg.StorePath).
		Str("data_dir", cfg.DataDir).
		Str("remote", cfg.RemoteType).
		Msg("Service initialized")
	return &app{svc: svc, events: events, index: index}, nil
}

func (a *app) Close() error {
	return a.index.Close()
}
