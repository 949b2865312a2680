// Package fusefs mounts the tree as a read-only FUSE filesystem
package fusefs

import (
	"time"

	"github.com/brettbedarf/mirrorfs/config"
	"github.com/brettbedarf/mirrorfs/filesystem"
	"github.com/brettbedarf/mirrorfs/internal/util"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// View exposes a live FileSystem over FUSE with abstractions over the
// underlying wire protocol implementation
type View struct {
	store  *filesystem.FileSystem
	cfg    *config.Config
	server *fuse.Server
}

func New(store *filesystem.FileSystem, cfg *config.Config) *View {
	return &View{store: store, cfg: cfg}
}

func (v *View) options() *fs.Options {
	// tree changes come from outside the kernel, so nothing is cached
	var zero time.Duration
	opts := v.cfg.MountOptions
	return &fs.Options{
		MountOptions: fuse.MountOptions{
			Name:   opts.Name,
			FsName: opts.FsName,
			Debug:  opts.Debug || v.cfg.LogLvl == util.TraceLevel,
			Logger: util.NewLogLogger("FuseServer", util.DebugLevel),
		},
		EntryTimeout:    &zero,
		AttrTimeout:     &zero,
		NegativeTimeout: &zero,
	}
}

// Serve mounts the view at mountPoint and returns once the kernel has
// acknowledged the mount.
func (v *View) Serve(mountPoint string) error {
	logger := util.GetLogger("FuseView")
	srv, err := fs.Mount(mountPoint, newRoot(v.store), v.options())
	if err != nil {
		return err
	}
	v.server = srv
	logger.Info().Str("mountpoint", mountPoint).Msg("Mounted read-only view")
	return nil
}

func (v *View) ServeAsync(mountPoint string) <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- v.Serve(mountPoint)
		close(done)
	}()

	return done
}

// Wait blocks until the filesystem is unmounted
func (v *View) Wait() {
	if v.server != nil {
		v.server.Wait()
	}
}

// Unmount cleanly unmounts the filesystem.
func (v *View) Unmount() error {
	if v.server == nil {
		return nil
	}
	return v.server.Unmount()
}
