package adapters

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/brettbedarf/mirrorfs"
	"github.com/brettbedarf/mirrorfs/config"
	"github.com/brettbedarf/mirrorfs/internal/util"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// DirProvider builds a remote backed by a plain directory, typically a
// mounted network share or a synced folder.
type DirProvider struct{}

func (DirProvider) NewRemote(_ context.Context, cfg *config.Config, disk afero.Fs) (mirrorfs.RemoteMirror, error) {
	if cfg.RemoteDir == "" {
		return nil, errors.New("dir remote requires remote_dir")
	}
	return NewDirRemote(disk, cfg.RemoteDir)
}

// DirRemote stores remote objects as files directly under root. Like every
// remote its namespace is flat: objects are keyed by base filename.
type DirRemote struct {
	disk afero.Fs
	root string
}

func NewDirRemote(disk afero.Fs, root string) (*DirRemote, error) {
	if err := disk.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create remote dir %s", root)
	}
	return &DirRemote{disk: disk, root: root}, nil
}

func (d *DirRemote) Push(ctx context.Context, localPath string) error {
	data, err := afero.ReadFile(d.disk, localPath)
	if err != nil {
		return errors.Wrapf(err, "read %s", localPath)
	}
	name := filepath.Base(localPath)
	if err := afero.WriteFile(d.disk, filepath.Join(d.root, name), data, 0o644); err != nil {
		return errors.Wrapf(err, "push %s", name)
	}
	logger := util.GetLogger("DirRemote.Push")
	logger.Debug().Str("name", name).Int("bytes", len(data)).Msg("Pushed file")
	return nil
}

func (d *DirRemote) Fetch(ctx context.Context, name, saveDir string) (string, error) {
	data, err := afero.ReadFile(d.disk, filepath.Join(d.root, filepath.Base(name)))
	if errors.Is(err, os.ErrNotExist) {
		return "", errors.Wrap(mirrorfs.ErrRemoteNotFound, name)
	}
	if err != nil {
		return "", errors.Wrapf(err, "fetch %s", name)
	}

	if err := d.disk.MkdirAll(saveDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create %s", saveDir)
	}
	dst := filepath.Join(saveDir, filepath.Base(name))
	if err := afero.WriteFile(d.disk, dst, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "save %s", dst)
	}
	return dst, nil
}

func (d *DirRemote) List(ctx context.Context) ([]mirrorfs.RemoteEntry, error) {
	infos, err := afero.ReadDir(d.disk, d.root)
	if err != nil {
		return nil, errors.Wrap(err, "list remote dir")
	}

	entries := make([]mirrorfs.RemoteEntry, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		mod := info.ModTime()
		entries = append(entries, mirrorfs.RemoteEntry{
			ID:         info.Name(),
			Name:       info.Name(),
			Size:       info.Size(),
			ModifiedAt: &mod,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (d *DirRemote) Delete(ctx context.Context, name string) error {
	target := filepath.Join(d.root, filepath.Base(name))
	if _, err := d.disk.Stat(target); errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(mirrorfs.ErrRemoteNotFound, name)
	}
	if err := d.disk.Remove(target); err != nil {
		return errors.Wrapf(err, "delete %s", name)
	}
	return nil
}

var _ mirrorfs.RemoteMirror = (*DirRemote)(nil)
