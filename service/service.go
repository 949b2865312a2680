// Package service ties the tree to its mirrors. Every file mutation runs
// store op, flush, disk write, remote push and metadata upsert in that order.
// Only the store op and flush decide success; mirror failures are collected
// in the returned report.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/brettbedarf/mirrorfs"
	"github.com/brettbedarf/mirrorfs/config"
	"github.com/brettbedarf/mirrorfs/filesystem"
	"github.com/brettbedarf/mirrorfs/internal/event"
	"github.com/brettbedarf/mirrorfs/internal/util"
)

// ErrRemoteUnavailable wraps remote failures that prevent an operation from
// doing anything at all, as opposed to mirror warnings.
var ErrRemoteUnavailable = errors.New("remote unavailable")

// Deps are the collaborators a Service drives
type Deps struct {
	FS       *filesystem.FileSystem
	Disk     *Disk
	Remote   mirrorfs.RemoteMirror
	Metadata mirrorfs.MetadataIndex
	Events   *event.Emitter // optional
	Now      func() time.Time
}

type Service struct {
	// mu orders mutations together with their mirror calls, so disk and
	// remote see writes in tree order
	mu sync.Mutex

	cfg    *config.Config
	fs     *filesystem.FileSystem
	disk   *Disk
	remote mirrorfs.RemoteMirror
	meta   mirrorfs.MetadataIndex
	events *event.Emitter
	now    func() time.Time
}

func New(cfg *config.Config, deps Deps) *Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		cfg:    cfg,
		fs:     deps.FS,
		disk:   deps.Disk,
		remote: deps.Remote,
		meta:   deps.Metadata,
		events: deps.Events,
		now:    now,
	}
}

// FS exposes the underlying tree for read-only consumers such as the FUSE view
func (s *Service) FS() *filesystem.FileSystem {
	return s.fs
}

// remoteErr keeps ErrRemoteNotFound matchable and marks everything else as
// ErrRemoteUnavailable
func remoteErr(err error) error {
	if errors.Is(err, mirrorfs.ErrRemoteNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
}

func (s *Service) logReport(op, p string, report mirrorfs.Report) {
	if report.Clean() {
		return
	}
	logger := util.GetLogger("Service")
	for _, w := range report.Warnings {
		logger.Warn().Err(w.Err).Str("op", op).Str("path", p).Str("mirror", string(w.Mirror)).
			Str("mirror_op", w.Op).Msg("Mirror call failed")
	}
}

// CreateDirectory adds the directory at p to the tree and mirrors it on disk.
// An existing entry yields filesystem.ErrAlreadyExists.
func (s *Service) CreateDirectory(ctx context.Context, p string) (mirrorfs.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report mirrorfs.Report
	if err := s.fs.CreateDirectory(p); err != nil {
		if errors.Is(err, filesystem.ErrAlreadyExists) {
			logger := util.GetLogger("Service.CreateDirectory")
			logger.Info().Str("path", p).Msg("Directory already exists")
		}
		return report, err
	}

	parts, _ := filesystem.SplitPath(p)
	report.Warn(mirrorfs.DiskMirror, "mkdir", s.disk.Path(parts...), s.disk.MkdirAll(parts))
	s.logReport("mkdir", p, report)
	s.events.Emit(event.FSChangedEvent{Op: "mkdir", Paths: []string{filesystem.JoinPath(parts)}})
	return report, nil
}

// CreateFile adds an empty file (or keeps an existing one) and mirrors it
func (s *Service) CreateFile(ctx context.Context, p string) (mirrorfs.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.CreateFile(p); err != nil {
		return mirrorfs.Report{}, err
	}
	return s.mirrorFile(ctx, "create", p), nil
}

// WriteFile replaces the content of the file at p and mirrors it
func (s *Service) WriteFile(ctx context.Context, p, content string) (mirrorfs.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeFile(ctx, p, content)
}

func (s *Service) writeFile(ctx context.Context, p, content string) (mirrorfs.Report, error) {
	if err := s.fs.WriteFile(p, content); err != nil {
		return mirrorfs.Report{}, err
	}
	return s.mirrorFile(ctx, "write", p), nil
}

// AppendFile appends to the file at p and mirrors it
func (s *Service) AppendFile(ctx context.Context, p, content string) (mirrorfs.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.AppendFile(p, content); err != nil {
		return mirrorfs.Report{}, err
	}
	return s.mirrorFile(ctx, "append", p), nil
}

// mirrorFile writes the tree content of p to disk, pushes the physical file
// and records its metadata. The physical file is written from the tree, so
// disk always matches memory after a successful write. Callers hold s.mu.
func (s *Service) mirrorFile(ctx context.Context, op, p string) mirrorfs.Report {
	var report mirrorfs.Report
	parts, _ := filesystem.SplitPath(p)
	treePath := filesystem.JoinPath(parts)

	content, err := s.fs.ReadFile(treePath)
	if err != nil {
		// removed concurrently; nothing left to mirror
		report.Warn(mirrorfs.DiskMirror, op, treePath, err)
		s.logReport(op, p, report)
		return report
	}

	phys, size, err := s.disk.WriteFile(parts, content)
	if err != nil {
		report.Warn(mirrorfs.DiskMirror, "write", phys, err)
		s.logReport(op, p, report)
		s.events.Emit(event.FSChangedEvent{Op: op, Paths: []string{treePath}})
		return report
	}

	pushErr := s.remote.Push(ctx, phys)
	report.Warn(mirrorfs.RemoteMirrorID, "push", phys, pushErr)
	report.Warn(mirrorfs.MetadataMirror, "upsert", phys, s.meta.Upsert(ctx, mirrorfs.FileMetadata{
		Path:         phys,
		Name:         parts[len(parts)-1],
		Size:         size,
		LastModified: s.now(),
	}))

	s.logReport(op, p, report)
	s.events.Emit(event.FSChangedEvent{Op: op, Paths: []string{treePath}})
	if pushErr == nil {
		s.events.Emit(event.RemoteChangedEvent{Op: "push", Names: []string{filepath.Base(phys)}})
	}
	return report
}

// ReadFile returns the content of the file at p
func (s *Service) ReadFile(p string) (string, error) {
	return s.fs.ReadFile(p)
}

// DeleteLocal removes p from the tree and from disk. The remote copy is kept;
// use DeleteCloud to remove it.
func (s *Service) DeleteLocal(ctx context.Context, p string) (mirrorfs.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report mirrorfs.Report
	if err := s.fs.DeleteEntry(p); err != nil {
		return report, err
	}

	parts, _ := filesystem.SplitPath(p)
	report.Warn(mirrorfs.DiskMirror, "remove", s.disk.Path(parts...), s.disk.Remove(parts))
	s.logReport("delete", p, report)
	s.events.Emit(event.FSChangedEvent{Op: "delete", Paths: []string{filesystem.JoinPath(parts)}})
	return report, nil
}

// List describes the children of the directory at p in name order
func (s *Service) List(p string) ([]mirrorfs.NodeInfo, error) {
	names, err := s.fs.ListChildren(p)
	if err != nil {
		return nil, err
	}
	parts, _ := filesystem.SplitPath(p)

	infos := make([]mirrorfs.NodeInfo, 0, len(names))
	for _, name := range names {
		info, err := s.fs.Stat(filesystem.JoinPath(append(parts[:len(parts):len(parts)], name)))
		if err != nil {
			// removed between list and stat
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Tree returns a detached copy of the whole tree
func (s *Service) Tree() *filesystem.Node {
	return s.fs.Snapshot()
}

// Reload replaces the tree with its persisted snapshot
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Load(); err != nil {
		return err
	}
	s.events.Emit(event.FSReloadedEvent{})
	return nil
}

// DeleteCloud removes the remote object named after the base name of p and
// returns that name. The local tree is untouched.
func (s *Service) DeleteCloud(ctx context.Context, p string) (string, error) {
	name := path.Base("/" + p)
	if name == "/" {
		return "", fmt.Errorf("delete %q: %w", p, filesystem.ErrInvalidPath)
	}
	if err := s.remote.Delete(ctx, name); err != nil {
		return name, remoteErr(err)
	}
	logger := util.GetLogger("Service.DeleteCloud")
	logger.Info().Str("name", name).Msg("Deleted remote object")
	s.events.Emit(event.RemoteChangedEvent{Op: "delete", Names: []string{name}})
	return name, nil
}

// Download fetches one remote object into the downloads folder and merges
// that folder into the tree under the same name.
func (s *Service) Download(ctx context.Context, name string) (mirrorfs.Report, error) {
	base := path.Base("/" + name)
	if base == "/" {
		return mirrorfs.Report{}, fmt.Errorf("download %q: %w", name, filesystem.ErrInvalidPath)
	}
	name = base

	s.mu.Lock()
	defer s.mu.Unlock()

	dirParts, err := filesystem.SplitPath(s.cfg.DownloadsDir)
	if err != nil {
		return mirrorfs.Report{}, err
	}
	saveDir := s.disk.Path(dirParts...)
	if _, err := s.remote.Fetch(ctx, name, saveDir); err != nil {
		return mirrorfs.Report{}, remoteErr(err)
	}

	report, err := s.fs.Import(s.disk.Fs(), saveDir, s.cfg.DownloadsDir)
	if err != nil {
		return report, err
	}
	s.logReport("download", name, report)
	s.events.Emit(event.FSChangedEvent{Op: "import", Paths: []string{filesystem.JoinPath(dirParts)}})
	return report, nil
}

// RestoreAll fetches every remote object into the restore folder and merges
// that folder into the tree. Objects that fail to download are reported as
// warnings; failing to enumerate the remote is an error.
func (s *Service) RestoreAll(ctx context.Context) (mirrorfs.Report, error) {
	var report mirrorfs.Report
	logger := util.GetLogger("Service.RestoreAll")

	dirParts, err := filesystem.SplitPath(s.cfg.RestoreDir)
	if err != nil {
		return report, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.remote.List(ctx)
	if err != nil {
		return report, remoteErr(err)
	}

	saveDir := s.disk.Path(dirParts...)
	if err := s.disk.MkdirAll(dirParts); err != nil {
		return report, fmt.Errorf("create %s: %w", saveDir, err)
	}
	for _, entry := range entries {
		if _, err := s.remote.Fetch(ctx, entry.Name, saveDir); err != nil {
			report.Warn(mirrorfs.RemoteMirrorID, "fetch", entry.Name, err)
		}
	}

	imported, err := s.fs.Import(s.disk.Fs(), saveDir, s.cfg.RestoreDir)
	report.Merge(imported)
	if err != nil {
		return report, err
	}
	logger.Info().Int("objects", len(entries)).Int("warnings", len(report.Warnings)).Msg("Restored remote objects")
	s.logReport("restoreall", s.cfg.RestoreDir, report)
	s.events.Emit(event.FSChangedEvent{Op: "import", Paths: []string{filesystem.JoinPath(dirParts)}})
	return report, nil
}

// SyncFolder pushes every physical file below the folder for tree path p.
// It returns how many files were pushed.
func (s *Service) SyncFolder(ctx context.Context, p string) (int, mirrorfs.Report, error) {
	var report mirrorfs.Report
	parts, err := filesystem.SplitPath(p)
	if err != nil {
		return 0, report, fmt.Errorf("sync %s: %w", p, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := s.disk.Files(parts)
	if errors.Is(err, os.ErrNotExist) {
		return 0, report, fmt.Errorf("sync %s: %w", p, filesystem.ErrNotFound)
	}
	if err != nil {
		return 0, report, fmt.Errorf("sync %s: %w: %v", p, filesystem.ErrIOFailure, err)
	}

	pushed := make([]string, 0, len(files))
	for _, f := range files {
		if err := s.remote.Push(ctx, f); err != nil {
			report.Warn(mirrorfs.RemoteMirrorID, "push", f, err)
			continue
		}
		pushed = append(pushed, filepath.Base(f))
	}

	s.logReport("syncfolder", p, report)
	if len(pushed) > 0 {
		s.events.Emit(event.RemoteChangedEvent{Op: "push", Names: pushed})
	}
	return len(pushed), report, nil
}

// Upload stores content as filename in the downloads folder and pushes it
func (s *Service) Upload(ctx context.Context, filename, content string) (mirrorfs.Report, error) {
	if filename == "" || filename != path.Base(filename) || !filesystem.ValidFileName(filename) {
		return mirrorfs.Report{}, fmt.Errorf("upload %q: %w", filename, filesystem.ErrInvalidName)
	}
	p := path.Join(s.cfg.DownloadsDir, filename)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fs.CreateFile(p); err != nil {
		return mirrorfs.Report{}, err
	}
	return s.writeFile(ctx, p, content)
}

// Metadata lists the metadata index
func (s *Service) Metadata(ctx context.Context) ([]mirrorfs.FileMetadata, error) {
	return s.meta.List(ctx)
}

// CloudFiles lists the remote objects
func (s *Service) CloudFiles(ctx context.Context) ([]mirrorfs.RemoteEntry, error) {
	entries, err := s.remote.List(ctx)
	if err != nil {
		return nil, remoteErr(err)
	}
	return entries, nil
}
