package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/brettbedarf/mirrorfs"
	"github.com/brettbedarf/mirrorfs/internal/util"
	"github.com/spf13/afero"
)

// Import merges the directory tree at localDir on src into the tree under
// mountPath. Files that are unreadable or not valid UTF-8 are imported with
// empty content. Entries that collide with an existing node of the other kind
// are skipped and reported as warnings. The tree is flushed once at the end.
func (fs *FileSystem) Import(src afero.Fs, localDir, mountPath string) (mirrorfs.Report, error) {
	const op = "import"
	logger := util.GetLogger("FS.Import")
	var report mirrorfs.Report

	mountParts, err := SplitPath(mountPath)
	if err != nil {
		return report, pathErr(op, mountPath, err)
	}
	info, err := src.Stat(localDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return report, pathErr(op, localDir, ErrNotFound)
		}
		return report, pathErr(op, localDir, fmt.Errorf("%w: %v", ErrIOFailure, err))
	}
	if !info.IsDir() {
		return report, pathErr(op, localDir, ErrNotADirectory)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, err := fs.ensureDir(mountParts); err != nil {
		return report, pathErr(op, mountPath, err)
	}

	imported := 0
	walkErr := afero.Walk(src, localDir, func(p string, fi os.FileInfo, err error) error {
		rel, relErr := filepath.Rel(localDir, p)
		if relErr != nil || rel == "." {
			return nil
		}
		parts := append(append([]string{}, mountParts...), strings.Split(filepath.ToSlash(rel), "/")...)
		treePath := JoinPath(parts)

		if err != nil {
			report.Warn(mirrorfs.DiskMirror, op, p, err)
			if fi != nil && fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if fi.IsDir() {
			if _, err := fs.ensureDir(parts); err != nil {
				report.Warn(mirrorfs.DiskMirror, op, treePath, err)
				return filepath.SkipDir
			}
			return nil
		}

		parent, err := fs.ensureDir(parts[:len(parts)-1])
		if err != nil {
			report.Warn(mirrorfs.DiskMirror, op, treePath, err)
			return nil
		}
		name := parts[len(parts)-1]
		if existing, ok := parent.Child(name); ok && existing.IsDir() {
			report.Warn(mirrorfs.DiskMirror, op, treePath, ErrIsADirectory)
			return nil
		}
		parent.SetChild(name, NewFile(readText(src, p)))
		imported++
		return nil
	})
	if walkErr != nil {
		return report, pathErr(op, localDir, fmt.Errorf("%w: %v", ErrIOFailure, walkErr))
	}

	if err := fs.flushLocked(); err != nil {
		return report, pathErr(op, mountPath, err)
	}
	logger.Info().Str("source", localDir).Str("mount", mountPath).Int("files", imported).
		Int("warnings", len(report.Warnings)).Msg("Imported directory")
	return report, nil
}

// ensureDir walks parts from the root creating missing directories and
// returns the last one. Caller must hold the write lock.
func (fs *FileSystem) ensureDir(parts []string) (*Node, error) {
	if len(parts) == 0 {
		return fs.root, nil
	}
	parent, err := fs.resolveParent(parts, true)
	if err != nil {
		return nil, err
	}
	name := parts[len(parts)-1]
	node, ok := parent.Child(name)
	if !ok {
		node = NewDir()
		parent.SetChild(name, node)
	} else if !node.IsDir() {
		return nil, ErrNotADirectory
	}
	return node, nil
}

func readText(src afero.Fs, p string) string {
	data, err := afero.ReadFile(src, p)
	if err != nil || !utf8.Valid(data) {
		return ""
	}
	return string(data)
}
