package filesystem

import (
	"errors"
	"fmt"
	"sync"

	"github.com/brettbedarf/mirrorfs"
	"github.com/brettbedarf/mirrorfs/internal/util"
)

// FileSystem is the authoritative in-memory tree. Every mutation is flushed
// to the snapshot before it returns, so the snapshot always matches the tree
// after a successful call.
//
// A single RWMutex covers resolve, mutate and flush; reads share it.
type FileSystem struct {
	mu        sync.RWMutex
	root      *Node
	persister *Persister // nil keeps the tree in memory only
}

// NewFS creates an empty tree persisted through p. A nil p disables
// persistence, which is what most tests want.
func NewFS(p *Persister) *FileSystem {
	return &FileSystem{root: NewDir(), persister: p}
}

// Load replaces the tree with the persisted snapshot. A missing or empty
// snapshot leaves an empty root.
func (fs *FileSystem) Load() error {
	logger := util.GetLogger("FS.Load")
	if fs.persister == nil {
		return nil
	}

	root, found, err := fs.persister.Load()
	if err != nil {
		logger.Error().Err(err).Str("snapshot", fs.persister.Path()).Msg("Failed to load snapshot")
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !found {
		logger.Info().Str("snapshot", fs.persister.Path()).Msg("No snapshot found; starting empty")
		fs.root = NewDir()
		return nil
	}
	fs.root = root
	logger.Debug().Str("snapshot", fs.persister.Path()).Int64("entries", root.Size()).Msg("Loaded snapshot")
	return nil
}

// Flush writes the current tree to the snapshot
func (fs *FileSystem) Flush() error {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.flushLocked()
}

func (fs *FileSystem) flushLocked() error {
	if fs.persister == nil {
		return nil
	}
	if err := fs.persister.Save(fs.root); err != nil {
		logger := util.GetLogger("FS.Flush")
		logger.Error().Err(err).Str("snapshot", fs.persister.Path()).Msg("Failed to write snapshot")
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return nil
}

// resolveParent walks every segment except the last and returns the directory
// that holds (or would hold) the terminal entry. With createMissing set,
// absent directories are created along the way. A file standing where a
// directory is needed yields ErrNotADirectory.
//
// Creation only begins once a segment is absent, and everything below it is
// new and empty, so a failed walk never leaves partial directories behind.
func (fs *FileSystem) resolveParent(parts []string, createMissing bool) (*Node, error) {
	cur := fs.root
	for _, seg := range parts[:len(parts)-1] {
		next, ok := cur.Child(seg)
		if !ok {
			if !createMissing {
				return nil, ErrNotFound
			}
			next = NewDir()
			cur.SetChild(seg, next)
		} else if !next.IsDir() {
			return nil, ErrNotADirectory
		}
		cur = next
	}
	return cur, nil
}

// lookup returns the node addressed by parts; an empty parts is the root
func (fs *FileSystem) lookup(parts []string) (*Node, error) {
	if len(parts) == 0 {
		return fs.root, nil
	}
	parent, err := fs.resolveParent(parts, false)
	if err != nil {
		return nil, err
	}
	node, ok := parent.Child(parts[len(parts)-1])
	if !ok {
		return nil, ErrNotFound
	}
	return node, nil
}

// CreateDirectory creates the directory at p along with any missing ancestors,
// like `mkdir -p`. An existing entry at p yields ErrAlreadyExists and leaves
// the tree untouched.
func (fs *FileSystem) CreateDirectory(p string) error {
	const op = "mkdir"
	logger := util.GetLogger("FS.CreateDirectory")

	parts, err := SplitPath(p)
	if err != nil {
		return pathErr(op, p, err)
	}
	if len(parts) == 0 {
		return pathErr(op, p, ErrAlreadyExists)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, err := fs.resolveParent(parts, true)
	if err != nil {
		logger.Debug().Err(err).Str("path", p).Msg("Cannot resolve parent")
		return pathErr(op, p, err)
	}
	name := parts[len(parts)-1]
	if _, ok := parent.Child(name); ok {
		return pathErr(op, p, ErrAlreadyExists)
	}
	parent.SetChild(name, NewDir())

	if err := fs.flushLocked(); err != nil {
		return pathErr(op, p, err)
	}
	logger.Debug().Str("path", p).Msg("Created directory")
	return nil
}

// CreateFile creates an empty file at p, creating missing ancestors. The final
// segment must carry an extension. Re-creating an existing file leaves its
// content untouched.
func (fs *FileSystem) CreateFile(p string) error {
	const op = "create"
	logger := util.GetLogger("FS.CreateFile")

	parts, err := SplitPath(p)
	if err != nil {
		return pathErr(op, p, err)
	}
	if len(parts) == 0 {
		return pathErr(op, p, ErrInvalidPath)
	}
	name := parts[len(parts)-1]
	if !ValidFileName(name) {
		return pathErr(op, p, ErrInvalidName)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, err := fs.resolveParent(parts, true)
	if err != nil {
		if errors.Is(err, ErrNotADirectory) {
			// a file in the middle of the path makes the whole path unusable
			err = ErrInvalidPath
		}
		logger.Debug().Err(err).Str("path", p).Msg("Cannot resolve parent")
		return pathErr(op, p, err)
	}
	existing, ok := parent.Child(name)
	switch {
	case ok && existing.IsDir():
		return pathErr(op, p, ErrIsADirectory)
	case !ok:
		parent.SetChild(name, NewFile(""))
	}

	if err := fs.flushLocked(); err != nil {
		return pathErr(op, p, err)
	}
	logger.Debug().Str("path", p).Msg("Created file")
	return nil
}

// WriteFile replaces the content of the existing file at p
func (fs *FileSystem) WriteFile(p, content string) error {
	return fs.updateFile("write", p, func(old string) string { return content })
}

// AppendFile concatenates content onto the existing file at p
func (fs *FileSystem) AppendFile(p, content string) error {
	return fs.updateFile("append", p, func(old string) string { return old + content })
}

func (fs *FileSystem) updateFile(op, p string, update func(old string) string) error {
	logger := util.GetLogger("FS.UpdateFile")

	parts, err := SplitPath(p)
	if err != nil {
		return pathErr(op, p, err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	node, err := fs.lookup(parts)
	if err != nil {
		return pathErr(op, p, err)
	}
	if node.IsDir() {
		return pathErr(op, p, ErrIsADirectory)
	}
	parent, _ := fs.resolveParent(parts, false)
	parent.SetChild(parts[len(parts)-1], NewFile(update(node.Content())))

	if err := fs.flushLocked(); err != nil {
		return pathErr(op, p, err)
	}
	logger.Debug().Str("op", op).Str("path", p).Msg("Updated file")
	return nil
}

// ReadFile returns the content of the file at p
func (fs *FileSystem) ReadFile(p string) (string, error) {
	const op = "read"
	parts, err := SplitPath(p)
	if err != nil {
		return "", pathErr(op, p, err)
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	node, err := fs.lookup(parts)
	if err != nil {
		return "", pathErr(op, p, err)
	}
	if node.IsDir() {
		return "", pathErr(op, p, ErrIsADirectory)
	}
	return node.Content(), nil
}

// DeleteEntry removes the file or directory at p. Directories are removed
// with all of their descendants.
func (fs *FileSystem) DeleteEntry(p string) error {
	const op = "delete"
	logger := util.GetLogger("FS.DeleteEntry")

	parts, err := SplitPath(p)
	if err != nil {
		return pathErr(op, p, err)
	}
	if len(parts) == 0 {
		// the root is not an entry
		return pathErr(op, p, ErrInvalidPath)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, err := fs.resolveParent(parts, false)
	if err != nil {
		return pathErr(op, p, err)
	}
	if !parent.RemoveChild(parts[len(parts)-1]) {
		return pathErr(op, p, ErrNotFound)
	}

	if err := fs.flushLocked(); err != nil {
		return pathErr(op, p, err)
	}
	logger.Debug().Str("path", p).Msg("Deleted entry")
	return nil
}

// ListChildren returns the sorted names of the entries directly under the
// directory at p. An empty p lists the root.
func (fs *FileSystem) ListChildren(p string) ([]string, error) {
	const op = "list"
	parts, err := SplitPath(p)
	if err != nil {
		return nil, pathErr(op, p, err)
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	node, err := fs.lookup(parts)
	if err != nil {
		return nil, pathErr(op, p, err)
	}
	if !node.IsDir() {
		return nil, pathErr(op, p, ErrNotADirectory)
	}
	return node.ChildNames(), nil
}

// Stat describes the entry at p. An empty p describes the root.
func (fs *FileSystem) Stat(p string) (mirrorfs.NodeInfo, error) {
	parts, err := SplitPath(p)
	if err != nil {
		return mirrorfs.NodeInfo{}, pathErr("stat", p, err)
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	node, err := fs.lookup(parts)
	if err != nil {
		return mirrorfs.NodeInfo{}, pathErr("stat", p, err)
	}
	info := mirrorfs.NodeInfo{
		Path: JoinPath(parts),
		Type: mirrorfs.FileNodeType,
		Size: node.Size(),
	}
	if len(parts) > 0 {
		info.Name = parts[len(parts)-1]
	}
	if node.IsDir() {
		info.Type = mirrorfs.DirNodeType
	}
	return info, nil
}

// Snapshot returns a deep copy of the whole tree, safe to use after the lock
// is released.
func (fs *FileSystem) Snapshot() *Node {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.root.Clone()
}
