package fusefs

import (
	"context"
	"errors"
	"syscall"

	"github.com/brettbedarf/mirrorfs"
	"github.com/brettbedarf/mirrorfs/filesystem"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

const (
	dirMode  = fuse.S_IFDIR | 0o555
	fileMode = fuse.S_IFREG | 0o444
)

// node is one tree path. Every call resolves the path against the live tree,
// so the mount reflects changes made through HTTP or the shell.
type node struct {
	fs.Inode
	store *filesystem.FileSystem
	path  string
}

var (
	_ fs.NodeGetattrer = (*node)(nil)
	_ fs.NodeLookuper  = (*node)(nil)
	_ fs.NodeReaddirer = (*node)(nil)
	_ fs.NodeOpener    = (*node)(nil)
	_ fs.NodeReader    = (*node)(nil)
)

func newRoot(store *filesystem.FileSystem) *node {
	return &node{store: store}
}

func (n *node) child(name string) string {
	if n.path == "" {
		return name
	}
	return n.path + "/" + name
}

func fillAttr(attr *fuse.Attr, info mirrorfs.NodeInfo) {
	if info.IsDir() {
		attr.Mode = dirMode
		attr.Nlink = 2
		return
	}
	attr.Mode = fileMode
	attr.Nlink = 1
	attr.Size = uint64(info.Size)
	attr.Blocks = (attr.Size + 511) / 512
}

func (n *node) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	info, err := n.store.Stat(n.path)
	if err != nil {
		return toErrno(err)
	}
	fillAttr(&out.Attr, info)
	return fs.OK
}

func (n *node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	p := n.child(name)
	info, err := n.store.Stat(p)
	if err != nil {
		return nil, toErrno(err)
	}
	fillAttr(&out.Attr, info)

	mode := uint32(fuse.S_IFREG)
	if info.IsDir() {
		mode = fuse.S_IFDIR
	}
	return n.NewInode(ctx, &node{store: n.store, path: p}, fs.StableAttr{Mode: mode}), fs.OK
}

func (n *node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	names, err := n.store.ListChildren(n.path)
	if err != nil {
		return nil, toErrno(err)
	}
	entries := make([]fuse.DirEntry, 0, len(names))
	for _, name := range names {
		info, err := n.store.Stat(n.child(name))
		if err != nil {
			continue
		}
		mode := uint32(fuse.S_IFREG)
		if info.IsDir() {
			mode = fuse.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{Name: name, Mode: mode})
	}
	return fs.NewListDirStream(entries), fs.OK
}

// Open only allows read access
func (n *node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&syscall.O_ACCMODE != syscall.O_RDONLY {
		return nil, 0, syscall.EROFS
	}
	if _, err := n.store.ReadFile(n.path); err != nil {
		return nil, 0, toErrno(err)
	}
	return nil, fuse.FOPEN_DIRECT_IO, fs.OK
}

func (n *node) Read(ctx context.Context, fh fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	content, err := n.store.ReadFile(n.path)
	if err != nil {
		return nil, toErrno(err)
	}
	if off >= int64(len(content)) {
		return fuse.ReadResultData(nil), fs.OK
	}
	end := off + int64(len(dest))
	if end > int64(len(content)) {
		end = int64(len(content))
	}
	return fuse.ReadResultData([]byte(content[off:end])), fs.OK
}

func toErrno(err error) syscall.Errno {
	switch {
	case errors.Is(err, filesystem.ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, filesystem.ErrNotADirectory):
		return syscall.ENOTDIR
	case errors.Is(err, filesystem.ErrIsADirectory):
		return syscall.EISDIR
	case errors.Is(err, filesystem.ErrInvalidPath), errors.Is(err, filesystem.ErrInvalidName):
		return syscall.EINVAL
	default:
		return syscall.EIO
	}
}
