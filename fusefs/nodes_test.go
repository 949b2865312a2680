package fusefs

import (
	"context"
	"fmt"
	"syscall"
	"testing"

	"github.com/brettbedarf/mirrorfs/filesystem"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoot(t *testing.T) (*node, *filesystem.FileSystem) {
	t.Helper()
	store := filesystem.NewFS(nil)
	require.NoError(t, store.CreateDirectory("docs/empty"))
	require.NoError(t, store.CreateFile("docs/a.txt"))
	require.NoError(t, store.WriteFile("docs/a.txt", "hello world"))

	root := newRoot(store)
	// attaches the root to a bridge so Lookup can create child inodes
	fs.NewNodeFS(root, &fs.Options{})
	return root, store
}

func lookup(t *testing.T, parent *node, name string) *node {
	t.Helper()
	var out fuse.EntryOut
	inode, errno := parent.Lookup(context.Background(), name, &out)
	require.Equal(t, fs.OK, errno)
	child, ok := inode.Operations().(*node)
	require.True(t, ok)
	return child
}

func TestNode_LookupAndGetattr(t *testing.T) {
	t.Parallel()
	root, _ := newTestRoot(t)
	ctx := context.Background()

	docs := lookup(t, root, "docs")
	assert.Equal(t, "docs", docs.path)

	var out fuse.EntryOut
	_, errno := docs.Lookup(ctx, "a.txt", &out)
	require.Equal(t, fs.OK, errno)
	assert.Equal(t, uint32(fileMode), out.Mode)
	assert.Equal(t, uint64(len("hello world")), out.Size)

	var attr fuse.AttrOut
	assert.Equal(t, fs.OK, docs.Getattr(ctx, nil, &attr))
	assert.Equal(t, uint32(dirMode), attr.Mode)

	_, errno = docs.Lookup(ctx, "missing.txt", &out)
	assert.Equal(t, syscall.ENOENT, errno)
}

func TestNode_Readdir(t *testing.T) {
	t.Parallel()
	root, _ := newTestRoot(t)
	docs := lookup(t, root, "docs")

	stream, errno := docs.Readdir(context.Background())
	require.Equal(t, fs.OK, errno)
	var got []fuse.DirEntry
	for stream.HasNext() {
		e, errno := stream.Next()
		require.Equal(t, fs.OK, errno)
		got = append(got, e)
	}
	require.Len(t, got, 2)
	assert.Equal(t, "a.txt", got[0].Name)
	assert.Equal(t, uint32(fuse.S_IFREG), got[0].Mode)
	assert.Equal(t, "empty", got[1].Name)
	assert.Equal(t, uint32(fuse.S_IFDIR), got[1].Mode)
}

func TestNode_ReadFollowsLiveTree(t *testing.T) {
	t.Parallel()
	root, store := newTestRoot(t)
	ctx := context.Background()
	file := lookup(t, lookup(t, root, "docs"), "a.txt")

	_, _, errno := file.Open(ctx, syscall.O_RDONLY)
	require.Equal(t, fs.OK, errno)

	buf := make([]byte, 5)
	res, errno := file.Read(ctx, nil, buf, 6)
	require.Equal(t, fs.OK, errno)
	data, status := res.Bytes(buf)
	require.True(t, status.Ok())
	assert.Equal(t, "world", string(data))

	res, errno = file.Read(ctx, nil, buf, 100)
	require.Equal(t, fs.OK, errno)
	data, _ = res.Bytes(buf)
	assert.Empty(t, data)

	require.NoError(t, store.AppendFile("docs/a.txt", "!"))
	res, errno = file.Read(ctx, nil, make([]byte, 64), 0)
	require.Equal(t, fs.OK, errno)
	data, _ = res.Bytes(nil)
	assert.Equal(t, "hello world!", string(data))
}

func TestNode_OpenRejectsWrites(t *testing.T) {
	t.Parallel()
	root, _ := newTestRoot(t)
	file := lookup(t, lookup(t, root, "docs"), "a.txt")

	_, _, errno := file.Open(context.Background(), syscall.O_WRONLY)
	assert.Equal(t, syscall.EROFS, errno)
	_, _, errno = file.Open(context.Background(), syscall.O_RDWR)
	assert.Equal(t, syscall.EROFS, errno)
}

func TestToErrno(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want syscall.Errno
	}{
		{fmt.Errorf("read x: %w", filesystem.ErrNotFound), syscall.ENOENT},
		{filesystem.ErrNotADirectory, syscall.ENOTDIR},
		{filesystem.ErrIsADirectory, syscall.EISDIR},
		{filesystem.ErrInvalidPath, syscall.EINVAL},
		{filesystem.ErrIOFailure, syscall.EIO},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, toErrno(tt.err), tt.err.Error())
	}
}
