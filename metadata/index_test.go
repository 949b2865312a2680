package metadata

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/brettbedarf/mirrorfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(filepath.Join(t.TempDir(), "db", "metadata.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestIndex_UpsertInsertsThenUpdates(t *testing.T) {
	t.Parallel()
	idx := openTestIndex(t)
	ctx := context.Background()

	first := time.Unix(1_700_000_000, 0)
	require.NoError(t, idx.Upsert(ctx, mirrorfs.FileMetadata{
		Path: "data/a/note.txt", Name: "note.txt", Size: 5, LastModified: first,
	}))

	second := first.Add(time.Hour)
	require.NoError(t, idx.Upsert(ctx, mirrorfs.FileMetadata{
		Path: "data/a/note.txt", Name: "note.txt", Size: 12, LastModified: second,
	}))

	rows, err := idx.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1, "path is unique")
	assert.Equal(t, int64(12), rows[0].Size)
	assert.Equal(t, second.Unix(), rows[0].LastModified.Unix())
	assert.Equal(t, "note.txt", rows[0].Name)
}

func TestIndex_ListOrderedByPath(t *testing.T) {
	t.Parallel()
	idx := openTestIndex(t)
	ctx := context.Background()

	for _, p := range []string{"data/z.txt", "data/a.txt", "data/m/b.txt"} {
		require.NoError(t, idx.Upsert(ctx, mirrorfs.FileMetadata{
			Path: p, Name: filepath.Base(p), LastModified: time.Now(),
		}))
	}

	rows, err := idx.List(ctx)
	require.NoError(t, err)
	paths := make([]string, 0, len(rows))
	for _, r := range rows {
		paths = append(paths, r.Path)
	}
	assert.Equal(t, []string{"data/a.txt", "data/m/b.txt", "data/z.txt"}, paths)
}

func TestIndex_Get(t *testing.T) {
	t.Parallel()
	idx := openTestIndex(t)
	ctx := context.Background()

	_, err := idx.Get(ctx, "data/missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, idx.Upsert(ctx, mirrorfs.FileMetadata{
		Path: "data/x.md", Name: "x.md", Size: 3, LastModified: time.Unix(1_600_000_000, 0),
	}))
	md, err := idx.Get(ctx, "data/x.md")
	require.NoError(t, err)
	assert.Equal(t, int64(3), md.Size)
	assert.Equal(t, int64(1_600_000_000), md.LastModified.Unix())
}

func TestIndex_PersistsAcrossOpen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "metadata.db")
	ctx := context.Background()

	idx, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(ctx, mirrorfs.FileMetadata{Path: "p.txt", Name: "p.txt", Size: 1, LastModified: time.Now()}))
	require.NoError(t, idx.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	rows, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestReadable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "N/A", Readable(time.Time{}))
	assert.Equal(t, "N/A", Readable(time.Unix(0, 0)))

	ts := time.Date(2024, 3, 9, 14, 5, 6, 0, time.Local)
	assert.Equal(t, "2024-03-09 14:05:06", Readable(ts))
}
