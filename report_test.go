package mirrorfs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_Warn(t *testing.T) {
	t.Parallel()

	var r Report
	assert.True(t, r.Clean())
	assert.Equal(t, "ok", r.String())

	r.Warn(RemoteMirrorID, "push", "a/b.txt", nil)
	assert.True(t, r.Clean(), "nil errors must not be recorded")

	cause := errors.New("quota exceeded")
	r.Warn(RemoteMirrorID, "push", "a/b.txt", cause)
	require.Len(t, r.Warnings, 1)
	assert.False(t, r.Clean())
	assert.ErrorIs(t, r.Warnings[0], cause)
	assert.Equal(t, "remote push a/b.txt: quota exceeded", r.String())
}

func TestReport_Merge(t *testing.T) {
	t.Parallel()

	var a, b Report
	a.Warn(DiskMirror, "write", "x.txt", errors.New("disk full"))
	b.Warn(MetadataMirror, "upsert", "x.txt", errors.New("locked"))

	a.Merge(b)
	require.Len(t, a.Warnings, 2)
	assert.Equal(t, DiskMirror, a.Warnings[0].Mirror)
	assert.Equal(t, MetadataMirror, a.Warnings[1].Mirror)
	assert.Equal(t, "disk write x.txt: disk full; metadata upsert x.txt: locked", a.String())
}
