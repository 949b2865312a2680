package filesystem

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_Variants(t *testing.T) {
	t.Parallel()

	dir := NewDir()
	assert.True(t, dir.IsDir())
	assert.Equal(t, DirKind, dir.Kind())
	assert.Equal(t, "dir", dir.Kind().String())
	assert.Equal(t, int64(0), dir.Size())

	file := NewFile("hello")
	assert.False(t, file.IsDir())
	assert.Equal(t, "file", file.Kind().String())
	assert.Equal(t, "hello", file.Content())
	assert.Equal(t, int64(5), file.Size())
	assert.Panics(t, func() { file.SetChild("x", NewDir()) })
}

func TestNode_Children(t *testing.T) {
	t.Parallel()

	dir := NewDir()
	dir.SetChild("b.txt", NewFile(""))
	dir.SetChild("a", NewDir())
	dir.SetChild("c.md", NewFile("x"))

	assert.Equal(t, []string{"a", "b.txt", "c.md"}, dir.ChildNames())
	child, ok := dir.Child("c.md")
	require.True(t, ok)
	assert.Equal(t, "x", child.Content())

	assert.True(t, dir.RemoveChild("a"))
	assert.False(t, dir.RemoveChild("a"))
	_, ok = dir.Child("a")
	assert.False(t, ok)
	assert.Equal(t, int64(2), dir.Size())
}

func TestNode_CloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := NewDir()
	sub := NewDir()
	sub.SetChild("f.txt", NewFile("v1"))
	orig.SetChild("sub", sub)

	clone := orig.Clone()
	sub.SetChild("f.txt", NewFile("v2"))
	sub.SetChild("g.txt", NewFile(""))

	cloneSub, ok := clone.Child("sub")
	require.True(t, ok)
	f, _ := cloneSub.Child("f.txt")
	assert.Equal(t, "v1", f.Content())
	assert.Equal(t, []string{"f.txt"}, cloneSub.ChildNames())
}

func TestNode_JSONShape(t *testing.T) {
	t.Parallel()

	root := NewDir()
	docs := NewDir()
	docs.SetChild("a.txt", NewFile("hi"))
	docs.SetChild("empty", NewDir())
	root.SetChild("docs", docs)

	data, err := json.Marshal(root)
	require.NoError(t, err)
	assert.JSONEq(t, `{"docs":{"a.txt":"hi","empty":{}}}`, string(data))

	var decoded Node
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, root, &decoded)
}

func TestNode_UnmarshalRejectsOtherValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"number file", `{"a.txt":1}`},
		{"null file", `{"a.txt":null}`},
		{"array dir", `{"a":[]}`},
		{"nested bool", `{"a":{"b":true}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var n Node
			assert.Error(t, json.Unmarshal([]byte(tt.doc), &n))
		})
	}
}
