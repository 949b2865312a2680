package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr error
	}{
		{"empty is root", "", []string{}, nil},
		{"slash is root", "/", []string{}, nil},
		{"simple", "a/b/c.txt", []string{"a", "b", "c.txt"}, nil},
		{"leading and trailing", "/a/b/", []string{"a", "b"}, nil},
		{"repeated slashes", "a//b///c", []string{"a", "b", "c"}, nil},
		{"dot", "a/./b", nil, ErrInvalidPath},
		{"dotdot", "../etc/passwd", nil, ErrInvalidPath},
		{"dotted names are fine", "a/.hidden/b..txt", []string{"a", ".hidden", "b..txt"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := SplitPath(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidFileName(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidFileName("note.txt"))
	assert.True(t, ValidFileName("archive.tar.gz"))
	assert.True(t, ValidFileName(".env"))
	assert.False(t, ValidFileName("README"))
	assert.False(t, ValidFileName("trailing."))
	assert.False(t, ValidFileName(""))
}
