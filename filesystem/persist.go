package filesystem

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Persister stores the whole tree as a single JSON document: directories are
// objects keyed by child name and files are strings.
type Persister struct {
	fs   afero.Fs
	path string
}

func NewPersister(fs afero.Fs, path string) *Persister {
	return &Persister{fs: fs, path: path}
}

// Path is the snapshot location on the persister's filesystem
func (p *Persister) Path() string {
	return p.path
}

// Save overwrites the snapshot with root
func (p *Persister) Save(root *Node) error {
	data, err := json.Marshal(root)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(p.path); dir != "." {
		if err := p.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return afero.WriteFile(p.fs, p.path, data, 0o644)
}

// Load decodes the snapshot. found is false when the snapshot is missing or
// empty, which is not an error.
func (p *Persister) Load() (root *Node, found bool, err error) {
	data, err := afero.ReadFile(p.fs, p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(data) == 0 {
		return nil, false, nil
	}

	root = &Node{}
	if err := json.Unmarshal(data, root); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	if !root.IsDir() {
		return nil, false, fmt.Errorf("decode snapshot: root must be an object")
	}
	return root, true, nil
}
