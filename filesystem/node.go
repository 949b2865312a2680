package filesystem

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// NodeKind discriminates the two node variants
type NodeKind uint8

const (
	FileKind NodeKind = iota
	DirKind
)

func (k NodeKind) String() string {
	if k == DirKind {
		return "dir"
	}
	return "file"
}

// Node is either a directory holding named children or a file holding string
// content. The kind is fixed at construction.
//
// NOTE: Node is not thread-safe; [FileSystem] guards every node it owns.
type Node struct {
	kind     NodeKind
	content  string           // files only
	children map[string]*Node // directories only
}

// NewDir returns an empty directory node
func NewDir() *Node {
	return &Node{kind: DirKind, children: make(map[string]*Node)}
}

// NewFile returns a file node holding content
func NewFile(content string) *Node {
	return &Node{kind: FileKind, content: content}
}

func (n *Node) Kind() NodeKind {
	return n.kind
}

func (n *Node) IsDir() bool {
	return n.kind == DirKind
}

// Content returns a file's content; always "" for directories
func (n *Node) Content() string {
	return n.content
}

// Size is the content length for files and the number of children for directories
func (n *Node) Size() int64 {
	if n.IsDir() {
		return int64(len(n.children))
	}
	return int64(len(n.content))
}

// Child returns the named child of a directory
func (n *Node) Child(name string) (*Node, bool) {
	child, ok := n.children[name]
	return child, ok
}

// SetChild adds or replaces the named child. Panics on file nodes.
func (n *Node) SetChild(name string, child *Node) {
	if !n.IsDir() {
		panic("filesystem: SetChild on file node")
	}
	n.children[name] = child
}

// RemoveChild detaches the named child along with all of its descendants
func (n *Node) RemoveChild(name string) bool {
	if _, ok := n.children[name]; !ok {
		return false
	}
	delete(n.children, name)
	return true
}

// ChildNames returns the names of a directory's children in sorted order
func (n *Node) ChildNames() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the subtree rooted at n
func (n *Node) Clone() *Node {
	if !n.IsDir() {
		return NewFile(n.content)
	}
	c := NewDir()
	for name, child := range n.children {
		c.children[name] = child.Clone()
	}
	return c
}

// MarshalJSON encodes directories as objects and files as strings
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.IsDir() {
		return json.Marshal(n.children)
	}
	return json.Marshal(n.content)
}

// UnmarshalJSON accepts exactly the shape written by MarshalJSON: nested
// objects for directories and strings for files.
func (n *Node) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty node value")
	}

	switch data[0] {
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*n = *NewDir()
		for name, value := range raw {
			child := &Node{}
			if err := child.UnmarshalJSON(value); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			n.children[name] = child
		}
		return nil
	case '"':
		var content string
		if err := json.Unmarshal(data, &content); err != nil {
			return err
		}
		*n = *NewFile(content)
		return nil
	default:
		return fmt.Errorf("unsupported node value %.20q", data)
	}
}
