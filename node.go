package mirrorfs

// NodeType valid types are FileNodeType "file", DirNodeType "dir"
type NodeType string

const (
	FileNodeType NodeType = "file"
	DirNodeType  NodeType = "dir"
)

// NodeInfo is a read-only description of a tree node for external consumers
type NodeInfo struct {
	Name string   `json:"name"`
	Path string   `json:"path"`
	Type NodeType `json:"type"`
	Size int64    `json:"size"` // content length in bytes for files, child count for directories
}

// IsDir reports whether the node is a directory
func (n NodeInfo) IsDir() bool {
	return n.Type == DirNodeType
}
