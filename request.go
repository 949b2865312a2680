package mirrorfs

// NodeRequest asks for a node to be created in the tree. It is passed from
// entrypoints (seed files, cli, web api) to the service layer.
type NodeRequest struct {
	ID      string // correlation id for logs
	Path    string
	Type    NodeType
	Content string // initial content; files only
}
