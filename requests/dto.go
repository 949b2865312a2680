package requests

import "github.com/brettbedarf/mirrorfs"

// NodeRequestDTO is the JSON representation of [mirrorfs.NodeRequest]
type NodeRequestDTO struct {
	Path    string            `json:"path"`
	Type    mirrorfs.NodeType `json:"type"`
	ID      *string           `json:"id,omitempty"`      // Optional id echoed in logs (Default random UUID)
	Content *string           `json:"content,omitempty"` // Initial file content; rejected for directories
}
