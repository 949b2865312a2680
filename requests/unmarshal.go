package requests

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/brettbedarf/mirrorfs"
	"github.com/brettbedarf/mirrorfs/internal/util"
)

// GetNodeType extracts the node type from JSON without full unmarshaling
func GetNodeType(data []byte) (mirrorfs.NodeType, error) {
	var meta struct {
		Type mirrorfs.NodeType `json:"type"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", err
	}
	return meta.Type, nil
}

// UnmarshalNodeRequest decodes and validates one node definition
func UnmarshalNodeRequest(data []byte) (mirrorfs.NodeRequest, error) {
	nodeType, err := GetNodeType(data)
	if err != nil {
		return mirrorfs.NodeRequest{}, err
	}
	switch nodeType {
	case mirrorfs.FileNodeType, mirrorfs.DirNodeType:
	default:
		return mirrorfs.NodeRequest{}, fmt.Errorf("unknown node type %q", nodeType)
	}

	var dto NodeRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return mirrorfs.NodeRequest{}, err
	}
	if dto.Path == "" {
		return mirrorfs.NodeRequest{}, fmt.Errorf("%s request without path", nodeType)
	}
	if nodeType == mirrorfs.DirNodeType && dto.Content != nil {
		return mirrorfs.NodeRequest{}, fmt.Errorf("dir request %s has content", dto.Path)
	}
	return convertNodeDTO(dto), nil
}

// UnmarshalSeed decodes a JSON array of node definitions. Directories are
// ordered before files; otherwise input order is kept.
func UnmarshalSeed(data []byte) ([]mirrorfs.NodeRequest, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("seed must be a JSON array: %w", err)
	}

	reqs := make([]mirrorfs.NodeRequest, 0, len(raws))
	for i, raw := range raws {
		req, err := UnmarshalNodeRequest(raw)
		if err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
		reqs = append(reqs, req)
	}
	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].Type == mirrorfs.DirNodeType && reqs[j].Type != mirrorfs.DirNodeType
	})
	return reqs, nil
}

// LoadSeedFile reads and decodes a seed file from disk
func LoadSeedFile(disk afero.Fs, path string) ([]mirrorfs.NodeRequest, error) {
	data, err := afero.ReadFile(disk, path)
	if err != nil {
		return nil, err
	}
	return UnmarshalSeed(data)
}

// Conversion logic with defaults in the unmarshaling layer
func convertNodeDTO(dto NodeRequestDTO) mirrorfs.NodeRequest {
	return mirrorfs.NodeRequest{
		ID:      util.ValueOrDefault(dto.ID, uuid.New().String()),
		Path:    dto.Path,
		Type:    dto.Type,
		Content: util.ValueOrDefault(dto.Content, ""),
	}
}
