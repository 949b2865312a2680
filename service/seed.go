package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/brettbedarf/mirrorfs"
	"github.com/brettbedarf/mirrorfs/filesystem"
	"github.com/brettbedarf/mirrorfs/internal/util"
)

// Seed applies node requests in order. Existing directories are kept and
// files are created before their content is written. The first failing
// request stops the run.
func (s *Service) Seed(ctx context.Context, reqs []mirrorfs.NodeRequest) (mirrorfs.Report, error) {
	logger := util.GetLogger("Service.Seed")
	var report mirrorfs.Report

	for _, req := range reqs {
		var (
			r   mirrorfs.Report
			err error
		)
		switch req.Type {
		case mirrorfs.DirNodeType:
			r, err = s.CreateDirectory(ctx, req.Path)
			if errors.Is(err, filesystem.ErrAlreadyExists) {
				err = nil
			}
		case mirrorfs.FileNodeType:
			r, err = s.CreateFile(ctx, req.Path)
			if err == nil && req.Content != "" {
				r, err = s.WriteFile(ctx, req.Path, req.Content)
			}
		default:
			err = fmt.Errorf("unknown node type %q", req.Type)
		}
		report.Merge(r)
		if err != nil {
			return report, fmt.Errorf("seed %s (%s): %w", req.Path, req.ID, err)
		}
		logger.Debug().Str("id", req.ID).Str("path", req.Path).Str("type", string(req.Type)).Msg("Seeded node")
	}
	logger.Info().Int("nodes", len(reqs)).Msg("Seeded tree")
	return report, nil
}
