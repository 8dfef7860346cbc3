package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// withWorkspace creates <temp_dir>/run_<id>, runs fn in it and removes the
// directory afterwards whatever fn returns.
func (p *implProcessor) withWorkspace(ctx context.Context, runID string, fn func(dir string) error) error {
	if err := os.MkdirAll(p.cfg.Paths.TempDir, 0755); err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	dir := filepath.Join(p.cfg.Paths.TempDir, "run_"+runID)
	if err := os.Mkdir(dir, 0755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	defer p.cleanupWorkspace(ctx, dir)

	return fn(dir)
}

// cleanupWorkspace removes a workspace, logs warning if fails
func (p *implProcessor) cleanupWorkspace(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.logger.Warn(ctx, "Failed to cleanup workspace %s: %v", dir, err)
	} else {
		p.logger.Debug(ctx, "Cleaned up workspace: %s", dir)
	}
}
