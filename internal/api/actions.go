package api

import (
	"context"
	"fmt"
)

func (c *Client) CancelRun(ctx context.Context, repo string, runID int64) error {
	if err := c.Post(ctx, repoPath(repo, fmt.Sprintf("actions/runs/%d/cancel", runID)), nil); err != nil {
		return fmt.Errorf("cancel run %d in %s: %w", runID, repo, err)
	}
	return nil
}

// ForceCancelRun bypasses always() conditions that keep a run alive
// after a regular cancel.
func (c *Client) ForceCancelRun(ctx context.Context, repo string, runID int64) error {
	if err := c.Post(ctx, repoPath(repo, fmt.Sprintf("actions/runs/%d/force-cancel", runID)), nil); err != nil {
		return fmt.Errorf("force cancel run %d in %s: %w", runID, repo, err)
	}
	return nil
}
