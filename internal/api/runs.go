package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/altinukshini/gha-reaper/internal/model"
)

type RunsFilter struct {
	Actor   string
	Branch  string
	Event   string
	Status  string
	Created string // e.g. ">2025-01-01" for date range filtering
	PerPage int
	Page    int
}

func (f RunsFilter) QueryString() string {
	v := url.Values{}
	if f.Actor != "" {
		v.Set("actor", f.Actor)
	}
	if f.Branch != "" {
		v.Set("branch", f.Branch)
	}
	if f.Event != "" {
		v.Set("event", f.Event)
	}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.Created != "" {
		v.Set("created", f.Created)
	}
	if f.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(f.PerPage))
	} else {
		v.Set("per_page", "30")
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if qs := v.Encode(); qs != "" {
		return "?" + qs
	}
	return ""
}

// ListRuns fetches one page of workflow runs for repo ("owner/name").
func (c *Client) ListRuns(ctx context.Context, repo string, filter RunsFilter) (*model.RunsResponse, error) {
	var resp model.RunsResponse
	if err := c.Get(ctx, repoPath(repo, "actions/runs")+filter.QueryString(), &resp); err != nil {
		return nil, fmt.Errorf("list runs for %s page %d: %w", repo, filter.Page, err)
	}
	return &resp, nil
}
