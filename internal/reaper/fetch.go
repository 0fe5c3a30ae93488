package reaper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/altinukshini/gha-reaper/internal/api"
	"github.com/altinukshini/gha-reaper/internal/model"
)

// DefaultPageSize is the largest page the run-listing endpoint serves.
const DefaultPageSize = 100

// ErrEmptyPage reports a page with no runs while the collected count is
// still below total_count. GitHub caps filtered listings at 1000 results,
// so total_count can promise more than the endpoint will ever return.
var ErrEmptyPage = errors.New("empty page before total_count was reached")

// FetchError means a repository's run listing stopped early. The runs
// returned alongside it are the ones from pages before Page.
type FetchError struct {
	Repository string
	Page       int
	Fetched    int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch runs for %s stopped at page %d after %d runs: %v", e.Repository, e.Page, e.Fetched, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Window is the lookback bound shared by every repository of an
// invocation.
type Window struct {
	Now   time.Time
	Since time.Time
}

// NewWindow returns the window starting days calendar days (UTC) before now.
func NewWindow(now time.Time, days int) Window {
	y, m, d := now.UTC().AddDate(0, 0, -days).Date()
	return Window{Now: now, Since: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Created renders the window as the listing endpoint's created filter.
func (w Window) Created() string {
	return ">" + w.Since.Format("2006-01-02")
}

type FetchOptions struct {
	PageSize       int
	RequestTimeout time.Duration
}

// FetchRuns pages through the runs of repo created inside window until
// the collected count reaches the total_count of the latest page. A page
// failure keeps what was already collected and returns it with a
// *FetchError.
func FetchRuns(ctx context.Context, client Client, repo string, window Window, opts FetchOptions) ([]model.Run, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var runs []model.Run
	for page := 1; ; page++ {
		filter := api.RunsFilter{Created: window.Created(), PerPage: pageSize, Page: page}
		resp, err := listPage(ctx, client, repo, filter, opts.RequestTimeout)
		if err != nil {
			return runs, &FetchError{Repository: repo, Page: page, Fetched: len(runs), Err: err}
		}

		runs = append(runs, resp.Runs...)
		if len(runs) >= resp.TotalCount {
			return runs, nil
		}
		if len(resp.Runs) == 0 {
			return runs, &FetchError{Repository: repo, Page: page, Fetched: len(runs), Err: ErrEmptyPage}
		}
	}
}

func listPage(ctx context.Context, client Client, repo string, filter api.RunsFilter, timeout time.Duration) (*model.RunsResponse, error) {
	callCtx, cancel := callContext(ctx, timeout)
	defer cancel()

	resp, err := client.ListRuns(callCtx, repo, filter)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return &model.RunsResponse{}, nil
	}
	return resp, nil
}

// callContext bounds a single network call. A zero timeout leaves only
// the parent's deadline.
func callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
