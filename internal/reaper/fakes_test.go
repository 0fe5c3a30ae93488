package reaper

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/altinukshini/gha-reaper/internal/api"
	"github.com/altinukshini/gha-reaper/internal/model"
)

type listCall struct {
	repo   string
	filter api.RunsFilter
}

// fakeClient serves scripted pages per repository and records calls.
type fakeClient struct {
	mu sync.Mutex

	pages     map[string][]pageResult
	cancelErr map[int64]error

	listCalls []listCall
	cancelled []int64
	forced    []int64
}

type pageResult struct {
	resp *model.RunsResponse
	err  error
}

func newFakeClient() *fakeClient {
	return &fakeClient{pages: map[string][]pageResult{}, cancelErr: map[int64]error{}}
}

func (f *fakeClient) addPage(repo string, total int, runs ...model.Run) *fakeClient {
	f.pages[repo] = append(f.pages[repo], pageResult{resp: &model.RunsResponse{TotalCount: total, Runs: runs}})
	return f
}

func (f *fakeClient) addFailure(repo string, err error) *fakeClient {
	f.pages[repo] = append(f.pages[repo], pageResult{err: err})
	return f
}

func (f *fakeClient) ListRuns(ctx context.Context, repo string, filter api.RunsFilter) (*model.RunsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, listCall{repo: repo, filter: filter})

	pages := f.pages[repo]
	if filter.Page < 1 || filter.Page > len(pages) {
		return nil, fmt.Errorf("unexpected request for page %d of %s", filter.Page, repo)
	}
	p := pages[filter.Page-1]
	return p.resp, p.err
}

func (f *fakeClient) CancelRun(ctx context.Context, repo string, runID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, runID)
	return f.cancelErr[runID]
}

func (f *fakeClient) ForceCancelRun(ctx context.Context, repo string, runID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forced = append(f.forced, runID)
	return f.cancelErr[runID]
}

// generatedClient serves total runs split into pages of the requested
// size, optionally failing one page.
type generatedClient struct {
	mu       sync.Mutex
	total    int
	failPage int
	calls    []api.RunsFilter
}

func (g *generatedClient) ListRuns(ctx context.Context, repo string, filter api.RunsFilter) (*model.RunsResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, filter)

	if filter.Page == g.failPage {
		return nil, errors.New("HTTP 502: Server Error")
	}
	start := (filter.Page - 1) * filter.PerPage
	end := min(start+filter.PerPage, g.total)
	resp := &model.RunsResponse{TotalCount: g.total}
	for i := start; i < end; i++ {
		resp.Runs = append(resp.Runs, model.Run{ID: int64(i + 1), Status: model.RunStatusCompleted})
	}
	return resp, nil
}

func (g *generatedClient) CancelRun(context.Context, string, int64) error      { return nil }
func (g *generatedClient) ForceCancelRun(context.Context, string, int64) error { return nil }

// blockingClient never answers until the call's context ends.
type blockingClient struct{}

func (blockingClient) ListRuns(ctx context.Context, _ string, _ api.RunsFilter) (*model.RunsResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingClient) CancelRun(ctx context.Context, _ string, _ int64) error {
	<-ctx.Done()
	return ctx.Err()
}

func (blockingClient) ForceCancelRun(ctx context.Context, _ string, _ int64) error {
	<-ctx.Done()
	return ctx.Err()
}

type fakeEnumerator struct {
	installations []model.Installation
	targets       map[int64][]Target
	installErr    error
	repoErr       error
}

func (f *fakeEnumerator) Installations(ctx context.Context) iter.Seq2[model.Installation, error] {
	return func(yield func(model.Installation, error) bool) {
		for _, inst := range f.installations {
			if !yield(inst, nil) {
				return
			}
		}
		if f.installErr != nil {
			yield(model.Installation{}, f.installErr)
		}
	}
}

func (f *fakeEnumerator) Repositories(ctx context.Context, inst model.Installation) iter.Seq2[Target, error] {
	return func(yield func(Target, error) bool) {
		for _, t := range f.targets[inst.ID] {
			if !yield(t, nil) {
				return
			}
		}
		if f.repoErr != nil {
			yield(Target{}, f.repoErr)
		}
	}
}

// singleInstallation wires every repo to the same client under one
// installation.
func singleInstallation(client Client, repos ...string) *fakeEnumerator {
	inst := model.Installation{ID: 1, Account: model.Account{Login: "acme"}}
	enum := &fakeEnumerator{installations: []model.Installation{inst}, targets: map[int64][]Target{}}
	for _, repo := range repos {
		enum.targets[1] = append(enum.targets[1], Target{
			Installation: inst,
			Repository:   model.Repository{FullName: repo},
			Client:       client,
		})
	}
	return enum
}

type recordingSink struct {
	mu   sync.Mutex
	rows []model.AuditRow
}

func (s *recordingSink) Append(row model.AuditRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
}

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func run(id int64, status model.RunStatus, age time.Duration) model.Run {
	return model.Run{
		ID:           id,
		Status:       status,
		DisplayTitle: fmt.Sprintf("Run %d", id),
		RunNumber:    int(id) + 100,
		RunStartedAt: testNow.Add(-age).Format(time.RFC3339),
	}
}
