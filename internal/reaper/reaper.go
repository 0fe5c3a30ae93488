// Package reaper finds workflow runs that have been active longer than a
// timeout and cancels them, recording one audit row per attempt.
//
// The pipeline per repository is FetchRuns, SelectCandidates, then
// CancelCandidates. Reaper drives it across every repository an
// Enumerator yields. Only enumeration failures abort an invocation;
// everything else is logged and reflected in the audit rows.
package reaper

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/altinukshini/gha-reaper/internal/api"
	"github.com/altinukshini/gha-reaper/internal/model"
)

const DefaultRequestTimeout = 30 * time.Second

// Client is the part of the GitHub REST API the pipeline calls.
type Client interface {
	ListRuns(ctx context.Context, repo string, filter api.RunsFilter) (*model.RunsResponse, error)
	CancelRun(ctx context.Context, repo string, runID int64) error
	ForceCancelRun(ctx context.Context, repo string, runID int64) error
}

// Sink accumulates audit rows. Append must accept every well-formed row.
type Sink interface {
	Append(row model.AuditRow)
}

// Target is one repository together with a client authorized for it.
type Target struct {
	Installation model.Installation
	Repository   model.Repository
	Client       Client
}

// Enumerator lazily yields installations and, per installation, the
// repositories it can reach. Sequences are finite and single-use. A
// yielded error is an identity failure and aborts the invocation.
type Enumerator interface {
	Installations(ctx context.Context) iter.Seq2[model.Installation, error]
	Repositories(ctx context.Context, installation model.Installation) iter.Seq2[Target, error]
}

var ErrInvalidOptions = errors.New("invalid reaper options")

type Options struct {
	// ScanRangeDays bounds run creation to this many days before now.
	ScanRangeDays  int
	Policy         Policy
	PageSize       int
	RequestTimeout time.Duration
	// Concurrency is the number of repositories processed at once.
	// Values below 2 process repositories sequentially in yield order.
	Concurrency int
	Force       bool
	DryRun      bool
	Now         func() time.Time
	Logger      *slog.Logger
	Observer    Observer
}

func (o Options) Validate() error {
	if o.ScanRangeDays < 1 {
		return fmt.Errorf("%w: scan range must be at least 1 day, got %d", ErrInvalidOptions, o.ScanRangeDays)
	}
	if err := o.Policy.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if o.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must not be negative, got %d", ErrInvalidOptions, o.Concurrency)
	}
	return nil
}

type Reaper struct {
	opts     Options
	logger   *slog.Logger
	observer Observer
}

func New(opts Options) (*Reaper, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return &Reaper{opts: opts, logger: logger, observer: observer}, nil
}

// Reap processes every repository the enumerator yields. It returns an
// error only for enumeration failures or a cancelled ctx; rows appended
// before that point stay valid.
func (r *Reaper) Reap(ctx context.Context, enum Enumerator, sink Sink) error {
	window := NewWindow(r.opts.Now(), r.opts.ScanRangeDays)
	r.logger.Info("reaping workflow runs",
		"created", window.Created(),
		"timeout", r.opts.Policy.Timeout,
		"stoppable_states", r.opts.Policy.StoppableStates.Sorted(),
		"dry_run", r.opts.DryRun,
	)

	sink = observingSink{next: sink, observer: r.observer}

	var g errgroup.Group
	process := func(t Target) { r.processRepository(ctx, t, window, sink) }
	if r.opts.Concurrency > 1 {
		shared := newLockedSink(sink)
		g.SetLimit(r.opts.Concurrency)
		process = func(t Target) {
			g.Go(func() error {
				r.processRepository(ctx, t, window, shared)
				return nil
			})
		}
	}

	err := r.walk(ctx, enum, process)
	_ = g.Wait()
	return err
}

func (r *Reaper) walk(ctx context.Context, enum Enumerator, process func(Target)) error {
	for installation, err := range enum.Installations(ctx) {
		if err != nil {
			return fmt.Errorf("enumerate installations: %w", err)
		}
		r.logger.Debug("processing installation", "installation", installation.ID, "account", installation.Account.Login)

		for target, err := range enum.Repositories(ctx, installation) {
			if err != nil {
				return fmt.Errorf("enumerate repositories of installation %d: %w", installation.ID, err)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			process(target)
		}
	}
	return ctx.Err()
}

func (r *Reaper) processRepository(ctx context.Context, t Target, window Window, sink Sink) {
	repo := t.Repository.FullName
	logger := r.logger.With("repository", repo)
	logger.Info("working on repository")
	r.observer.RepositoryStarted(repo)

	runs, err := FetchRuns(ctx, t.Client, repo, window, FetchOptions{
		PageSize:       r.opts.PageSize,
		RequestTimeout: r.opts.RequestTimeout,
	})
	r.observer.RunsFetched(repo, len(runs), err)
	if err != nil {
		logger.Log(ctx, fetchFailureLevel(err), "run listing incomplete", "fetched", len(runs), "status", api.StatusCode(err), "error", err)
	}

	candidates, errs := SelectCandidates(repo, runs, r.opts.Policy, window.Now)
	for _, e := range errs {
		logger.Error("skipping run with unreadable start time", "error", e)
	}
	r.observer.CandidatesSelected(repo, len(candidates), errs)
	logger.Info("stop candidates selected", "runs", len(runs), "candidates", len(candidates))

	result := CancelCandidates(ctx, t.Client, candidates, sink, CancelOptions{
		RequestTimeout: r.opts.RequestTimeout,
		Force:          r.opts.Force,
		DryRun:         r.opts.DryRun,
		Logger:         logger,
	})
	if len(candidates) > 0 {
		logger.Info("repository done", "stopped", result.Stopped, "failed", result.Failed)
	}
}

// fetchFailureLevel grades a listing failure. 404 means Actions is
// disabled or the repository is gone; 401/403 means lost access.
func fetchFailureLevel(err error) slog.Level {
	switch {
	case api.IsNotFound(err):
		return slog.LevelInfo
	case api.IsUnauthorized(err):
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
