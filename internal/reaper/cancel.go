package reaper

import (
	"context"
	"log/slog"
	"time"

	"github.com/altinukshini/gha-reaper/internal/model"
)

type CancelOptions struct {
	RequestTimeout time.Duration
	// Force uses the force-cancel endpoint.
	Force bool
	// DryRun records candidates without issuing any request.
	DryRun bool
	Logger *slog.Logger
}

type CancelResult struct {
	Stopped int
	Failed  int
	Errors  []error
}

// CancelCandidates makes exactly one cancellation attempt per candidate,
// in order, and appends exactly one row per candidate to sink. A failed
// attempt is recorded and logged; it never stops the batch.
func CancelCandidates(ctx context.Context, client Client, candidates []model.StopCandidate, sink Sink, opts CancelOptions) CancelResult {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var result CancelResult
	for _, c := range candidates {
		attrs := []any{"run_id", c.RunID, "run_number", c.RunNumber, "elapsed", c.Elapsed.Truncate(time.Second)}

		if opts.DryRun {
			row := model.NewAuditRow(c, false, nil)
			row.DryRun = true
			sink.Append(row)
			logger.Info("dry run, not cancelling", attrs...)
			continue
		}

		err := cancelOne(ctx, client, c, opts)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, err)
			logger.Error("cancel failed", append(attrs, "error", err)...)
		} else {
			result.Stopped++
			logger.Info("cancelled run", attrs...)
		}
		sink.Append(model.NewAuditRow(c, err == nil, err))
	}
	return result
}

func cancelOne(ctx context.Context, client Client, c model.StopCandidate, opts CancelOptions) error {
	callCtx, cancel := callContext(ctx, opts.RequestTimeout)
	defer cancel()

	if opts.Force {
		return client.ForceCancelRun(callCtx, c.Repository, c.RunID)
	}
	return client.CancelRun(callCtx, c.Repository, c.RunID)
}
