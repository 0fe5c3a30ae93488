package reaper

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/altinukshini/gha-reaper/internal/model"
)

// StatusSet holds the run statuses a caller considers stoppable. Statuses
// are opaque strings; nothing here decides which ones make sense.
type StatusSet map[model.RunStatus]struct{}

func NewStatusSet(states ...string) StatusSet {
	set := make(StatusSet, len(states))
	for _, s := range states {
		set[model.RunStatus(s)] = struct{}{}
	}
	return set
}

func (s StatusSet) Has(status model.RunStatus) bool {
	_, ok := s[status]
	return ok
}

func (s StatusSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for status := range s {
		out = append(out, string(status))
	}
	slices.Sort(out)
	return out
}

type Policy struct {
	StoppableStates StatusSet
	// Timeout is the age a run must strictly exceed to be stopped.
	Timeout time.Duration
}

// TimeoutFromMinutes converts a (possibly fractional) minute count.
func TimeoutFromMinutes(minutes float64) time.Duration {
	return time.Duration(minutes * float64(time.Minute))
}

func (p Policy) Validate() error {
	if len(p.StoppableStates) == 0 {
		return errors.New("at least one stoppable state is required")
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", p.Timeout)
	}
	return nil
}

// TimestampError reports a run dropped from selection because its start
// time could not be read.
type TimestampError struct {
	Repository string
	RunID      int64
	Value      string
	Err        error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("run %d in %s: invalid run_started_at %q: %v", e.RunID, e.Repository, e.Value, e.Err)
}

func (e *TimestampError) Unwrap() error { return e.Err }

// SelectCandidates keeps the runs whose status is stoppable and whose
// elapsed time since start is strictly greater than policy.Timeout.
// Runs with an unreadable start time are excluded and reported.
func SelectCandidates(repo string, runs []model.Run, policy Policy, now time.Time) ([]model.StopCandidate, []error) {
	var candidates []model.StopCandidate
	var errs []error

	for _, r := range runs {
		if !policy.StoppableStates.Has(r.Status) {
			continue
		}
		started, err := model.ParseTimestamp(r.RunStartedAt)
		if err != nil {
			errs = append(errs, &TimestampError{Repository: repo, RunID: r.ID, Value: r.RunStartedAt, Err: err})
			continue
		}
		elapsed := now.Sub(started)
		if elapsed <= policy.Timeout {
			continue
		}
		candidates = append(candidates, model.StopCandidate{
			Repository:   repo,
			DisplayTitle: r.DisplayTitle,
			RunNumber:    r.RunNumber,
			RunID:        r.ID,
			Elapsed:      elapsed,
		})
	}
	return candidates, errs
}
