package reaper

import (
	"sync"

	"github.com/altinukshini/gha-reaper/internal/model"
)

type lockedSink struct {
	mu   sync.Mutex
	next Sink
}

func newLockedSink(next Sink) *lockedSink {
	return &lockedSink{next: next}
}

func (s *lockedSink) Append(row model.AuditRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next.Append(row)
}

type observingSink struct {
	next     Sink
	observer Observer
}

func (s observingSink) Append(row model.AuditRow) {
	s.next.Append(row)
	s.observer.RowAppended(row)
}

// Observer receives progress events. With Concurrency above 1 the
// methods are called from several goroutines.
type Observer interface {
	RepositoryStarted(repo string)
	RunsFetched(repo string, count int, err error)
	CandidatesSelected(repo string, count int, errs []error)
	RowAppended(row model.AuditRow)
}

type nopObserver struct{}

func (nopObserver) RepositoryStarted(string)                {}
func (nopObserver) RunsFetched(string, int, error)          {}
func (nopObserver) CandidatesSelected(string, int, []error) {}
func (nopObserver) RowAppended(model.AuditRow)              {}

// Observers fans events out to each non-nil observer in order.
func Observers(observers ...Observer) Observer {
	var list multiObserver
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) RepositoryStarted(repo string) {
	for _, o := range m {
		o.RepositoryStarted(repo)
	}
}

func (m multiObserver) RunsFetched(repo string, count int, err error) {
	for _, o := range m {
		o.RunsFetched(repo, count, err)
	}
}

func (m multiObserver) CandidatesSelected(repo string, count int, errs []error) {
	for _, o := range m {
		o.CandidatesSelected(repo, count, errs)
	}
}

func (m multiObserver) RowAppended(row model.AuditRow) {
	for _, o := range m {
		o.RowAppended(row)
	}
}
