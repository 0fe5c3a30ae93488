package tui

import (
	"context"
	"sync"
)

type jobState int

const (
	jobIdle jobState = iota
	jobRunning
	jobFinished
	jobClosed
)

// job runs Options.Run at most once. The program can exit while Run is
// still appending rows, so the caller waits on the job, not on the
// ReapDoneMsg that may never be delivered.
type job struct {
	fn func() error

	mu    sync.Mutex
	state jobState
	err   error
	done  chan struct{}
}

func newJob(fn func() error) *job {
	return &job{fn: fn, done: make(chan struct{})}
}

func (j *job) run() error {
	j.mu.Lock()
	if j.state != jobIdle {
		j.mu.Unlock()
		return context.Canceled
	}
	j.state = jobRunning
	j.mu.Unlock()

	err := j.fn()

	j.mu.Lock()
	j.state, j.err = jobFinished, err
	j.mu.Unlock()
	close(j.done)
	return err
}

// wait blocks until a started run returns. A run that has not started
// yet never will; wait then reports context.Canceled.
func (j *job) wait() error {
	j.mu.Lock()
	switch j.state {
	case jobIdle, jobClosed:
		j.state = jobClosed
		j.mu.Unlock()
		return context.Canceled
	}
	j.mu.Unlock()
	<-j.done
	return j.err
}
