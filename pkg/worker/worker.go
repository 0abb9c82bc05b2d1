// Package worker provides named background jobs with cooperative cancellation
// and bounded shutdown waits.
//
// Typical usage:
//
//	wm := worker.NewManager(func(msg string) {
//	    log.Println("JOB:", msg)
//	})
//
//	err := wm.Start("cycle", func(ctx context.Context) error {
//	    // do work until ctx is cancelled
//	    return nil
//	})
//
//	// later...
//	_ = wm.Stop("cycle")        // cancel and wait for exit
//	wm.StopAll(5 * time.Second) // best-effort teardown
//
// The package is intentionally minimal: no retry logic, no pooling, no
// persistence. Jobs run in separate goroutines and are removed on completion.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StatusReporter receives lifecycle events for jobs.
// Example messages:
//
//	running:cycle
//	error:cycle:collaborator unavailable
//	done:cycle
type StatusReporter func(string)

type job struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager starts, stops and tracks jobs. Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*job
	Reporter StatusReporter
}

// NewManager creates a Manager. The reporter callback may be nil.
func NewManager(reporter StatusReporter) *Manager {
	return &Manager{
		jobs:     make(map[string]*job),
		Reporter: reporter,
	}
}

// Start runs fn in a new goroutine under the given name. It returns an error
// if a job with that name is already running; this is the scheduling failure
// surface, nothing inside fn ever propagates here.
func (m *Manager) Start(name string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	j := &job{name: name, cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		cancel()
		return fmt.Errorf("job '%s' is already running", name)
	}
	m.jobs[name] = j
	m.mu.Unlock()

	go func() {
		defer close(j.done)
		m.report("running:" + name)

		if err := fn(ctx); err != nil {
			m.report("error:" + name + ":" + err.Error())
		} else {
			m.report("done:" + name)
		}

		m.mu.Lock()
		if m.jobs[name] == j {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()

	return nil
}

// Stop cancels the named job and waits for its goroutine to exit.
// Stopping a job that is not running is a no-op.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	j, ok := m.jobs[name]
	if ok {
		delete(m.jobs, name)
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}
	j.cancel()
	<-j.done
	return nil
}

// StopAll cancels every job and waits for all of them to exit, bounded by
// timeout (0 waits unbounded). Returns false if the wait timed out; callers
// must treat that as best-effort, in-flight work may not have unwound.
func (m *Manager) StopAll(timeout time.Duration) bool {
	m.mu.Lock()
	stopping := make([]*job, 0, len(m.jobs))
	for name, j := range m.jobs {
		j.cancel()
		stopping = append(stopping, j)
		delete(m.jobs, name)
	}
	m.mu.Unlock()

	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}
	for _, j := range stopping {
		select {
		case <-j.done:
		case <-deadline:
			return false
		}
	}
	return true
}

// Running returns the names of active jobs.
func (m *Manager) Running() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.jobs))
	for name := range m.jobs {
		out = append(out, name)
	}
	return out
}

func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
