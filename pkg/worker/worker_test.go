package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestStartRejectsDuplicateName(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewManager(nil)
	block := make(chan struct{})
	err := m.Start("job", func(ctx context.Context) error {
		<-block
		return nil
	})
	require.NoError(t, err)

	err = m.Start("job", func(ctx context.Context) error { return nil })
	require.Error(t, err)

	close(block)
	require.NoError(t, m.Stop("job"))
}

func TestStopWaitsForExit(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewManager(nil)
	var exited bool
	var mu sync.Mutex

	require.NoError(t, m.Start("job", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		exited = true
		mu.Unlock()
		return nil
	}))

	require.NoError(t, m.Stop("job"))
	mu.Lock()
	defer mu.Unlock()
	require.True(t, exited, "Stop returned before the job exited")
}

func TestStopUnknownJobIsNoop(t *testing.T) {
	m := NewManager(nil)
	require.NoError(t, m.Stop("missing"))
}

func TestStopAllTimesOutOnStuckJob(t *testing.T) {
	m := NewManager(nil)
	release := make(chan struct{})
	require.NoError(t, m.Start("stuck", func(ctx context.Context) error {
		<-release // ignores cancellation
		return nil
	}))

	start := time.Now()
	clean := m.StopAll(50 * time.Millisecond)
	require.False(t, clean)
	require.Less(t, time.Since(start), 2*time.Second)

	close(release)
	time.Sleep(20 * time.Millisecond)
}

func TestReporterSeesLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	var msgs []string
	m := NewManager(func(s string) {
		mu.Lock()
		msgs = append(msgs, s)
		mu.Unlock()
	})

	require.NoError(t, m.Start("ok", func(ctx context.Context) error { return nil }))
	require.NoError(t, m.Start("bad", func(ctx context.Context) error { return errors.New("boom") }))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return contains(msgs, "done:ok") && contains(msgs, "error:bad:boom")
	}, time.Second, 10*time.Millisecond)
	require.Empty(t, m.Running())
}

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
