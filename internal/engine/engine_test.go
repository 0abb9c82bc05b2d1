package engine

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestEngine(deps Deps) *Engine {
	return New(Config{
		TickMin:       5 * time.Millisecond,
		TickMax:       10 * time.Millisecond,
		DecayInterval: 5 * time.Millisecond,
		PatternCap:    32,
		Seed:          1,
		Logger:        log.New(io.Discard, "", 0),
	}, deps)
}

func TestStartIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := newTestEngine(Deps{})
	require.NoError(t, e.Start())
	require.NoError(t, e.Start()) // second start must not spawn more workers

	require.Len(t, e.jobs.Running(), 2) // cycle + decay, not four

	time.Sleep(60 * time.Millisecond)
	require.Greater(t, e.Cycles(), 0)

	e.Stop()
}

func TestStopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := newTestEngine(Deps{})
	require.NoError(t, e.Start())
	time.Sleep(20 * time.Millisecond)

	e.Stop()

	start := time.Now()
	e.Stop() // second stop returns immediately, no panic
	require.Less(t, time.Since(start), 100*time.Millisecond)
	require.Empty(t, e.jobs.Running())
}

func TestStopImmediatelyAfterStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := newTestEngine(Deps{})
	require.NoError(t, e.Start())

	done := make(chan struct{})
	go func() {
		e.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(DisposeTimeout):
		t.Fatal("Stop did not return within the dispose bound")
	}
	require.Empty(t, e.jobs.Running())
}

func TestStopWithoutStart(t *testing.T) {
	e := newTestEngine(Deps{})
	e.Stop() // no-op
	require.NoError(t, e.Close())
}

func TestCloseStopsWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := newTestEngine(Deps{})
	require.NoError(t, e.Start())
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, e.Close())
	require.Empty(t, e.jobs.Running())
}

func TestRestartAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := newTestEngine(Deps{})
	require.NoError(t, e.Start())
	time.Sleep(20 * time.Millisecond)
	e.Stop()

	require.NoError(t, e.Start())
	time.Sleep(20 * time.Millisecond)
	e.Stop()
}

func TestSubmittedIntensityAlwaysClamped(t *testing.T) {
	e := newTestEngine(Deps{})
	for _, in := range []float64{-5, 0.5, 7, 1} {
		e.SubmitEmotionEvent("успех", "достижение", in)
	}
	e.emotions.Drain(16)

	require.GreaterOrEqual(t, e.CurrentIntensity(), 0.0)
	require.LessOrEqual(t, e.CurrentIntensity(), 1.0)
	for _, v := range e.Intensities() {
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
	}
}

func TestSyntheticHyperactiveTransition(t *testing.T) {
	e := newTestEngine(Deps{})

	e.statsMu.Lock()
	e.counters["reflection"] = 60
	e.statsMu.Unlock()

	// Two strong events push intensity past 0.7 from the neutral 0.5 start.
	e.emotions.ProcessEvent("успех победа", "", 1.0)
	e.emotions.ProcessEvent("успех победа", "", 1.0)
	require.Greater(t, e.CurrentIntensity(), 0.7)

	require.NoError(t, e.phaseStateTransition(context.Background()))
	require.Equal(t, StateHyperactive, e.State())
}

func TestInitialStateIsAwake(t *testing.T) {
	e := newTestEngine(Deps{})
	require.Equal(t, StateAwake, e.State())
}

func TestEngineRunProducesPatternsAndGoals(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := newTestEngine(Deps{})
	require.NoError(t, e.Start())
	time.Sleep(80 * time.Millisecond)
	e.Stop()

	require.NotEmpty(t, e.RecentPatterns(5))
	require.NotEmpty(t, e.ActiveGoals())
	require.NotEmpty(t, e.Metrics())
	require.NotEmpty(t, e.LearnedPatterns()) // internal triggers are learned
}
