package goals

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLedger() *Ledger {
	return NewLedger(rand.New(rand.NewSource(1)), nil)
}

func TestNewLedgerSeedsFloor(t *testing.T) {
	l := newTestLedger()
	active := l.Active()
	require.Len(t, active, MinimumActive)
	for _, g := range active {
		require.NotEmpty(t, g.ID)
		require.NotEmpty(t, g.Name)
		require.Nil(t, g.CompletedAt)
	}
}

func TestTickKeepsInvariants(t *testing.T) {
	l := newTestLedger()
	now := time.Now()
	for i := 0; i < 200; i++ {
		l.Tick(now)
		for _, g := range l.Active() {
			require.GreaterOrEqual(t, g.Priority, 0.0)
			require.LessOrEqual(t, g.Priority, 1.0)
			require.GreaterOrEqual(t, g.Progress, 0.0)
			require.Less(t, g.Progress, 1.0, "completed goal still active: %s", g.Name)
		}
	}
}

func TestCompletedGoalsLeaveActiveSet(t *testing.T) {
	l := newTestLedger()
	now := time.Now()

	// Enough ticks to finish everything: progress gains up to 0.05 per tick.
	total := 0
	for i := 0; i < 2000 && len(l.Active()) > 0; i++ {
		total += l.Tick(now)
	}
	require.Equal(t, MinimumActive, total)
	require.Empty(t, l.Active())

	completed := l.Completed()
	require.Len(t, completed, MinimumActive)
	for _, g := range completed {
		require.NotNil(t, g.CompletedAt)
		require.Equal(t, 1.0, g.Progress)
	}

	// Refill synthesizes fresh goals; completed ones are never reactivated.
	l.EnsureFloor(MinimumActive)
	for _, g := range l.Active() {
		require.Nil(t, g.CompletedAt)
		require.Zero(t, g.Progress)
	}
}

func TestPriorityDropsAsProgressGrows(t *testing.T) {
	l := newTestLedger()
	now := time.Now()

	start := l.Active()
	for i := 0; i < 50; i++ {
		l.Tick(now)
	}
	byName := make(map[string]Goal)
	for _, g := range l.Active() {
		byName[g.Name] = g
	}
	for _, g0 := range start {
		g, ok := byName[g0.Name]
		if !ok {
			continue // completed meanwhile
		}
		require.LessOrEqual(t, g.Priority, g0.Priority)
		require.GreaterOrEqual(t, g.Priority, 0.1)
	}
}

func TestActiveReturnsCopies(t *testing.T) {
	l := newTestLedger()
	a := l.Active()
	a[0].Progress = 0.9
	require.Zero(t, l.Active()[0].Progress)
}
