package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCallLimiterCooldown(t *testing.T) {
	l := NewCallLimiter(1000, time.Minute)
	now := time.Now()

	require.True(t, l.Allow("introspector", now))
	require.False(t, l.Allow("introspector", now.Add(30*time.Second)))
	require.True(t, l.Allow("introspector", now.Add(61*time.Second)))
}

func TestCallLimiterIndependentCooldowns(t *testing.T) {
	l := NewCallLimiter(1000, time.Minute)
	now := time.Now()

	require.True(t, l.Allow("introspector", now))
	require.True(t, l.Allow("learner", now))
}

func TestCallLimiterGlobalRate(t *testing.T) {
	l := NewCallLimiter(1, 0)
	now := time.Now()

	require.True(t, l.Allow("a", now))
	require.False(t, l.Allow("b", now), "burst of 1 exhausted")
	require.True(t, l.Allow("c", now.Add(time.Second)))
}
