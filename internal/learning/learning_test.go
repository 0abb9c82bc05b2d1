package learning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keshon/mindcycle/internal/engine"
)

func TestAdaptRaisesWeightsBounded(t *testing.T) {
	s := New()
	ctx := context.Background()
	sample := []engine.Sample{{Trigger: "conversation", Response: "ok", Context: "memory_replay"}}

	prev := 0.0
	for i := 1; i <= 12; i++ {
		_, err := s.Adapt(ctx, sample)
		require.NoError(t, err)

		rules := s.Rules()
		require.Len(t, rules, 1)
		r := rules[0]
		require.Equal(t, i, r.Seen)
		require.GreaterOrEqual(t, r.Weight, prev)
		require.LessOrEqual(t, r.Weight, 1.0)
		prev = r.Weight
	}
}

func TestAdaptSummariesStableOrder(t *testing.T) {
	s := New()
	samples := []engine.Sample{
		{Trigger: "b", Response: "2", Context: "x"},
		{Trigger: "a", Response: "1", Context: "x"},
	}
	out, err := s.Adapt(context.Background(), samples)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Contains(t, out[0], "rule a|x")
	require.Contains(t, out[1], "rule b|x")
}

func TestAdaptCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Adapt(ctx, []engine.Sample{{Trigger: "a"}})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, s.Rules())
}
