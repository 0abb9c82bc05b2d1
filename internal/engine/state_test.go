package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluateState(t *testing.T) {
	cases := []struct {
		name      string
		activity  int
		intensity float64
		want      State
	}{
		{"idle", 0, 0, StateDrowsy},
		{"active but flat", 100, 0.1, StateDrowsy},
		{"intense but idle", 5, 0.9, StateDrowsy},
		{"calm threshold", 11, 0.21, StateCalm},
		{"awake threshold", 31, 0.41, StateAwake},
		{"hyperactive threshold", 51, 0.71, StateHyperactive},
		{"strong surge", 60, 0.8, StateHyperactive},
		{"high activity moderate intensity", 60, 0.5, StateAwake},
		{"boundary not crossed", 50, 0.8, StateAwake},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, EvaluateState(tc.activity, tc.intensity))
		})
	}
}
