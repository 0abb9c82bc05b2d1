package engine

// State is the engine's derived activity level. It is recomputed every cycle
// from aggregate phase counters and current emotional intensity, never set by
// external callers.
type State string

const (
	StateDrowsy      State = "drowsy"
	StateCalm        State = "calm"
	StateAwake       State = "awake"
	StateHyperactive State = "hyperactive"
)

// EvaluateState maps total phase activity and current intensity to a State.
// Rules are checked highest first.
func EvaluateState(totalActivity int, intensity float64) State {
	switch {
	case totalActivity > 50 && intensity > 0.7:
		return StateHyperactive
	case totalActivity > 30 && intensity > 0.4:
		return StateAwake
	case totalActivity > 10 && intensity > 0.2:
		return StateCalm
	default:
		return StateDrowsy
	}
}
