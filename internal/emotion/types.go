package emotion

import "time"

// Affect is an enumerated emotion category.
type Affect string

const (
	AffectCalm         Affect = "calm"
	AffectCuriosity    Affect = "curiosity"
	AffectFrustration  Affect = "frustration"
	AffectJoy          Affect = "joy"
	AffectSatisfaction Affect = "satisfaction"
)

// AllAffects returns every affect label in ascending order.
// Classifier ties resolve to the earliest label in this order.
func AllAffects() []Affect {
	return []Affect{
		AffectCalm,
		AffectCuriosity,
		AffectFrustration,
		AffectJoy,
		AffectSatisfaction,
	}
}

// Snapshot is the current affective state. Intensity stays in [0,1].
type Snapshot struct {
	Type      Affect    `json:"type"`
	Intensity float64   `json:"intensity"` // 0..1
	ChangedAt time.Time `json:"changed_at"`
}

// Event is one emotional stimulus. Consumed exactly once, FIFO.
type Event struct {
	Trigger     string    `json:"trigger"`
	Context     string    `json:"context"`
	Intensity   float64   `json:"intensity"` // 0..1, clamped on input
	SubmittedAt time.Time `json:"submitted_at"`
}

// LearnedPattern is a reinforcement counter for a (trigger, context) pair.
// Confidence grows on repeat observation and never decays.
type LearnedPattern struct {
	Trigger     string  `json:"trigger"`
	Context     string  `json:"context"`
	Expected    Affect  `json:"expected"`
	Confidence  float64 `json:"confidence"` // 0..1
	Occurrences int     `json:"occurrences"`
}
