package engine

import (
	"context"
	"time"
)

// Insight is one introspective observation with a confidence score.
type Insight struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0..1
}

// Sample is one (trigger, response, context) triple fed to the learner.
type Sample struct {
	Trigger  string `json:"trigger"`
	Response string `json:"response"`
	Context  string `json:"context"`
}

// MemoryRecord is one externally stored memory, grouped by category during
// consolidation.
type MemoryRecord struct {
	Category   string    `json:"category"`
	Content    string    `json:"content"`
	Importance float64   `json:"importance"` // 0..1
	At         time.Time `json:"at"`
}

// Consolidation is the derived per-category summary the engine emits through
// the persistence collaborator.
type Consolidation struct {
	Category string    `json:"category"`
	Count    int       `json:"count"`
	Summary  string    `json:"summary"`
	At       time.Time `json:"at"`
}

// Introspector is the external reflection service.
type Introspector interface {
	Reflect(ctx context.Context) ([]Insight, error)
}

// Learner is the external learning service.
type Learner interface {
	Adapt(ctx context.Context, samples []Sample) ([]string, error)
}

// MemorySource returns recent memory records for consolidation.
type MemorySource interface {
	Recent(ctx context.Context, limit int) ([]MemoryRecord, error)
}

// Persister stores derived consolidation summaries.
type Persister interface {
	SaveConsolidation(ctx context.Context, c Consolidation) error
}

// Deps bundles the external collaborators. Any of them may be nil; the
// corresponding phase is then skipped.
type Deps struct {
	Introspector Introspector
	Learner      Learner
	Memories     MemorySource
	Persister    Persister
}
