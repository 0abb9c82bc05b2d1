// Package patterns snapshots per-cycle activity counters and emotional state
// into immutable records cached by cycle label.
package patterns

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/keshon/mindcycle/internal/emotion"
)

// Pattern is one immutable per-cycle record.
type Pattern struct {
	ID         string                     `json:"id"`
	CycleLabel string                     `json:"cycle_label"`
	Activity   map[string]int             `json:"activity"`
	Emotional  map[emotion.Affect]float64 `json:"emotional"`
	CapturedAt time.Time                  `json:"captured_at"`
	Confidence float64                    `json:"confidence"` // 0..1
}

// Recorder caches patterns by cycle label, preserving insertion order.
type Recorder struct {
	mu    sync.RWMutex
	cache map[string]Pattern
	order []string
}

func NewRecorder() *Recorder {
	return &Recorder{cache: make(map[string]Pattern)}
}

// Capture builds an immutable record from copies of the inputs and stores it
// under label. Re-capturing an existing label overwrites it (last write wins;
// labels come from a monotonically increasing cycle counter in practice).
func (r *Recorder) Capture(label string, activity map[string]int, emotional map[emotion.Affect]float64) Pattern {
	act := make(map[string]int, len(activity))
	total := 0
	for k, v := range activity {
		act[k] = v
		total += v
	}
	emo := make(map[emotion.Affect]float64, len(emotional))
	for k, v := range emotional {
		emo[k] = v
	}

	// Confidence grows with observed activity, saturating at 1.
	conf := float64(total) / (float64(total) + 20.0)

	p := Pattern{
		ID:         uuid.NewString(),
		CycleLabel: label,
		Activity:   act,
		Emotional:  emo,
		CapturedAt: time.Now(),
		Confidence: conf,
	}

	r.mu.Lock()
	if _, exists := r.cache[label]; !exists {
		r.order = append(r.order, label)
	}
	r.cache[label] = p
	r.mu.Unlock()
	return p
}

// Recent returns up to n patterns, newest first, as copies.
func (r *Recorder) Recent(n int) []Pattern {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n <= 0 || n > len(r.order) {
		n = len(r.order)
	}
	out := make([]Pattern, 0, n)
	for i := len(r.order) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, copyPattern(r.cache[r.order[i]]))
	}
	return out
}

// Get returns the pattern stored under label, if any.
func (r *Recorder) Get(label string) (Pattern, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.cache[label]
	if !ok {
		return Pattern{}, false
	}
	return copyPattern(p), true
}

// Len reports how many patterns are cached.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Trim evicts the oldest patterns until at most max remain. max <= 0 keeps
// everything; the recorder itself defines no retention policy.
func (r *Recorder) Trim(max int) {
	if max <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for len(r.order) > max {
		delete(r.cache, r.order[0])
		r.order = r.order[1:]
	}
}

func copyPattern(p Pattern) Pattern {
	act := make(map[string]int, len(p.Activity))
	for k, v := range p.Activity {
		act[k] = v
	}
	emo := make(map[emotion.Affect]float64, len(p.Emotional))
	for k, v := range p.Emotional {
		emo[k] = v
	}
	p.Activity = act
	p.Emotional = emo
	return p
}
