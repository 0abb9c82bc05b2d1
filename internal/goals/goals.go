// Package goals tracks a small working set of weighted goals and keeps
// priorities fresh relative to progress.
package goals

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// MinimumActive is the floor below which new goals are synthesized.
	MinimumActive = 5

	// MaxProgressStep bounds the per-tick random progress increment.
	// Stand-in for a real progress source; the Tick interface stays.
	MaxProgressStep = 0.05

	minPriority = 0.1
	maxPriority = 1.0
)

// Goal is one prioritized unit of background effort.
type Goal struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Priority     float64    `json:"priority"`      // 0..1, recomputed every tick
	BasePriority float64    `json:"base_priority"` // 0..1, fixed at creation
	Progress     float64    `json:"progress"`      // 0..1
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// catalog of goals synthesized when the active set falls below the floor.
var catalog = []struct {
	name, description string
	priority          float64
}{
	{"pattern_recognition", "recognize recurring activity patterns", 0.6},
	{"emotional_intelligence", "refine trigger-to-emotion associations", 0.6},
	{"knowledge_expansion", "broaden the learned rule base", 0.5},
	{"self_reflection", "review recent cycles for drift", 0.5},
	{"memory_consolidation", "keep consolidated summaries current", 0.4},
	{"social_attunement", "track external stimulus sources", 0.4},
}

// Ledger owns the goal collection. Mutated only from the engine worker;
// accessors return copies.
type Ledger struct {
	mu        sync.RWMutex
	active    []*Goal
	completed []Goal
	rng       *rand.Rand
	log       *log.Logger
}

// NewLedger creates a ledger seeded with the initial catalog floor.
func NewLedger(rng *rand.Rand, logger *log.Logger) *Ledger {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	l := &Ledger{rng: rng, log: logger}
	l.EnsureFloor(MinimumActive)
	return l
}

// Tick advances progress on every active goal and recomputes priority as
// clamp(base * (1 - progress), 0.1, 1.0). Goals reaching full progress move
// to the completed log and are never reactivated. Returns completed count.
func (l *Ledger) Tick(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var remaining []*Goal
	done := 0
	for _, g := range l.active {
		g.Progress = clamp01(g.Progress + l.rng.Float64()*MaxProgressStep)
		g.Priority = clampPriority(g.BasePriority * (1 - g.Progress))
		if g.Progress >= 1.0 {
			g.Progress = 1.0
			t := now
			g.CompletedAt = &t
			l.completed = append(l.completed, *g)
			done++
			if l.log != nil {
				l.log.Printf("[GOALS] action=complete name=%s id=%s", g.Name, g.ID)
			}
			continue
		}
		remaining = append(remaining, g)
	}
	l.active = remaining
	return done
}

// EnsureFloor synthesizes catalog goals until at least min are active.
func (l *Ledger) EnsureFloor(min int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.active) >= min {
		return
	}
	names := make(map[string]bool, len(l.active))
	for _, g := range l.active {
		names[g.Name] = true
	}
	for _, c := range catalog {
		if len(l.active) >= min {
			break
		}
		if names[c.name] {
			continue
		}
		g := &Goal{
			ID:           uuid.NewString(),
			Name:         c.name,
			Description:  c.description,
			Priority:     c.priority,
			BasePriority: c.priority,
			CreatedAt:    time.Now(),
		}
		l.active = append(l.active, g)
		names[c.name] = true
		if l.log != nil {
			l.log.Printf("[GOALS] action=spawn name=%s priority=%.2f", g.Name, g.Priority)
		}
	}
}

// Active returns a copy of the active goals.
func (l *Ledger) Active() []Goal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Goal, 0, len(l.active))
	for _, g := range l.active {
		out = append(out, *g)
	}
	return out
}

// Completed returns a copy of the completion log.
func (l *Ledger) Completed() []Goal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Goal, len(l.completed))
	copy(out, l.completed)
	return out
}

func clampPriority(x float64) float64 {
	if x < minPriority {
		return minPriority
	}
	if x > maxPriority {
		return maxPriority
	}
	return x
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
