// Package engine runs the cognitive cycle: a single background worker that
// executes a fixed phase sequence against the emotion machine, goal ledger
// and pattern recorder, with cooperative cancellation and graceful shutdown.
package engine

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/keshon/mindcycle/internal/emotion"
	"github.com/keshon/mindcycle/internal/goals"
	"github.com/keshon/mindcycle/internal/patterns"
	"github.com/keshon/mindcycle/pkg/worker"
)

const (
	jobCycle = "cycle"
	jobDecay = "decay"

	// DisposeTimeout bounds how long Close waits for workers to unwind.
	DisposeTimeout = 5 * time.Second
)

// Config holds engine timing and retention settings. Zero values are replaced
// with defaults in New.
type Config struct {
	TickMin       time.Duration // lower bound of the randomized inter-tick delay
	TickMax       time.Duration // upper bound
	DecayInterval time.Duration // emotion decay tick
	PatternCap    int           // max cached consciousness patterns, negative = unbounded
	Seed          int64         // rng seed, 0 = clock
	Logger        *log.Logger
}

func (c *Config) applyDefaults() {
	if c.TickMin <= 0 {
		c.TickMin = 3 * time.Second
	}
	if c.TickMax < c.TickMin {
		c.TickMax = c.TickMin + 4*time.Second
	}
	if c.DecayInterval <= 0 {
		c.DecayInterval = emotion.DefaultDecayInterval
	}
	if c.PatternCap == 0 {
		c.PatternCap = 512
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
}

// Engine is one cognitive cycle instance. Lifecycle is owned by the host;
// there is no ambient global instance.
type Engine struct {
	cfg  Config
	log  *log.Logger
	deps Deps

	emotions *emotion.Machine
	goals    *goals.Ledger
	patterns *patterns.Recorder
	limiter  *CallLimiter
	jobs     *worker.Manager
	rng      *rand.Rand // used only by the cycle worker

	mu      sync.Mutex // guards running
	running bool

	statsMu  sync.RWMutex
	state    State
	counters map[string]int
	cycle    int
}

// New creates an Engine with the given collaborators. Any Deps field may be
// nil; its phase is then skipped.
func New(cfg Config, deps Deps) *Engine {
	cfg.applyDefaults()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		cfg:      cfg,
		log:      cfg.Logger,
		deps:     deps,
		emotions: emotion.NewMachine(rand.New(rand.NewSource(seed)), cfg.Logger),
		goals:    goals.NewLedger(rand.New(rand.NewSource(seed+1)), cfg.Logger),
		patterns: patterns.NewRecorder(),
		limiter:  NewCallLimiter(2, 10*time.Second),
		rng:      rand.New(rand.NewSource(seed + 2)),
		state:    StateAwake,
		counters: make(map[string]int),
	}
	e.jobs = worker.NewManager(func(msg string) {
		e.log.Printf("[ENGINE] job=%s", msg)
	})
	return e
}

// Start spawns the cycle worker and the emotion decay worker. Idempotent:
// a second Start logs and returns nil without spawning anything. It returns
// an error only when the background jobs cannot be scheduled at all.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		e.log.Printf("[ENGINE] action=start status=already_running")
		return nil
	}

	if err := e.jobs.Start(jobCycle, e.runLoop); err != nil {
		return fmt.Errorf("starting cycle worker: %w", err)
	}
	if err := e.jobs.Start(jobDecay, func(ctx context.Context) error {
		e.emotions.RunDecay(ctx, e.cfg.DecayInterval)
		return nil
	}); err != nil {
		_ = e.jobs.Stop(jobCycle)
		return fmt.Errorf("starting decay worker: %w", err)
	}

	e.running = true
	e.log.Printf("[ENGINE] action=start tick_min=%s tick_max=%s decay=%s", e.cfg.TickMin, e.cfg.TickMax, e.cfg.DecayInterval)
	return nil
}

// Stop signals cancellation and waits for both workers to exit. Idempotent:
// stopping a stopped engine logs and returns immediately.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		e.log.Printf("[ENGINE] action=stop status=not_running")
		return
	}
	e.jobs.StopAll(0)
	e.running = false
	e.log.Printf("[ENGINE] action=stop status=stopped cycles=%d", e.Cycles())
}

// Close is the dispose path: cancellation plus a bounded wait, proceeding
// regardless so process shutdown never hangs. Best-effort only.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return nil
	}
	clean := e.jobs.StopAll(DisposeTimeout)
	e.running = false
	if !clean {
		e.log.Printf("[ENGINE] action=dispose status=timeout bound=%s", DisposeTimeout)
		return fmt.Errorf("dispose timed out after %s", DisposeTimeout)
	}
	e.log.Printf("[ENGINE] action=dispose status=clean")
	return nil
}

// SubmitEmotionEvent is the sole external mutation entrypoint. Safe for
// concurrent callers; never blocks.
func (e *Engine) SubmitEmotionEvent(trigger, context string, intensity float64) {
	e.emotions.Submit(trigger, context, intensity)
}

// State returns the current engine state.
func (e *Engine) State() State {
	e.statsMu.RLock()
	defer e.statsMu.RUnlock()
	return e.state
}

// CurrentEmotion returns a copy of the current emotional snapshot.
func (e *Engine) CurrentEmotion() emotion.Snapshot {
	return e.emotions.Current()
}

// CurrentIntensity returns the current emotional intensity.
func (e *Engine) CurrentIntensity() float64 {
	return e.emotions.CurrentIntensity()
}

// Intensities returns a copy of every tracked affect intensity.
func (e *Engine) Intensities() map[emotion.Affect]float64 {
	return e.emotions.Intensities()
}

// LearnedPatterns returns a copy of the learned trigger patterns.
func (e *Engine) LearnedPatterns() []emotion.LearnedPattern {
	return e.emotions.Patterns()
}

// DroppedEvents reports emotion events discarded on queue overflow.
func (e *Engine) DroppedEvents() int64 {
	return e.emotions.DroppedEvents()
}

// ActiveGoals returns a copy of the active goal set.
func (e *Engine) ActiveGoals() []goals.Goal {
	return e.goals.Active()
}

// CompletedGoals returns a copy of the goal completion log.
func (e *Engine) CompletedGoals() []goals.Goal {
	return e.goals.Completed()
}

// RecentPatterns returns up to n consciousness patterns, newest first.
func (e *Engine) RecentPatterns(n int) []patterns.Pattern {
	return e.patterns.Recent(n)
}

// Metrics returns a copy of the per-phase invocation counters.
func (e *Engine) Metrics() map[string]int {
	e.statsMu.RLock()
	defer e.statsMu.RUnlock()
	out := make(map[string]int, len(e.counters))
	for k, v := range e.counters {
		out[k] = v
	}
	return out
}

// Cycles returns how many cycles have started this run.
func (e *Engine) Cycles() int {
	e.statsMu.RLock()
	defer e.statsMu.RUnlock()
	return e.cycle
}

func (e *Engine) totalActivity() int {
	e.statsMu.RLock()
	defer e.statsMu.RUnlock()
	total := 0
	for _, v := range e.counters {
		total += v
	}
	return total
}
