package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/keshon/mindcycle/internal/goals"
	"github.com/keshon/mindcycle/pkg/util"
)

const (
	// errorBackoff is slept after a failed phase before continuing.
	errorBackoff = 2 * time.Second

	// collabTimeout bounds any single collaborator call.
	collabTimeout = 3 * time.Second

	drainBatch       = 64
	recentMemories   = 25
	learningMemories = 10
	metricsEvery     = 10
)

// internalTriggers are the fixed low-intensity stimuli the engine feeds to
// the emotion machine on every cycle. They model the hum of background work.
var internalTriggers = []struct {
	trigger, context string
	intensity        float64
}{
	{"цикл размышления", "обучение", 0.1},
	{"фоновая работа", "рутина", 0.05},
	{"наблюдение", "окружение", 0.08},
}

type phase struct {
	name string
	fn   func(ctx context.Context) error
}

// runLoop is the cycle worker. One full phase sequence per tick, randomized
// inter-tick delay, cancellable at every suspension point.
func (e *Engine) runLoop(ctx context.Context) error {
	for {
		e.statsMu.Lock()
		e.cycle++
		n := e.cycle
		e.statsMu.Unlock()

		e.runCycle(ctx, n)

		if ctx.Err() != nil {
			e.log.Printf("[ENGINE] action=loop_exit cycles=%d", n)
			return nil
		}

		select {
		case <-ctx.Done():
			e.log.Printf("[ENGINE] action=loop_exit cycles=%d", n)
			return nil
		case <-time.After(e.tickDelay()):
		}
	}
}

// tickDelay picks a uniform random delay in [TickMin, TickMax] so multiple
// engine instances in one process do not tick in lockstep.
func (e *Engine) tickDelay() time.Duration {
	span := e.cfg.TickMax - e.cfg.TickMin
	if span <= 0 {
		return e.cfg.TickMin
	}
	return e.cfg.TickMin + time.Duration(e.rng.Int63n(int64(span)))
}

// runCycle executes the fixed phase order. A failed phase is logged and
// backed off, then subsequent phases still run; cancellation exits cleanly.
func (e *Engine) runCycle(ctx context.Context, cycle int) {
	seq := []phase{
		{"drain_events", e.phaseDrainEvents},
		{"reflection", e.phaseReflection},
		{"emotion_processing", e.phaseEmotions},
		{"goal_analysis", e.phaseGoals},
		{"learning", e.phaseLearning},
		{"thought_generation", e.phaseThought},
		{"memory_consolidation", e.phaseConsolidation},
		{"pattern_capture", func(ctx context.Context) error { return e.phaseCapture(cycle) }},
		{"state_transition", e.phaseStateTransition},
	}

	for _, p := range seq {
		if ctx.Err() != nil {
			return
		}
		if err := e.runPhase(ctx, p); err != nil {
			if ctx.Err() != nil {
				return
			}
			e.log.Printf("[ENGINE] action=phase_error cycle=%d phase=%s err=%v", cycle, p.name, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(errorBackoff):
			}
		}
	}

	if cycle%metricsEvery == 0 {
		e.logMetrics(cycle)
	}
}

// runPhase invokes one phase, converting panics to errors so a single bad
// phase never kills the worker. Successful invocations bump the counter.
func (e *Engine) runPhase(ctx context.Context, p phase) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if err := p.fn(ctx); err != nil {
		return err
	}
	e.statsMu.Lock()
	e.counters[p.name]++
	e.statsMu.Unlock()
	return nil
}

func (e *Engine) phaseDrainEvents(ctx context.Context) error {
	if n := e.emotions.Drain(drainBatch); n > 0 {
		e.log.Printf("[ENGINE] action=drain events=%d", n)
	}
	return nil
}

func (e *Engine) phaseReflection(ctx context.Context) error {
	if e.deps.Introspector == nil {
		return nil
	}
	if !e.limiter.Allow("introspector", time.Now()) {
		return nil
	}
	cctx, cancel := context.WithTimeout(ctx, collabTimeout)
	defer cancel()
	insights, err := e.deps.Introspector.Reflect(cctx)
	if err != nil {
		return fmt.Errorf("reflect: %w", err)
	}
	for _, in := range insights {
		e.log.Printf("[ENGINE] action=insight confidence=%.2f text=%q", in.Confidence, in.Text)
	}
	return nil
}

func (e *Engine) phaseEmotions(ctx context.Context) error {
	for _, t := range internalTriggers {
		e.emotions.ProcessEvent(t.trigger, t.context, t.intensity)
	}
	return nil
}

func (e *Engine) phaseGoals(ctx context.Context) error {
	done := e.goals.Tick(time.Now())
	e.goals.EnsureFloor(goals.MinimumActive)
	if done > 0 {
		e.log.Printf("[ENGINE] action=goals_completed count=%d active=%d", done, len(e.goals.Active()))
	}
	return nil
}

func (e *Engine) phaseLearning(ctx context.Context) error {
	if e.deps.Learner == nil || e.deps.Memories == nil {
		return nil
	}
	if !e.limiter.Allow("learner", time.Now()) {
		return nil
	}
	cctx, cancel := context.WithTimeout(ctx, collabTimeout)
	defer cancel()

	mems, err := e.deps.Memories.Recent(cctx, learningMemories)
	if err != nil {
		return fmt.Errorf("recent memories: %w", err)
	}
	if len(mems) == 0 {
		return nil
	}
	samples := make([]Sample, 0, len(mems))
	for _, m := range mems {
		samples = append(samples, Sample{
			Trigger:  m.Category,
			Response: truncate(m.Content, 80),
			Context:  "memory_replay",
		})
	}
	summaries, err := e.deps.Learner.Adapt(cctx, samples)
	if err != nil {
		return fmt.Errorf("adapt: %w", err)
	}
	if len(summaries) > 0 {
		e.log.Printf("[ENGINE] action=learned rules=%d first=%q", len(summaries), summaries[0])
	}
	return nil
}

// phaseThought produces log-only text; no side effects on shared state.
func (e *Engine) phaseThought(ctx context.Context) error {
	snap := e.emotions.Current()
	active := e.goals.Active()
	top := ""
	best := -1.0
	for _, g := range active {
		if g.Priority > best {
			best = g.Priority
			top = g.Name
		}
	}
	e.log.Printf("[ENGINE] action=thought state=%s emotion=%s intensity=%.2f goals=%d focus=%s",
		e.State(), snap.Type, snap.Intensity, len(active), top)
	return nil
}

func (e *Engine) phaseConsolidation(ctx context.Context) error {
	if e.deps.Memories == nil || e.deps.Persister == nil {
		return nil
	}
	cctx, cancel := context.WithTimeout(ctx, collabTimeout)
	defer cancel()

	mems, err := e.deps.Memories.Recent(cctx, recentMemories)
	if err != nil {
		return fmt.Errorf("recent memories: %w", err)
	}
	if len(mems) == 0 {
		return nil
	}
	cons := consolidate(mems, time.Now())
	if err := persistConsolidations(cctx, e.deps.Persister, cons); err != nil {
		return fmt.Errorf("persist consolidation: %w", err)
	}
	e.log.Printf("[ENGINE] action=consolidate categories=%d memories=%d", len(cons), len(mems))
	return nil
}

// consolidate groups memories by category and derives one summary per group,
// ordered by category for stable output.
func consolidate(mems []MemoryRecord, now time.Time) []Consolidation {
	byCat := make(map[string][]MemoryRecord)
	for _, m := range mems {
		cat := m.Category
		if cat == "" {
			cat = "uncategorized"
		}
		byCat[cat] = append(byCat[cat], m)
	}
	cats := make([]string, 0, len(byCat))
	for c := range byCat {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	out := make([]Consolidation, 0, len(cats))
	for _, c := range cats {
		group := byCat[c]
		summary := truncate(group[0].Content, 120)
		if len(group) > 1 {
			summary += fmt.Sprintf(" (+%d more)", len(group)-1)
		}
		out = append(out, Consolidation{
			Category: c,
			Count:    len(group),
			Summary:  summary,
			At:       now,
		})
	}
	return out
}

// persistConsolidations saves each category summary with a bounded fan-out.
func persistConsolidations(ctx context.Context, p Persister, cons []Consolidation) error {
	return util.Parallel(ctx, cons, 4, func(ctx context.Context, c Consolidation) error {
		return p.SaveConsolidation(ctx, c)
	})
}

func (e *Engine) phaseCapture(cycle int) error {
	label := fmt.Sprintf("pattern_cycle_%d", cycle)
	e.patterns.Capture(label, e.Metrics(), e.emotions.Intensities())
	e.patterns.Trim(e.cfg.PatternCap)
	return nil
}

func (e *Engine) phaseStateTransition(ctx context.Context) error {
	total := e.totalActivity()
	intensity := e.emotions.CurrentIntensity()
	next := EvaluateState(total, intensity)

	e.statsMu.Lock()
	prev := e.state
	e.state = next
	e.statsMu.Unlock()

	if next != prev {
		e.log.Printf("[ENGINE] action=state_change from=%s to=%s activity=%d intensity=%.2f", prev, next, total, intensity)
	}
	return nil
}

func (e *Engine) logMetrics(cycle int) {
	m := e.Metrics()
	parts := make([]string, 0, len(m))
	for k, v := range m {
		parts = append(parts, fmt.Sprintf("%s=%d", k, v))
	}
	sort.Strings(parts)
	e.log.Printf("[ENGINE] action=metrics cycle=%d %s", cycle, strings.Join(parts, " "))
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
