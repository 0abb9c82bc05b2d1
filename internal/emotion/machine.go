package emotion

import (
	"context"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"
)

const (
	// TransitionAlpha blends incoming intensity into the current one.
	TransitionAlpha = 0.3
	// LabelSwitchThreshold: the label only changes when the blended intensity
	// exceeds this. Small stimuli nudge magnitude without relabeling the mood.
	LabelSwitchThreshold = 0.5

	// DecayFactor is applied to every tracked intensity per decay tick.
	DecayFactor    = 0.98
	IntensityFloor = 0.01

	// NoiseChance is the probability of injecting a random low-intensity
	// background event on a decay tick.
	NoiseChance       = 0.1
	NoiseMaxIntensity = 0.3

	DefaultDecayInterval = 5 * time.Second

	queueCapacity = 256
)

// noiseTriggers map each affect to a trigger word that classifies back to it.
var noiseTriggers = map[Affect]string{
	AffectCalm:         "тишина",
	AffectCuriosity:    "интересно",
	AffectFrustration:  "сбой",
	AffectJoy:          "радость",
	AffectSatisfaction: "готово",
}

// Machine owns one affective snapshot, a bounded FIFO event queue and the
// learned trigger patterns. Enqueue is many-writer safe; Drain and the decay
// loop run on the engine worker. All reads return copies.
type Machine struct {
	mu          sync.RWMutex
	current     Snapshot
	intensities map[Affect]float64
	patterns    map[string]*LearnedPattern
	dropped     int64

	queue chan Event
	rng   *rand.Rand
	log   *log.Logger
}

// NewMachine creates a Machine starting at a neutral half-intensity calm.
// rng must be a per-instance seeded generator (decay noise uses it); logger
// may be nil to disable logging.
func NewMachine(rng *rand.Rand, logger *log.Logger) *Machine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	m := &Machine{
		current: Snapshot{
			Type:      AffectCalm,
			Intensity: 0.5,
			ChangedAt: time.Now(),
		},
		intensities: make(map[Affect]float64, len(AllAffects())),
		patterns:    make(map[string]*LearnedPattern),
		queue:       make(chan Event, queueCapacity),
		rng:         rng,
		log:         logger,
	}
	for _, a := range AllAffects() {
		m.intensities[a] = 0
	}
	m.intensities[AffectCalm] = 0.5
	return m
}

// Submit enqueues an event. Safe for concurrent callers. When the queue is
// full the oldest event is dropped so submitters never block.
func (m *Machine) Submit(trigger, context string, intensity float64) {
	ev := Event{
		Trigger:     trigger,
		Context:     context,
		Intensity:   clamp01(intensity),
		SubmittedAt: time.Now(),
	}
	for {
		select {
		case m.queue <- ev:
			return
		default:
		}
		select {
		case <-m.queue:
			m.mu.Lock()
			m.dropped++
			m.mu.Unlock()
		default:
		}
	}
}

// Drain dequeues and processes up to max queued events. Single reader only.
func (m *Machine) Drain(max int) int {
	n := 0
	for n < max {
		select {
		case ev := <-m.queue:
			m.ProcessEvent(ev.Trigger, ev.Context, ev.Intensity)
			n++
		default:
			return n
		}
	}
	return n
}

// ProcessEvent classifies the stimulus, blends it into current state, updates
// the learned pattern for its (trigger, context) pair and returns the updated
// snapshot. Never fails; intensity is clamped defensively.
func (m *Machine) ProcessEvent(trigger, context string, intensity float64) Snapshot {
	intensity = clamp01(intensity)
	label := Classify(trigger, context)

	m.mu.Lock()
	blended := m.current.Intensity*(1-TransitionAlpha) + intensity*TransitionAlpha
	blended = clamp01(blended)
	m.current.Intensity = blended
	if blended > LabelSwitchThreshold && m.current.Type != label {
		if m.log != nil {
			m.log.Printf("[EMOTION] action=switch from=%s to=%s intensity=%.2f trigger=%q", m.current.Type, label, blended, trigger)
		}
		m.current.Type = label
		m.current.ChangedAt = time.Now()
	}
	m.intensities[label] = m.intensities[label]*(1-TransitionAlpha) + intensity*TransitionAlpha

	key := patternKey(trigger, context)
	if p, ok := m.patterns[key]; ok {
		p.Occurrences++
		p.Confidence = math.Min(1.0, p.Confidence+0.1)
		p.Expected = label
	} else {
		m.patterns[key] = &LearnedPattern{
			Trigger:     trigger,
			Context:     context,
			Expected:    label,
			Confidence:  0.5,
			Occurrences: 1,
		}
	}
	snap := m.current
	m.mu.Unlock()
	return snap
}

// RunDecay decays all tracked intensities on a fixed interval until ctx is
// cancelled. Occasionally injects a low-intensity background noise event.
func (m *Machine) RunDecay(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultDecayInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.DecayTick()
			if m.rng.Float64() < NoiseChance {
				affects := AllAffects()
				a := affects[m.rng.Intn(len(affects))]
				m.Submit(noiseTriggers[a], "фоновый шум", m.rng.Float64()*NoiseMaxIntensity)
			}
		}
	}
}

// DecayTick applies one decay step to every tracked affect and the snapshot.
func (m *Machine) DecayTick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for a, v := range m.intensities {
		v *= DecayFactor
		if v < IntensityFloor {
			v = 0
		}
		m.intensities[a] = v
	}
	m.current.Intensity *= DecayFactor
	if m.current.Intensity < IntensityFloor {
		m.current.Intensity = 0
	}
}

// Current returns a copy of the current snapshot.
func (m *Machine) Current() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// CurrentIntensity returns the snapshot intensity.
func (m *Machine) CurrentIntensity() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Intensity
}

// Intensities returns a copy of all tracked per-affect intensities.
func (m *Machine) Intensities() map[Affect]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[Affect]float64, len(m.intensities))
	for a, v := range m.intensities {
		out[a] = v
	}
	return out
}

// Patterns returns a copy of all learned patterns.
func (m *Machine) Patterns() []LearnedPattern {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]LearnedPattern, 0, len(m.patterns))
	for _, p := range m.patterns {
		out = append(out, *p)
	}
	return out
}

// Pattern returns the learned pattern for a (trigger, context) pair, if any.
func (m *Machine) Pattern(trigger, context string) (LearnedPattern, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.patterns[patternKey(trigger, context)]
	if !ok {
		return LearnedPattern{}, false
	}
	return *p, true
}

// DroppedEvents reports how many events were discarded on queue overflow.
func (m *Machine) DroppedEvents() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dropped
}

func patternKey(trigger, context string) string {
	return trigger + "|" + context
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
