// Package introspect is a rule-based reflection service: it turns an engine
// status snapshot into plain-language insights with confidence scores.
package introspect

import (
	"context"
	"fmt"

	"github.com/keshon/mindcycle/internal/engine"
)

// Status is what the service sees of the engine. The snapshot function keeps
// the dependency direction pointing at the engine's read-only surface.
type Status struct {
	State          engine.State
	Emotion        string
	Intensity      float64
	ActiveGoals    int
	CompletedGoals int
	DroppedEvents  int64
	Cycles         int
}

// Service derives insights from status snapshots. No model behind it; the
// rule table maps thresholds to observations the way behavior directives do.
type Service struct {
	snapshot func() Status
}

func New(snapshot func() Status) *Service {
	return &Service{snapshot: snapshot}
}

// Reflect returns the insights that currently apply.
func (s *Service) Reflect(ctx context.Context) ([]engine.Insight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st := s.snapshot()

	var out []engine.Insight
	switch {
	case st.Intensity > 0.7:
		out = append(out, engine.Insight{
			Text:       fmt.Sprintf("emotional intensity is high (%.2f, %s); recent stimuli dominate", st.Intensity, st.Emotion),
			Confidence: 0.8,
		})
	case st.Intensity < 0.1:
		out = append(out, engine.Insight{
			Text:       "emotional state has decayed to near-neutral; little recent stimulus",
			Confidence: 0.7,
		})
	}

	if st.State == engine.StateHyperactive {
		out = append(out, engine.Insight{
			Text:       "activity level is hyperactive; consider whether stimulus volume is sustainable",
			Confidence: 0.75,
		})
	}
	if st.DroppedEvents > 0 {
		out = append(out, engine.Insight{
			Text:       fmt.Sprintf("%d emotion events were dropped on queue overflow", st.DroppedEvents),
			Confidence: 0.9,
		})
	}
	if st.CompletedGoals > 0 && st.ActiveGoals > 0 {
		ratio := float64(st.CompletedGoals) / float64(st.CompletedGoals+st.ActiveGoals)
		out = append(out, engine.Insight{
			Text:       fmt.Sprintf("%d goals completed so far (%.0f%% of all tracked)", st.CompletedGoals, ratio*100),
			Confidence: 0.6,
		})
	}
	if len(out) == 0 {
		out = append(out, engine.Insight{
			Text:       fmt.Sprintf("steady state after %d cycles; nothing remarkable", st.Cycles),
			Confidence: 0.5,
		})
	}
	return out, nil
}
