// Package learning is an in-memory learning service: repeated samples raise
// rule weights by small bounded deltas, validated in code rather than trusted
// from the input.
package learning

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/keshon/mindcycle/internal/engine"
)

const (
	initialWeight = 0.3
	weightStep    = 0.1
	maxWeight     = 1.0
)

// Rule is one adapted response rule.
type Rule struct {
	Trigger string  `json:"trigger"`
	Context string  `json:"context"`
	Weight  float64 `json:"weight"` // 0..1
	Seen    int     `json:"seen"`
	Last    string  `json:"last"` // most recent response snippet
}

// Service accumulates rules from (trigger, response, context) samples.
// Safe for concurrent use.
type Service struct {
	mu    sync.Mutex
	rules map[string]*Rule
}

func New() *Service {
	return &Service{rules: make(map[string]*Rule)}
}

// Adapt folds the samples into the rule base and returns one summary line per
// touched rule, in stable order.
func (s *Service) Adapt(ctx context.Context, samples []engine.Sample) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	touched := make(map[string]bool, len(samples))
	for _, sm := range samples {
		key := sm.Trigger + "|" + sm.Context
		r, ok := s.rules[key]
		if !ok {
			r = &Rule{Trigger: sm.Trigger, Context: sm.Context, Weight: initialWeight}
			s.rules[key] = r
		} else {
			r.Weight += weightStep
			if r.Weight > maxWeight {
				r.Weight = maxWeight
			}
		}
		r.Seen++
		r.Last = sm.Response
		touched[key] = true
	}

	keys := make([]string, 0, len(touched))
	for k := range touched {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		r := s.rules[k]
		out = append(out, fmt.Sprintf("rule %s weight=%.2f seen=%d", k, r.Weight, r.Seen))
	}
	return out, nil
}

// Rules returns a copy of the current rule base.
func (s *Service) Rules() []Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Rule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Trigger != out[j].Trigger {
			return out[i].Trigger < out[j].Trigger
		}
		return out[i].Context < out[j].Context
	})
	return out
}
