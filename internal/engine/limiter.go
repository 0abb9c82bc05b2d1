package engine

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// CallLimiter bounds how often collaborator services are called: a global
// rate across all collaborators plus a per-collaborator cooldown. A denied
// call means the phase is skipped this cycle, not an error.
type CallLimiter struct {
	mu       sync.Mutex
	global   *rate.Limiter
	cooldown time.Duration
	last     map[string]time.Time
}

// NewCallLimiter creates a limiter allowing perSecond calls globally with the
// given per-collaborator cooldown.
func NewCallLimiter(perSecond float64, cooldown time.Duration) *CallLimiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &CallLimiter{
		global:   rate.NewLimiter(rate.Limit(perSecond), burst),
		cooldown: cooldown,
		last:     make(map[string]time.Time),
	}
}

// Allow reports whether a call to the named collaborator may proceed at now,
// and records it if so.
func (l *CallLimiter) Allow(name string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.last[name]; ok && now.Sub(last) < l.cooldown {
		return false
	}
	if !l.global.AllowN(now, 1) {
		return false
	}
	l.last[name] = now
	return true
}
