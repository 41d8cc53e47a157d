// Package ratelimit throttles sensitive mutation classes per actor.
package ratelimit

import (
	"sync"
	"time"

	"backend/pkg/apperror"
)

const (
	// DefaultLimit is the number of consumptions allowed per window.
	DefaultLimit = 10
	// DefaultWindow is the fixed throttle window.
	DefaultWindow = 60 * time.Second
)

type windowState struct {
	startedAt time.Time
	count     int
}

// Limiter is a fixed-window counter keyed by (actor, mutation class).
// The window starts at the first consumption and expires Window later;
// the first consumption after expiry starts a fresh window. Counters are
// independent across actors and classes.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*windowState
	now     func() time.Time
}

// New returns a limiter allowing limit consumptions per window per key.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*windowState),
		now:     time.Now,
	}
}

// NewDefault returns a limiter with the production limits.
func NewDefault() *Limiter {
	return New(DefaultLimit, DefaultWindow)
}

// SetClock overrides the time source. Tests only.
func (l *Limiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Consume takes one unit from the window for (actorID, mutationClass).
// locationID is carried into the error metadata only; scoping of the
// counter itself is per actor so one location's users cannot starve
// another actor at the same location.
func (l *Limiter) Consume(actorID, locationID, mutationClass string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := actorID + "|" + mutationClass
	now := l.now()

	state, ok := l.buckets[key]
	if !ok || now.Sub(state.startedAt) >= l.window {
		l.buckets[key] = &windowState{startedAt: now, count: 1}
		return nil
	}

	if state.count >= l.limit {
		return apperror.RateLimited("mutation class %q throttled for actor", mutationClass).
			WithMeta("actor_id", actorID).
			WithMeta("location_id", locationID).
			WithMeta("mutation_class", mutationClass).
			WithMeta("limit", l.limit)
	}

	state.count++
	return nil
}

// Reset clears all windows. Tests only.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets = make(map[string]*windowState)
}
