package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a sliding-window counter keyed by caller IP. Registration is the
// only endpoint cheap enough to abuse anonymously, so it sits behind one.
type Limiter struct {
	limit  int
	window time.Duration

	mu     sync.Mutex
	visits map[string][]time.Time
}

func New(limit int, window time.Duration) *Limiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}

	return &Limiter{
		limit:  limit,
		window: window,
		visits: make(map[string][]time.Time),
	}
}

func (limiter *Limiter) Allow(key string) bool {
	now := time.Now()
	cutoff := now.Add(-limiter.window)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	recent := limiter.visits[key][:0]
	for _, visit := range limiter.visits[key] {
		if visit.After(cutoff) {
			recent = append(recent, visit)
		}
	}

	if len(recent) >= limiter.limit {
		limiter.visits[key] = recent
		return false
	}

	limiter.visits[key] = append(recent, now)
	return true
}
