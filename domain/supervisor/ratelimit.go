package supervisor

import (
	"sync"

	"golang.org/x/time/rate"
)

// ownerRateLimiter hands out a token-bucket limiter per owner so one
// owner hammering /supervisor can't starve dispatcher capacity for
// everyone else. Limiters are created lazily and kept for the life of
// the process; there is no eviction, so the map grows with the number
// of distinct owners seen.
type ownerRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	perSec   rate.Limit
	burst    int
}

func newOwnerRateLimiter(perMinute float64, burst int) *ownerRateLimiter {
	return &ownerRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		perSec:   rate.Limit(perMinute / 60),
		burst:    burst,
	}
}

// Allow reports whether ownerID may dispatch a task right now,
// consuming a token if so.
func (l *ownerRateLimiter) Allow(ownerID string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[ownerID]
	if !ok {
		lim = rate.NewLimiter(l.perSec, l.burst)
		l.limiters[ownerID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
