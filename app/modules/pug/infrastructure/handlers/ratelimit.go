package pughandlers

import (
	"sync"
	"time"

	pugdomain "github.com/Black-And-White-Club/pug-bot/app/modules/pug/domain"
	"golang.org/x/time/rate"
)

const (
	// sweepSize is the number of tracked players above which idle buckets are dropped.
	sweepSize = 500
	// idleTTL is how long a player may stay silent before their bucket is dropped.
	idleTTL = 10 * time.Minute
)

type bucket struct {
	tokens *rate.Limiter
	last   time.Time
}

// PlayerRateLimiter gives every player their own token bucket.
type PlayerRateLimiter struct {
	mu      sync.Mutex
	buckets map[pugdomain.PlayerID]*bucket
	every   rate.Limit
	burst   int
	now     func() time.Time
}

// NewPlayerRateLimiter allows each player r commands per second, with bursts of b.
func NewPlayerRateLimiter(r rate.Limit, b int) *PlayerRateLimiter {
	return &PlayerRateLimiter{
		buckets: make(map[pugdomain.PlayerID]*bucket),
		every:   r,
		burst:   b,
		now:     time.Now,
	}
}

// Allow spends one token from id's bucket. A nil limiter never throttles.
func (l *PlayerRateLimiter) Allow(id pugdomain.PlayerID) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.buckets) > sweepSize {
		l.sweep(now)
	}

	b, ok := l.buckets[id]
	if !ok {
		b = &bucket{tokens: rate.NewLimiter(l.every, l.burst)}
		l.buckets[id] = b
	}
	b.last = now
	return b.tokens.AllowN(now, 1)
}

// sweep drops buckets idle for longer than idleTTL. Callers hold mu.
func (l *PlayerRateLimiter) sweep(now time.Time) {
	for id, b := range l.buckets {
		if now.Sub(b.last) > idleTTL {
			delete(l.buckets, id)
		}
	}
}

// Len returns the number of tracked players.
func (l *PlayerRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
