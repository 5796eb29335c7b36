package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const localLimiterMaxKeys = 10000

type localEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

// localLimiter is the in-process fallback used when no Redis is configured.
// Each key gets a token bucket refilling max tokens per window.
type localLimiter struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	now     func() time.Time
}

func newLocalLimiter() *localLimiter {
	return &localLimiter{entries: make(map[string]*localEntry), now: time.Now}
}

func (l *localLimiter) allow(key string, max int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		if len(l.entries) >= localLimiterMaxKeys {
			l.pruneLocked(now, window)
		}
		e = &localEntry{limiter: rate.NewLimiter(rate.Every(window/time.Duration(max)), max)}
		l.entries[key] = e
	}
	e.seen = now
	return e.limiter.AllowN(now, 1)
}

// pruneLocked drops keys idle for longer than a window; their buckets are
// full again anyway.
func (l *localLimiter) pruneLocked(now time.Time, window time.Duration) {
	for k, e := range l.entries {
		if now.Sub(e.seen) > window {
			delete(l.entries, k)
		}
	}
}
