package services

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// loginGuard throttles failed logins per username. Each username owns a token
// bucket of maxAttempts tokens refilled over window. Every attempt takes a
// token up front and a successful login drops the bucket, so only failures
// stay charged.
type loginGuard struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	entries map[string]*guardBucket
	now     func() time.Time
}

type guardBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// newLoginGuard returns nil when maxAttempts <= 0; a nil guard allows everything.
func newLoginGuard(maxAttempts int, window time.Duration) *loginGuard {
	if maxAttempts <= 0 {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	return &loginGuard{
		limit:   rate.Every(window / time.Duration(maxAttempts)),
		burst:   maxAttempts,
		ttl:     window,
		entries: make(map[string]*guardBucket),
		now:     time.Now,
	}
}

// take reserves one attempt for username before the password is checked,
// so concurrent attempts cannot all slip past the limit. It reports false
// when the bucket is empty.
func (g *loginGuard) take(username string) bool {
	if g == nil {
		return true
	}
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	for k, v := range g.entries {
		if now.Sub(v.lastSeen) > g.ttl {
			delete(g.entries, k)
		}
	}

	b := g.entries[username]
	if b == nil {
		b = &guardBucket{lim: rate.NewLimiter(g.limit, g.burst)}
		g.entries[username] = b
	}
	b.lastSeen = now
	return b.lim.AllowN(now, 1)
}

func (g *loginGuard) reset(username string) {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.entries, username)
}
