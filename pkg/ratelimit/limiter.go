// Package ratelimit implements a per-identifier continuous token bucket.
// Unlike a fixed-window counter it has no burst-at-boundary artifact and
// needs no background timer: refill happens arithmetically on every check.
package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Admitted   bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type entry struct {
	tokens     float64
	lastRefill time.Time
}

// Limiter is one named bucket space. Multiple limiters with distinct
// (limit, window) pairs are independent; entries never interact across them.
type Limiter struct {
	name   string
	limit  int
	window time.Duration

	mu        sync.Mutex
	entries   map[string]*entry
	lastSweep time.Time

	now func() time.Time
}

// New creates a limiter admitting at most limit requests per identifier
// per window.
func New(name string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		name:    name,
		limit:   limit,
		window:  window,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Name returns the limiter's bucket-space name.
func (l *Limiter) Name() string { return l.name }

// Check refills the identifier's bucket for the elapsed time and consumes
// one token when available. Entries are created lazily on first use; a lazy
// sweep piggybacked here removes entries idle longer than twice the window.
func (l *Limiter) Check(identifier string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepLocked(now)

	e, ok := l.entries[identifier]
	if !ok {
		e = &entry{tokens: float64(l.limit), lastRefill: now}
		l.entries[identifier] = e
	} else {
		elapsed := now.Sub(e.lastRefill)
		e.tokens += elapsed.Seconds() / l.window.Seconds() * float64(l.limit)
		if e.tokens > float64(l.limit) {
			e.tokens = float64(l.limit)
		}
		e.lastRefill = now
	}

	d := Decision{Limit: l.limit}
	if e.tokens >= 1 {
		e.tokens--
		d.Admitted = true
	}
	d.Remaining = int(e.tokens)
	d.ResetAt = l.resetAt(e, now)
	if !d.Admitted {
		d.RetryAfter = d.ResetAt.Sub(now)
	}
	return d
}

// resetAt extrapolates when the bucket next holds a whole token.
func (l *Limiter) resetAt(e *entry, now time.Time) time.Time {
	if e.tokens >= 1 {
		return now
	}
	deficit := 1 - e.tokens
	wait := time.Duration(deficit / float64(l.limit) * float64(l.window))
	return now.Add(wait)
}

// sweepLocked runs at most once per window and deletes entries that have not
// been seen for 2x the window, bounding memory for long-lived processes.
func (l *Limiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	idle := 2 * l.window
	for id, e := range l.entries {
		if now.Sub(e.lastRefill) > idle {
			delete(l.entries, id)
		}
	}
}

// size reports the number of live entries; used by tests.
func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Identify derives a stable rate-limit identifier. The bearer credential is
// preferred over the IP so shared-NAT callers cannot exhaust each other's
// budget; IP is fallback only.
func Identify(bearerToken, ip string) string {
	if bearerToken != "" {
		sum := sha256.Sum256([]byte(bearerToken))
		return hex.EncodeToString(sum[:])
	}
	return "ip:" + ip
}
