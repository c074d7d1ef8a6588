package maiapress

import (
	"sync"
	"time"
)

// LoginLimiter rate-limits login attempts per client identifier
// (e.g. "login:<ip>") within a sliding window. Entries expire on their own;
// no manual sweep is needed beyond the background cleanup.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
}

// NewLoginLimiter creates a LoginLimiter that allows max attempts per window.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	l := &LoginLimiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
	}
	go l.cleanup()
	return l
}

func (l *LoginLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	for range ticker.C {
		cutoff := time.Now().Add(-l.window)
		l.mu.Lock()
		for id, hits := range l.attempts {
			kept := hits[:0]
			for _, t := range hits {
				if t.After(cutoff) {
					kept = append(kept, t)
				}
			}
			if len(kept) == 0 {
				delete(l.attempts, id)
			} else {
				l.attempts[id] = kept
			}
		}
		l.mu.Unlock()
	}
}

// Allow records an attempt for the identifier and reports whether it was
// within budget. An empty identifier is never allowed.
func (l *LoginLimiter) Allow(id string) bool {
	if id == "" {
		return false
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	hits := l.attempts[id]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	l.attempts[id] = kept
	return len(kept) <= l.max
}

// Remaining returns how many attempts are left in the current window.
// Read-only: it does not record an attempt and never goes below zero.
func (l *LoginLimiter) Remaining(id string) int {
	if id == "" {
		return 0
	}
	cutoff := time.Now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, t := range l.attempts[id] {
		if t.After(cutoff) {
			count++
		}
	}
	if count >= l.max {
		return 0
	}
	return l.max - count
}

// Reset clears recorded attempts for the identifier.
func (l *LoginLimiter) Reset(id string) {
	l.mu.Lock()
	delete(l.attempts, id)
	l.mu.Unlock()
}
