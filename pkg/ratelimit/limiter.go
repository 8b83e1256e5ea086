package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a sliding-window counter keyed by caller identity. The feed
// endpoints use it to keep any one user from exhausting the upstream relay
// chain's tolerance.
type Limiter struct {
	maxAttempts int
	window      time.Duration

	attempts map[string][]time.Time
	mu       sync.Mutex
}

func NewLimiter(maxAttempts int, window time.Duration) *Limiter {
	l := &Limiter{
		maxAttempts: maxAttempts,
		window:      window,
		attempts:    make(map[string][]time.Time),
	}
	go l.cleanup()
	return l
}

// Allow records an attempt for key and reports whether it fits inside the
// window.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-l.window)

	var valid []time.Time
	for _, ts := range l.attempts[key] {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= l.maxAttempts {
		l.attempts[key] = valid
		return false
	}

	l.attempts[key] = append(valid, now)
	return true
}

func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}

// cleanup drops keys whose attempts have all aged out, so idle users do not
// accumulate in the map forever.
func (l *Limiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		cutoff := time.Now().Add(-l.window)
		for key, attempts := range l.attempts {
			live := false
			for _, ts := range attempts {
				if ts.After(cutoff) {
					live = true
					break
				}
			}
			if !live {
				delete(l.attempts, key)
			}
		}
		l.mu.Unlock()
	}
}
