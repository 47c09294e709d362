package ratelimit

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned by Allow when a client has exhausted either window.
var ErrRateLimited = errors.New("too many requests")

// Config holds the two overlapping sliding windows. Both must be set; the
// long window is also the retention horizon for per-client history.
type Config struct {
	ShortWindow time.Duration
	ShortMax    int
	LongWindow  time.Duration
	LongMax     int
}

// Limiter tracks admitted request timestamps per client identifier and
// enforces both windows on every call. All state is in-memory and owned by
// the instance, so tests can construct isolated limiters with a synthetic
// clock.
type Limiter struct {
	mu      sync.Mutex
	config  Config
	history map[string][]time.Time
	now     func() time.Time
}

func New(config Config) *Limiter {
	return NewWithClock(config, time.Now)
}

func NewWithClock(config Config, now func() time.Time) *Limiter {
	return &Limiter{
		config:  config,
		history: make(map[string][]time.Time),
		now:     now,
	}
}

// Allow decides whether a request from clientID may proceed. The whole
// read-prune-decide-append sequence runs under the lock so two concurrent
// requests from the same client cannot both observe stale counts.
//
// Rejected attempts are never recorded; only admitted requests count toward
// future windows. Pruning happens on every call, including rejections, so
// per-client history stays bounded by LongMax plus transient overflow.
func (l *Limiter) Allow(clientID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	longCutoff := now.Add(-l.config.LongWindow)
	shortCutoff := now.Add(-l.config.ShortWindow)

	timestamps := l.history[clientID]
	kept := timestamps[:0]
	for _, t := range timestamps {
		if !t.Before(longCutoff) {
			kept = append(kept, t)
		}
	}

	shortCount := 0
	for _, t := range kept {
		if !t.Before(shortCutoff) {
			shortCount++
		}
	}

	if shortCount >= l.config.ShortMax || len(kept) >= l.config.LongMax {
		l.history[clientID] = kept
		return ErrRateLimited
	}

	l.history[clientID] = append(kept, now)
	return nil
}

// EvictIdle drops clients whose entire history has aged past the long
// window. The reference behavior never evicts keys; this keeps the table
// bounded under address-churning traffic and is safe to run on a ticker.
func (l *Limiter) EvictIdle() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	longCutoff := l.now().Add(-l.config.LongWindow)
	evicted := 0
	for client, timestamps := range l.history {
		stale := true
		for _, t := range timestamps {
			if !t.Before(longCutoff) {
				stale = false
				break
			}
		}
		if stale {
			delete(l.history, client)
			evicted++
		}
	}
	return evicted
}

// Tracked reports how many client identifiers currently hold history.
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.history)
}
