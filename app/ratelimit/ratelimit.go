// Package ratelimit provides a fixed-window in-memory request limiter.
//
// State is per-process only: horizontally scaled deployments do not share
// counters, so the effective ceiling is limit × instance count. This is a
// known limitation of the design, not a bug to fix here.
package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	count       int
	windowStart time.Time
}

// Limiter tracks request counts per client identifier in fixed time windows.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	window  time.Duration
	clock   func() time.Time
}

// New creates a Limiter allowing limit requests per client per window.
func New(limit int, windowSize time.Duration) *Limiter {
	return NewWithClock(limit, windowSize, time.Now)
}

// NewWithClock creates a Limiter with an injected clock, for deterministic tests.
func NewWithClock(limit int, windowSize time.Duration, clock func() time.Time) *Limiter {
	return &Limiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  windowSize,
		clock:   clock,
	}
}

// Allow reports whether the client may make another request, counting it if so.
// The check and increment happen under one lock so two concurrent requests
// cannot both claim the last slot.
func (l *Limiter) Allow(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	w, exists := l.clients[clientID]
	if !exists || now.Sub(w.windowStart) >= l.window {
		l.clients[clientID] = &window{count: 1, windowStart: now}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}
