// Package ratelimit provides a per-key fixed-window attempt counter used to
// throttle authentication endpoints.
//
// The in-memory implementation is process local. A multi-instance deployment
// needs a Limiter backed by a shared counter instead; callers only depend on
// the interface.
package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Limiter counts attempts per key.
type Limiter interface {
	// CheckAndIncrement records one attempt for key, or returns
	// *ExceededError without recording when the window is already full.
	CheckAndIncrement(key string) error
	// Reset forgets key so the next attempt starts a fresh window.
	Reset(key string)
}

// ExceededError is returned once max attempts were made inside the window.
type ExceededError struct {
	RetryAfter time.Duration
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("Too many attempts. Try again in %ds", e.RetrySeconds())
}

// RetrySeconds is RetryAfter truncated to whole seconds, never negative.
func (e *ExceededError) RetrySeconds() int {
	s := int(e.RetryAfter / time.Second)
	if s < 0 {
		return 0
	}
	return s
}

type window struct {
	start time.Time
	count int
}

// FixedWindow is an in-memory Limiter. The zero value is not usable; use
// NewFixedWindow.
type FixedWindow struct {
	mu          sync.Mutex
	maxAttempts int
	length      time.Duration
	entries     map[string]window
	now         func() time.Time
}

func NewFixedWindow(maxAttempts int, length time.Duration) *FixedWindow {
	return &FixedWindow{
		maxAttempts: maxAttempts,
		length:      length,
		entries:     make(map[string]window),
		now:         time.Now,
	}
}

func (l *FixedWindow) CheckAndIncrement(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.entries[key]
	if !ok || now.Sub(w.start) > l.length {
		w = window{start: now}
	}

	if w.count >= l.maxAttempts {
		return &ExceededError{RetryAfter: l.length - now.Sub(w.start)}
	}

	w.count++
	l.entries[key] = w
	return nil
}

func (l *FixedWindow) Reset(key string) {
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()
}

// Sweep drops every key whose window has elapsed and reports how many were
// removed. It bounds memory to the keys active within one window.
func (l *FixedWindow) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for k, w := range l.entries {
		if now.Sub(w.start) > l.length {
			delete(l.entries, k)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked keys.
func (l *FixedWindow) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// CeilSeconds rounds d up to whole seconds for the Retry-After header.
func CeilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
