// Package readiness tracks how long the service has been idle so the front
// end can warn users that the first job after a quiet stretch may start
// slowly. The gate is advisory; it never blocks or reorders work.
package readiness

import (
	"sync"
	"time"
)

// Gate records activity timestamps and classifies new arrivals as warm or
// cold. Safe for concurrent use.
type Gate struct {
	mu           sync.Mutex
	threshold    time.Duration
	lastActivity time.Time
	now          func() time.Time
}

// New builds a gate with the given idle threshold. A zero or negative
// threshold disables cold-start detection entirely.
func New(threshold time.Duration) *Gate {
	return &Gate{threshold: threshold, now: time.Now}
}

// Observe registers an arrival and reports whether it hit a cold service.
// The very first arrival after boot counts as cold.
func (g *Gate) Observe() bool {
	if g == nil || g.threshold <= 0 {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	cold := g.lastActivity.IsZero() || now.Sub(g.lastActivity) >= g.threshold
	g.lastActivity = now
	return cold
}

// Touch records activity without classifying it. Used by work that should
// keep the service warm but is not itself a user request.
func (g *Gate) Touch() {
	if g == nil || g.threshold <= 0 {
		return
	}
	g.mu.Lock()
	g.lastActivity = g.now()
	g.mu.Unlock()
}

// IdleFor reports how long the gate has been without activity.
func (g *Gate) IdleFor() time.Duration {
	if g == nil {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastActivity.IsZero() {
		return 0
	}
	return g.now().Sub(g.lastActivity)
}
