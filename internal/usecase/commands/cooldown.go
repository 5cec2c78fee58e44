package commands

import (
	"sync"
	"time"
)

// CooldownTracker keeps, for one command, the time each actor may invoke it
// again.
type CooldownTracker struct {
	delay time.Duration

	mu      sync.Mutex
	expires map[string]time.Time
}

func NewCooldownTracker(delay time.Duration) *CooldownTracker {
	return &CooldownTracker{
		delay:   delay,
		expires: make(map[string]time.Time),
	}
}

func (t *CooldownTracker) Delay() time.Duration {
	return t.delay
}

// Check returns the time left before actor may run the command, or zero.
func (t *CooldownTracker) Check(actor string, now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remainingLocked(actor, now)
}

func (t *CooldownTracker) Record(actor string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expires[actor] = now.Add(t.delay)
}

// Acquire checks and records in one step. It returns the remaining time and
// false when the actor is still cooling down.
func (t *CooldownTracker) Acquire(actor string, now time.Time) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if remaining := t.remainingLocked(actor, now); remaining > 0 {
		return remaining, false
	}
	t.expires[actor] = now.Add(t.delay)
	return 0, true
}

func (t *CooldownTracker) remainingLocked(actor string, now time.Time) time.Duration {
	expiry, ok := t.expires[actor]
	if !ok || !expiry.After(now) {
		return 0
	}
	return expiry.Sub(now)
}
