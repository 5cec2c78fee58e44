package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownTrackerCheckAndRecord(t *testing.T) {
	tracker := NewCooldownTracker(5 * time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 5*time.Second, tracker.Delay())
	assert.Zero(t, tracker.Check("twitch:1", now))

	tracker.Record("twitch:1", now)
	assert.Equal(t, 5*time.Second, tracker.Check("twitch:1", now))
	assert.Equal(t, 2*time.Second, tracker.Check("twitch:1", now.Add(3*time.Second)))
	assert.Zero(t, tracker.Check("twitch:1", now.Add(5*time.Second)))
	assert.Zero(t, tracker.Check("twitch:2", now))
}

func TestCooldownTrackerAcquire(t *testing.T) {
	tracker := NewCooldownTracker(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	remaining, ok := tracker.Acquire("kick:9", now)
	assert.True(t, ok)
	assert.Zero(t, remaining)

	remaining, ok = tracker.Acquire("kick:9", now.Add(20*time.Second))
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, remaining)

	// A rejected attempt does not extend the expiry.
	_, ok = tracker.Acquire("kick:9", now.Add(time.Minute))
	assert.True(t, ok)
}

func TestCooldownDelay(t *testing.T) {
	assert.Equal(t, 3*time.Second, Cooldown{Amount: 3, Unit: time.Second}.Delay())
	assert.Equal(t, 2*time.Hour, Cooldown{Amount: 2, Unit: time.Hour}.Delay())
	assert.Zero(t, Cooldown{Amount: 0, Unit: time.Second}.Delay())
	assert.Zero(t, Cooldown{Amount: 3}.Delay())
}
