package watcher_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/edgeops/poolwatch/internal/watcher"
)

// fakeClock drives the gate deterministically.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)}
}

func TestAlertGate_FirstDetectionFires(t *testing.T) {
	g := watcher.NewAlertGate(false, 5*time.Minute)
	assert.Equal(t, watcher.Fire, g.Decide(watcher.ClassErrorRate))
}

func TestAlertGate_CooldownThrottles(t *testing.T) {
	clock := newFakeClock()
	g := watcher.NewAlertGate(false, 5*time.Minute)
	g.Now = clock.Now

	assert.Equal(t, watcher.Fire, g.Decide(watcher.ClassErrorRate))
	g.MarkFired(watcher.ClassErrorRate)

	// Within the cooldown: throttled, timestamp untouched.
	clock.Advance(time.Minute)
	assert.Equal(t, watcher.Throttled, g.Decide(watcher.ClassErrorRate))
	last, _ := g.LastFired(watcher.ClassErrorRate)
	assert.Equal(t, clock.now.Add(-time.Minute), last)

	// Exactly at the boundary still throttles; strictly after fires.
	clock.Advance(4 * time.Minute)
	assert.Equal(t, watcher.Throttled, g.Decide(watcher.ClassErrorRate))
	clock.Advance(time.Nanosecond)
	assert.Equal(t, watcher.Fire, g.Decide(watcher.ClassErrorRate))
}

func TestAlertGate_ClassesAreIndependent(t *testing.T) {
	clock := newFakeClock()
	g := watcher.NewAlertGate(false, 5*time.Minute)
	g.Now = clock.Now

	g.MarkFired(watcher.ClassErrorRate)
	clock.Advance(time.Second)

	assert.Equal(t, watcher.Throttled, g.Decide(watcher.ClassErrorRate))
	assert.Equal(t, watcher.Fire, g.Decide(watcher.ClassFailover))
}

func TestAlertGate_MaintenanceSuppressesAndKeepsTimestamps(t *testing.T) {
	clock := newFakeClock()
	g := watcher.NewAlertGate(true, 5*time.Minute)
	g.Now = clock.Now

	for i := 0; i < 10; i++ {
		assert.Equal(t, watcher.Suppressed, g.Decide(watcher.ClassFailover))
		clock.Advance(time.Minute)
	}

	// Suppression never recorded a firing, so the class still reads as
	// never-fired and would fire immediately once maintenance is disabled.
	_, fired := g.LastFired(watcher.ClassFailover)
	assert.False(t, fired)
}

func TestAlertGate_MaintenanceCooldownCountsFromLastRealFiring(t *testing.T) {
	clock := newFakeClock()
	cooldown := 5 * time.Minute

	g := watcher.NewAlertGate(false, cooldown)
	g.Now = clock.Now
	g.MarkFired(watcher.ClassErrorRate)
	firedAt := clock.now

	// Simulate a maintenance window by restoring state into a fresh
	// maintenance-enabled gate, then disabling maintenance again.
	m := watcher.NewAlertGate(true, cooldown)
	m.Now = clock.Now
	m.Restore(watcher.ClassErrorRate, firedAt)
	clock.Advance(2 * time.Minute)
	assert.Equal(t, watcher.Suppressed, m.Decide(watcher.ClassErrorRate))

	after := watcher.NewAlertGate(false, cooldown)
	after.Now = clock.Now
	after.Restore(watcher.ClassErrorRate, firedAt)

	// Still inside the cooldown measured from the real firing.
	assert.Equal(t, watcher.Throttled, after.Decide(watcher.ClassErrorRate))
	clock.Advance(4 * time.Minute)
	assert.Equal(t, watcher.Fire, after.Decide(watcher.ClassErrorRate))
}

func TestAlertGate_RestoreIgnoresZero(t *testing.T) {
	g := watcher.NewAlertGate(false, 5*time.Minute)
	g.Restore(watcher.ClassFailover, time.Time{})
	_, fired := g.LastFired(watcher.ClassFailover)
	assert.False(t, fired)
}
