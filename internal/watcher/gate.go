package watcher

import "time"

// AlertClass identifies an independently rate-limited alert stream.
type AlertClass string

const (
	ClassFailover  AlertClass = "failover"
	ClassErrorRate AlertClass = "error_rate"
)

// Decision is the gate's verdict for one candidate alert.
type Decision int

const (
	// Fire means deliver the alert and consume the cooldown window.
	Fire Decision = iota
	// Suppressed means maintenance mode dropped the alert; no state change.
	Suppressed
	// Throttled means the class is still inside its cooldown; no state change.
	Throttled
)

// AlertGate converts raw detections into go/no-go decisions, independently
// per alert class. Policy order: maintenance suppresses, cooldown throttles,
// otherwise fire. Only a firing updates the class's last-fired timestamp, so
// a maintenance period never pushes the cooldown forward.
type AlertGate struct {
	maintenance bool
	cooldown    time.Duration
	lastFired   map[AlertClass]time.Time

	// Now is the clock, replaceable in tests.
	Now func() time.Time
}

// NewAlertGate creates a gate. Every class starts as never-fired.
func NewAlertGate(maintenance bool, cooldown time.Duration) *AlertGate {
	return &AlertGate{
		maintenance: maintenance,
		cooldown:    cooldown,
		lastFired:   make(map[AlertClass]time.Time),
		Now:         time.Now,
	}
}

// Decide evaluates one candidate alert for class.
func (g *AlertGate) Decide(class AlertClass) Decision {
	if g.maintenance {
		return Suppressed
	}
	last, fired := g.lastFired[class]
	if fired && g.Now().Sub(last) <= g.cooldown {
		return Throttled
	}
	return Fire
}

// MarkFired records that class fired now and returns the timestamp. Called
// on any delivery outcome: cooldown protects against alert storms, and a
// failed delivery still consumes the window to avoid hammering a broken
// endpoint.
func (g *AlertGate) MarkFired(class AlertClass) time.Time {
	now := g.Now()
	g.lastFired[class] = now
	return now
}

// LastFired returns the class's last firing time and whether it ever fired.
func (g *AlertGate) LastFired(class AlertClass) (time.Time, bool) {
	t, ok := g.lastFired[class]
	return t, ok
}

// Restore seeds a class's last-fired timestamp, e.g. from persisted state.
// Zero timestamps are ignored.
func (g *AlertGate) Restore(class AlertClass, t time.Time) {
	if t.IsZero() {
		return
	}
	g.lastFired[class] = t
}
