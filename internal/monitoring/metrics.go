// Package monitoring - metrics.go provides simple counters.
//
// DESIGN: Lightweight in-memory counters for operational metrics:
//   - lines/parsed/parse_misses: Raw intake and parser hit rate
//   - status_observed:           Lines that contributed to the error window
//   - failovers_detected:        Pool changes seen (fired or not)
//   - alerts_*:                  Gate outcomes per delivery attempt
//
// For production, export these to Prometheus or similar.
package monitoring

import "sync/atomic"

// Metrics collects operational counters for the watcher loop.
type Metrics struct {
	lines             atomic.Int64
	parsed            atomic.Int64
	parseMisses       atomic.Int64
	statusObserved    atomic.Int64
	failoversDetected atomic.Int64
	alertsFired       atomic.Int64
	alertsSuppressed  atomic.Int64
	alertsThrottled   atomic.Int64
	deliveryFailures  atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordLine records one raw line and whether the parser matched it.
func (m *Metrics) RecordLine(parsed bool) {
	m.lines.Add(1)
	if parsed {
		m.parsed.Add(1)
	} else {
		m.parseMisses.Add(1)
	}
}

// RecordStatusObserved records a line that carried a status field.
func (m *Metrics) RecordStatusObserved() { m.statusObserved.Add(1) }

// RecordFailover records a detected pool change.
func (m *Metrics) RecordFailover() { m.failoversDetected.Add(1) }

// RecordAlertFired records a delivered (or delivery-attempted) alert.
func (m *Metrics) RecordAlertFired() { m.alertsFired.Add(1) }

// RecordAlertSuppressed records an alert dropped by maintenance mode.
func (m *Metrics) RecordAlertSuppressed() { m.alertsSuppressed.Add(1) }

// RecordAlertThrottled records an alert dropped by cooldown.
func (m *Metrics) RecordAlertThrottled() { m.alertsThrottled.Add(1) }

// RecordDeliveryFailure records a failed webhook delivery.
func (m *Metrics) RecordDeliveryFailure() { m.deliveryFailures.Add(1) }

// Stats returns current counter values.
func (m *Metrics) Stats() map[string]int64 {
	return map[string]int64{
		"lines":              m.lines.Load(),
		"parsed":             m.parsed.Load(),
		"parse_misses":       m.parseMisses.Load(),
		"status_observed":    m.statusObserved.Load(),
		"failovers_detected": m.failoversDetected.Load(),
		"alerts_fired":       m.alertsFired.Load(),
		"alerts_suppressed":  m.alertsSuppressed.Load(),
		"alerts_throttled":   m.alertsThrottled.Load(),
		"delivery_failures":  m.deliveryFailures.Load(),
	}
}
