package monitoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edgeops/poolwatch/internal/monitoring"
)

func TestMetrics_Counters(t *testing.T) {
	m := monitoring.NewMetrics()

	m.RecordLine(true)
	m.RecordLine(true)
	m.RecordLine(false)
	m.RecordStatusObserved()
	m.RecordFailover()
	m.RecordAlertFired()
	m.RecordAlertSuppressed()
	m.RecordAlertThrottled()
	m.RecordDeliveryFailure()

	stats := m.Stats()
	assert.Equal(t, int64(3), stats["lines"])
	assert.Equal(t, int64(2), stats["parsed"])
	assert.Equal(t, int64(1), stats["parse_misses"])
	assert.Equal(t, int64(1), stats["status_observed"])
	assert.Equal(t, int64(1), stats["failovers_detected"])
	assert.Equal(t, int64(1), stats["alerts_fired"])
	assert.Equal(t, int64(1), stats["alerts_suppressed"])
	assert.Equal(t, int64(1), stats["alerts_throttled"])
	assert.Equal(t, int64(1), stats["delivery_failures"])
}

func TestMetrics_StartsAtZero(t *testing.T) {
	m := monitoring.NewMetrics()
	for k, v := range m.Stats() {
		assert.Zero(t, v, k)
	}
}
