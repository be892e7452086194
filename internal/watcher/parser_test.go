package watcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeops/poolwatch/internal/watcher"
)

func TestParseLine_FullLine(t *testing.T) {
	line := "2026-08-25T10:00:00Z GET /api pool:blue release:v1.2.3 upstream_status:200 upstream_addr:10.0.0.5:8080 request_time:0.012 upstream_response_time:0.010"

	rec, ok := watcher.ParseLine(line)
	require.True(t, ok)

	assert.Equal(t, "blue", rec.Pool())
	assert.Equal(t, "v1.2.3", rec.Release())
	status, has := rec.UpstreamStatus()
	assert.True(t, has)
	assert.Equal(t, "200", status)
	assert.Equal(t, "10.0.0.5:8080", rec.UpstreamAddr())
	assert.Equal(t, "0.012", rec[watcher.FieldRequestTime])
	assert.Equal(t, "0.010", rec[watcher.FieldUpstreamResponseTime])
}

func TestParseLine_SubsetAndReordered(t *testing.T) {
	rec, ok := watcher.ParseLine("upstream_status:502 pool:green")
	require.True(t, ok)

	assert.Equal(t, "green", rec.Pool())
	status, has := rec.UpstreamStatus()
	assert.True(t, has)
	assert.Equal(t, "502", status)

	// Absent fields are omitted, not defaulted.
	_, hasRelease := rec[watcher.FieldRelease]
	assert.False(t, hasRelease)
	assert.Len(t, rec, 2)
}

func TestParseLine_MultiValuedStatus(t *testing.T) {
	// A value runs to the next recognized marker, so internal punctuation
	// survives.
	rec, ok := watcher.ParseLine("pool:blue upstream_status:500, 304 upstream_addr:10.0.0.5:8080")
	require.True(t, ok)

	status, _ := rec.UpstreamStatus()
	assert.Equal(t, "500, 304", status)
	assert.Equal(t, "10.0.0.5:8080", rec.UpstreamAddr())
}

func TestParseLine_ValueAtEndOfLine(t *testing.T) {
	rec, ok := watcher.ParseLine("release:v9 pool:canary")
	require.True(t, ok)
	assert.Equal(t, "canary", rec.Pool())
	assert.Equal(t, "v9", rec.Release())
}

func TestParseLine_NoMatch(t *testing.T) {
	for _, line := range []string{
		"",
		"plain access log line with no markers",
		"poolish:blue releasex:v1", // similar but unrecognized markers
	} {
		_, ok := watcher.ParseLine(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestParseLine_ArbitraryInputNeverPanics(t *testing.T) {
	for _, line := range []string{
		"pool:",
		"pool: release:",
		":::",
		"pool:a pool:b",
		"\x00\xff upstream_status:503\xfe",
		"upstream_response_time:0.5 request_time:0.1",
	} {
		assert.NotPanics(t, func() { watcher.ParseLine(line) }, "line %q", line)
	}
}

func TestParseLine_EmptyValueIsPresent(t *testing.T) {
	rec, ok := watcher.ParseLine("pool: release:v1")
	require.True(t, ok)

	// pool was found but carries no value.
	v, has := rec[watcher.FieldPool]
	assert.True(t, has)
	assert.Equal(t, "", v)
	assert.Equal(t, "v1", rec.Release())
}

func TestParseLine_RepeatedFieldLastWins(t *testing.T) {
	rec, ok := watcher.ParseLine("pool:a pool:b")
	require.True(t, ok)
	assert.Equal(t, "b", rec.Pool())
}
