// Package watcher is the stream-to-signal engine: it turns raw access-log
// lines into failover and error-rate alerts.
//
// DESIGN: A single logical actor. The Engine consumes one line at a time and
// advances every stateful component (failover detector, error window, alert
// gate) at most once per line. No locks are needed on the hot path; the only
// shared read surface is the snapshot kept for the status API.
//
// FILES:
//   - parser.go:   Record, ParseLine — tolerant key:value field extraction
//   - classify.go: IsServerError — 5xx detection over multi-valued status
//   - window.go:   Window — fixed-capacity FIFO error-rate estimator
//   - failover.go: FailoverDetector — active-pool tracking
//   - gate.go:     AlertGate — maintenance / cooldown / fire policy
//   - engine.go:   Engine — the line loop wiring it all together
package watcher

import (
	"regexp"
	"strings"
)

// Recognized field names in access-log lines.
const (
	FieldPool                 = "pool"
	FieldRelease              = "release"
	FieldUpstreamStatus       = "upstream_status"
	FieldUpstreamAddr         = "upstream_addr"
	FieldRequestTime          = "request_time"
	FieldUpstreamResponseTime = "upstream_response_time"
)

// fieldMarker locates recognized "name:" markers at the start of the line or
// after whitespace. Values are not matched here; they are the text between
// consecutive markers, which lets a value contain internal punctuation
// (comma-separated status lists, host:port addresses).
var fieldMarker = regexp.MustCompile(
	`(?:^|\s)(pool|release|upstream_status|upstream_addr|request_time|upstream_response_time):`,
)

// Record holds the fields extracted from one log line. Only fields actually
// present in the line have keys; absent fields are omitted, not defaulted.
// A Record is built from one line, consumed, and discarded.
type Record map[string]string

// Pool returns the pool field, or "" when absent.
func (r Record) Pool() string { return r[FieldPool] }

// Release returns the release field, or "" when absent.
func (r Record) Release() string { return r[FieldRelease] }

// UpstreamStatus returns the upstream_status field and whether the line
// carried it. The value may encode multiple codes ("500, 304").
func (r Record) UpstreamStatus() (string, bool) {
	v, ok := r[FieldUpstreamStatus]
	return v, ok
}

// UpstreamAddr returns the upstream_addr field, or "" when absent.
func (r Record) UpstreamAddr() string { return r[FieldUpstreamAddr] }

// ParseLine extracts recognized key:value fields from a raw log line.
//
// Each field is matched independently, so missing or reordered fields
// degrade gracefully instead of failing the whole line. A field's value runs
// from just after its "name:" marker up to the next recognized marker or end
// of line, then is whitespace-trimmed. Returns ok=false when no recognized
// field is present.
func ParseLine(line string) (Record, bool) {
	marks := fieldMarker.FindAllStringSubmatchIndex(line, -1)
	if len(marks) == 0 {
		return nil, false
	}

	rec := make(Record, len(marks))
	for i, m := range marks {
		name := line[m[2]:m[3]]
		valStart := m[1]
		valEnd := len(line)
		if i+1 < len(marks) {
			valEnd = marks[i+1][0]
		}
		rec[name] = strings.TrimSpace(line[valStart:valEnd])
	}
	return rec, true
}
