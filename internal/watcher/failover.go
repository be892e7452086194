package watcher

// Failover describes one observed pool change.
type Failover struct {
	From string
	To   string
}

// FailoverDetector tracks the active backend pool. It starts uninitialized;
// the first non-empty pool becomes the baseline without emitting an event,
// and every later change emits exactly one event. The tracked pool is
// adopted immediately on change, before any downstream gating, so repeated
// lines from the new pool during a suppressed or throttled period do not
// re-trigger.
type FailoverDetector struct {
	active   string
	tracking bool
}

// Observe feeds one record's pool value. Empty values never change state and
// never emit events. Returns the failover event and true when the pool
// changed.
func (d *FailoverDetector) Observe(pool string) (Failover, bool) {
	if pool == "" {
		return Failover{}, false
	}
	if !d.tracking {
		d.active = pool
		d.tracking = true
		return Failover{}, false
	}
	if pool == d.active {
		return Failover{}, false
	}
	ev := Failover{From: d.active, To: pool}
	d.active = pool
	return ev, true
}

// ActivePool returns the tracked pool and whether one has been observed.
func (d *FailoverDetector) ActivePool() (string, bool) {
	return d.active, d.tracking
}

// Restore seeds the tracked pool, e.g. from persisted state. An empty value
// is ignored.
func (d *FailoverDetector) Restore(pool string) {
	if pool == "" {
		return
	}
	d.active = pool
	d.tracking = true
}
