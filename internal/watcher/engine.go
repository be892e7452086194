package watcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edgeops/poolwatch/internal/config"
	"github.com/edgeops/poolwatch/internal/monitoring"
	"github.com/edgeops/poolwatch/internal/store"
)

// Notifier delivers one formatted alert to the external channel. The engine
// only supplies title and body and logs the outcome; it never retries.
type Notifier interface {
	Deliver(ctx context.Context, title, body string) error
}

// Snapshot is the engine's externally visible state, served by the status
// API.
type Snapshot struct {
	ActivePool  string               `json:"active_pool"`
	WindowLen   int                  `json:"window_len"`
	ErrorRate   float64              `json:"error_rate"` // percent; 0 while the window is empty
	Threshold   float64              `json:"threshold"`
	Maintenance bool                 `json:"maintenance"`
	LastFired   map[string]time.Time `json:"last_fired"`
}

// Engine consumes parsed log lines and drives the failover detector, the
// error window, and the alert gate. It is single-actor: Run owns all mutable
// state, and only the snapshot is shared (behind its own lock) with the
// status API.
type Engine struct {
	threshold float64
	window    *Window
	detector  *FailoverDetector
	gate      *AlertGate

	notifier Notifier
	logger   *monitoring.Logger
	metrics  *monitoring.Metrics
	states   store.Store

	mu   sync.RWMutex
	snap Snapshot
}

// NewEngine wires the core components from the loaded configuration and
// restores gate and failover state from the store.
func NewEngine(cfg *config.Config, notifier Notifier, logger *monitoring.Logger, metrics *monitoring.Metrics, states store.Store) *Engine {
	if states == nil {
		states = store.NewMemory()
	}

	e := &Engine{
		threshold: cfg.Threshold,
		window:    NewWindow(cfg.WindowSize),
		detector:  &FailoverDetector{},
		gate:      NewAlertGate(cfg.Maintenance, cfg.Cooldown()),
		notifier:  notifier,
		logger:    logger,
		metrics:   metrics,
		states:    states,
		snap: Snapshot{
			Threshold:   cfg.Threshold,
			Maintenance: cfg.Maintenance,
			LastFired:   map[string]time.Time{},
		},
	}
	e.restore()
	return e
}

// restore seeds detector and gate state from the store so a restart does not
// reset cooldowns or re-baseline failover detection.
func (e *Engine) restore() {
	if pool, ok, err := e.states.LastPool(); err != nil {
		e.logger.Warn().Err(err).Msg("failed to restore last pool")
	} else if ok {
		e.detector.Restore(pool)
		e.snap.ActivePool = pool
	}

	for _, class := range []AlertClass{ClassFailover, ClassErrorRate} {
		t, ok, err := e.states.LastFired(string(class))
		if err != nil {
			e.logger.Warn().Err(err).Str("class", string(class)).Msg("failed to restore last-fired time")
			continue
		}
		if ok {
			e.gate.Restore(class, t)
			e.snap.LastFired[string(class)] = t
		}
	}
}

// Run processes lines until the context is canceled or the channel closes.
// Both are clean exits; no error class inside the loop terminates it.
func (e *Engine) Run(ctx context.Context, lines <-chan string) error {
	e.logger.Info().Msg("engine started")
	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("engine stopped")
			return nil
		case line, ok := <-lines:
			if !ok {
				e.logger.Info().Msg("line source closed, engine stopped")
				return nil
			}
			e.handleLine(ctx, line)
		}
	}
}

// handleLine advances every stateful component at most once for one line.
func (e *Engine) handleLine(ctx context.Context, line string) {
	rec, ok := ParseLine(line)
	e.metrics.RecordLine(ok)
	if !ok {
		e.logger.Debug().Str("line", line).Msg("unrecognized line skipped")
		return
	}

	if ev, changed := e.detector.Observe(rec.Pool()); changed {
		e.metrics.RecordFailover()
		e.persistPool(ev.To)
		body := fmt.Sprintf("Failover detected: %s -> %s\nSample log: %s", ev.From, ev.To, line)
		e.dispatch(ctx, ClassFailover, "Failover Detected", body)
	}

	if status, has := rec.UpstreamStatus(); has && status != "" {
		e.observeStatus(ctx, rec, status)
	}

	e.updateSnapshot()
}

// observeStatus feeds the error window and evaluates the error-rate signal.
// Evaluation happens on every line that carried a status field, so detection
// latency is bounded by log write rate, not wall-clock polling.
//
// The alert body reflects the triggering record's own pool field (shown as
// "-" when absent), which can differ from the detector's tracked pool: the
// last known pool is detector state, not a property of this record.
func (e *Engine) observeStatus(ctx context.Context, rec Record, status string) {
	isErr := IsServerError(status)
	e.window.Observe(isErr)
	e.metrics.RecordStatusObserved()
	e.logger.Debug().
		Str("status", status).
		Bool("is_error", isErr).
		Int("window_len", e.window.Len()).
		Msg("window append")

	if e.window.Len() == 0 {
		return
	}
	rate := e.window.Rate()
	if rate <= e.threshold {
		return
	}

	body := fmt.Sprintf(
		"High upstream 5xx error rate detected: %.2f%% over last %d requests\nThreshold: %g%%\nLatest sample: pool=%s status=%s upstream=%s",
		rate, e.window.Len(), e.threshold,
		orDash(rec.Pool()), status, orDash(rec.UpstreamAddr()),
	)
	e.dispatch(ctx, ClassErrorRate, "High Error Rate", body)
}

// dispatch runs one candidate alert through the gate and, on Fire, through
// the notifier. Delivery failures are logged and still consume the cooldown.
func (e *Engine) dispatch(ctx context.Context, class AlertClass, title, body string) {
	alertID := uuid.NewString()[:8]

	switch e.gate.Decide(class) {
	case Suppressed:
		e.metrics.RecordAlertSuppressed()
		e.logger.Info().
			Str("alert_id", alertID).
			Str("class", string(class)).
			Str("title", title).
			Msg("maintenance mode on, alert suppressed")

	case Throttled:
		e.metrics.RecordAlertThrottled()
		e.logger.Info().
			Str("alert_id", alertID).
			Str("class", string(class)).
			Str("title", title).
			Msg("alert in cooldown, skipped")

	case Fire:
		err := e.notifier.Deliver(ctx, title, body)
		firedAt := e.gate.MarkFired(class)
		e.metrics.RecordAlertFired()
		e.persistLastFired(class, firedAt)

		if err != nil {
			e.metrics.RecordDeliveryFailure()
			e.logger.Error().
				Err(err).
				Str("alert_id", alertID).
				Str("class", string(class)).
				Str("title", title).
				Msg("alert delivery failed")
			return
		}
		e.logger.Info().
			Str("alert_id", alertID).
			Str("class", string(class)).
			Str("title", title).
			Msg("alert delivered")
	}
}

func (e *Engine) persistPool(pool string) {
	if err := e.states.SetLastPool(pool); err != nil {
		e.logger.Warn().Err(err).Msg("failed to persist last pool")
	}
}

func (e *Engine) persistLastFired(class AlertClass, t time.Time) {
	if err := e.states.SetLastFired(string(class), t); err != nil {
		e.logger.Warn().Err(err).Str("class", string(class)).Msg("failed to persist last-fired time")
	}
}

func (e *Engine) updateSnapshot() {
	pool, _ := e.detector.ActivePool()
	rate := 0.0
	if e.window.Len() > 0 {
		rate = e.window.Rate()
	}
	fired := make(map[string]time.Time, 2)
	for _, class := range []AlertClass{ClassFailover, ClassErrorRate} {
		if t, ok := e.gate.LastFired(class); ok {
			fired[string(class)] = t
		}
	}

	e.mu.Lock()
	e.snap.ActivePool = pool
	e.snap.WindowLen = e.window.Len()
	e.snap.ErrorRate = rate
	e.snap.LastFired = fired
	e.mu.Unlock()
}

// Snapshot returns the current engine state for the status API.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snap := e.snap
	snap.LastFired = make(map[string]time.Time, len(e.snap.LastFired))
	for k, v := range e.snap.LastFired {
		snap.LastFired[k] = v
	}
	return snap
}

// orDash renders an absent field for alert text; absence is preserved inside
// the core and only coerced at this formatting boundary.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
