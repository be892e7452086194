package watcher

// Window is a fixed-capacity FIFO of request outcomes used as a moving
// error-rate estimator. A request-count window (rather than a time window)
// gives an O(1) running average without storing timestamps: alerting cares
// about the recent request mix, not wall-clock density.
type Window struct {
	buf  []bool // outcome ring, true = server error
	head int    // index of the oldest entry
	size int
	errs int // running count of true entries
}

// NewWindow creates a window holding at most capacity outcomes.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{buf: make([]bool, capacity)}
}

// Observe appends an outcome, evicting the oldest entry at capacity.
func (w *Window) Observe(isErr bool) {
	if w.size == len(w.buf) {
		if w.buf[w.head] {
			w.errs--
		}
		w.buf[w.head] = isErr
		w.head = (w.head + 1) % len(w.buf)
	} else {
		w.buf[(w.head+w.size)%len(w.buf)] = isErr
		w.size++
	}
	if isErr {
		w.errs++
	}
}

// Len returns the number of recorded outcomes.
func (w *Window) Len() int { return w.size }

// Errors returns the number of error outcomes currently in the window.
func (w *Window) Errors() int { return w.errs }

// Rate returns the error rate as a percentage. Callers must guard
// Len() == 0; the rate is undefined for an empty window.
func (w *Window) Rate() float64 {
	return float64(w.errs) / float64(w.size) * 100.0
}

// Outcomes returns the window contents oldest-first.
func (w *Window) Outcomes() []bool {
	out := make([]bool, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.buf[(w.head+i)%len(w.buf)]
	}
	return out
}
