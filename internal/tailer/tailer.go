// Package tailer supplies the unbounded line stream from the live-appended
// access log.
//
// DESIGN: Built on nxadm/tail in polling mode: it waits for a file that does
// not exist yet, reopens after truncation, falls back to the current
// position when the source is not seekable, and sleeps between polls instead
// of spinning while idle.
package tailer

import (
	"context"
	"fmt"
	"io"

	"github.com/nxadm/tail"

	"github.com/edgeops/poolwatch/internal/monitoring"
)

// Tailer follows one file.
type Tailer struct {
	path   string
	logger *monitoring.Logger
}

// New creates a tailer for path.
func New(path string, logger *monitoring.Logger) *Tailer {
	return &Tailer{path: path, logger: logger}
}

// Follow starts tailing from the current end of the file and returns the
// line channel. Individual read errors are logged and skipped; the channel
// closes when ctx is canceled or the underlying tail ends.
func (t *Tailer) Follow(ctx context.Context) (<-chan string, error) {
	tf, err := tail.TailFile(t.path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		Poll:      true,
		MustExist: false,
		Location:  &tail.SeekInfo{Whence: io.SeekEnd},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to tail '%s': %w", t.path, err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer tf.Cleanup()

		for {
			select {
			case <-ctx.Done():
				_ = tf.Stop()
				return
			case line, ok := <-tf.Lines:
				if !ok {
					return
				}
				if line.Err != nil {
					t.logger.Warn().Err(line.Err).Msg("tail read error, line skipped")
					continue
				}
				select {
				case out <- line.Text:
				case <-ctx.Done():
					_ = tf.Stop()
					return
				}
			}
		}
	}()

	return out, nil
}
