package dump

import (
	"io"
	"iter"
	"slices"
	"sync"

	"github.com/pkg/errors"

	"sensor-receiver.klederson.com/internal/metrics"
	"sensor-receiver.klederson.com/internal/receiver"
	"sensor-receiver.klederson.com/internal/sensor"
)

// Writer writes snapshot lines to a sink. It never touches the buffer.
// It is safe for concurrent use; a Dump is never interleaved with other
// writes.
type Writer struct {
	mu      sync.Mutex
	w       io.Writer
	metrics *metrics.Metrics
}

// NewWriter wraps w. m may be nil.
func NewWriter(w io.Writer, m *metrics.Metrics) *Writer {
	return &Writer{w: w, metrics: m}
}

// WriteSnapshot writes a single line.
func (w *Writer) WriteSnapshot(idx int, s sensor.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.write(idx, s)
}

func (w *Writer) write(idx int, s sensor.Snapshot) error {
	if _, err := io.WriteString(w.w, FormatLine(idx, s)+"\n"); err != nil {
		return errors.Wrapf(err, "writing snapshot %d", idx)
	}
	w.metrics.Dumped(1)
	return nil
}

// WithLock runs fn while no line is being written, so the sink can be
// read or swapped safely.
func (w *Writer) WithLock(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn()
}

// Dump writes every snapshot of seq, oldest first, and returns the number
// of lines written. An empty sequence writes nothing.
func (w *Writer) Dump(seq iter.Seq2[int, sensor.Snapshot]) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := 0
	for i, s := range seq {
		if err := w.write(i, s); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Flush writes the collector's buffer through w. With drain set, each
// snapshot is removed once its line is written and a failed write leaves
// it in place; otherwise the buffer is left untouched.
func Flush(w *Writer, c *receiver.Collector, drain bool) (int, error) {
	if drain {
		return c.Drain(w.WriteSnapshot)
	}
	return w.Dump(slices.All(c.Snapshots()))
}
