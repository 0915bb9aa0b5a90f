package receiver

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"sensor-receiver.klederson.com/internal/config"
	"sensor-receiver.klederson.com/internal/metrics"
	"sensor-receiver.klederson.com/internal/ring"
	"sensor-receiver.klederson.com/internal/sensor"
)

// CaptureResult tells what Capture did with the snapshot.
type CaptureResult int

const (
	Stored CaptureResult = iota
	StoredAfterEviction
	Rejected
)

func (r CaptureResult) String() string {
	switch r {
	case StoredAfterEviction:
		return "stored-after-eviction"
	case Rejected:
		return "rejected"
	default:
		return "stored"
	}
}

// Collector merges decoded packets into the current record and stamps it
// into the snapshot buffer. The buffer itself is not safe for concurrent
// use; every access goes through mu.
type Collector struct {
	mu       sync.Mutex
	buf      *ring.Buffer[sensor.Snapshot]
	current  sensor.Snapshot
	overflow string

	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// NewCollector creates a collector with a buffer of the given capacity.
// overflow is config.DropOldest or config.DropNewest.
func NewCollector(capacity int, overflow string, log logrus.FieldLogger, m *metrics.Metrics) *Collector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Collector{
		buf:      ring.New[sensor.Snapshot](capacity),
		overflow: overflow,
		log:      log.WithField("component", "collector"),
		metrics:  m,
	}
	m.Occupancy(0, capacity)
	return c
}

// Apply merges a decoded packet into the current record.
func (c *Collector) Apply(u Update) {
	c.mu.Lock()
	u.Apply(&c.current)
	c.mu.Unlock()

	c.metrics.Packet(u.Label())
	c.log.WithField("sensor", u.Sensor).Debug("Packet applied")
}

// Capture copies the current record into the buffer with CapturedAt set to now.
func (c *Collector) Capture(now time.Time) CaptureResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.current
	snap.CapturedAt = now.UTC()

	result := Stored
	if c.buf.IsFull() {
		if c.overflow == config.DropNewest {
			c.metrics.Rejected()
			c.log.WithField("capacity", c.buf.Cap()).Warn("Buffer full, snapshot dropped")
			return Rejected
		}
		evicted, _ := c.buf.PopFront()
		c.metrics.Evicted()
		c.log.WithField("captured_at", evicted.CapturedAt).Info("Buffer full, oldest snapshot evicted")
		result = StoredAfterEviction
	}

	if !c.buf.PushBack(snap) {
		// Unreachable after the eviction above.
		c.metrics.Rejected()
		return Rejected
	}
	c.metrics.Captured()
	c.metrics.Occupancy(c.buf.Len(), c.buf.Cap())
	return result
}

// Current returns a copy of the merged record.
func (c *Collector) Current() sensor.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Snapshots returns a copy of the buffered snapshots, oldest first.
func (c *Collector) Snapshots() []sensor.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]sensor.Snapshot, 0, c.buf.Len())
	for _, s := range c.buf.All() {
		out = append(out, s)
	}
	return out
}

// At returns the snapshot at logical index i together with the index
// actually used after clamping. ok is false when the buffer is empty.
func (c *Collector) At(i int) (idx int, s sensor.Snapshot, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buf.IsEmpty() {
		return 0, sensor.Snapshot{}, false
	}
	idx = min(max(i, 0), c.buf.Len()-1)
	return idx, c.buf.At(idx), true
}

// Reset empties the buffer and clears the current record.
func (c *Collector) Reset() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.buf.Len()
	c.buf.Clear()
	c.current.Reset()
	c.metrics.Occupancy(0, c.buf.Cap())
	c.log.WithField("dropped", n).Info("Buffer reset")
	return n
}

// RemoveOldest drops the oldest snapshot.
func (c *Collector) RemoveOldest() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.buf.RemoveFront() {
		return false
	}
	c.metrics.Removed()
	c.metrics.Occupancy(c.buf.Len(), c.buf.Cap())
	return true
}

// Drain hands snapshots to fn from oldest to newest and removes each one fn
// accepts. It stops at the first error and returns how many were removed.
func (c *Collector) Drain(fn func(i int, s sensor.Snapshot) error) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for !c.buf.IsEmpty() {
		s, _ := c.buf.Front()
		if err := fn(n, s); err != nil {
			c.metrics.Occupancy(c.buf.Len(), c.buf.Cap())
			return n, err
		}
		c.buf.RemoveFront()
		c.metrics.Removed()
		n++
	}
	c.metrics.Occupancy(c.buf.Len(), c.buf.Cap())
	return n, nil
}

// Len returns the number of buffered snapshots.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Len()
}

// Cap returns the buffer capacity.
func (c *Collector) Cap() int {
	return c.buf.Cap()
}

// Occupancy returns the buffer fill regime.
func (c *Collector) Occupancy() ring.Occupancy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Occupancy()
}

// Run captures a snapshot every interval until ctx is done.
func (c *Collector) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			res := c.Capture(t)
			c.log.WithFields(logrus.Fields{
				"result":   res,
				"occupied": c.Len(),
			}).Debug("Snapshot captured")
		}
	}
}
