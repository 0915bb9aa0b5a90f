package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Captured()
	m.Captured()
	m.Evicted()
	m.Dumped(5)
	m.Packet("1")
	m.Packet("1")
	m.Packet("3")
	m.Occupancy(7, 24)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.captured))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evicted))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.dumped))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.packets.WithLabelValues("1")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.occupied))
	assert.Equal(t, 24.0, testutil.ToFloat64(m.capacity))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Captured()
		m.Rejected()
		m.Occupancy(1, 2)
	})
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Occupancy(3, 24)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "sensor_receiver_buffer_occupied 3")
}
