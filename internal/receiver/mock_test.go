package receiver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensor-receiver.klederson.com/internal/sensor"
)

func TestMockSourceEmitsDecodablePackets(t *testing.T) {
	src := NewMockSource(time.Millisecond, nil)
	got := make(chan Update, 64)
	require.NoError(t, src.Start(func(u Update) {
		select {
		case got <- u:
		default:
		}
	}))
	defer src.Stop()

	for i := 0; i < 10; i++ {
		select {
		case u := <-got:
			assert.True(t, u.Sensor.Valid())
			assert.False(t, u.At.IsZero())
		case <-time.After(time.Second):
			t.Fatal("mock source produced no packet")
		}
	}
}

func TestMockPacketsRoundTrip(t *testing.T) {
	src := NewMockSource(time.Second, nil)
	now := time.Now()
	for id := 1; id <= 5; id++ {
		u := src.packet(sensor.ID(id), 12.5, now)
		back, err := src.roundTrip(u)
		require.NoError(t, err)
		assert.Equal(t, u, back)
	}
}
