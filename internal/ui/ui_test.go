package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"sensor-receiver.klederson.com/internal/i18n"
	"sensor-receiver.klederson.com/internal/ring"
	"sensor-receiver.klederson.com/internal/sensor"
)

var now = time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC)

func TestOccupancyLabel(t *testing.T) {
	en, de := i18n.For(i18n.English), i18n.For(i18n.German)
	assert.Equal(t, "Empty", OccupancyLabel(ring.Empty, en))
	assert.Equal(t, "Partial", OccupancyLabel(ring.Partial, en))
	assert.Equal(t, "Voll", OccupancyLabel(ring.Full, de))
}

func TestRecordFields(t *testing.T) {
	rec := sensor.New()
	rec.S1.LowBattery = sensor.Some[uint8](1)
	rec.S1.Temperature = sensor.Some[int16](-7)
	rec.S1.Vcc = sensor.Some[uint8](33)

	got := recordFields(rec, sensor.Sensor1, i18n.For(i18n.English))
	assert.Equal(t, []field{
		{label: "Battery", value: "LOW", valid: true},
		{label: "Temp", value: "-7C", valid: true},
		{label: "RH", value: "--"},
		{label: "Vcc", value: "3.3V", valid: true},
	}, got)

	for id := sensor.Sensor1; id <= sensor.Sensor5; id++ {
		for _, f := range recordFields(sensor.New(), id, i18n.For(i18n.English)) {
			assert.False(t, f.valid, "sensor %d %s", id, f.label)
		}
	}
}

func TestFormatLastSeen(t *testing.T) {
	assert.Equal(t, "never", formatLastSeen(time.Time{}, now))
	assert.Equal(t, "now", formatLastSeen(now, now))
	assert.Equal(t, "12s ago", formatLastSeen(now.Add(-12*time.Second), now))
	assert.Equal(t, "5m ago", formatLastSeen(now.Add(-5*time.Minute), now))
	assert.Equal(t, "2h ago", formatLastSeen(now.Add(-2*time.Hour), now))
}

func TestTruncRaw(t *testing.T) {
	assert.Equal(t, "abc  ", truncRaw("abc", 5))
	assert.Equal(t, "ab", truncRaw("abc", 2))
}

func TestPanelsFitHeight(t *testing.T) {
	snaps := make([]sensor.Snapshot, 30)
	list := RenderSnapshotList(snaps, 30, 60, 12, 29, i18n.For(i18n.English))
	assert.Len(t, strings.Split(list, "\n"), 12)

	panel := RenderRecordPanel(sensor.New(), now, 40, 8, i18n.For(i18n.German))
	assert.Len(t, strings.Split(panel, "\n"), 8)
}

func TestOccupancyBarWidth(t *testing.T) {
	for _, occ := range []int{0, 3, 10} {
		assert.Equal(t, 12, lipgloss.Width(RenderOccupancyBar(occ, 10, 10)))
	}
}
