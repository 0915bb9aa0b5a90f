package ui

import (
	"fmt"
	"time"

	"sensor-receiver.klederson.com/internal/i18n"
	"sensor-receiver.klederson.com/internal/ring"
)

// BufferStatus is what the status bar shows about the snapshot buffer.
type BufferStatus struct {
	Occupied    int
	Capacity    int
	Occupancy   ring.Occupancy
	LastCapture time.Time
}

// OccupancyLabel returns the localized name of a fill regime.
func OccupancyLabel(o ring.Occupancy, str i18n.Strings) string {
	switch o {
	case ring.Empty:
		return str.Get(i18n.Empty)
	case ring.Full:
		return str.Get(i18n.Full)
	default:
		return str.Get(i18n.Partial)
	}
}

// RenderStatusBar renders the bottom status bar. A non-empty notice is shown
// on the right, in the error style when isErr is set.
func RenderStatusBar(width int, b BufferStatus, str i18n.Strings, notice string, isErr bool) string {
	label := StyleStatusReceiving.Render("[" + OccupancyLabel(b.Occupancy, str) + "]")
	if b.Occupancy == ring.Full {
		label = StyleStatusPaused.Render("[" + OccupancyLabel(b.Occupancy, str) + "]")
	}

	captured := "--:--"
	if !b.LastCapture.IsZero() {
		captured = b.LastCapture.UTC().Format("15:04:05")
	}
	info := fmt.Sprintf(" %s: %d/%d  %s: %s UTC",
		str.Get(i18n.Buffer), b.Occupied, b.Capacity, str.Get(i18n.Captured), captured)

	left := label + StyleStatusBar.Foreground(ColorGreen).Render(info)
	right := ""
	if notice != "" {
		right = StyleLine.Render(notice)
		if isErr {
			right = StyleStatusError.Render(notice)
		}
	}

	return StyleStatusBar.Width(width).Render(pad(left, right, width-2))
}
