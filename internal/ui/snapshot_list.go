package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sensor-receiver.klederson.com/internal/dump"
	"sensor-receiver.klederson.com/internal/i18n"
	"sensor-receiver.klederson.com/internal/sensor"
)

// RenderSnapshotList renders the scrollable buffer panel, one serial line
// per snapshot, oldest first. The header stays fixed at the top; only the
// lines scroll.
func RenderSnapshotList(snaps []sensor.Snapshot, capacity, width, height, cursorIndex int, str i18n.Strings) string {
	innerW := width - 4
	if innerW < 10 {
		innerW = 10
	}

	// Fixed header: title + occupancy bar + separator (3 lines)
	title := StylePanelTitle.Render(fmt.Sprintf("%s [%d/%d]", strings.ToUpper(str.Get(i18n.Buffer)), len(snaps), capacity))
	bar := " " + RenderOccupancyBar(len(snaps), capacity, innerW-2)
	separator := StyleSeparator.Render(strings.Repeat("-", innerW))
	headerLines := []string{title, bar, separator}
	headerCount := len(headerLines)

	// Total inner height (excluding border top+bottom)
	innerH := height - 2
	if innerH < headerCount+1 {
		innerH = headerCount + 1
	}
	rows := innerH - headerCount

	var lines []string
	if len(snaps) == 0 {
		lines = append(lines, "", StyleHelp.Render(" "+str.Get(i18n.Empty)+"..."))
	} else {
		// Viewport start so the cursor is always visible
		viewStart := 0
		if cursorIndex >= rows {
			viewStart = cursorIndex - rows + 1
		}
		for i := viewStart; i < len(snaps) && len(lines) < rows; i++ {
			raw := truncRaw(dump.FormatLine(i, snaps[i]), innerW)
			if i == cursorIndex {
				lines = append(lines, StyleCursorRow.Render(raw))
			} else {
				lines = append(lines, StyleLine.Render(raw))
			}
		}
	}

	for len(lines) < rows {
		lines = append(lines, "")
	}

	all := make([]string, 0, innerH)
	all = append(all, headerLines...)
	all = append(all, lines...)

	rendered := StylePanelBorder.Width(width - 2).Height(innerH).Render(strings.Join(all, "\n"))
	return fit(rendered, height)
}

// RenderOccupancyBar draws occupied/capacity as a bar of the given width.
func RenderOccupancyBar(occupied, capacity, width int) string {
	if width < 2 {
		width = 2
	}
	ratio := 0.0
	if capacity > 0 {
		ratio = float64(occupied) / float64(capacity)
	}
	ratio = math.Max(0, math.Min(1, ratio))
	filled := int(math.Round(ratio * float64(width)))

	color := ColorMatrixGreen
	if occupied >= capacity {
		color = ColorWarning
	}
	filledPart := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("|", filled))
	emptyPart := lipgloss.NewStyle().Foreground(ColorDimGreen).Render(strings.Repeat("-", width-filled))
	return StyleHelp.Render("[") + filledPart + emptyPart + StyleHelp.Render("]")
}
