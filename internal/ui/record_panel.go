package ui

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/constraints"

	"sensor-receiver.klederson.com/internal/i18n"
	"sensor-receiver.klederson.com/internal/sensor"
)

type field struct {
	label string
	value string
	valid bool
}

func reading[T constraints.Integer](label string, r sensor.Reading[T], unit string) field {
	v, ok := r.Get()
	if !ok {
		return field{label: label, value: "--"}
	}
	return field{label: label, value: fmt.Sprintf("%d%s", v, unit), valid: true}
}

func volts(label string, r sensor.Reading[uint8]) field {
	v, ok := r.Get()
	if !ok {
		return field{label: label, value: "--"}
	}
	return field{label: label, value: fmt.Sprintf("%.1fV", float64(v)/10), valid: true}
}

func flag(label string, r sensor.Reading[uint8], on, off string) field {
	v, ok := r.Get()
	if !ok {
		return field{label: label, value: "--"}
	}
	if v != 0 {
		return field{label: label, value: on, valid: true}
	}
	return field{label: label, value: off, valid: true}
}

// recordFields lists the readings of one sensor group.
func recordFields(rec sensor.Snapshot, id sensor.ID, str i18n.Strings) []field {
	bat := func(r sensor.Reading[uint8]) field {
		return flag(str.Get(i18n.Battery), r, "LOW", "OK")
	}
	sw := func(label string, r sensor.Reading[uint8]) field {
		return flag(label, r, str.Get(i18n.On), str.Get(i18n.Off))
	}

	switch id {
	case sensor.Sensor1:
		s := rec.S1
		return []field{bat(s.LowBattery), reading("Temp", s.Temperature, "C"), reading("RH", s.Humidity, "%"), volts("Vcc", s.Vcc)}
	case sensor.Sensor2:
		s := rec.S2
		return []field{reading("Temp", s.Temperature, "C"), reading("RH", s.Humidity, "%"), reading("Press", s.Pressure, "hPa")}
	case sensor.Sensor3:
		s := rec.S3
		return []field{bat(s.LowBattery), sw("SW1", s.Switch1), sw("SW2", s.Switch2),
			reading("Temp", s.Temperature, "C"), reading("RH", s.Humidity, "%"), volts("Vcc", s.Vcc)}
	case sensor.Sensor4:
		s := rec.S4
		return []field{bat(s.LowBattery), volts("Vcc", s.Vcc), reading("Run", s.Runtime, "")}
	case sensor.Sensor5:
		s := rec.S5
		return []field{bat(s.LowBattery), volts("Vcc", s.Vcc), sw("SW1", s.Switch1), reading("PCI", s.PCI1, "")}
	}
	return nil
}

// RenderRecordPanel renders the current merged record, one block per sensor.
func RenderRecordPanel(rec sensor.Snapshot, now time.Time, width, height int, str i18n.Strings) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}

	lines := []string{
		StylePanelTitle.Render("CURRENT"),
		StyleSeparator.Render(strings.Repeat("-", innerW)),
	}

	for id := sensor.Sensor1; id <= sensor.Sensor5; id++ {
		head := fmt.Sprintf(" %s %d", str.Get(i18n.Sensor), id)
		seen := formatLastSeen(rec.LastSeen(id), now)
		lines = append(lines, StyleValue.Render(head)+StyleHelp.Render("  "+seen))

		row := "   "
		for _, f := range recordFields(rec, id, str) {
			v := StyleAbsent.Render(f.value)
			if f.valid {
				v = StyleValue.Render(f.value)
			}
			row += StyleLabel.Render(f.label+" ") + v + "  "
		}
		lines = append(lines, row)
	}

	for len(lines) < height-2 {
		lines = append(lines, "")
	}

	rendered := StylePanelActive.Width(width - 2).Height(height - 2).Render(strings.Join(lines, "\n"))
	return fit(rendered, height)
}

func formatLastSeen(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	if d < time.Second {
		return "now"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh ago", int(d.Hours()))
}
