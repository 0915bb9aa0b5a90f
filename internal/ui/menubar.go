package ui

import (
	"fmt"
	"strings"

	"sensor-receiver.klederson.com/internal/config"
	"sensor-receiver.klederson.com/internal/i18n"
)

// RenderMenuBar renders the top menu bar.
func RenderMenuBar(width int, source string, receiving bool, str i18n.Strings) string {
	title := fmt.Sprintf(" %s v%s ", config.AppName, config.AppVersion)

	keys := []struct{ key, label string }{
		{"C", "apture"},
		{"X", " remove"},
		{"D", "ump"},
		{"P", "ause"},
		{"Q", "uit"},
	}

	menu := ""
	for _, k := range keys {
		menu += "  " + StyleMenuKey.Render("["+k.key+"]") + StyleMenuLabel.Render(k.label)
	}

	status := StyleStatusReceiving.Render(strings.ToUpper(str.Get(i18n.Receiving)))
	if !receiving {
		status = StyleStatusPaused.Render(strings.ToUpper(str.Get(i18n.Paused)))
	}

	sourceInfo := StyleMenuLabel.Render(source)

	left := StyleMenuKey.Render(title) + menu
	right := status + "  " + sourceInfo + " "

	return StyleMenuBar.Width(width).Render(pad(left, right, width-2))
}
