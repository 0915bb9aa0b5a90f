package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"sensor-receiver.klederson.com/internal/config"
	"sensor-receiver.klederson.com/internal/dump"
	"sensor-receiver.klederson.com/internal/i18n"
	"sensor-receiver.klederson.com/internal/receiver"
	"sensor-receiver.klederson.com/internal/sensor"
	"sensor-receiver.klederson.com/internal/ui"
)

// shared holds state shared between the Bubble Tea model copies and main.go.
// Because Bubble Tea uses value receivers, pointer fields ensure all copies
// see the same underlying data.
type shared struct {
	collector *receiver.Collector
	writer    *dump.Writer
	source    receiver.Source
	log       logrus.FieldLogger
}

// AppModel is the root Bubble Tea model of the buffer monitor.
type AppModel struct {
	width  int
	height int

	receiving bool
	demoMode  bool
	adapter   string
	drain     bool
	interval  time.Duration
	cursor    int
	str       i18n.Strings

	notice      string
	noticeErr   bool
	lastCapture time.Time

	shared *shared

	// Cached state, refreshed every tick
	snapshots []sensor.Snapshot
	current   sensor.Snapshot
}

// New creates a monitor over collector fed by source. Dumped lines go to
// writer.
func New(cfg *config.Config, collector *receiver.Collector, source receiver.Source, writer *dump.Writer, log logrus.FieldLogger) AppModel {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return AppModel{
		receiving: true,
		demoMode:  cfg.Demo,
		adapter:   cfg.Adapter,
		drain:     cfg.Drain,
		interval:  cfg.CaptureInterval,
		str:       i18n.For(cfg.Lang()),
		shared: &shared{
			collector: collector,
			writer:    writer,
			source:    source,
			log:       log.WithField("component", "tui"),
		},
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		captureCmd(m.interval),
	)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		m.refresh()
		return m, tickCmd()

	case CaptureMsg:
		if m.receiving {
			m.capture(time.Time(msg))
		}
		return m, captureCmd(m.interval)

	case PacketMsg:
		if m.receiving {
			m.shared.collector.Apply(receiver.Update(msg))
		}
		return m, nil

	case DumpedMsg:
		if msg.Err != nil {
			m.setNotice(fmt.Sprintf("dump failed after %d lines", msg.Lines), true)
			m.shared.log.WithError(msg.Err).Error("Dump failed")
		} else {
			m.setNotice(fmt.Sprintf("%s: %d", m.str.Get(i18n.Fin), msg.Lines), false)
		}
		m.refresh()
		return m, nil
	}

	return m, nil
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		m.StopSources()
		return m, tea.Quit

	case "c", "C":
		m.capture(time.Now())

	case "x", "X":
		if m.shared.collector.RemoveOldest() {
			m.setNotice("oldest snapshot removed", false)
		} else {
			m.setNotice(m.str.Get(i18n.Empty), false)
		}
		m.refresh()

	case "d", "D":
		return m, m.dumpCmd()

	case "p", "P":
		m.receiving = !m.receiving

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.snapshots)-1 {
			m.cursor++
		}

	case "home":
		m.cursor = 0

	case "end":
		if len(m.snapshots) > 0 {
			m.cursor = len(m.snapshots) - 1
		}
	}

	return m, nil
}

func (m *AppModel) capture(now time.Time) {
	res := m.shared.collector.Capture(now)
	m.lastCapture = now
	switch res {
	case receiver.Rejected:
		m.setNotice(m.str.Get(i18n.Full), true)
	default:
		m.setNotice("", false)
	}
	m.refresh()
	// Follow the newest snapshot
	m.cursor = len(m.snapshots) - 1
}

func (m *AppModel) refresh() {
	m.snapshots = m.shared.collector.Snapshots()
	m.current = m.shared.collector.Current()
	if m.cursor >= len(m.snapshots) {
		m.cursor = len(m.snapshots) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *AppModel) setNotice(s string, isErr bool) {
	m.notice = s
	m.noticeErr = isErr
}

func (m AppModel) dumpCmd() tea.Cmd {
	sh, drain := m.shared, m.drain
	return func() tea.Msg {
		n, err := dump.Flush(sh.writer, sh.collector, drain)
		return DumpedMsg{Lines: n, Err: err}
	}
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Init..."
	}

	menuH := 1
	statusH := 1
	bodyH := m.height - menuH - statusH
	if bodyH < 5 {
		bodyH = 5
	}

	listW := m.width * 3 / 5
	if listW < 30 {
		listW = 30
	}
	panelW := m.width - listW
	if panelW < 24 {
		panelW = 24
		listW = m.width - panelW
	}

	source := "Adapter: " + m.adapter
	if m.demoMode {
		source = "DEMO"
	}
	menuBar := ui.RenderMenuBar(m.width, source, m.receiving, m.str)

	collector := m.shared.collector
	list := ui.RenderSnapshotList(m.snapshots, collector.Cap(), listW, bodyH, m.cursor, m.str)
	panel := ui.RenderRecordPanel(m.current, time.Now(), panelW, bodyH, m.str)

	statusBar := ui.RenderStatusBar(m.width, ui.BufferStatus{
		Occupied:    len(m.snapshots),
		Capacity:    collector.Cap(),
		Occupancy:   collector.Occupancy(),
		LastCapture: m.lastCapture,
	}, m.str, m.notice, m.noticeErr)

	return ui.ComposeLayout(menuBar, list, panel, statusBar)
}

// StartSources starts the packet source. Must be called before p.Run().
func (m *AppModel) StartSources(p *tea.Program) error {
	if m.shared.source == nil {
		return errors.New("no packet source")
	}
	return m.shared.source.Start(func(u receiver.Update) {
		p.Send(PacketMsg(u))
	})
}

// StopSources halts the packet source.
func (m *AppModel) StopSources() {
	if m.shared.source != nil {
		m.shared.source.Stop()
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(config.TargetFPS), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func captureCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return CaptureMsg(t)
	})
}
