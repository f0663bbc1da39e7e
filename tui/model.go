// Package tui implements the terminal front end: a settings header, a
// scrollable capture history, a transmit line and a byte analyzer,
// driven by coordinator events.
package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rincewound/klemme/analyze"
	"github.com/rincewound/klemme/config"
	"github.com/rincewound/klemme/format"
	"github.com/rincewound/klemme/monitor"
)

// Mode selects which view has the keyboard focus.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSettings
	ModeInteractive
	ModeAnalyzer
)

func (m Mode) String() string {
	switch m {
	case ModeSettings:
		return "Settings"
	case ModeInteractive:
		return "Interactive"
	case ModeAnalyzer:
		return "Analyzer"
	default:
		return "Normal"
	}
}

// Entries kept in the visible history before the oldest are dropped.
const maxHistory = 4096

// Model is the bubbletea application state.
type Model struct {
	logger   *slog.Logger
	settings *config.Settings
	commands chan<- monitor.Command
	events   <-chan monitor.Event
	stats    func() monitor.Stats

	mode     Mode
	ports    []string
	encoding format.Encoding
	endian   analyze.Endianness

	history []monitor.Event
	scroll  int
	cursor  int

	input textinput.Model

	width  int
	height int

	styles styles
}

// New builds the initial model. The session starts in settings mode,
// mirroring a fresh device hookup where parameters come first.
func New(logger *slog.Logger, settings *config.Settings, coord *monitor.Coordinator, ports []string) Model {
	enc, err := format.Get(settings.DisplayMode)
	if err != nil {
		enc = format.Next("")
	}

	input := textinput.New()
	input.Prompt = ""

	m := Model{
		logger:   logger,
		settings: settings,
		commands: coord.Commands(),
		events:   coord.Events(),
		stats:    coord.Stats,
		mode:     ModeSettings,
		ports:    ports,
		encoding: enc,
		endian:   analyze.Little,
		input:    input,
		styles:   defaultStyles(),
	}

	// A saved port may have been unplugged since the last run.
	if !containsPort(ports, m.settings.Port) {
		m.settings.Port = ""
		if len(ports) > 0 {
			m.settings.Port = ports[0]
		}
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), statusTick(), textinput.Blink)
}

// rotatePort advances to the next enumerated port, falling back to the
// first when the current one is unknown.
func (m *Model) rotatePort() {
	if len(m.ports) == 0 {
		m.settings.Port = ""
		return
	}
	for i, p := range m.ports {
		if p == m.settings.Port {
			m.settings.Port = m.ports[(i+1)%len(m.ports)]
			return
		}
	}
	m.settings.Port = m.ports[0]
}

func (m *Model) rotateDisplayMode() {
	m.encoding = format.Next(m.encoding.Name())
	m.settings.DisplayMode = m.encoding.Name()
}

// analyzerData returns the payload under analysis: the newest data
// entry still visible at the current scroll offset.
func (m *Model) analyzerData() []byte {
	entries := m.history
	if m.scroll >= len(entries) {
		return nil
	}
	entries = entries[:len(entries)-m.scroll]
	for i := len(entries) - 1; i >= 0; i-- {
		if ev, ok := entries[i].(monitor.DataEvent); ok {
			return ev.Entry.Data
		}
	}
	return nil
}

func containsPort(ports []string, name string) bool {
	for _, p := range ports {
		if p == name {
			return true
		}
	}
	return false
}
