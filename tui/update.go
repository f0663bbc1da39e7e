package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rincewound/klemme/analyze"
	"github.com/rincewound/klemme/monitor"
	"github.com/rincewound/klemme/serial"
)

// eventMsg carries one coordinator event into the update loop.
type eventMsg struct {
	ev monitor.Event
}

// statusTickMsg refreshes the status line between events.
type statusTickMsg struct{}

func waitForEvent(events <-chan monitor.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg{ev: <-events}
	}
}

func statusTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return statusTickMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.width > 24 {
			m.input.Width = m.width - 24
		}
		return m, nil

	case eventMsg:
		m.history = append(m.history, msg.ev)
		if len(m.history) > maxHistory {
			m.history = m.history[len(m.history)-maxHistory:]
		}
		return m, waitForEvent(m.events)

	case statusTickMsg:
		return m, statusTick()

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "esc":
		if m.mode == ModeNormal {
			return m.quit()
		}
		return m.enterNormal(), nil
	case "f10":
		m.history = nil
		return m, nil
	}

	switch m.mode {
	case ModeSettings:
		return m.updateSettings(msg.String())
	case ModeInteractive:
		return m.updateInteractive(msg)
	case ModeAnalyzer:
		return m.updateAnalyzer(msg.String())
	default:
		return m.updateNormal(msg.String())
	}
}

func (m Model) updateNormal(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "s":
		return m.enterSettings(), nil
	case "i":
		return m.enterInteractive()
	case "a":
		return m.enterAnalyzer(), nil
	}
	return m, nil
}

func (m Model) updateSettings(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "p":
		m.rotatePort()
	case "b":
		m.settings.NextBaudRate()
	case "s":
		m.settings.NextStopBits()
	case "a":
		m.settings.NextParity()
	case "d":
		m.settings.NextDataBits()
	case "m":
		m.rotateDisplayMode()
	case "c":
		m.settings.NextCRLFMode()
	case "enter":
		return m.enterInteractive()
	}
	return m, nil
}

func (m Model) updateInteractive(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		m.scroll++
		return m, nil
	case "down":
		if m.scroll > 0 {
			m.scroll--
		}
		return m, nil
	case "enter":
		m.sendInput()
		return m, nil
	case "f2":
		m.rotateDisplayMode()
		return m, nil
	case "f3":
		m.settings.NextInputMode()
		return m, nil
	}

	if m.hexInput() {
		filtered, ok := acceptHexKey(msg)
		if !ok {
			return m, nil
		}
		msg = filtered
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateAnalyzer(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "left":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right":
		m.cursor = analyze.ClampCursor(m.cursor+1, len(m.analyzerData()))
	case "up":
		m.scroll++
	case "down":
		if m.scroll > 0 {
			m.scroll--
		}
	case "f2":
		m.rotateDisplayMode()
	case "e":
		m.endian = m.endian.Toggle()
	}
	return m, nil
}

func (m Model) enterNormal() Model {
	m.commands <- monitor.StopCommand{}
	m.mode = ModeNormal
	m.input.Blur()
	return m
}

func (m Model) enterSettings() Model {
	m.commands <- monitor.StopCommand{}
	m.mode = ModeSettings
	m.input.Blur()
	return m
}

func (m Model) enterAnalyzer() Model {
	m.commands <- monitor.StopCommand{}
	m.mode = ModeAnalyzer
	m.input.Blur()
	return m
}

// enterInteractive opens the configured port and starts a session. An
// open failure lands in the history instead of tearing the UI down.
func (m Model) enterInteractive() (tea.Model, tea.Cmd) {
	m.mode = ModeInteractive
	m.input.Focus()

	sctx, err := serial.OpenContext(m.settings.PortConfig())
	if err != nil {
		m.logger.Error("Failed to open port",
			"port", m.settings.Port, "error", err)
		m.history = append(m.history, monitor.ErrorEvent{Message: err.Error()})
		return m, nil
	}

	m.commands <- monitor.StartCommand{Ctx: sctx}
	return m, textinput.Blink
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.commands <- monitor.StopCommand{}
	return m, tea.Quit
}

func (m *Model) sendInput() {
	payload := buildPayload(m.input.Value(), m.settings.InputMode, m.settings.CRLFMode)
	if len(payload) == 0 {
		return
	}
	m.commands <- monitor.SendCommand{Data: payload}
	m.input.SetValue("")
}

func (m Model) hexInput() bool {
	return m.settings.InputMode == "Hex"
}

// acceptHexKey drops characters the hex input does not admit. Keys
// that are not plain text pass through untouched.
func acceptHexKey(msg tea.KeyMsg) (tea.KeyMsg, bool) {
	if msg.Type != tea.KeyRunes {
		return msg, true
	}
	kept := make([]rune, 0, len(msg.Runes))
	for _, r := range msg.Runes {
		if isHexInputRune(r) {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return msg, false
	}
	msg.Runes = kept
	return msg, true
}

func isHexInputRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'f':
		return true
	case r >= 'A' && r <= 'F':
		return true
	case r == ' ':
		return true
	}
	return false
}
