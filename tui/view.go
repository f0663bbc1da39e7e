package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rincewound/klemme/analyze"
	"github.com/rincewound/klemme/monitor"
)

// Characters dimmed after the analyzer cursor to mark the widest
// decode window.
const analyzerWindow = 24

const timeFormat = "15:04:05.000"

type styles struct {
	box       lipgloss.Style
	boxHot    lipgloss.Style
	hotkey    lipgloss.Style
	label     lipgloss.Style
	rx        lipgloss.Style
	tx        lipgloss.Style
	started   lipgloss.Style
	stopped   lipgloss.Style
	timestamp lipgloss.Style
	cursorHit lipgloss.Style
	cursorWin lipgloss.Style
	panel     lipgloss.Style
	title     lipgloss.Style
	status    lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		box:       lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("245")),
		boxHot:    lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("9")),
		hotkey:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		label:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		rx:        lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		tx:        lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		started:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		stopped:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		cursorHit: lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("4")),
		cursorWin: lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("8")),
		panel:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("245")).Padding(0, 1),
		title:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true),
		status:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func (m Model) View() string {
	history := m.viewHistory()
	if panel := m.viewAnalyzerPanel(); panel != "" {
		history = lipgloss.JoinHorizontal(lipgloss.Top, history, "  ", panel)
	}

	return m.viewHeader() + "\n" +
		history + "\n" +
		m.viewTxLine() + "\n" +
		m.viewStatus()
}

func (m Model) viewHeader() string {
	hot := m.styles.label
	box := m.styles.box
	if m.mode == ModeSettings {
		hot = m.styles.hotkey
		box = m.styles.boxHot
	}

	s := m.settings
	line := hot.Render("P") + m.styles.label.Render(fmt.Sprintf("ort:%s; ", s.Port)) +
		hot.Render("B") + m.styles.label.Render(fmt.Sprintf("aud:%d; ", s.BaudRate)) +
		hot.Render("S") + m.styles.label.Render(fmt.Sprintf("topbits:%d; ", s.StopBits)) +
		m.styles.label.Render("P") + hot.Render("a") + m.styles.label.Render(fmt.Sprintf("rity:%s; ", s.Parity)) +
		hot.Render("D") + m.styles.label.Render(fmt.Sprintf("atabits:%d; ", s.DataBits)) +
		m.styles.label.Render("Display") + hot.Render("M") + m.styles.label.Render(fmt.Sprintf("ode:%s; ", m.encoding.Title())) +
		hot.Render("C") + m.styles.label.Render(fmt.Sprintf("RLF:%s", s.CRLFMode))

	if m.width > 2 {
		box = box.Width(m.width - 2)
	}
	return box.Render(line)
}

// viewHistory renders the capture list with the newest entry at the
// bottom. Scrolling hides the newest entries first.
func (m Model) viewHistory() string {
	rows := m.historyRows()
	entries := m.history
	if m.scroll >= len(entries) {
		entries = nil
	} else {
		entries = entries[:len(entries)-m.scroll]
	}

	lines := make([]string, 0, rows)
	target := true
	for i := len(entries) - 1; i >= 0 && len(lines) < rows; i-- {
		lines = append(lines, m.renderEvent(entries[i], target))
		if _, ok := entries[i].(monitor.DataEvent); ok {
			target = false
		}
	}

	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	for len(lines) < rows {
		lines = append([]string{""}, lines...)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEvent(ev monitor.Event, target bool) string {
	switch ev := ev.(type) {
	case monitor.DataEvent:
		return m.renderEntry(ev.Entry, target)
	case monitor.ErrorEvent:
		return ev.Message
	case monitor.StartedEvent:
		return m.styles.started.Render("--- Started ---")
	case monitor.StoppedEvent:
		return m.styles.stopped.Render("--- Stopped ---")
	}
	return ""
}

func (m Model) renderEntry(entry monitor.HistoryEntry, target bool) string {
	dir := m.styles.rx.Render(entry.Dir.String())
	if entry.Dir == monitor.Tx {
		dir = m.styles.tx.Render(entry.Dir.String())
	}
	stamp := m.styles.timestamp.Render(entry.At.Format(timeFormat))
	return stamp + " " + dir + m.styles.label.Render(":") + m.renderBody(entry.Data, target)
}

// renderBody applies the analyzer cursor highlight to the newest
// visible data entry while analyzing hex output.
func (m Model) renderBody(data []byte, target bool) string {
	text := m.encoding.Format(data)
	if !target || m.mode != ModeAnalyzer || m.encoding.Name() != "hex" {
		return m.styles.label.Render(text)
	}

	start, end := m.encoding.Span(data, m.cursor)
	if start >= end || end >= len(text) {
		return m.styles.label.Render(text)
	}
	winEnd := end + analyzerWindow
	if winEnd > len(text) {
		winEnd = len(text)
	}

	return m.styles.label.Render(text[:start]) +
		m.styles.cursorHit.Render(text[start:end]) +
		m.styles.cursorWin.Render(text[end:winEnd]) +
		m.styles.label.Render(text[winEnd:])
}

// viewAnalyzerPanel shows the decoded values at the cursor. It only
// appears while analyzing hex output with the cursor on real data.
func (m Model) viewAnalyzerPanel() string {
	if m.mode != ModeAnalyzer || m.encoding.Name() != "hex" {
		return ""
	}
	items := analyze.Decode(m.analyzerData(), m.cursor, m.endian)
	if len(items) == 0 {
		return ""
	}

	lines := make([]string, 0, len(items)+1)
	lines = append(lines, m.styles.title.Render(fmt.Sprintf("Analyzer, %s endian", m.endian)))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%-7s %s", it.Label, it.Value))
	}
	return m.styles.panel.Render(strings.Join(lines, "\n"))
}

func (m Model) viewTxLine() string {
	box := m.styles.box
	if m.mode == ModeInteractive {
		box = m.styles.boxHot
	}
	if m.width > 2 {
		box = box.Width(m.width - 2)
	}

	label := m.styles.tx.Render("TX") +
		m.styles.label.Render("("+m.settings.InputMode+"):")
	return box.Render(label + m.input.View())
}

func (m Model) viewStatus() string {
	st := m.stats()
	left := fmt.Sprintf("[%s] rx:%d tx:%d entries:%d errors:%d",
		m.mode, st.BytesReceived, st.BytesSent, st.Entries, st.Errors)

	var hint string
	switch m.mode {
	case ModeSettings:
		hint = "p/b/s/a/d/m/c rotate | enter connect | esc back"
	case ModeInteractive:
		hint = "enter send | f2 display | f3 input | up/down scroll | f10 clear | esc back"
	case ModeAnalyzer:
		hint = "left/right cursor | e endian | f2 display | up/down scroll | esc back"
	default:
		hint = "s settings | i interactive | a analyzer | f10 clear | esc quit"
	}
	return m.styles.status.Render(left + "   " + hint)
}

func (m Model) historyRows() int {
	if m.height == 0 {
		return 16
	}
	rows := m.height - 7
	if rows < 3 {
		rows = 3
	}
	return rows
}
