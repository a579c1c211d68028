package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Indicator is the connectivity shown next to the label. It is derived from
// the label text, which is all a sink receives.
type Indicator int

const (
	Disconnected Indicator = iota
	Connected
	Failed
)

// LogEntry represents a log message
type LogEntry struct {
	Time    time.Time
	Message string
	Level   LogLevel
}

// LogLevel for log entries
type LogLevel int

const (
	LogInfo LogLevel = iota
	LogSuccess
	LogWarning
	LogError
)

// StatusPanel renders the current label and what a click does.
type StatusPanel struct {
	width    int
	height   int
	settings []string
}

// NewStatusPanel creates a status panel for the given settings command.
func NewStatusPanel(settings []string) *StatusPanel {
	return &StatusPanel{settings: settings}
}

// SetSize sets the panel dimensions
func (p *StatusPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// View renders the label with its indicator.
func (p *StatusPanel) View(label string, indicator Indicator, since time.Time) string {
	var lines []string

	icon, style := indicatorStyle(indicator)

	lines = append(lines, "")
	lines = append(lines, centerText(AccentStyle.Render(BluetoothGlyph), p.width))
	lines = append(lines, "")
	lines = append(lines, centerText(style.Render(icon)+" "+LabelStyle.Render(label), p.width))
	lines = append(lines, "")

	if !since.IsZero() {
		lines = append(lines, centerText(DimStyle.Render("since "+since.Format("15:04:05")), p.width))
		lines = append(lines, "")
	}

	if len(p.settings) > 0 {
		lines = append(lines, "")
		lines = append(lines, DimStyle.Render("Click or press Enter to run:"))
		lines = append(lines, DimStyle.Render("  "+TreeLast+" "+strings.Join(p.settings, " ")))
	}

	return strings.Join(lines, "\n")
}

func indicatorStyle(indicator Indicator) (string, lipgloss.Style) {
	switch indicator {
	case Connected:
		return IndicatorConnected, SuccessStyle
	case Failed:
		return IndicatorError, ErrorStyle
	default:
		return IndicatorDisconnected, DimStyle
	}
}

// LogPanel renders the log output
type LogPanel struct {
	entries []LogEntry
	width   int
	height  int
}

// maxLogEntries bounds the log panel history.
const maxLogEntries = 200

// NewLogPanel creates a new log panel
func NewLogPanel() *LogPanel {
	return &LogPanel{}
}

// Add adds a log entry
func (p *LogPanel) Add(level LogLevel, msg string) {
	p.AddAt(time.Now(), level, msg)
}

// AddAt adds a log entry with an explicit timestamp.
func (p *LogPanel) AddAt(t time.Time, level LogLevel, msg string) {
	p.entries = append(p.entries, LogEntry{
		Time:    t,
		Message: msg,
		Level:   level,
	})
	if len(p.entries) > maxLogEntries {
		p.entries = p.entries[len(p.entries)-maxLogEntries:]
	}
}

// Entries returns the retained entries, oldest first.
func (p *LogPanel) Entries() []LogEntry {
	return p.entries
}

// SetSize sets the panel dimensions
func (p *LogPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// View renders the log panel content
func (p *LogPanel) View() string {
	if len(p.entries) == 0 {
		return DimStyle.Render("  No log entries")
	}

	maxVisible := p.height - 2
	if maxVisible < 1 {
		maxVisible = 10
	}

	start := 0
	if len(p.entries) > maxVisible {
		start = len(p.entries) - maxVisible
	}

	var lines []string
	for _, entry := range p.entries[start:] {
		timestamp := DimStyle.Render(entry.Time.Format("15:04:05"))

		var msgStyle lipgloss.Style
		switch entry.Level {
		case LogSuccess:
			msgStyle = SuccessStyle
		case LogWarning:
			msgStyle = WarningStyle
		case LogError:
			msgStyle = ErrorStyle
		default:
			msgStyle = lipgloss.NewStyle().Foreground(ColorFg)
		}

		msg := entry.Message
		maxMsgLen := p.width - 12
		if maxMsgLen > 3 && lipgloss.Width(msg) > maxMsgLen {
			msg = truncate(msg, maxMsgLen-3) + "..."
		}

		lines = append(lines, timestamp+"  "+msgStyle.Render(msg))
	}

	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func centerText(text string, width int) string {
	textLen := lipgloss.Width(text)
	if textLen >= width {
		return text
	}
	padding := (width - textLen) / 2
	return strings.Repeat(" ", padding) + text
}
