package ui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dhavalsavalia/btstatus/internal/config"
)

// Launcher opens the Bluetooth settings application.
type Launcher interface {
	Launch(ctx context.Context) error
	Command() []string
}

// headerHeight is the number of rows taken by the bordered header.
const headerHeight = 3

// Model is the main bubbletea model
type Model struct {
	// Dimensions
	width  int
	height int

	// State
	label     string
	indicator Indicator
	since     time.Time
	showHelp  bool
	alert     *AlertDialog

	// Panels
	statusPanel *StatusPanel
	logPanel    *LogPanel
	helpOverlay *HelpOverlay

	display  config.DisplayConfig
	launcher Launcher
	version  string
}

// NewModel creates a new model from config. launcher may be nil, in which
// case the click gesture only logs.
func NewModel(cfg *config.Config, launcher Launcher, version string) *Model {
	var command []string
	if launcher != nil {
		command = launcher.Command()
	}

	return &Model{
		label:       cfg.Display.NotConnected,
		indicator:   Disconnected,
		statusPanel: NewStatusPanel(command),
		logPanel:    NewLogPanel(),
		helpOverlay: NewHelpOverlay(),
		display:     cfg.Display,
		launcher:    launcher,
		version:     version,
	}
}

// labelMsg carries a new label from the tracker.
type labelMsg struct {
	text string
}

// logMsg carries a log line into the log panel.
type logMsg struct {
	at    time.Time
	level LogLevel
	text  string
}

// launchDoneMsg reports the outcome of starting the settings application.
type launchDoneMsg struct {
	err error
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	m.logPanel.Add(LogInfo, "Started - btstatus "+m.version)
	return nil
}

// Label returns the text currently displayed.
func (m *Model) Label() string {
	return m.label
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updatePanelSizes()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft &&
			msg.Y < headerHeight && !m.showHelp && m.alert == nil {
			return m, m.launch()
		}
		return m, nil

	case labelMsg:
		m.setLabel(msg.text)
		return m, nil

	case logMsg:
		m.logPanel.AddAt(msg.at, msg.level, msg.text)
		return m, nil

	case launchDoneMsg:
		if msg.err != nil {
			m.logPanel.Add(LogError, "Settings failed: "+msg.err.Error())
			m.alert = SettingsFailedDialog(m.settingsCommand(), msg.err)
			m.alert.SetSize(m.width, m.height)
			return m, nil
		}
		m.logPanel.Add(LogInfo, "Opened settings")
		return m, nil
	}

	return m, nil
}

func (m *Model) setLabel(text string) {
	// SetText is idempotent; repeated labels do not reset the timestamp.
	if text == m.label && !m.since.IsZero() {
		return
	}

	m.label = text
	m.since = time.Now()

	switch text {
	case m.display.NotConnected:
		m.indicator = Disconnected
	case m.display.Error:
		m.indicator = Failed
	default:
		m.indicator = Connected
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		if m.alert == nil {
			m.showHelp = !m.showHelp
		}
		return m, nil
	case "esc":
		m.showHelp = false
		m.alert = nil
		return m, nil
	}

	if m.alert != nil {
		if msg.String() == "enter" {
			m.alert = nil
		}
		return m, nil
	}

	if m.showHelp {
		return m, nil
	}

	switch msg.String() {
	case "enter", "s":
		return m, m.launch()
	}

	return m, nil
}

// launch runs the settings application off the update loop.
func (m *Model) launch() tea.Cmd {
	launcher := m.launcher
	if launcher == nil {
		m.logPanel.Add(LogWarning, "No settings command configured")
		return nil
	}

	m.logPanel.Add(LogInfo, "Opening "+strings.Join(launcher.Command(), " "))

	return func() tea.Msg {
		return launchDoneMsg{err: launcher.Launch(context.Background())}
	}
}

func (m *Model) settingsCommand() []string {
	if m.launcher == nil {
		return nil
	}
	return m.launcher.Command()
}

func (m *Model) updatePanelSizes() {
	contentHeight := m.height - 6

	leftWidth := m.width * 40 / 100
	rightWidth := m.width - leftWidth - 4

	m.statusPanel.SetSize(leftWidth, contentHeight)
	m.logPanel.SetSize(rightWidth, contentHeight)
	m.helpOverlay.SetSize(m.width, m.height)
	if m.alert != nil {
		m.alert.SetSize(m.width, m.height)
	}
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.helpOverlay.View()
	}
	if m.alert != nil {
		return m.alert.View()
	}

	var s strings.Builder

	s.WriteString(m.renderHeader())
	s.WriteString("\n")
	s.WriteString(m.renderPanels())
	s.WriteString("\n")
	s.WriteString(m.renderFooter())

	return s.String()
}

func (m *Model) renderHeader() string {
	title := TitleStyle.Render(BluetoothGlyph + " BTSTATUS")

	icon, style := indicatorStyle(m.indicator)
	status := style.Render(icon) + " " + LabelStyle.Render(m.label)

	version := DimStyle.Render(m.version)

	leftPart := title
	rightPart := status + "   " + version
	spacing := m.width - lipgloss.Width(leftPart) - lipgloss.Width(rightPart) - 4
	if spacing < 1 {
		spacing = 1
	}

	headerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		Width(m.width - 2)

	content := leftPart + strings.Repeat(" ", spacing) + rightPart
	return headerStyle.Render(content)
}

func (m *Model) renderPanels() string {
	leftWidth := m.width * 40 / 100
	rightWidth := m.width - leftWidth - 4

	contentHeight := m.height - 6

	statusStyle := PanelStyle.Width(leftWidth).Height(contentHeight)
	statusPanel := statusStyle.Render(AccentStyle.Render(" Device ") + "\n\n" +
		m.statusPanel.View(m.label, m.indicator, m.since))

	logStyle := PanelStyle.Width(rightWidth).Height(contentHeight)
	logPanel := logStyle.Render(AccentStyle.Render(" Log ") + "\n\n" + m.logPanel.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, statusPanel, logPanel)
}

func (m *Model) renderFooter() string {
	hints := []string{"Enter Settings", "q Quit"}

	left := DimStyle.Render(strings.Join(hints, "   "))
	right := DimStyle.Render("? Help")

	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if spacing < 1 {
		spacing = 1
	}

	return " " + left + strings.Repeat(" ", spacing) + right
}
