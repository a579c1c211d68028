package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// AlertDialog reports a failure that needs acknowledging.
type AlertDialog struct {
	title   string
	message []string
	width   int
	height  int
}

// NewAlertDialog creates a new alert dialog
func NewAlertDialog(title string, message []string) *AlertDialog {
	return &AlertDialog{
		title:   title,
		message: message,
	}
}

// SettingsFailedDialog explains that the settings command could not start.
func SettingsFailedDialog(command []string, err error) *AlertDialog {
	return NewAlertDialog("SETTINGS UNAVAILABLE", []string{
		"Could not run:",
		"  " + strings.Join(command, " "),
		"",
		err.Error(),
		"",
		"Set settings.command in the",
		"config file to change it.",
	})
}

// SetSize sets dialog dimensions
func (d *AlertDialog) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// View renders the dialog
func (d *AlertDialog) View() string {
	var lines []string

	lines = append(lines, WarningStyle.Render("⚠  "+d.title))
	lines = append(lines, "")
	lines = append(lines, d.message...)
	lines = append(lines, "")

	ok := lipgloss.NewStyle().
		Padding(0, 2).
		Background(ColorBlue).
		Foreground(lipgloss.Color("0")).
		Render("OK")
	lines = append(lines, ok)

	return centerBox(strings.Join(lines, "\n"), 44, ColorYellow, d.width, d.height)
}

// centerBox draws content in a rounded box centered on a width x height
// screen.
func centerBox(content string, boxWidth int, border lipgloss.TerminalColor, width, height int) string {
	if boxWidth > width-10 {
		boxWidth = width - 10
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2).
		Width(boxWidth)

	box := boxStyle.Render(content)

	boxHeight := lipgloss.Height(box)
	topPadding := (height - boxHeight) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	leftPadding := (width - boxWidth - 4) / 2
	if leftPadding < 0 {
		leftPadding = 0
	}

	var result []string
	for i := 0; i < topPadding; i++ {
		result = append(result, "")
	}

	for _, line := range strings.Split(box, "\n") {
		result = append(result, strings.Repeat(" ", leftPadding)+line)
	}

	return strings.Join(result, "\n")
}
