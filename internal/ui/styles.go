package ui

import "github.com/charmbracelet/lipgloss"

// Standard ANSI colors - works with any terminal colorscheme
var (
	ColorFg        = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	ColorGreen     = lipgloss.Color("2")
	ColorRed       = lipgloss.Color("1")
	ColorYellow    = lipgloss.Color("3")
	ColorCyan      = lipgloss.Color("6")
	ColorBlue      = lipgloss.Color("4")
	ColorDim       = lipgloss.Color("8")
	ColorBorder    = lipgloss.Color("8")
	ColorBorderAct = lipgloss.Color("4")
)

// BluetoothGlyph is the icon shown next to the label.
const BluetoothGlyph = "ᛒ"

// Status indicators
const (
	IndicatorConnected    = "●"
	IndicatorDisconnected = "○"
	IndicatorError        = "✗"
)

// Base styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorFg).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorDim)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	AccentStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	KeyHintStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)
)

// Tree characters
const (
	TreeBranch = "├"
	TreeLast   = "└"
)
