package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorHeader    = lipgloss.Color("#00e0ff") //nolint:gochecknoglobals // Style constant.
	ColorLabel     = lipgloss.Color("245")     //nolint:gochecknoglobals // Style constant.
	ColorValue     = lipgloss.Color("255")     //nolint:gochecknoglobals // Style constant.
	ColorMuted     = lipgloss.Color("240")     //nolint:gochecknoglobals // Style constant.
	ColorHighlight = lipgloss.Color("#0f57e2") //nolint:gochecknoglobals // Style constant.
	ColorError     = lipgloss.Color("196")     //nolint:gochecknoglobals // Style constant.
)

// Shared styles.
var (
	HeaderStyle = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)   //nolint:gochecknoglobals // Style constant.
	LabelStyle  = lipgloss.NewStyle().Foreground(ColorLabel)               //nolint:gochecknoglobals // Style constant.
	ValueStyle  = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)    //nolint:gochecknoglobals // Style constant.
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)               //nolint:gochecknoglobals // Style constant.
	ErrorStyle  = lipgloss.NewStyle().Foreground(ColorError)               //nolint:gochecknoglobals // Style constant.
	HelpStyle   = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)  //nolint:gochecknoglobals // Style constant.
	RuleStyle   = lipgloss.NewStyle().Foreground(ColorHighlight)           //nolint:gochecknoglobals // Style constant.
)

// RenderHelp returns the key help line.
func RenderHelp() string {
	return HelpStyle.Render("↑/↓ scroll • n/p next/previous step • g/G top/bottom • q quit")
}
