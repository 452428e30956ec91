package styles

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	accent  = lipgloss.Color("#7B61FF")
	green   = lipgloss.Color("#73F59F")
	muted   = lipgloss.Color("#666666")
	teal    = lipgloss.Color("#5A9")
	red     = lipgloss.Color("#FF0000")
	orange  = lipgloss.Color("#D08770")
	white   = lipgloss.Color("#FFFFFF")
	prompts = lipgloss.Color("#4F4FB7")
)

// Theme holds the browse screen styles. Detached marks a folder that was
// removed while it was open.
var Theme = struct {
	App, Title                 lipgloss.Style
	Selected, Unselected, Help lipgloss.Style
	Error, Prompt, Detached    lipgloss.Style
}{
	App:        lipgloss.NewStyle().Padding(1, 2),
	Title:      lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
	Selected:   lipgloss.NewStyle().Bold(true).Foreground(green),
	Unselected: lipgloss.NewStyle().Foreground(muted),
	Help:       lipgloss.NewStyle().Foreground(teal),
	Error:      lipgloss.NewStyle().Foreground(red),
	Prompt:     lipgloss.NewStyle().Foreground(white).Background(prompts).Padding(0, 1),
	Detached:   lipgloss.NewStyle().Italic(true).Foreground(orange),
}
