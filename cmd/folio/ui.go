package main

import "github.com/charmbracelet/lipgloss"

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#73F59F"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A9"))
	activeStyle  = lipgloss.NewStyle().Bold(true)
)

func successText(s string) string { return successStyle.Render("✓ " + s) }
func errorText(s string) string   { return errorStyle.Render("✗ " + s) }
func warningText(s string) string { return warningStyle.Render("! " + s) }
func infoText(s string) string    { return infoStyle.Render(s) }
