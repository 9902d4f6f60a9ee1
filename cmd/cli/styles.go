package main

import (
	"fmt"

	lipgloss "github.com/charmbracelet/lipgloss/v2"
)

var (
	colorPrimary = lipgloss.Color("#7C71F9")
	colorSuccess = lipgloss.Color("#34D399")
	colorError   = lipgloss.Color("#F87171")
	colorWarning = lipgloss.Color("#FBBF24")
	colorDim     = lipgloss.Color("#6B7280")
	colorAccent  = lipgloss.Color("#60A5FA")
)

var (
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleError   = lipgloss.NewStyle().Foreground(colorError)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)

	styleLabel = styleDim
	styleValue = lipgloss.NewStyle()

	styleHuman     = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	styleAssistant = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)

	styleToolName = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleToolArgs = styleDim

	styleThinking = lipgloss.NewStyle().Faint(true).Italic(true)

	styleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)

	styleActive = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
)

func kvLine(key, value string) string {
	return fmt.Sprintf("  %s %s", styleLabel.Render(key+":"), styleValue.Render(value))
}

func styledError(msg string, hints ...string) string {
	out := styleError.Render(msg)
	for _, h := range hints {
		out += "\n  " + styleDim.Render(h)
	}
	return out
}
