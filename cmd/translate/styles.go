package main

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00d7ff"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffd700")).MarginTop(1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#87d7af")).Width(24)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#5fd75f")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true)
)

func field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}
