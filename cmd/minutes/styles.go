package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/nguyentantai21042004/minutes/internal/doctor"
)

var (
	ColorRed    = lipgloss.Color("#FF0000")
	ColorGreen  = lipgloss.Color("#00FF00")
	ColorYellow = lipgloss.Color("#FFFF00")
	ColorCyan   = lipgloss.Color("#00FFFF")
	ColorGray   = lipgloss.Color("#666666")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorRed)

	SnippetStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	nameColumn = lipgloss.NewStyle().Width(22)
)

func statusStyle(s doctor.Status) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true).Width(6)
	switch s {
	case doctor.StatusOK:
		return style.Foreground(ColorGreen)
	case doctor.StatusWarn:
		return style.Foreground(ColorYellow)
	default:
		return style.Foreground(ColorRed)
	}
}
