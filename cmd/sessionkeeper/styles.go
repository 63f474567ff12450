package main

import "github.com/charmbracelet/lipgloss"

// Color Palette
var (
	salmonPink  = lipgloss.Color("#FFB3BA") // primary accent
	mintGreen   = lipgloss.Color("#A8E6CF") // success and active states
	mutedGray   = lipgloss.Color("#6B7280") // secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // primary text
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Foreground(brightWhite).
			Bold(true)

	cellStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	activeStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	addedStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedGray)
)
