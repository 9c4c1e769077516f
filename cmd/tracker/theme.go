package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/KirkDiggler/initiative-tracker/internal/entities"
)

var (
	cAccent = lipgloss.Color("205") // magenta
	cGood   = lipgloss.Color("42")  // green
	cWarn   = lipgloss.Color("214") // orange
	cBad    = lipgloss.Color("196") // red
	cMuted  = lipgloss.Color("244") // gray

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	goodStyle  = lipgloss.NewStyle().Foreground(cGood)
	evilStyle  = lipgloss.NewStyle().Foreground(cBad)
	warnStyle  = lipgloss.NewStyle().Foreground(cWarn)
	mutedStyle = lipgloss.NewStyle().Foreground(cMuted)
	critStyle  = lipgloss.NewStyle().Bold(true).Foreground(cBad)
)

// teamText colors an already padded cell by team
func teamText(team entities.Team, cell string) string {
	if team == entities.TeamEvil {
		return evilStyle.Render(cell)
	}
	return goodStyle.Render(cell)
}
