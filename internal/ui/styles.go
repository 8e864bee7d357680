package ui

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	SelectedCardStyle = CardStyle.Copy().BorderForeground(lipgloss.Color("205"))

	StatusRequested = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	StatusAccepted  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	StatusTerminal  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	NoticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	FaintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	PINStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 2)
)

// StatusStyle picks the style for a normalized ride status name.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "REQUESTED":
		return StatusRequested
	case "ACCEPTED":
		return StatusAccepted
	default:
		return StatusTerminal
	}
}
