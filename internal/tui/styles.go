package tui

import "github.com/charmbracelet/lipgloss"

// Row statuses used by the compositor's progress table.
const (
	StatusPending   = "pending"
	StatusResolving = "resolving"
	StatusResolved  = "resolved"
	StatusEncoding  = "encoding"
	StatusEncoded   = "encoded"
	StatusSkipped   = "skipped"
	StatusError     = "error"
)

var (
	// TitleStyle styles the table title.
	TitleStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	statusStyles = map[string]lipgloss.Style{
		StatusResolved: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		StatusEncoded:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),

		StatusResolving: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		StatusEncoding:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),

		StatusSkipped: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),

		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),

		StatusPending: lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

func isTerminalStatus(status string) bool {
	switch status {
	case StatusResolved, StatusEncoded, StatusSkipped, StatusError:
		return true
	}
	return false
}
