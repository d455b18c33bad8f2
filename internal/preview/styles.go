package preview

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles of the preview.
type Styles struct {
	Heading   lipgloss.Style
	Card      lipgloss.Style
	Quote     lipgloss.Style
	Name      lipgloss.Style
	Service   lipgloss.Style
	Position  lipgloss.Style
	DotActive lipgloss.Style
	Dot       lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		Heading:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
		Card:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1),
		Quote:     lipgloss.NewStyle().Italic(true),
		Name:      lipgloss.NewStyle().Bold(true),
		Service:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Position:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		DotActive: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		Dot:       lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Status:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
}
