package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/khrees2412/jobseeker/pkg/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginTop(1).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
)

var statusColors = map[models.Status]lipgloss.Color{
	models.StatusApplied:   lipgloss.Color("12"),
	models.StatusInReview:  lipgloss.Color("11"),
	models.StatusInterview: lipgloss.Color("13"),
	models.StatusOffer:     lipgloss.Color("10"),
	models.StatusRejected:  lipgloss.Color("9"),
}

// renderStatus colours a status badge
func renderStatus(s models.Status) string {
	style := lipgloss.NewStyle().Bold(true)
	if c, ok := statusColors[s]; ok {
		style = style.Foreground(c)
	}
	return style.Render(string(s))
}
