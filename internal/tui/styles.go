package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/robby/bugtracker/internal/domain"
)

var (
	// TitleStyle is used for screen titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")) // Purple

	// SelectedItemStyle is used for highlighted/selected items.
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")). // Light purple
				Bold(true)

	// NormalItemStyle is used for non-selected items.
	NormalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light gray

	// ErrorStyle is used for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// HelpStyle is used for help text.
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")) // Dark gray

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	// OverlayStyle frames modal forms and confirmations.
	OverlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	dangerOverlayStyle = OverlayStyle.
				BorderForeground(lipgloss.Color("196"))
)

// styleClass names the color family of a badge or banner.
type styleClass string

const (
	classSuccess styleClass = "success"
	classWarning styleClass = "warning"
	classDanger  styleClass = "danger"
)

var badgeStyles = map[styleClass]lipgloss.Style{
	classSuccess: lipgloss.NewStyle().
		Foreground(lipgloss.Color("22")).
		Background(lipgloss.Color("120")).
		Bold(true).
		Padding(0, 1),
	classWarning: lipgloss.NewStyle().
		Foreground(lipgloss.Color("94")).
		Background(lipgloss.Color("229")).
		Bold(true).
		Padding(0, 1),
	classDanger: lipgloss.NewStyle().
		Foreground(lipgloss.Color("88")).
		Background(lipgloss.Color("217")).
		Bold(true).
		Padding(0, 1),
}

// Notification banners.
var (
	notificationStyles = map[styleClass]lipgloss.Style{
		classSuccess: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("28")).
			Padding(0, 2),
		classDanger: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("160")).
			Padding(0, 2),
	}

	notificationFadingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Padding(0, 2)
)

func statusClass(s domain.Status) styleClass {
	switch s {
	case domain.StatusOpen:
		return classDanger
	case domain.StatusInProgress:
		return classWarning
	}
	return classSuccess
}

func priorityClass(p domain.Priority) styleClass {
	switch p {
	case domain.PriorityHigh:
		return classDanger
	case domain.PriorityMedium:
		return classWarning
	}
	return classSuccess
}

func badge(text string, class styleClass) string {
	return badgeStyles[class].Render(text)
}

func statusBadge(s domain.Status) string {
	return badge(string(s), statusClass(s))
}

func priorityBadge(p domain.Priority) string {
	return badge(string(p), priorityClass(p))
}
