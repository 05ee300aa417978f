package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/bugtracker/internal/domain"
)

type (
	deleteConfirmedMsg struct{ bug domain.Bug }
	deleteCancelledMsg struct{}
)

// DeleteConfirmModal asks before deleting a bug. Confirming does not close
// it; the owner closes it once the delete has settled.
type DeleteConfirmModal struct {
	open     bool
	bug      domain.Bug
	deleting bool
	err      string
}

// Open shows the confirmation for bug.
func (m DeleteConfirmModal) Open(bug domain.Bug) DeleteConfirmModal {
	return DeleteConfirmModal{open: true, bug: bug}
}

// Close hides the confirmation and forgets its target.
func (m DeleteConfirmModal) Close() DeleteConfirmModal {
	return DeleteConfirmModal{}
}

// Fail shows a delete failure and allows another attempt.
func (m DeleteConfirmModal) Fail(err error) DeleteConfirmModal {
	m.deleting = false
	if err != nil {
		m.err = err.Error()
	}
	return m
}

// IsOpen reports whether the overlay is shown.
func (m DeleteConfirmModal) IsOpen() bool { return m.open }

// Target returns the bug pending deletion.
func (m DeleteConfirmModal) Target() domain.Bug { return m.bug }

// Deleting reports whether the confirmed delete is still in flight.
func (m DeleteConfirmModal) Deleting() bool { return m.deleting }

// Update handles confirm and cancel keys.
func (m DeleteConfirmModal) Update(msg tea.Msg) (DeleteConfirmModal, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !m.open || !ok || m.deleting {
		return m, nil
	}

	switch keyMsg.String() {
	case "y", "Y", "enter":
		m.deleting = true
		m.err = ""
		bug := m.bug
		return m, func() tea.Msg { return deleteConfirmedMsg{bug: bug} }
	case "n", "N", "esc":
		return m, func() tea.Msg { return deleteCancelledMsg{} }
	}
	return m, nil
}

// View renders the overlay.
func (m DeleteConfirmModal) View() string {
	if !m.open {
		return ""
	}

	var b strings.Builder
	b.WriteString(ErrorStyle.Render("Delete Bug"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Are you sure you want to delete %q?\n", m.bug.Title))
	b.WriteString(dimStyle.Render("This action cannot be undone."))
	b.WriteString("\n\n")

	switch {
	case m.deleting:
		b.WriteString(dimStyle.Render("Deleting..."))
	case m.err != "":
		b.WriteString(ErrorStyle.Render("✗ " + m.err))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("[y] retry  [n] cancel"))
	default:
		b.WriteString(dimStyle.Render("[y] delete  [n] cancel"))
	}

	return dangerOverlayStyle.Render(b.String())
}
