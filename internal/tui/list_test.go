package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/bugtracker/internal/domain"
	"github.com/robby/bugtracker/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListModel_LoadsBugsWithBadges(t *testing.T) {
	m := loadedList(t, newFakeService(twoBugs()...))

	assert.Equal(t, 2, m.store.Len())
	view := m.View()
	for _, want := range []string{"Bug 1", "Bug 2", "Open", "In Progress", "High", "Medium"} {
		assert.Contains(t, view, want)
	}

	bug1, err := m.store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, classDanger, statusClass(bug1.Status))
	assert.Equal(t, classDanger, priorityClass(bug1.Priority))

	bug2, err := m.store.Get(2)
	require.NoError(t, err)
	assert.Equal(t, classWarning, statusClass(bug2.Status))
	assert.Equal(t, classWarning, priorityClass(bug2.Priority))
}

func TestListModel_InitialLoadFailure(t *testing.T) {
	svc := newFakeService(twoBugs()...)
	svc.listErr = errors.New("Failed to fetch bugs")
	m := NewListModel(context.Background(), svc, store.New(), Links{})

	m, _ = updateList(m, run(t, m.fetch()))
	assert.Equal(t, listError, m.state)
	assert.Contains(t, m.View(), "Error: Failed to fetch bugs")

	// No automatic retry; r retries on demand.
	svc.listErr = nil
	m, cmd := updateList(m, keyRunes("r"))
	assert.Equal(t, listLoading, m.state)
	m, _ = updateList(m, run(t, cmd))
	assert.Equal(t, listReady, m.state)
	assert.Equal(t, 2, m.store.Len())
}

func TestListModel_CreateBug(t *testing.T) {
	svc := newFakeService(twoBugs()...)
	m := loadedList(t, svc)

	m, _ = updateList(m, keyRunes("a"))
	require.True(t, m.addForm.IsOpen())

	m, _ = updateList(m, keyRunes("New Bug"))
	m, _ = updateList(m, keyType(tea.KeyTab))
	m, _ = updateList(m, keyRunes("Crashes on save"))
	m, cmd := updateList(m, keyType(tea.KeyCtrlS))

	submitted := run(t, cmd)
	require.IsType(t, bugFormSubmittedMsg{}, submitted)
	m, cmd = updateList(m, submitted)
	assert.True(t, m.busy)

	m, _ = updateList(m, run(t, cmd))

	assert.False(t, m.busy)
	assert.False(t, m.addForm.IsOpen())
	assert.Equal(t, 3, m.store.Len())
	require.Len(t, svc.created, 1)
	assert.Equal(t, domain.StatusOpen, svc.created[0].Status)
	assert.Equal(t, domain.PriorityMedium, svc.created[0].Priority)

	assert.Equal(t, Notice{Kind: NoticeCreated, Title: "New Bug"}, m.Notice())
	require.NotNil(t, m.notification)
	assert.Equal(t, `Successfully created bug "New Bug"`, m.notification.Message())
	assert.Contains(t, m.View(), `Successfully created bug "New Bug"`)

	// Dismissal clears the notice, once.
	m, cmd = updateList(m, notificationDismissMsg{id: m.notification.ID()})
	m, _ = updateList(m, run(t, cmd))
	assert.True(t, m.Notice().IsZero())
	assert.Nil(t, m.notification)
	assert.NotContains(t, m.View(), "Successfully created")
}

func TestListModel_AddFormValidation(t *testing.T) {
	svc := newFakeService(twoBugs()...)
	m := loadedList(t, svc)

	m, _ = updateList(m, keyRunes("a"))
	m, cmd := updateList(m, keyType(tea.KeyCtrlS))
	assert.Nil(t, cmd)
	assert.True(t, m.addForm.IsOpen())

	m, _ = updateList(m, keyRunes("   "))
	m, _ = updateList(m, keyType(tea.KeyTab))
	m, _ = updateList(m, keyRunes("described"))
	m, cmd = updateList(m, keyType(tea.KeyCtrlS))
	assert.Nil(t, cmd, "whitespace-only title must not submit")
	assert.True(t, m.addForm.IsOpen())
	assert.Empty(t, svc.created)
}

func TestListModel_CreateFailureKeepsInput(t *testing.T) {
	svc := newFakeService(twoBugs()...)
	svc.createErr = errors.New("Failed to create bug")
	m := loadedList(t, svc)

	m, _ = updateList(m, keyRunes("a"))
	m, _ = updateList(m, keyRunes("Keep me"))
	m, _ = updateList(m, keyType(tea.KeyTab))
	m, _ = updateList(m, keyRunes("details"))
	m, cmd := updateList(m, keyType(tea.KeyCtrlS))
	m, cmd = updateList(m, run(t, cmd))
	m, _ = updateList(m, run(t, cmd))

	assert.False(t, m.busy)
	assert.True(t, m.addForm.IsOpen())
	assert.False(t, m.addForm.Submitting())
	assert.Equal(t, "Keep me", m.addForm.title.Value())
	assert.Contains(t, m.View(), "Failed to create bug")
	assert.True(t, m.Notice().IsZero())
}

func TestListModel_DoubleSubmitIgnored(t *testing.T) {
	m := loadedList(t, newFakeService(twoBugs()...))
	submitted := bugFormSubmittedMsg{mode: FormAdd, input: domain.BugInput{Title: "x", Description: "y", Priority: domain.PriorityLow}}

	m, first := updateList(m, submitted)
	require.NotNil(t, first)
	_, second := updateList(m, submitted)
	assert.Nil(t, second)
}

func TestListModel_EditBug(t *testing.T) {
	svc := newFakeService(twoBugs()...)
	m := loadedList(t, svc)

	m, _ = updateList(m, keyRunes("e"))
	require.True(t, m.editForm.IsOpen())
	assert.Equal(t, "Bug 1", m.editForm.title.Value())

	// Move to the status selector and advance it.
	m, _ = updateList(m, keyType(tea.KeyTab))
	m, _ = updateList(m, keyType(tea.KeyTab))
	m, _ = updateList(m, keyType(tea.KeyRight))
	m, cmd := updateList(m, keyType(tea.KeyCtrlS))

	m, cmd = updateList(m, run(t, cmd))
	m, _ = updateList(m, run(t, cmd))

	assert.False(t, m.editForm.IsOpen())
	require.NotNil(t, svc.lastPatch.Status)
	assert.Equal(t, domain.StatusInProgress, *svc.lastPatch.Status)
	require.NotNil(t, svc.lastPatch.Title, "edits send every field")

	bug, err := m.store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, bug.Status)
	assert.True(t, m.Notice().IsZero(), "edits raise no notice")
}

func TestListModel_DeleteBug(t *testing.T) {
	svc := newFakeService(twoBugs()...)
	m := loadedList(t, svc)

	m, _ = updateList(m, keyRunes("d"))
	require.True(t, m.confirm.IsOpen())
	assert.Contains(t, m.View(), "Bug 1")

	m, cmd := updateList(m, keyRunes("y"))
	confirmed := run(t, cmd)
	assert.True(t, m.confirm.IsOpen(), "confirm does not close itself")

	m, cmd = updateList(m, confirmed)
	m, _ = updateList(m, run(t, cmd))

	assert.False(t, m.confirm.IsOpen())
	_, err := m.store.Get(1)
	assert.ErrorIs(t, err, store.ErrBugNotFound)
	assert.Equal(t, 1, m.store.Len())
	require.NotNil(t, m.notification)
	assert.Equal(t, `Successfully deleted bug "Bug 1"`, m.notification.Message())
}

func TestListModel_DeleteCancel(t *testing.T) {
	svc := newFakeService(twoBugs()...)
	m := loadedList(t, svc)

	m, _ = updateList(m, keyRunes("d"))
	m, cmd := updateList(m, keyRunes("n"))
	m, _ = updateList(m, run(t, cmd))

	assert.False(t, m.confirm.IsOpen())
	assert.Equal(t, 2, m.store.Len())
}

func TestListModel_DeleteFailureStaysOpen(t *testing.T) {
	svc := newFakeService(twoBugs()...)
	svc.deleteErr = errors.New("Failed to delete bug")
	m := loadedList(t, svc)

	m, _ = updateList(m, keyRunes("d"))
	m, cmd := updateList(m, keyRunes("y"))
	m, cmd = updateList(m, run(t, cmd))
	m, _ = updateList(m, run(t, cmd))

	assert.True(t, m.confirm.IsOpen())
	assert.False(t, m.confirm.Deleting())
	assert.Contains(t, m.View(), "Failed to delete bug")
	assert.Equal(t, 2, m.store.Len())
}

func TestListModel_RefreshFailureAfterMutation(t *testing.T) {
	svc := newFakeService(twoBugs()...)
	m := loadedList(t, svc)

	m, cmd := updateList(m, bugFormSubmittedMsg{mode: FormAdd, input: domain.BugInput{Title: "New Bug", Description: "d", Priority: domain.PriorityLow}})
	svc.listErr = errors.New("Failed to fetch bugs")
	m, _ = updateList(m, run(t, cmd))

	assert.Equal(t, listReady, m.state, "previous list stays on screen")
	assert.Equal(t, 2, m.store.Len())
	require.NotNil(t, m.notification)
	assert.Equal(t, SeverityError, m.notification.Severity())
	assert.Contains(t, m.notification.Message(), `Successfully created bug "New Bug"`)
	assert.Contains(t, m.notification.Message(), "Failed to fetch bugs")
}

func TestListModel_StaleReadIgnored(t *testing.T) {
	svc := newFakeService(twoBugs()...)
	m := loadedList(t, svc)

	older := run(t, m.fetch())
	svc.bugs = svc.bugs[:1]
	newer := run(t, m.fetch())

	m, _ = updateList(m, newer)
	m, _ = updateList(m, older)
	assert.Equal(t, 1, m.store.Len())
}

func TestListModel_StaleReadKeepsRefreshIndicator(t *testing.T) {
	svc := newFakeService(twoBugs()...)
	m := loadedList(t, svc)

	older := m.fetch()
	m, newer := m.Refresh()
	require.True(t, m.refreshing)

	olderMsg := run(t, older)
	newerMsg := run(t, newer)

	// The older read lands first: its data is fine to show, but the
	// refresh is not over yet.
	m, _ = updateList(m, olderMsg)
	assert.True(t, m.refreshing)
	assert.Contains(t, m.View(), "syncing")

	m, _ = updateList(m, newerMsg)
	assert.False(t, m.refreshing)

	// Replaying the older read changes nothing.
	m, cmd := updateList(m, olderMsg)
	assert.Nil(t, cmd)
	assert.False(t, m.refreshing)
}

func TestListModel_StaleReadErrorIgnored(t *testing.T) {
	svc := newFakeService(twoBugs()...)
	m := loadedList(t, svc)

	svc.listErr = errors.New("Failed to fetch bugs")
	older := run(t, m.fetch())
	svc.listErr = nil
	m, newer := m.Refresh()
	newerMsg := run(t, newer)

	m, cmd := updateList(m, older)
	assert.Nil(t, cmd)
	assert.Nil(t, m.notification)
	assert.True(t, m.refreshing)

	m, _ = updateList(m, newerMsg)
	assert.False(t, m.refreshing)
	assert.Equal(t, listReady, m.state)
}

func TestListModel_SelectionFollowsBugAcrossReads(t *testing.T) {
	svc := newFakeService(twoBugs()...)
	m := loadedList(t, svc)

	m, _ = updateList(m, keyType(tea.KeyDown))
	bug, ok := m.SelectedBug()
	require.True(t, ok)
	require.Equal(t, 2, bug.ID)

	svc.bugs = append([]domain.Bug{{ID: 7, Title: "Bug 7", Status: domain.StatusOpen, Priority: domain.PriorityLow}}, svc.bugs...)
	m, _ = updateList(m, run(t, m.fetch()))

	bug, ok = m.SelectedBug()
	require.True(t, ok)
	assert.Equal(t, 2, bug.ID)
	assert.Equal(t, 2, m.selected)
}

func TestListModel_OtherSessionDropped(t *testing.T) {
	svc := newFakeService(twoBugs()...)
	m := NewListModel(context.Background(), svc, store.New(), Links{})

	other := NewListModel(context.Background(), svc, store.New(), Links{})
	m, _ = updateList(m, run(t, other.fetch()))
	assert.Equal(t, listLoading, m.state)
	assert.False(t, m.store.Loaded())
}

func TestListModel_NoticeReplacement(t *testing.T) {
	m := loadedList(t, newFakeService(twoBugs()...))

	m, _ = m.SetNotice(Notice{Kind: NoticeCreated, Title: "A"})
	firstID := m.notification.ID()
	m, _ = m.SetNotice(Notice{Kind: NoticeDeleted, Title: "B"})

	assert.Equal(t, Notice{Kind: NoticeDeleted, Title: "B"}, m.Notice())

	// The replaced notification's timer no longer does anything.
	m, cmd := updateList(m, notificationDismissMsg{id: firstID})
	assert.Nil(t, cmd)
	assert.Equal(t, `Successfully deleted bug "B"`, m.notification.Message())
}

func TestListModel_DismissKey(t *testing.T) {
	m := loadedList(t, newFakeService(twoBugs()...))
	m, _ = m.SetNotice(Notice{Kind: NoticeCreated, Title: "A"})

	m, cmd := updateList(m, keyRunes("x"))
	closed := run(t, cmd)
	m, _ = updateList(m, closed)
	assert.True(t, m.Notice().IsZero())

	// The 5s timer firing later is a no-op.
	_, cmd = updateList(m, notificationDismissMsg{id: closed.(notificationClosedMsg).id})
	assert.Nil(t, cmd)
}

func TestListModel_Navigation(t *testing.T) {
	m := loadedList(t, newFakeService(twoBugs()...))

	bug, ok := m.SelectedBug()
	require.True(t, ok)
	assert.Equal(t, 1, bug.ID)

	m, _ = updateList(m, keyRunes("j"))
	bug, _ = m.SelectedBug()
	assert.Equal(t, 2, bug.ID)

	m, _ = updateList(m, keyRunes("j"))
	bug, _ = m.SelectedBug()
	assert.Equal(t, 2, bug.ID, "selection clamps at the end")

	m, _ = updateList(m, keyRunes("k"))
	bug, _ = m.SelectedBug()
	assert.Equal(t, 1, bug.ID)

	_, cmd := updateList(m, keyType(tea.KeyEnter))
	assert.Equal(t, openDetailMsg{id: 1}, run(t, cmd))
}

func TestListModel_OpenInBrowser(t *testing.T) {
	var opened string
	links := Links{
		BugURL: func(id int) string { return "http://web/bugs/1" },
		Open:   func(url string) error { opened = url; return nil },
	}
	m := NewListModel(context.Background(), newFakeService(twoBugs()...), store.New(), links)
	m, _ = updateList(m, run(t, m.fetch()))

	_, cmd := updateList(m, keyRunes("o"))
	assert.Nil(t, run(t, cmd))
	assert.Equal(t, "http://web/bugs/1", opened)
}

func TestListModel_OpenInBrowserFailure(t *testing.T) {
	links := Links{
		BugURL: func(id int) string { return "http://web/bugs/1" },
		Open:   func(string) error { return errors.New("no browser") },
	}
	m := NewListModel(context.Background(), newFakeService(twoBugs()...), store.New(), links)
	m, _ = updateList(m, run(t, m.fetch()))

	m, cmd := updateList(m, keyRunes("o"))
	m, _ = updateList(m, run(t, cmd))
	require.NotNil(t, m.notification)
	assert.Equal(t, SeverityError, m.notification.Severity())
}

func TestListModel_EmptyList(t *testing.T) {
	m := loadedList(t, newFakeService())
	assert.Contains(t, m.View(), "No bugs yet")

	_, ok := m.SelectedBug()
	assert.False(t, ok)

	m, cmd := updateList(m, keyRunes("d"))
	assert.Nil(t, cmd)
	assert.False(t, m.confirm.IsOpen())
}

func TestRenderBugTable(t *testing.T) {
	out := RenderBugTable(twoBugs(), 100)
	for _, want := range []string{"ID", "Title", "#1", "Bug 1", "#2", "In Progress", "Medium"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "> ")

	assert.Contains(t, RenderBugTable(nil, 80), "No bugs yet")
}

func TestListModel_CopyLink(t *testing.T) {
	var copied string
	links := Links{
		BugURL: func(id int) string { return fmt.Sprintf("http://web/bugs/%d", id) },
		Copy:   func(s string) error { copied = s; return nil },
	}
	m := NewListModel(context.Background(), newFakeService(twoBugs()...), store.New(), links)
	m, _ = updateList(m, run(t, m.fetch()))
	m, _ = updateList(m, keyRunes("j"))

	m, cmd := updateList(m, keyRunes("y"))
	m, _ = updateList(m, run(t, cmd))

	assert.Equal(t, "http://web/bugs/2", copied)
	require.NotNil(t, m.notification)
	assert.Equal(t, "Copied http://web/bugs/2 to clipboard", m.notification.Message())
	assert.Equal(t, SeveritySuccess, m.notification.Severity())
}

func TestListModel_CopyLinkWithoutWebURL(t *testing.T) {
	m := loadedList(t, newFakeService(twoBugs()...))

	_, cmd := updateList(m, keyRunes("y"))
	assert.Nil(t, cmd)
}
