package tui

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/bugtracker/internal/domain"
	"github.com/robby/bugtracker/internal/store"
	"github.com/stretchr/testify/require"
)

// fakeService is an in-memory BugService with per-call failure injection.
type fakeService struct {
	mu       sync.Mutex
	bugs     []domain.Bug
	comments map[int][]domain.Comment
	nextID   int

	listErr       error
	getErr        error
	createErr     error
	updateErr     error
	deleteErr     error
	commentsErr   error
	addCommentErr error

	listCalls  int
	created    []domain.BugInput
	lastPatch  domain.BugPatch
	lastCtx    context.Context
	addedInput domain.CommentInput
}

func newFakeService(bugs ...domain.Bug) *fakeService {
	f := &fakeService{comments: make(map[int][]domain.Comment)}
	for _, b := range bugs {
		f.bugs = append(f.bugs, b)
		if b.ID >= f.nextID {
			f.nextID = b.ID
		}
	}
	return f
}

// twoBugs returns the standard list fixture.
func twoBugs() []domain.Bug {
	return []domain.Bug{
		{ID: 1, Title: "Bug 1", Description: "First", Status: domain.StatusOpen, Priority: domain.PriorityHigh},
		{ID: 2, Title: "Bug 2", Description: "Second", Status: domain.StatusInProgress, Priority: domain.PriorityMedium},
	}
}

func (f *fakeService) ListBugs(ctx context.Context) ([]domain.Bug, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastCtx = ctx
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Bug, len(f.bugs))
	copy(out, f.bugs)
	return out, nil
}

func (f *fakeService) GetBug(ctx context.Context, id int) (domain.Bug, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCtx = ctx
	if f.getErr != nil {
		return domain.Bug{}, f.getErr
	}
	for _, b := range f.bugs {
		if b.ID == id {
			return b, nil
		}
	}
	return domain.Bug{}, errors.New("Failed to fetch bug details")
}

func (f *fakeService) CreateBug(ctx context.Context, in domain.BugInput) (domain.Bug, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.Bug{}, f.createErr
	}
	f.nextID++
	f.created = append(f.created, in)
	b := domain.Bug{ID: f.nextID, Title: in.Title, Description: in.Description, Status: in.Status, Priority: in.Priority}
	f.bugs = append(f.bugs, b)
	return b, nil
}

func (f *fakeService) UpdateBug(ctx context.Context, id int, patch domain.BugPatch) (domain.Bug, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPatch = patch
	if f.updateErr != nil {
		return domain.Bug{}, f.updateErr
	}
	for i, b := range f.bugs {
		if b.ID == id {
			f.bugs[i] = patch.Apply(b)
			return f.bugs[i], nil
		}
	}
	return domain.Bug{}, errors.New("Failed to update bug")
}

func (f *fakeService) DeleteBug(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, b := range f.bugs {
		if b.ID == id {
			f.bugs = append(f.bugs[:i], f.bugs[i+1:]...)
			return nil
		}
	}
	return errors.New("Failed to delete bug")
}

func (f *fakeService) ListComments(ctx context.Context, bugID int) ([]domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commentsErr != nil {
		return nil, f.commentsErr
	}
	out := make([]domain.Comment, len(f.comments[bugID]))
	copy(out, f.comments[bugID])
	return out, nil
}

func (f *fakeService) AddComment(ctx context.Context, bugID int, in domain.CommentInput) (domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addedInput = in
	if f.addCommentErr != nil {
		return domain.Comment{}, f.addCommentErr
	}
	c := domain.Comment{
		ID:        strconv.Itoa(len(f.comments[bugID]) + 1),
		BugID:     strconv.Itoa(bugID),
		Author:    in.Author,
		Content:   in.Content,
		CreatedAt: time.Now(),
	}
	f.comments[bugID] = append(f.comments[bugID], c)
	return c, nil
}

// Helpers

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyType(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

// run executes a command that must produce a single message.
func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd, "expected a command")
	return cmd()
}

// flatten executes cmd and any batched commands, collecting their messages.
// Only use it where no command blocks for long.
func flatten(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, flatten(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func updateList(m ListModel, msg tea.Msg) (ListModel, tea.Cmd) {
	model, cmd := m.Update(msg)
	return model.(ListModel), cmd
}

func updateDetail(m DetailModel, msg tea.Msg) (DetailModel, tea.Cmd) {
	model, cmd := m.Update(msg)
	return model.(DetailModel), cmd
}

// loadedList returns a list screen that has completed its first load.
func loadedList(t *testing.T, svc *fakeService) ListModel {
	t.Helper()
	m := NewListModel(context.Background(), svc, store.New(), Links{})
	m, _ = updateList(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = updateList(m, run(t, m.fetch()))
	require.Equal(t, listReady, m.state)
	return m
}
