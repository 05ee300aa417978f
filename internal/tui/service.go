package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/bugtracker/internal/debug"
	"github.com/robby/bugtracker/internal/domain"
)

// BugService is the subset of the REST client the screens depend on.
// *api.Client satisfies it.
type BugService interface {
	ListBugs(ctx context.Context) ([]domain.Bug, error)
	GetBug(ctx context.Context, id int) (domain.Bug, error)
	CreateBug(ctx context.Context, in domain.BugInput) (domain.Bug, error)
	UpdateBug(ctx context.Context, id int, patch domain.BugPatch) (domain.Bug, error)
	DeleteBug(ctx context.Context, id int) error
	ListComments(ctx context.Context, bugID int) ([]domain.Comment, error)
	AddComment(ctx context.Context, bugID int, in domain.CommentInput) (domain.Comment, error)
}

// Links resolves and opens web UI pages for bugs.
type Links struct {
	// BugURL returns the web UI address of a bug. Nil disables opening.
	BugURL func(id int) string
	// Open launches a URL, normally browser.OpenURL.
	Open func(url string) error
	// Copy writes text to the system clipboard, normally clipboard.WriteAll.
	Copy func(text string) error
}

// url returns the bug's web address, or "" when links are not configured.
func (l Links) url(id int) string {
	if l.BugURL == nil {
		return ""
	}
	return l.BugURL(id)
}

// openCmd opens the bug's web page off the update loop.
func (l Links) openCmd(id int) tea.Cmd {
	url := l.url(id)
	if url == "" || l.Open == nil {
		return nil
	}
	return func() tea.Msg {
		if err := l.Open(url); err != nil {
			debug.Logf("open %s: %v", url, err)
			return openURLFailedMsg{err: err}
		}
		return nil
	}
}

// copyCmd puts the bug's web address on the clipboard.
func (l Links) copyCmd(id int) tea.Cmd {
	url := l.url(id)
	if url == "" || l.Copy == nil {
		return nil
	}
	return func() tea.Msg {
		err := l.Copy(url)
		if err != nil {
			debug.Logf("copy %s: %v", url, err)
		}
		return linkCopiedMsg{url: url, err: err}
	}
}
