// Package tui provides Bubble Tea models for the interactive TUI.
package tui

import (
	"fmt"
	"sync/atomic"
)

// NoticeKind identifies which mutation a pending notice reports.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeCreated
	NoticeDeleted
)

// Notice is a pending "a mutation just succeeded" signal handed from the
// screen that performed the mutation to the list screen, which shows it once
// and clears it when the notification closes.
type Notice struct {
	Kind  NoticeKind
	Title string
}

// IsZero reports whether there is no pending notice.
func (n Notice) IsZero() bool {
	return n.Kind == NoticeNone
}

// Message returns the text shown to the user.
func (n Notice) Message() string {
	switch n.Kind {
	case NoticeCreated:
		return fmt.Sprintf("Successfully created bug %q", n.Title)
	case NoticeDeleted:
		return fmt.Sprintf("Successfully deleted bug %q", n.Title)
	}
	return ""
}

// Screen transitions.
type (
	openDetailMsg  struct{ id int }
	closeDetailMsg struct{ notice Notice }
)

// openURLFailedMsg reports that the browser could not be launched.
type openURLFailedMsg struct{ err error }

// linkCopiedMsg reports the outcome of copying a bug link.
type linkCopiedMsg struct {
	url string
	err error
}

// text is the notification shown for the copy.
func (m linkCopiedMsg) text() (string, Severity) {
	if m.err != nil {
		return "Failed to copy link: " + m.err.Error(), SeverityError
	}
	return fmt.Sprintf("Copied %s to clipboard", m.url), SeveritySuccess
}

var lastSession uint64

// nextSession returns a fresh session token. Async results carry the token of
// the model that issued them and are dropped by any other model.
func nextSession() uint64 {
	return atomic.AddUint64(&lastSession, 1)
}
