package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Notification timing.
const (
	DefaultFadeAfter    = 4500 * time.Millisecond
	DefaultDismissAfter = 5 * time.Second
)

// Severity selects the notification's color family.
type Severity int

const (
	SeveritySuccess Severity = iota
	SeverityError
)

var lastNotificationID int64

// Timer messages carry the id of the notification that scheduled them. A
// notification that was dismissed or replaced ignores them, which is how its
// timers are cancelled.
type (
	notificationFadeMsg    struct{ id int64 }
	notificationDismissMsg struct{ id int64 }
	notificationClosedMsg  struct{ id int64 }
)

// Notification is a self-dismissing banner. It is visible as soon as it is
// created, starts fading at FadeAfter and closes itself at DismissAfter.
// Closing emits notificationClosedMsg exactly once.
type Notification struct {
	id       int64
	message  string
	severity Severity
	visible  bool
	fading   bool

	FadeAfter    time.Duration
	DismissAfter time.Duration
}

// NewNotification creates a visible notification.
func NewNotification(message string, severity Severity) Notification {
	return Notification{
		id:           atomic.AddInt64(&lastNotificationID, 1),
		message:      message,
		severity:     severity,
		visible:      true,
		FadeAfter:    DefaultFadeAfter,
		DismissAfter: DefaultDismissAfter,
	}
}

// Init schedules the fade and dismiss timers.
func (n Notification) Init() tea.Cmd {
	id := n.id
	return tea.Batch(
		tea.Tick(n.FadeAfter, func(time.Time) tea.Msg { return notificationFadeMsg{id: id} }),
		tea.Tick(n.DismissAfter, func(time.Time) tea.Msg { return notificationDismissMsg{id: id} }),
	)
}

// Update handles the notification's own timer messages.
func (n Notification) Update(msg tea.Msg) (Notification, tea.Cmd) {
	switch msg := msg.(type) {
	case notificationFadeMsg:
		if msg.id == n.id && n.visible {
			n.fading = true
		}
	case notificationDismissMsg:
		if msg.id == n.id {
			return n.Close()
		}
	}
	return n, nil
}

// Close dismisses the notification immediately. Closing twice is a no-op.
func (n Notification) Close() (Notification, tea.Cmd) {
	if !n.visible {
		return n, nil
	}
	n.visible = false
	id := n.id
	return n, func() tea.Msg { return notificationClosedMsg{id: id} }
}

// ID returns the notification's timer tag.
func (n Notification) ID() int64 { return n.id }

// Message returns the banner text.
func (n Notification) Message() string { return n.message }

// Severity returns the banner severity.
func (n Notification) Severity() Severity { return n.severity }

// Visible reports whether the banner is still shown.
func (n Notification) Visible() bool { return n.visible }

// Fading reports whether the fade-out has started.
func (n Notification) Fading() bool { return n.fading }

func (n Notification) class() styleClass {
	if n.severity == SeverityError {
		return classDanger
	}
	return classSuccess
}

// View renders the banner, or nothing once closed.
func (n Notification) View() string {
	if !n.visible {
		return ""
	}
	text := n.message + "  " + dimStyle.Render("[x]")
	if n.fading {
		return notificationFadingStyle.Render(text)
	}
	return notificationStyles[n.class()].Render(text)
}
