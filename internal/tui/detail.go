package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/robby/bugtracker/internal/domain"
)

// Layout constants
const (
	leftPanelRatio = 0.4 // Left panel takes 40% of width
	minLeftWidth   = 30
	maxLeftWidth   = 60
	headerHeight   = 1
	footerHeight   = 1
	borderSize     = 2 // Top + bottom border
)

// Detail view styles
var (
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	detailValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	commentAuthorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("212")).
				Bold(true)

	commentTimeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	commentBodyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	focusedPanelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("205"))

	scrollIndicatorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)
)

type detailState int

const (
	detailLoading detailState = iota
	detailReady
	detailError
)

// Message types for detail view
type (
	detailLoadedMsg struct {
		session     uint64
		bug         domain.Bug
		comments    []domain.Comment
		err         error
		commentsErr error
	}
	commentsLoadedMsg struct {
		session  uint64
		comments []domain.Comment
		err      error
	}
	commentPostedMsg struct{ session uint64 }
	commentFailedMsg struct {
		session uint64
		err     error
	}
	bugUpdatedMsg struct {
		session    uint64
		bug        domain.Bug
		patch      domain.BugPatch
		refreshErr error
	}
	bugUpdateFailedMsg struct {
		session uint64
		err     error
	}
	bugDeletedMsg struct {
		session uint64
		title   string
	}
	bugDeleteFailedMsg struct {
		session uint64
		err     error
	}
)

// DetailModel shows one bug with its comments and hosts the comment form
// and the edit/delete overlays for that bug.
type DetailModel struct {
	// Dependencies
	svc     BugService
	ctx     context.Context
	links   Links
	session uint64

	bugID    int
	bug      domain.Bug
	comments []domain.Comment
	descView string // rendered description

	// UI components
	keymap   DetailKeyMap
	help     HelpModel
	spinner  spinner.Model
	viewport viewport.Model
	author   textinput.Model
	content  textarea.Model
	editForm BugFormModal
	confirm  DeleteConfirmModal

	// State
	state         detailState
	errMsg        string
	commentsErr   string
	commentMode   bool
	confirmExit   bool // Show "unsaved comment" prompt
	commentFocus  int  // 0 author, 1 content
	posting       bool
	commentErr    string
	busy          bool
	notification  *Notification
	fadeAfter     time.Duration
	dismissAfter  time.Duration
	width, height int
}

// NewDetailModel creates a detail screen for bug id. ctx should be cancelled
// when the screen is closed.
func NewDetailModel(ctx context.Context, svc BugService, id int, links Links) DetailModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Your name"
	ti.Prompt = "Name: "
	ti.CharLimit = 100

	ta := textarea.New()
	ta.Placeholder = "Write your comment here..."
	ta.CharLimit = 65535
	ta.SetHeight(4)
	ta.SetWidth(40) // Will be resized
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle() // No highlight on cursor line
	ta.FocusedStyle.Base = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("228"))
	ta.BlurredStyle.Base = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240"))

	vp := viewport.New(40, 10) // Will be resized in WindowSizeMsg
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	return DetailModel{
		svc:          svc,
		ctx:          ctx,
		links:        links,
		session:      nextSession(),
		bugID:        id,
		keymap:       DefaultDetailKeyMap(),
		help:         NewHelpModel(DefaultDetailKeyMap()),
		spinner:      sp,
		viewport:     vp,
		author:       ti,
		content:      ta,
		editForm:     NewBugFormModal(FormEdit),
		fadeAfter:    DefaultFadeAfter,
		dismissAfter: DefaultDismissAfter,
	}
}

// Init starts loading the bug and its comments.
func (m DetailModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

// WithCachedBug seeds the screen with the list's copy of the bug, shown
// while the fresh read is loading.
func (m DetailModel) WithCachedBug(bug domain.Bug) DetailModel {
	if bug.ID == m.bugID {
		m.bug = bug
	}
	return m
}

// BugID returns the id of the bug shown.
func (m DetailModel) BugID() int { return m.bugID }

// Update handles messages
func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editForm = m.editForm.SetWidth(msg.Width - 10)
		(&m).resizeComponents()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case detailLoadedMsg:
		if msg.session != m.session {
			return m, nil
		}
		if msg.err != nil {
			m.state = detailError
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.state = detailReady
		m.bug = msg.bug
		m.comments = msg.comments
		m.commentsErr = errText(msg.commentsErr)
		(&m).updateViewportContent()
		return m, nil

	case commentsLoadedMsg:
		if msg.session != m.session {
			return m, nil
		}
		if msg.err != nil {
			m.commentsErr = msg.err.Error()
			return m, nil
		}
		m.commentsErr = ""
		m.comments = msg.comments
		(&m).updateViewportContent()
		m.viewport.GotoBottom()
		return m, nil

	case commentPostedMsg:
		if msg.session != m.session {
			return m, nil
		}
		m.posting = false
		(&m).closeCommentForm()
		cmd := (&m).notify("Comment added", SeveritySuccess)
		return m, tea.Batch(cmd, m.loadComments())

	case commentFailedMsg:
		if msg.session != m.session {
			return m, nil
		}
		m.posting = false
		m.commentErr = msg.err.Error()
		return m, nil

	case bugFormSubmittedMsg:
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.update(msg.input)

	case bugFormCancelledMsg:
		m.editForm = m.editForm.Close()
		return m, nil

	case bugUpdatedMsg:
		if msg.session != m.session {
			return m, nil
		}
		m.busy = false
		m.editForm = m.editForm.Close()
		if msg.refreshErr != nil {
			// The server acknowledged the patch; show what was sent.
			m.bug = msg.patch.Apply(m.bug)
			(&m).updateViewportContent()
			cmd := (&m).notify("Bug updated, but it could not be reloaded: "+msg.refreshErr.Error(), SeverityError)
			return m, cmd
		}
		m.bug = msg.bug
		(&m).updateViewportContent()
		return m, nil

	case bugUpdateFailedMsg:
		if msg.session != m.session {
			return m, nil
		}
		m.busy = false
		m.editForm = m.editForm.Fail(msg.err)
		return m, nil

	case deleteConfirmedMsg:
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.remove(msg.bug)

	case deleteCancelledMsg:
		m.confirm = m.confirm.Close()
		return m, nil

	case bugDeletedMsg:
		if msg.session != m.session {
			return m, nil
		}
		m.busy = false
		m.confirm = m.confirm.Close()
		notice := Notice{Kind: NoticeDeleted, Title: msg.title}
		return m, func() tea.Msg { return closeDetailMsg{notice: notice} }

	case bugDeleteFailedMsg:
		if msg.session != m.session {
			return m, nil
		}
		m.busy = false
		m.confirm = m.confirm.Fail(msg.err)
		return m, nil

	case notificationFadeMsg, notificationDismissMsg:
		if m.notification == nil {
			return m, nil
		}
		n, cmd := m.notification.Update(msg)
		m.notification = &n
		return m, cmd

	case notificationClosedMsg:
		if m.notification != nil && msg.id == m.notification.ID() {
			m.notification = nil
		}
		return m, nil

	case openURLFailedMsg:
		cmd := (&m).notify("Failed to open browser: "+msg.err.Error(), SeverityError)
		return m, cmd

	case linkCopiedMsg:
		cmd := (&m).notify(msg.text())
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		// Forward mouse events to viewport when not in comment mode
		if !m.commentMode {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	// Blink and friends go to whichever input is active.
	var cmd tea.Cmd
	switch {
	case m.editForm.IsOpen():
		m.editForm, cmd = m.editForm.Update(msg)
	case m.commentMode && m.commentFocus == 0:
		m.author, cmd = m.author.Update(msg)
	case m.commentMode:
		m.content, cmd = m.content.Update(msg)
	}
	return m, cmd
}

// handleKeyPress processes keyboard input
func (m DetailModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	var cmd tea.Cmd
	switch {
	case m.editForm.IsOpen():
		m.editForm, cmd = m.editForm.Update(msg)
		return m, cmd
	case m.confirm.IsOpen():
		m.confirm, cmd = m.confirm.Update(msg)
		return m, cmd
	case m.confirmExit:
		return m.handleConfirmExit(msg)
	case m.commentMode:
		return m.handleCommentKey(msg)
	}

	if m.state != detailReady {
		if key.Matches(msg, m.keymap.Back) {
			return m, func() tea.Msg { return closeDetailMsg{} }
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Back):
		return m, func() tea.Msg { return closeDetailMsg{} }
	case key.Matches(msg, m.keymap.Open):
		return m, m.links.openCmd(m.bug.ID)
	case key.Matches(msg, m.keymap.Copy):
		return m, m.links.copyCmd(m.bug.ID)
	case key.Matches(msg, m.keymap.Comment):
		m.commentMode = true
		m.commentErr = ""
		cmd = (&m).focusComment(0)
		return m, cmd
	case key.Matches(msg, m.keymap.Edit):
		bug := m.bug
		m.editForm, cmd = m.editForm.Open(&bug)
		return m, cmd
	case key.Matches(msg, m.keymap.Delete):
		m.confirm = m.confirm.Open(m.bug)
	case key.Matches(msg, m.keymap.Dismiss):
		if m.notification != nil {
			n, cmd := m.notification.Close()
			m.notification = &n
			return m, cmd
		}
	case key.Matches(msg, m.keymap.Down):
		m.viewport.LineDown(1)
	case key.Matches(msg, m.keymap.Up):
		m.viewport.LineUp(1)
	case msg.String() == "ctrl+d":
		m.viewport.HalfViewDown()
	case msg.String() == "ctrl+u":
		m.viewport.HalfViewUp()
	case msg.String() == "g":
		m.viewport.GotoTop()
	case msg.String() == "G":
		m.viewport.GotoBottom()
	}

	return m, nil
}

// handleCommentKey routes keys while the comment form is open.
func (m DetailModel) handleCommentKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.posting {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		if m.hasUnsavedComment() {
			m.confirmExit = true
			return m, nil
		}
		(&m).closeCommentForm()
		return m, nil
	case "tab", "shift+tab":
		cmd := (&m).focusComment(1 - m.commentFocus)
		return m, cmd
	case "ctrl+s":
		return m.submitComment()
	}

	var cmd tea.Cmd
	if m.commentFocus == 0 {
		if msg.String() == "enter" {
			cmd = (&m).focusComment(1)
			return m, cmd
		}
		m.author, cmd = m.author.Update(msg)
	} else {
		m.content, cmd = m.content.Update(msg)
	}
	return m, cmd
}

// handleConfirmExit handles the discard prompt for an unsaved comment.
func (m DetailModel) handleConfirmExit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirmExit = false
		(&m).closeCommentForm()
	case "n", "N", "esc":
		m.confirmExit = false
	case "s", "S":
		m.confirmExit = false
		return m.submitComment()
	}
	return m, nil
}

func (m DetailModel) submitComment() (tea.Model, tea.Cmd) {
	in := domain.CommentInput{
		Author:  strings.TrimSpace(m.author.Value()),
		Content: strings.TrimSpace(m.content.Value()),
	}
	if err := in.Validate(); err != nil {
		m.commentErr = err.Error()
		return m, nil
	}
	m.posting = true
	m.commentErr = ""
	return m, m.postComment(in)
}

func (m DetailModel) hasUnsavedComment() bool {
	return strings.TrimSpace(m.author.Value()) != "" || strings.TrimSpace(m.content.Value()) != ""
}

func (m *DetailModel) focusComment(i int) tea.Cmd {
	m.commentFocus = i
	if i == 0 {
		m.content.Blur()
		return m.author.Focus()
	}
	m.author.Blur()
	return m.content.Focus()
}

func (m *DetailModel) closeCommentForm() {
	m.commentMode = false
	m.commentFocus = 0
	m.commentErr = ""
	m.author.Reset()
	m.author.Blur()
	m.content.Reset()
	m.content.Blur()
}

func (m *DetailModel) notify(text string, severity Severity) tea.Cmd {
	n := NewNotification(text, severity)
	n.FadeAfter = m.fadeAfter
	n.DismissAfter = m.dismissAfter
	m.notification = &n
	return n.Init()
}

// resizeComponents calculates and sets component dimensions
func (m *DetailModel) resizeComponents() {
	leftWidth, rightWidth, contentHeight := m.layout(m.width, m.height)

	m.viewport.Width = rightWidth - borderSize - 2 // -2 for padding
	m.viewport.Height = contentHeight - borderSize - 2
	m.author.Width = leftWidth - borderSize - 8
	m.content.SetWidth(rightWidth - borderSize - 4)

	if m.state == detailReady {
		m.updateViewportContent()
	}
}

func (m DetailModel) layout(width, height int) (left, right, content int) {
	if width == 0 {
		width = 100
	}
	if height == 0 {
		height = 30
	}
	left = int(float64(width) * leftPanelRatio)
	if left < minLeftWidth {
		left = minLeftWidth
	}
	if left > maxLeftWidth {
		left = maxLeftWidth
	}
	right = width - left - 1 // 1 char gap
	if right < 30 {
		right = 30
	}
	content = height - headerHeight - footerHeight - 1 // notification line
	if content < 10 {
		content = 10
	}
	return left, right, content
}

// View renders the split-screen detail view
func (m DetailModel) View() string {
	width := m.width
	if width == 0 {
		width = 100
	}
	leftWidth, rightWidth, contentHeight := m.layout(m.width, m.height)

	header := m.renderHeader()
	banner := ""
	if m.notification != nil && m.notification.Visible() {
		banner = m.notification.View()
	}

	var body string
	switch {
	case m.state == detailLoading:
		loading := " Loading bug..."
		if m.bug.ID != 0 {
			loading = fmt.Sprintf(" Loading %q...", m.bug.Title)
		}
		body = lipgloss.Place(width, contentHeight, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+loading)
	case m.state == detailError:
		body = lipgloss.Place(width, contentHeight, lipgloss.Center, lipgloss.Center,
			ErrorStyle.Render("Error: "+m.errMsg)+"\n\n"+dimStyle.Render("Press q to go back"))
	case m.editForm.IsOpen():
		body = lipgloss.Place(width, contentHeight, lipgloss.Center, lipgloss.Center, m.editForm.View())
	case m.confirm.IsOpen():
		body = lipgloss.Place(width, contentHeight, lipgloss.Center, lipgloss.Center, m.confirm.View())
	default:
		leftPanel := panelBorderStyle.
			Width(leftWidth - borderSize).
			Height(contentHeight - borderSize).
			Render(m.renderLeftPanel(leftWidth-borderSize-2, contentHeight-borderSize))

		rightBorder := focusedPanelBorderStyle
		if m.commentMode {
			rightBorder = panelBorderStyle // Unfocus when typing
		}
		rightPanel := rightBorder.
			Width(rightWidth - borderSize).
			Height(contentHeight - borderSize).
			Render(m.renderRightPanel())

		body = lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, " ", rightPanel)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, banner, body, m.renderFooter(width))
}

// renderHeader renders the top help bar
func (m DetailModel) renderHeader() string {
	if m.confirmExit {
		return warningStyle.Render("Unsaved comment! [Y]discard [N]cancel [S]save")
	}
	if m.commentMode {
		return dimStyle.Render("[tab]switch field [ctrl+s]post [esc]cancel") + "  " +
			commentAuthorStyle.Render("Writing comment...")
	}
	return dimStyle.Render(m.help.ShortView(m.width))
}

// renderFooter renders the bottom status bar
func (m DetailModel) renderFooter(width int) string {
	var left, right string

	switch {
	case m.posting:
		left = m.spinner.View() + " Adding..."
	case m.busy:
		left = m.spinner.View() + " Saving..."
	case m.commentErr != "":
		left = ErrorStyle.Render("✗ " + m.commentErr)
	case m.commentMode:
		left = fmt.Sprintf("%d chars", len(m.content.Value()))
	}

	// Right: scroll position
	if m.state == detailReady && len(m.comments) > 0 && !m.commentMode {
		switch {
		case m.viewport.AtTop():
			right = "TOP"
		case m.viewport.AtBottom():
			right = "END"
		default:
			right = fmt.Sprintf("%d%%", int(m.viewport.ScrollPercent()*100))
		}
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return left + strings.Repeat(" ", padding) + dimStyle.Render(right)
}

// renderLeftPanel renders the bug fields
func (m DetailModel) renderLeftPanel(width, height int) string {
	var b strings.Builder

	b.WriteString(labelStyle.Render(fmt.Sprintf("Bug #%d", m.bug.ID)))
	b.WriteString("\n\n")
	b.WriteString(detailTitleStyle.Render(wordwrap.String(m.bug.Title, width)))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Status:   "))
	b.WriteString(statusBadge(m.bug.Status))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Priority: "))
	b.WriteString(priorityBadge(m.bug.Priority))
	b.WriteString("\n")
	if m.bug.CreatedAt != nil {
		b.WriteString(labelStyle.Render("Created:  "))
		b.WriteString(detailValueStyle.Render(formatTimeAgo(*m.bug.CreatedAt, time.Now())))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Description:"))
	b.WriteString("\n")
	maxLines := height - strings.Count(b.String(), "\n") - 1
	if maxLines > 0 {
		lines := strings.Split(m.descView, "\n")
		if len(lines) > maxLines {
			lines = append(lines[:maxLines-1], "...")
		}
		b.WriteString(detailValueStyle.Render(strings.Join(lines, "\n")))
	}

	return b.String()
}

// renderRightPanel renders the comments panel with viewport
func (m DetailModel) renderRightPanel() string {
	var b strings.Builder

	title := "Comments"
	if len(m.comments) > 0 {
		title = fmt.Sprintf("Comments (%d)", len(m.comments))
	}
	scrollHint := ""
	if !m.commentMode && m.viewport.TotalLineCount() > m.viewport.Height {
		switch {
		case m.viewport.AtTop():
			scrollHint = " ↓"
		case m.viewport.AtBottom():
			scrollHint = " ↑"
		default:
			scrollHint = " ↕"
		}
	}
	b.WriteString(labelStyle.Render(title))
	b.WriteString(scrollIndicatorStyle.Render(scrollHint))
	b.WriteString("\n")

	if m.commentMode {
		b.WriteString("\n")
		b.WriteString(commentAuthorStyle.Render("New Comment"))
		b.WriteString("\n\n")
		b.WriteString(m.author.View())
		b.WriteString("\n")
		b.WriteString(m.content.View())
		b.WriteString("\n")
		if len(m.comments) > 0 {
			b.WriteString("\n")
			b.WriteString(labelStyle.Render(fmt.Sprintf("── %d existing comments ──", len(m.comments))))
		}
		return b.String()
	}

	if m.commentsErr != "" {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render("Error: " + m.commentsErr))
		return b.String()
	}

	if len(m.comments) == 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("No comments yet."))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("Press 'c' to add a comment"))
		return b.String()
	}

	b.WriteString(m.viewport.View())
	return b.String()
}

// updateViewportContent renders the description and formats comments for
// viewport display.
func (m *DetailModel) updateViewportContent() {
	left, _, _ := m.layout(m.width, m.height)
	m.descView = markdownRenderer(markdownStyle, left-borderSize-2)(m.bug.Description)

	var b strings.Builder
	wrapWidth := m.viewport.Width - 4
	if wrapWidth < 30 {
		wrapWidth = 30
	}
	render := markdownRenderer(markdownStyle, wrapWidth)

	now := time.Now()
	for i, c := range m.comments {
		if i > 0 {
			b.WriteString("\n\n")
			b.WriteString(dimStyle.Render(strings.Repeat("─", min(20, wrapWidth))))
			b.WriteString("\n\n")
		}

		author := c.Author
		if author == "" {
			author = "(anonymous)"
		}
		b.WriteString(commentAuthorStyle.Render(author))
		b.WriteString(" ")
		b.WriteString(commentTimeStyle.Render(formatTimeAgo(c.CreatedAt, now)))
		b.WriteString("\n")
		b.WriteString(commentBodyStyle.Render(render(c.Content)))
	}

	m.viewport.SetContent(b.String())
}

// load fetches the bug, then its comments. A comments failure still shows
// the bug.
func (m DetailModel) load() tea.Cmd {
	return func() tea.Msg {
		bug, err := m.svc.GetBug(m.ctx, m.bugID)
		if err != nil {
			return detailLoadedMsg{session: m.session, err: err}
		}
		comments, cerr := m.svc.ListComments(m.ctx, m.bugID)
		return detailLoadedMsg{session: m.session, bug: bug, comments: comments, commentsErr: cerr}
	}
}

func (m DetailModel) loadComments() tea.Cmd {
	return func() tea.Msg {
		comments, err := m.svc.ListComments(m.ctx, m.bugID)
		return commentsLoadedMsg{session: m.session, comments: comments, err: err}
	}
}

func (m DetailModel) postComment(in domain.CommentInput) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.svc.AddComment(m.ctx, m.bugID, in); err != nil {
			return commentFailedMsg{session: m.session, err: err}
		}
		return commentPostedMsg{session: m.session}
	}
}

// update sends every field of the form, then reloads the bug.
func (m DetailModel) update(in domain.BugInput) tea.Cmd {
	return func() tea.Msg {
		patch := domain.PatchFrom(in)
		if _, err := m.svc.UpdateBug(m.ctx, m.bugID, patch); err != nil {
			return bugUpdateFailedMsg{session: m.session, err: err}
		}
		bug, err := m.svc.GetBug(m.ctx, m.bugID)
		return bugUpdatedMsg{session: m.session, bug: bug, patch: patch, refreshErr: err}
	}
}

func (m DetailModel) remove(bug domain.Bug) tea.Cmd {
	return func() tea.Msg {
		if err := m.svc.DeleteBug(m.ctx, bug.ID); err != nil {
			return bugDeleteFailedMsg{session: m.session, err: err}
		}
		return bugDeletedMsg{session: m.session, title: bug.Title}
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// formatTimeAgo converts a timestamp to relative time
func formatTimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	duration := now.Sub(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		return fmt.Sprintf("%dm ago", int(duration.Minutes()))
	case duration < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(duration.Hours()))
	case duration < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(duration.Hours()/24))
	case duration < 30*24*time.Hour:
		return fmt.Sprintf("%dw ago", int(duration.Hours()/24/7))
	default:
		return t.Local().Format("Jan 2, 2006 15:04")
	}
}
