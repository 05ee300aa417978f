package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/robby/bugtracker/internal/domain"
	"github.com/robby/bugtracker/internal/store"
)

// Layout constants
const (
	idColumnWidth     = 6
	statusColumnWidth = 15
	prioColumnWidth   = 10
	listChromeLines   = 5 // header, notification, column header, blank, help
)

type listState int

const (
	listLoading listState = iota
	listReady
	listError
)

type mutationOp int

const (
	opCreate mutationOp = iota
	opUpdate
	opDelete
)

// Async results. Each carries the session of the model that issued it.
type (
	bugsLoadedMsg struct {
		session uint64
		seq     uint64
		bugs    []domain.Bug
		err     error
	}

	// mutationDoneMsg reports an acknowledged mutation together with the
	// list read issued after it.
	mutationDoneMsg struct {
		session    uint64
		op         mutationOp
		bug        domain.Bug
		seq        uint64
		bugs       []domain.Bug
		refreshErr error
	}

	mutationFailedMsg struct {
		session uint64
		op      mutationOp
		err     error
	}
)

// ListModel is the bug list screen. It owns the canonical bug collection and
// refetches it after every mutation instead of patching it locally.
type ListModel struct {
	// Dependencies
	svc     BugService
	store   *store.Store
	ctx     context.Context
	links   Links
	session uint64

	// UI components
	keymap   ListKeyMap
	help     HelpModel
	spinner  spinner.Model
	addForm  BugFormModal
	editForm BugFormModal
	confirm  DeleteConfirmModal

	// Screen state
	state      listState
	errMsg     string
	refreshing bool
	busy       bool // a mutation is in flight
	selected   int
	offset     int

	notice       Notice
	notification *Notification
	fadeAfter    time.Duration
	dismissAfter time.Duration

	width    int
	height   int
	showHelp bool
}

// NewListModel creates the list screen. The store is shared with the caller.
func NewListModel(ctx context.Context, svc BugService, s *store.Store, links Links) ListModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ListModel{
		svc:          svc,
		store:        s,
		ctx:          ctx,
		links:        links,
		session:      nextSession(),
		keymap:       DefaultListKeyMap(),
		help:         NewHelpModel(DefaultListKeyMap()),
		spinner:      sp,
		addForm:      NewBugFormModal(FormAdd),
		editForm:     NewBugFormModal(FormEdit),
		state:        listLoading,
		fadeAfter:    DefaultFadeAfter,
		dismissAfter: DefaultDismissAfter,
	}
}

// Init starts the initial load.
func (m ListModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

// Update handles messages.
func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.addForm = m.addForm.SetWidth(msg.Width - 10)
		m.editForm = m.editForm.SetWidth(msg.Width - 10)
		(&m).adjustScroll()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case bugsLoadedMsg:
		if msg.session != m.session {
			return m, nil
		}
		// A newer read is still in flight: it owns the refresh indicator
		// and reports its own outcome.
		latest := m.store.Latest(msg.seq)
		if msg.err != nil {
			if !latest {
				return m, nil
			}
			m.refreshing = false
			if !m.store.Loaded() {
				m.state = listError
				m.errMsg = msg.err.Error()
				return m, nil
			}
			cmd := (&m).notify(msg.err.Error(), SeverityError)
			return m, cmd
		}
		if !(&m).replaceBugs(msg.seq, msg.bugs) {
			return m, nil
		}
		if latest {
			m.refreshing = false
		}
		m.state = listReady
		m.errMsg = ""
		return m, nil

	case bugFormSubmittedMsg:
		if m.busy {
			return m, nil
		}
		m.busy = true
		if msg.mode == FormAdd {
			in := msg.input
			in.Status = domain.DefaultStatus
			return m, m.create(in)
		}
		return m, m.update(msg.bugID, msg.input)

	case bugFormCancelledMsg:
		if msg.mode == FormAdd {
			m.addForm = m.addForm.Close()
		} else {
			m.editForm = m.editForm.Close()
		}
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

	case mutationDoneMsg:
		if msg.session != m.session {
			return m, nil
		}
		return m.handleMutationDone(msg)

	case mutationFailedMsg:
		if msg.session != m.session {
			return m, nil
		}
		m.busy = false
		switch msg.op {
		case opCreate:
			m.addForm = m.addForm.Fail(msg.err)
		case opUpdate:
			m.editForm = m.editForm.Fail(msg.err)
		case opDelete:
			m.confirm = m.confirm.Fail(msg.err)
		}
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
			m = m.ClearNotice()
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
	}

	// Cursor blinks and similar belong to whichever form is open.
	var cmd tea.Cmd
	switch {
	case m.addForm.IsOpen():
		m.addForm, cmd = m.addForm.Update(msg)
	case m.editForm.IsOpen():
		m.editForm, cmd = m.editForm.Update(msg)
	}
	return m, cmd
}

func (m ListModel) handleMutationDone(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	var notice Notice
	switch msg.op {
	case opCreate:
		m.addForm = m.addForm.Close()
		notice = Notice{Kind: NoticeCreated, Title: msg.bug.Title}
	case opUpdate:
		m.editForm = m.editForm.Close()
	case opDelete:
		m.confirm = m.confirm.Close()
		notice = Notice{Kind: NoticeDeleted, Title: msg.bug.Title}
	}

	if m.store.Latest(msg.seq) {
		m.refreshing = false
	}
	if msg.refreshErr != nil {
		cmd := (&m).notify(refreshFailedText(msg.op, notice, msg.refreshErr), SeverityError)
		return m, cmd
	}

	if (&m).replaceBugs(msg.seq, msg.bugs) {
		m.state = listReady
	}

	m, cmd := m.SetNotice(notice)
	return m, cmd
}

// refreshFailedText reports a mutation that succeeded but whose follow-up
// read did not.
func refreshFailedText(op mutationOp, notice Notice, err error) string {
	done := notice.Message()
	if op == opUpdate {
		done = "Bug updated"
	}
	return fmt.Sprintf("%s, but the list could not be refreshed: %v", done, err)
}

// handleKeyPress processes keyboard input
func (m ListModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Overlays take every key while open.
	var cmd tea.Cmd
	switch {
	case m.addForm.IsOpen():
		m.addForm, cmd = m.addForm.Update(msg)
		return m, cmd
	case m.editForm.IsOpen():
		m.editForm, cmd = m.editForm.Update(msg)
		return m, cmd
	case m.confirm.IsOpen():
		m.confirm, cmd = m.confirm.Update(msg)
		return m, cmd
	}

	if m.showHelp {
		if key.Matches(msg, m.keymap.Help, m.keymap.Quit) || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
	case key.Matches(msg, m.keymap.Dismiss):
		if m.notification != nil {
			n, cmd := m.notification.Close()
			m.notification = &n
			return m, cmd
		}
	case key.Matches(msg, m.keymap.Refresh):
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		if m.state == listError {
			m.state = listLoading
		}
		return m, m.fetch()
	case key.Matches(msg, m.keymap.Up):
		(&m).moveSelection(-1)
	case key.Matches(msg, m.keymap.Down):
		(&m).moveSelection(1)
	case key.Matches(msg, m.keymap.Top):
		(&m).moveSelection(-m.store.Len())
	case key.Matches(msg, m.keymap.Bottom):
		(&m).moveSelection(m.store.Len())
	case key.Matches(msg, m.keymap.Add):
		if m.state == listReady {
			m.addForm, cmd = m.addForm.Open(nil)
			return m, cmd
		}
	case key.Matches(msg, m.keymap.Edit):
		if bug, ok := m.SelectedBug(); ok {
			m.editForm, cmd = m.editForm.Open(&bug)
			return m, cmd
		}
	case key.Matches(msg, m.keymap.Delete):
		if bug, ok := m.SelectedBug(); ok {
			m.confirm = m.confirm.Open(bug)
		}
	case key.Matches(msg, m.keymap.View):
		if bug, ok := m.SelectedBug(); ok {
			id := bug.ID
			return m, func() tea.Msg { return openDetailMsg{id: id} }
		}
	case key.Matches(msg, m.keymap.Open):
		if bug, ok := m.SelectedBug(); ok {
			return m, m.links.openCmd(bug.ID)
		}
	case key.Matches(msg, m.keymap.Copy):
		if bug, ok := m.SelectedBug(); ok {
			return m, m.links.copyCmd(bug.ID)
		}
	}

	return m, nil
}

// SetNotice records a pending notice and shows it. A new notice replaces
// any earlier one.
func (m ListModel) SetNotice(n Notice) (ListModel, tea.Cmd) {
	if n.IsZero() {
		return m, nil
	}
	m.notice = n
	cmd := (&m).notify(n.Message(), SeveritySuccess)
	return m, cmd
}

// ClearNotice drops the pending notice and its notification.
func (m ListModel) ClearNotice() ListModel {
	m.notice = Notice{}
	m.notification = nil
	return m
}

// Notice returns the pending notice, if any.
func (m ListModel) Notice() Notice { return m.notice }

// Refresh refetches the collection, typically after another screen mutated it.
func (m ListModel) Refresh() (ListModel, tea.Cmd) {
	m.refreshing = true
	return m, m.fetch()
}

// SelectedBug returns the bug under the cursor.
func (m ListModel) SelectedBug() (domain.Bug, bool) {
	if m.state != listReady {
		return domain.Bug{}, false
	}
	return m.store.At(m.selected)
}

// replaceBugs applies read seq to the store and keeps the cursor on the
// same bug when it survived the read. It reports whether the read was applied.
func (m *ListModel) replaceBugs(seq uint64, bugs []domain.Bug) bool {
	prev, hadSelection := m.store.At(m.selected)
	if !m.store.Replace(seq, bugs) {
		return false
	}
	if hadSelection {
		if i := m.store.IndexOf(prev.ID); i >= 0 {
			m.selected = i
		}
	}
	m.clampSelection()
	return true
}

func (m *ListModel) notify(text string, severity Severity) tea.Cmd {
	n := NewNotification(text, severity)
	n.FadeAfter = m.fadeAfter
	n.DismissAfter = m.dismissAfter
	m.notification = &n
	return n.Init()
}

func (m *ListModel) moveSelection(delta int) {
	n := m.store.Len()
	if n == 0 {
		return
	}
	m.selected += delta
	m.clampSelection()
}

func (m *ListModel) clampSelection() {
	n := m.store.Len()
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.adjustScroll()
}

// adjustScroll keeps the selected row visible.
func (m *ListModel) adjustScroll() {
	rows := m.visibleRows()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+rows {
		m.offset = m.selected - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m ListModel) visibleRows() int {
	height := m.height
	if height == 0 {
		height = 24
	}
	rows := height - listChromeLines
	if rows < 3 {
		rows = 3
	}
	return rows
}

// fetch loads the whole collection.
func (m ListModel) fetch() tea.Cmd {
	return func() tea.Msg {
		seq := m.store.Begin()
		bugs, err := m.svc.ListBugs(m.ctx)
		return bugsLoadedMsg{session: m.session, seq: seq, bugs: bugs, err: err}
	}
}

// refreshAfter issues the read that follows an acknowledged mutation.
func (m ListModel) refreshAfter(op mutationOp, bug domain.Bug) tea.Msg {
	seq := m.store.Begin()
	bugs, err := m.svc.ListBugs(m.ctx)
	return mutationDoneMsg{session: m.session, op: op, bug: bug, seq: seq, bugs: bugs, refreshErr: err}
}

func (m ListModel) create(in domain.BugInput) tea.Cmd {
	return func() tea.Msg {
		created, err := m.svc.CreateBug(m.ctx, in)
		if err != nil {
			return mutationFailedMsg{session: m.session, op: opCreate, err: err}
		}
		created.Title = in.Title
		return m.refreshAfter(opCreate, created)
	}
}

func (m ListModel) update(id int, in domain.BugInput) tea.Cmd {
	return func() tea.Msg {
		updated, err := m.svc.UpdateBug(m.ctx, id, domain.PatchFrom(in))
		if err != nil {
			return mutationFailedMsg{session: m.session, op: opUpdate, err: err}
		}
		return m.refreshAfter(opUpdate, updated)
	}
}

func (m ListModel) remove(bug domain.Bug) tea.Cmd {
	return func() tea.Msg {
		if err := m.svc.DeleteBug(m.ctx, bug.ID); err != nil {
			return mutationFailedMsg{session: m.session, op: opDelete, err: err}
		}
		return m.refreshAfter(opDelete, bug)
	}
}

// View renders the list screen.
func (m ListModel) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	var sections []string
	sections = append(sections, m.renderHeader(width))
	if m.notification != nil && m.notification.Visible() {
		sections = append(sections, m.notification.View())
	} else {
		sections = append(sections, "")
	}

	bodyHeight := height - 3
	if bodyHeight < 5 {
		bodyHeight = 5
	}

	var body string
	switch {
	case m.showHelp:
		body = m.help.View(width)
	case m.addForm.IsOpen():
		body = lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, m.addForm.View())
	case m.editForm.IsOpen():
		body = lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, m.editForm.View())
	case m.confirm.IsOpen():
		body = lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, m.confirm.View())
	case m.state == listLoading:
		body = lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, m.spinner.View()+" Loading bugs...")
	case m.state == listError:
		msg := ErrorStyle.Render("Error: "+m.errMsg) + "\n\n" + dimStyle.Render("Press r to retry, q to quit")
		body = lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, msg)
	case m.store.Len() == 0:
		body = lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, "No bugs yet. Press 'a' to add one.")
	default:
		body = m.renderTable(width)
	}
	sections = append(sections, body)
	sections = append(sections, HelpStyle.Render(m.help.ShortView(width)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the title on the left and counts on the right.
func (m ListModel) renderHeader(width int) string {
	title := TitleStyle.Render("Bug Tracker")

	var parts []string
	if m.refreshing || m.busy {
		parts = append(parts, m.spinner.View()+"syncing")
	}
	if m.store.Loaded() {
		counts := m.store.Counts()
		parts = append(parts, fmt.Sprintf("%d bugs", m.store.Len()))
		for _, s := range domain.Statuses() {
			parts = append(parts, fmt.Sprintf("%d %s", counts[s], strings.ToLower(string(s))))
		}
	}
	status := dimStyle.Render(strings.Join(parts, " • "))

	padding := width - lipgloss.Width(title) - lipgloss.Width(status) - 1
	if padding < 1 {
		padding = 1
	}
	return title + strings.Repeat(" ", padding) + status
}

// renderTable renders the visible rows with their badges.
func (m ListModel) renderTable(width int) string {
	titleWidth := titleColumnWidth(width)

	var lines []string
	lines = append(lines, tableHeader(titleWidth))

	bugs := m.store.All()
	end := m.offset + m.visibleRows()
	if end > len(bugs) {
		end = len(bugs)
	}
	for i := m.offset; i < end; i++ {
		lines = append(lines, renderRow(bugs[i], i == m.selected, titleWidth))
	}
	if end < len(bugs) {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("  ↓ %d more", len(bugs)-end)))
	}
	return strings.Join(lines, "\n")
}

// RenderBugTable renders bugs as a static table, as printed by `bugtracker list`.
func RenderBugTable(bugs []domain.Bug, width int) string {
	if len(bugs) == 0 {
		return dimStyle.Render("No bugs yet.")
	}
	titleWidth := titleColumnWidth(width)
	lines := []string{tableHeader(titleWidth)}
	for _, b := range bugs {
		lines = append(lines, renderRow(b, false, titleWidth))
	}
	return strings.Join(lines, "\n")
}

func titleColumnWidth(width int) int {
	w := width - idColumnWidth - statusColumnWidth - prioColumnWidth - 4
	if w < 10 {
		w = 10
	}
	return w
}

func tableHeader(titleWidth int) string {
	return dimStyle.Render(
		"  " + pad("ID", idColumnWidth) + pad("Title", titleWidth) + pad("Status", statusColumnWidth) + "Priority")
}

func renderRow(b domain.Bug, selected bool, titleWidth int) string {
	prefix := "  "
	style := NormalItemStyle
	if selected {
		prefix = "> "
		style = SelectedItemStyle
	}
	title := truncate.StringWithTail(b.Title, uint(titleWidth-1), "…")
	return style.Render(prefix+pad(fmt.Sprintf("#%d", b.ID), idColumnWidth)+pad(title, titleWidth)) +
		pad(statusBadge(b.Status), statusColumnWidth) +
		priorityBadge(b.Priority)
}

// pad right-pads s to width display cells.
func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
