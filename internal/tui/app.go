package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robby/bugtracker/internal/store"
)

// AppScreen represents the different screens in the application.
type AppScreen int

const (
	ScreenList AppScreen = iota
	ScreenDetail
)

// AppModel is the root Bubble Tea model that switches between the list and
// detail screens. The list lives for the whole run; a detail screen is
// created per open and its context is cancelled when it closes.
type AppModel struct {
	// Dependencies
	svc   BugService
	store *store.Store
	ctx   context.Context
	links Links

	// Current state
	currentScreen AppScreen
	list          ListModel
	detail        *DetailModel
	cancelDetail  context.CancelFunc
	startBug      int

	width  int
	height int
}

// NewAppModel creates the app. startBug, when positive, opens that bug's
// detail screen right away.
func NewAppModel(ctx context.Context, svc BugService, s *store.Store, links Links, startBug int) AppModel {
	return AppModel{
		svc:           svc,
		store:         s,
		ctx:           ctx,
		links:         links,
		currentScreen: ScreenList,
		list:          NewListModel(ctx, svc, s, links),
		startBug:      startBug,
	}
}

// Init initializes the app model.
func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.list.Init()}
	if m.startBug > 0 {
		id := m.startBug
		cmds = append(cmds, func() tea.Msg { return openDetailMsg{id: id} })
	}
	return tea.Batch(cmds...)
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			(&m).closeDetail()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		var cmds []tea.Cmd
		cmds = append(cmds, m.updateList(msg))
		if m.detail != nil {
			cmds = append(cmds, m.updateDetail(msg))
		}
		return m, tea.Batch(cmds...)

	case openDetailMsg:
		(&m).closeDetail()
		ctx, cancel := context.WithCancel(m.ctx)
		detail := NewDetailModel(ctx, m.svc, msg.id, m.links)
		if bug, err := m.store.Get(msg.id); err == nil {
			detail = detail.WithCachedBug(bug)
		}
		if m.width > 0 {
			model, _ := detail.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
			detail = model.(DetailModel)
		}
		m.detail = &detail
		m.cancelDetail = cancel
		m.currentScreen = ScreenDetail
		return m, detail.Init()

	case closeDetailMsg:
		(&m).closeDetail()
		m.currentScreen = ScreenList

		// The detail screen may have changed the bug, so always reread.
		var refresh, noticeCmd tea.Cmd
		m.list, refresh = m.list.Refresh()
		m.list, noticeCmd = m.list.SetNotice(msg.notice)
		return m, tea.Batch(refresh, noticeCmd, tea.WindowSize())

	case bugsLoadedMsg, mutationDoneMsg, mutationFailedMsg:
		return m, m.updateList(msg)

	case spinner.TickMsg, notificationFadeMsg, notificationDismissMsg, notificationClosedMsg:
		// Both screens own spinners and notifications; each ignores ids
		// that are not its own.
		cmds := []tea.Cmd{m.updateList(msg)}
		if m.detail != nil {
			cmds = append(cmds, m.updateDetail(msg))
		}
		return m, tea.Batch(cmds...)
	}

	if m.currentScreen == ScreenDetail && m.detail != nil {
		return m, m.updateDetail(msg)
	}
	return m, m.updateList(msg)
}

func (m *AppModel) updateList(msg tea.Msg) tea.Cmd {
	model, cmd := m.list.Update(msg)
	m.list = model.(ListModel)
	return cmd
}

func (m *AppModel) updateDetail(msg tea.Msg) tea.Cmd {
	model, cmd := m.detail.Update(msg)
	detail := model.(DetailModel)
	m.detail = &detail
	return cmd
}

// closeDetail tears down the detail screen and cancels its requests.
func (m *AppModel) closeDetail() {
	if m.cancelDetail != nil {
		m.cancelDetail()
		m.cancelDetail = nil
	}
	m.detail = nil
}

// Screen returns the active screen.
func (m AppModel) Screen() AppScreen { return m.currentScreen }

// View renders the current screen.
func (m AppModel) View() string {
	if m.currentScreen == ScreenDetail && m.detail != nil {
		return m.detail.View()
	}
	return m.list.View()
}
