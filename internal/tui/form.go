package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/robby/bugtracker/internal/domain"
)

// FormMode selects between creating and editing a bug.
type FormMode int

const (
	FormAdd FormMode = iota
	FormEdit
)

type formField int

const (
	fieldTitle formField = iota
	fieldDescription
	fieldStatus
	fieldPriority
)

// Form results. The owner decides when the form closes.
type (
	bugFormSubmittedMsg struct {
		mode  FormMode
		bugID int
		input domain.BugInput
	}
	bugFormCancelledMsg struct{ mode FormMode }
)

// BugFormModal is the add/edit overlay. It validates input and emits
// bugFormSubmittedMsg; it never talks to the API itself.
type BugFormModal struct {
	mode FormMode
	open bool

	target      domain.Bug
	title       textinput.Model
	description textarea.Model
	status      domain.Status
	priority    domain.Priority

	focus      int
	submitting bool
	hint       string // validation feedback
	err        string // failure reported by the owner
	width      int
}

// NewBugFormModal creates a closed form.
func NewBugFormModal(mode FormMode) BugFormModal {
	ti := textinput.New()
	ti.Placeholder = "Short summary"
	ti.CharLimit = 200
	ti.Prompt = ""

	ta := textarea.New()
	ta.Placeholder = "Steps to reproduce, expected and actual behavior..."
	ta.ShowLineNumbers = false
	ta.SetHeight(5)
	ta.SetWidth(50)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()

	return BugFormModal{
		mode:        mode,
		title:       ti,
		description: ta,
		status:      domain.DefaultStatus,
		priority:    domain.DefaultPriority,
		width:       60,
	}
}

// Open shows the form. In edit mode it is seeded from bug every time it
// opens, so switching targets never shows the previous bug's values.
func (m BugFormModal) Open(bug *domain.Bug) (BugFormModal, tea.Cmd) {
	m = m.Close()
	m.open = true
	if m.mode == FormEdit && bug != nil {
		m.target = *bug
		m.title.SetValue(bug.Title)
		m.description.SetValue(bug.Description)
		m.status = bug.Status
		m.priority = bug.Priority
	}
	cmd := (&m).setFocus(0)
	return m, cmd
}

// Close hides the form and resets it to defaults.
func (m BugFormModal) Close() BugFormModal {
	m.open = false
	m.target = domain.Bug{}
	m.title.Reset()
	m.title.Blur()
	m.description.Reset()
	m.description.Blur()
	m.status = domain.DefaultStatus
	m.priority = domain.DefaultPriority
	m.focus = 0
	m.submitting = false
	m.hint = ""
	m.err = ""
	return m
}

// Fail re-enables the form and shows why the submission failed. Input is kept.
func (m BugFormModal) Fail(err error) BugFormModal {
	m.submitting = false
	if err != nil {
		m.err = err.Error()
	}
	return m
}

// IsOpen reports whether the overlay is shown.
func (m BugFormModal) IsOpen() bool { return m.open }

// Submitting reports whether a submission is awaiting its result.
func (m BugFormModal) Submitting() bool { return m.submitting }

// Target returns the bug being edited.
func (m BugFormModal) Target() domain.Bug { return m.target }

// SetWidth sizes the overlay.
func (m BugFormModal) SetWidth(w int) BugFormModal {
	if w > 72 {
		w = 72
	}
	if w < 30 {
		w = 30
	}
	m.width = w
	m.title.Width = w - 8
	m.description.SetWidth(w - 6)
	return m
}

// Update handles keys while the form is open.
func (m BugFormModal) Update(msg tea.Msg) (BugFormModal, tea.Cmd) {
	if !m.open {
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateInputs(msg)
	}
	if m.submitting {
		return m, nil
	}

	field := m.fields()[m.focus]
	switch keyMsg.String() {
	case "esc":
		mode := m.mode
		return m, func() tea.Msg { return bugFormCancelledMsg{mode: mode} }
	case "ctrl+s":
		return m.submit()
	case "enter":
		if field != fieldDescription {
			return m.submit()
		}
	case "tab", "down":
		if keyMsg.String() == "tab" || field != fieldDescription {
			cmd := (&m).setFocus(m.focus + 1)
			return m, cmd
		}
	case "shift+tab", "up":
		if keyMsg.String() == "shift+tab" || field != fieldDescription {
			cmd := (&m).setFocus(m.focus - 1)
			return m, cmd
		}
	case "left", "h":
		if m.cycle(field, -1) {
			return m, nil
		}
	case "right", "l":
		if m.cycle(field, 1) {
			return m, nil
		}
	}

	return m.updateInputs(msg)
}

func (m BugFormModal) updateInputs(msg tea.Msg) (BugFormModal, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	switch m.fields()[m.focus] {
	case fieldTitle:
		m.title, cmd = m.title.Update(msg)
		cmds = append(cmds, cmd)
	case fieldDescription:
		m.description, cmd = m.description.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// cycle moves a selector. It reports false when the focused field is not a
// selector, so the key falls through to text input.
func (m *BugFormModal) cycle(field formField, delta int) bool {
	switch field {
	case fieldStatus:
		m.status = cycleValue(domain.Statuses(), m.status, delta)
	case fieldPriority:
		m.priority = cycleValue(domain.Priorities(), m.priority, delta)
	default:
		return false
	}
	return true
}

func (m BugFormModal) submit() (BugFormModal, tea.Cmd) {
	in := m.Input()
	if err := m.validate(in); err != nil {
		m.hint = err.Error()
		return m, nil
	}
	m.hint = ""
	m.err = ""
	m.submitting = true
	out := bugFormSubmittedMsg{mode: m.mode, bugID: m.target.ID, input: in}
	return m, func() tea.Msg { return out }
}

// validate checks the free-text fields. Selectors only ever hold
// enumerated values.
func (m BugFormModal) validate(in domain.BugInput) error {
	if in.Title == "" {
		return domain.ErrTitleRequired
	}
	if in.Description == "" {
		return domain.ErrDescriptionRequired
	}
	return nil
}

// Input returns the trimmed form values. Status is left empty in add mode;
// the caller decides a new bug's status.
func (m BugFormModal) Input() domain.BugInput {
	in := domain.BugInput{
		Title:       strings.TrimSpace(m.title.Value()),
		Description: strings.TrimSpace(m.description.Value()),
		Priority:    m.priority,
	}
	if m.mode == FormEdit {
		in.Status = m.status
	}
	return in
}

func (m BugFormModal) fields() []formField {
	if m.mode == FormEdit {
		return []formField{fieldTitle, fieldDescription, fieldStatus, fieldPriority}
	}
	return []formField{fieldTitle, fieldDescription, fieldPriority}
}

func (m *BugFormModal) setFocus(i int) tea.Cmd {
	n := len(m.fields())
	m.focus = (i%n + n) % n
	m.title.Blur()
	m.description.Blur()
	switch m.fields()[m.focus] {
	case fieldTitle:
		return m.title.Focus()
	case fieldDescription:
		return m.description.Focus()
	}
	return nil
}

// View renders the overlay.
func (m BugFormModal) View() string {
	if !m.open {
		return ""
	}

	var b strings.Builder
	heading := "Add Bug"
	if m.mode == FormEdit {
		heading = fmt.Sprintf("Edit Bug #%d", m.target.ID)
	}
	b.WriteString(TitleStyle.Render(heading))
	b.WriteString("\n\n")

	focused := m.fields()[m.focus]
	for _, f := range m.fields() {
		switch f {
		case fieldTitle:
			b.WriteString(m.label("Title", f == focused))
			b.WriteString("\n")
			b.WriteString(m.title.View())
			b.WriteString("\n\n")
		case fieldDescription:
			b.WriteString(m.label("Description", f == focused))
			b.WriteString("\n")
			b.WriteString(m.description.View())
			b.WriteString("\n\n")
		case fieldStatus:
			b.WriteString(m.label("Status   ", f == focused))
			b.WriteString(" ")
			b.WriteString(selector(statusBadge(m.status), f == focused))
			b.WriteString("\n")
		case fieldPriority:
			b.WriteString(m.label("Priority ", f == focused))
			b.WriteString(" ")
			b.WriteString(selector(priorityBadge(m.priority), f == focused))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(dimStyle.Render("Saving..."))
	case m.err != "":
		b.WriteString(ErrorStyle.Render("✗ " + m.err))
	case m.hint != "":
		b.WriteString(ErrorStyle.Render(m.hint))
	default:
		b.WriteString(dimStyle.Render("tab next • ←/→ change • ctrl+s save • esc cancel"))
	}

	return OverlayStyle.Width(m.width).Render(b.String())
}

func (m BugFormModal) label(text string, focused bool) string {
	if focused {
		return SelectedItemStyle.Render(text)
	}
	return labelStyle.Render(text)
}

func selector(value string, focused bool) string {
	if focused {
		return SelectedItemStyle.Render("◀ ") + value + SelectedItemStyle.Render(" ▶")
	}
	return "  " + value
}

func cycleValue[T comparable](values []T, cur T, delta int) T {
	idx := 0
	for i, v := range values {
		if v == cur {
			idx = i
			break
		}
	}
	n := len(values)
	return values[((idx+delta)%n+n)%n]
}
