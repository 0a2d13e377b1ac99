// Package tui renders the catalog as a terminal UI. It is a stateless
// projection of the app state: every key press maps to one app command,
// every snapshot to a cache refresh.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/n0roo/vibespinner/internal/app"
	"github.com/n0roo/vibespinner/internal/catalog"
	"github.com/n0roo/vibespinner/internal/store"
)

// Tab is a main view tab
type Tab int

const (
	TabBrowse Tab = iota
	TabAll
	TabAdd
	TabTags
)

func (t Tab) String() string {
	return []string{"Browse", "All Items", "Add", "Tags"}[t]
}

const tabCount = 4

// focusArea is what receives navigation keys on input-bearing tabs
type focusArea int

const (
	focusChips focusArea = iota
	focusInput
)

// chip addresses one toggleable tag button
type chip struct {
	group string
	tag   string
}

// Model is the main TUI model
type Model struct {
	app *app.App

	// State
	width      int
	height     int
	ready      bool
	currentTab Tab
	focus      focusArea
	editing    bool
	status     string
	err        error

	// Cursors
	chipCursor  int
	itemCursor  int
	groupCursor int
	tagCursor   int

	// Components
	nameInput textinput.Model
	tagInput  textinput.Model
	spinner   spinner.Model
}

// snapshotMsg carries a store snapshot into the update loop
type snapshotMsg store.Snapshot

// tickMsg re-renders so arm-state expiry becomes visible
type tickMsg time.Time

// NewModel creates a new TUI model
func NewModel(a *app.App) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	name := textinput.New()
	name.Placeholder = "Place name"
	name.CharLimit = 80

	tag := textinput.New()
	tag.Placeholder = "New tag"
	tag.CharLimit = 40

	return Model{
		app:       a,
		spinner:   s,
		nameInput: name,
		tagInput:  tag,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForSnapshot(),
		tickEvery(time.Second),
	)
}

// waitForSnapshot blocks on the app's snapshot stream
func (m Model) waitForSnapshot() tea.Cmd {
	ch := m.app.Snapshots()
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case snapshotMsg:
		m.app.Apply(store.Snapshot(msg))
		m.clampCursors()
		return m, m.waitForSnapshot()

	case tickMsg:
		return m, tickEvery(time.Second)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.app.Stop()
		return m, tea.Quit
	}

	// While an input is focused, keys type into it
	if m.typing() {
		return m.handleInputKey(msg)
	}

	m.status = ""
	switch msg.String() {
	case "q":
		m.app.Stop()
		return m, tea.Quit
	case "1":
		m.switchTab(TabBrowse)
	case "2":
		m.switchTab(TabAll)
	case "3":
		m.switchTab(TabAdd)
	case "4":
		m.switchTab(TabTags)
	case "tab":
		m.switchTab(Tab((int(m.currentTab) + 1) % tabCount))
	case "shift+tab":
		m.switchTab(Tab((int(m.currentTab) + tabCount - 1) % tabCount))
	default:
		return m.handleTabKey(msg)
	}
	return m, nil
}

// handleTabKey dispatches keys that depend on the active tab
func (m Model) handleTabKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.currentTab {
	case TabBrowse:
		return m.handleBrowseKey(msg)
	case TabAll:
		return m.handleListKey(msg, m.app.Items())
	case TabAdd:
		return m.handleAddKey(msg)
	case TabTags:
		return m.handleTagsKey(msg)
	}
	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	chips := m.chips(app.CtxFilter)

	switch msg.String() {
	case "left", "h":
		m.chipCursor = wrap(m.chipCursor-1, len(chips))
	case "right", "l":
		m.chipCursor = wrap(m.chipCursor+1, len(chips))
	case " ", "enter":
		if len(chips) > 0 {
			c := chips[m.chipCursor]
			m.app.ToggleTag(app.CtxFilter, c.group, c.tag)
			m.clampCursors()
		}
	case "c":
		m.app.Selection(app.CtxFilter).Clear()
		m.chipCursor = 0
	default:
		return m.handleListKey(msg, m.app.FilteredItems())
	}
	return m, nil
}

// handleListKey covers item-list navigation shared by Browse and All
func (m Model) handleListKey(msg tea.KeyMsg, items []catalog.Item) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.itemCursor = wrap(m.itemCursor-1, len(items))
	case "down", "j":
		m.itemCursor = wrap(m.itemCursor+1, len(items))
	case "e":
		if m.itemCursor < len(items) {
			if item, ok := m.app.BeginEdit(items[m.itemCursor].ID); ok {
				m.editing = true
				m.nameInput.SetValue(item.Name)
				m.switchTab(TabAdd)
			}
		}
	case "d":
		if m.itemCursor < len(items) {
			deleted, err := m.app.PressDelete(items[m.itemCursor].ID)
			m.err = err
			if deleted {
				m.status = "Deleted"
			}
		}
	}
	return m, nil
}

func (m Model) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := m.formContext()
	chips := m.chips(ctx)

	switch msg.String() {
	case "esc":
		if m.editing {
			m.app.CancelEdit()
			m.editing = false
			m.nameInput.SetValue("")
			m.switchTab(TabBrowse)
			return m, nil
		}
		m.focus = focusInput
		m.nameInput.Focus()
		return m, textinput.Blink
	case "left", "h":
		m.chipCursor = wrap(m.chipCursor-1, len(chips))
	case "right", "l":
		m.chipCursor = wrap(m.chipCursor+1, len(chips))
	case " ":
		if len(chips) > 0 {
			c := chips[m.chipCursor]
			m.app.ToggleTag(ctx, c.group, c.tag)
			m.clampCursors()
		}
	case "enter":
		return m.submitForm()
	}
	return m, nil
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	name := m.nameInput.Value()

	if m.editing {
		saved, err := m.app.SubmitEdit(name)
		if err != nil {
			m.err = err
			return m, nil
		}
		if !saved {
			// Edit session stays open for another attempt
			m.status = "Name must not be empty"
			return m, nil
		}
		m.editing = false
		m.status = "Saved"
		m.nameInput.SetValue("")
		m.switchTab(TabBrowse)
		return m, nil
	}

	added, err := m.app.AddItem(name)
	if err != nil {
		m.err = err
		return m, nil
	}
	if !added {
		// Incomplete form: not an error, just not done yet
		m.status = "Name and at least one tag required"
		return m, nil
	}
	m.status = "Added " + name
	m.nameInput.SetValue("")
	return m, nil
}

func (m Model) handleTagsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	groups := m.managedGroups()
	if len(groups) == 0 {
		return m, nil
	}
	group := groups[wrap(m.groupCursor, len(groups))]
	tags := m.app.Schema().Groups[group].Tags

	switch msg.String() {
	case "up", "k":
		m.groupCursor = wrap(m.groupCursor-1, len(groups))
		m.tagCursor = 0
	case "down", "j":
		m.groupCursor = wrap(m.groupCursor+1, len(groups))
		m.tagCursor = 0
	case "left", "h":
		m.tagCursor = wrap(m.tagCursor-1, len(tags))
	case "right", "l":
		m.tagCursor = wrap(m.tagCursor+1, len(tags))
	case "x":
		if m.tagCursor < len(tags) {
			tag := tags[m.tagCursor]
			removed, err := m.app.DeleteTag(group, tag)
			m.err = err
			if removed {
				m.status = "Deleted tag " + tag
				m.tagCursor = 0
			}
		}
	case "esc":
		m.focus = focusInput
		m.tagInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

// handleInputKey routes keys while a text input is focused
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		if m.currentTab == TabAdd && msg.String() == "enter" {
			m.focus = focusChips
			m.nameInput.Blur()
			return m.submitForm()
		}
		if m.currentTab == TabTags && msg.String() == "enter" {
			groups := m.managedGroups()
			if len(groups) > 0 {
				group := groups[wrap(m.groupCursor, len(groups))]
				added, err := m.app.AddTag(group, m.tagInput.Value())
				m.err = err
				if added {
					m.status = "Added tag to " + group
				}
				m.tagInput.SetValue("")
			}
		}
		m.focus = focusChips
		m.nameInput.Blur()
		m.tagInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	if m.currentTab == TabTags {
		m.tagInput, cmd = m.tagInput.Update(msg)
	} else {
		m.nameInput, cmd = m.nameInput.Update(msg)
	}
	return m, cmd
}

// typing reports whether a text input currently owns the keyboard
func (m Model) typing() bool {
	if m.focus != focusInput {
		return false
	}
	return m.currentTab == TabAdd || m.currentTab == TabTags
}

func (m *Model) switchTab(t Tab) {
	m.currentTab = t
	m.chipCursor = 0
	m.itemCursor = 0
	m.err = nil

	// Entering the add form starts in the name field
	if t == TabAdd && !m.editing {
		m.focus = focusInput
		m.nameInput.Focus()
	} else if t != TabAdd {
		m.focus = focusChips
		m.nameInput.Blur()
		m.tagInput.Blur()
	}
}

// formContext picks add or edit depending on mode
func (m Model) formContext() app.ContextName {
	if m.editing {
		return app.CtxEdit
	}
	return app.CtxForm
}

// chips flattens the visible groups of a context into toggle targets
func (m Model) chips(name app.ContextName) []chip {
	s := m.app.Schema()
	sel := m.app.Selection(name)

	var out []chip
	for _, group := range s.Ordered() {
		if !sel.Visible(s, group) {
			continue
		}
		for _, tag := range s.Groups[group].Tags {
			out = append(out, chip{group: group, tag: tag})
		}
	}
	return out
}

// managedGroups lists the groups whose tags are user-editable: every
// group after the first in display order, matching the web UI's
// management section
func (m Model) managedGroups() []string {
	ordered := m.app.Schema().Ordered()
	if len(ordered) <= 1 {
		return nil
	}
	return ordered[1:]
}

func (m *Model) clampCursors() {
	if n := len(m.chips(m.chipsContext())); m.chipCursor >= n {
		m.chipCursor = max(0, n-1)
	}
	items := m.app.Items()
	if m.currentTab == TabBrowse {
		items = m.app.FilteredItems()
	}
	if m.itemCursor >= len(items) {
		m.itemCursor = max(0, len(items)-1)
	}
}

func (m Model) chipsContext() app.ContextName {
	if m.currentTab == TabAdd {
		return m.formContext()
	}
	return app.CtxFilter
}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Run starts the interactive catalog UI over an already-started app
func Run(a *app.App) error {
	p := tea.NewProgram(
		NewModel(a),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
