// Package tui is a terminal item browser talking to the item endpoint.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/icdts/itemboard/internal/browser"
	"github.com/icdts/itemboard/internal/models"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeAdd
	modeEdit
)

// itemsMsg carries the list as re-read from the server after an action.
type itemsMsg struct {
	items []models.Item
	err   error
}

type keyMap struct {
	Search, Add, Edit, Delete, Next, Prev, Up, Down, Reload, Quit key.Binding
}

var keys = keyMap{
	Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Next:   key.NewBinding(key.WithKeys("right", "n"), key.WithHelp("→/n", "next page")),
	Prev:   key.NewBinding(key.WithKeys("left", "p"), key.WithHelp("←/p", "prev page")),
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the bubbletea model. Network calls run as commands and their
// results come back as itemsMsg, so the state is only touched in Update.
type Model struct {
	state   *browser.State
	sync    *browser.Sync
	timeout time.Duration

	mode    mode
	cursor  int
	input   textinput.Model
	loading bool
	err     error
}

func New(c browser.Client, pageSize int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	return Model{
		state:   browser.NewState(pageSize),
		sync:    browser.NewSync(c),
		timeout: 10 * time.Second,
		input:   ti,
		loading: true,
	}
}

// Run starts the program on the alternate screen.
func Run(c browser.Client, pageSize int) error {
	_, err := tea.NewProgram(New(c, pageSize), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.call(m.sync.Fetch)
}

func (m Model) call(fn func(context.Context) ([]models.Item, error)) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		items, err := fn(ctx)
		return itemsMsg{items: items, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case itemsMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.state.Replace(msg.items)
			m.clampCursor()
		}
		return m, nil
	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.state.Visible().Items)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Next):
		m.state.Next()
		m.cursor = 0
	case key.Matches(msg, keys.Prev):
		m.state.Prev()
		m.cursor = 0
	case key.Matches(msg, keys.Reload):
		m.loading = true
		return m, m.call(m.sync.Fetch)
	case key.Matches(msg, keys.Search):
		return m.openInput(modeSearch, "Search items...", m.state.Search())
	case key.Matches(msg, keys.Add):
		return m.openInput(modeAdd, "Enter item name", m.state.NewItem())
	case key.Matches(msg, keys.Edit):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.state.StartEdit(it.ID)
		_, draft, _ := m.state.Editing()
		return m.openInput(modeEdit, "New name", draft)
	case key.Matches(msg, keys.Delete):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.loading = true
		return m, m.call(func(ctx context.Context) ([]models.Item, error) {
			return m.sync.Remove(ctx, it.ID)
		})
	}
	return m, nil
}

func (m Model) openInput(md mode, placeholder, value string) (tea.Model, tea.Cmd) {
	m.mode = md
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) closeInput() Model {
	m.mode = modeBrowse
	m.input.Blur()
	m.input.SetValue("")
	return m
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		if m.mode == modeEdit {
			m.state.CancelEdit()
		}
		return m.closeInput(), nil
	case tea.KeyEnter:
		value := m.input.Value()
		switch m.mode {
		case modeSearch:
			m.state.SetSearch(value)
			m.cursor = 0
			return m.closeInput(), nil
		case modeAdd:
			m.state.SetNewItem("")
			m = m.closeInput()
			if value == "" {
				return m, nil
			}
			m.loading = true
			return m, m.call(func(ctx context.Context) ([]models.Item, error) {
				return m.sync.Add(ctx, value)
			})
		case modeEdit:
			id, _, ok := m.state.Editing()
			m.state.CancelEdit()
			m = m.closeInput()
			if !ok {
				return m, nil
			}
			m.loading = true
			return m, m.call(func(ctx context.Context) ([]models.Item, error) {
				return m.sync.Rename(ctx, id, value)
			})
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	switch m.mode {
	case modeAdd:
		m.state.SetNewItem(m.input.Value())
	case modeEdit:
		m.state.SetEditValue(m.input.Value())
	}
	return m, cmd
}

func (m Model) selected() (models.Item, bool) {
	items := m.state.Visible().Items
	if m.cursor < 0 || m.cursor >= len(items) {
		return models.Item{}, false
	}
	return items[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.state.Visible().Items)
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m Model) View() string {
	var b strings.Builder

	page := m.state.Visible()
	title := titleStyle.Render("Items")
	if q := m.state.Search(); q != "" {
		title += "  " + accentStyle.Render(fmt.Sprintf("search: %q", q))
	}
	if m.loading {
		title += "  " + mutedStyle.Render("loading...")
	}
	b.WriteString(title + "\n\n")

	editID, _, editing := m.state.Editing()
	if len(page.Items) == 0 && !m.loading {
		b.WriteString(mutedStyle.Render("  no items") + "\n")
	}
	for i, it := range page.Items {
		prefix := "  "
		if i == m.cursor {
			prefix = selectedStyle.Render("> ")
		}
		name := it.Name
		if editing && it.ID == editID {
			name = editStyle.Render(name + " (editing)")
		}
		fmt.Fprintf(&b, "%s%s\n", prefix, name)
	}

	b.WriteString("\n" + mutedStyle.Render(page.Display()) + "\n")

	if m.mode != modeBrowse {
		b.WriteString("\n" + m.input.View() + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("✖ "+m.err.Error()) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render(helpLine()))
	return b.String()
}

func helpLine() string {
	bindings := []key.Binding{keys.Search, keys.Add, keys.Edit, keys.Delete, keys.Prev, keys.Next, keys.Reload, keys.Quit}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
