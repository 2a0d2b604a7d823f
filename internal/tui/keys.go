package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// keyMap lists the bindings of normal mode.
type keyMap struct {
	PrevWeek   key.Binding
	NextWeek   key.Binding
	Today      key.Binding
	PrevEntity key.Binding
	NextEntity key.Binding
	Goto       key.Binding
	Reload     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		PrevWeek:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "prev week")),
		NextWeek:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "next week")),
		Today:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "this week")),
		PrevEntity: key.NewBinding(key.WithKeys("k", "up", "shift+tab"), key.WithHelp("↑/k", "prev group")),
		NextEntity: key.NewBinding(key.WithKeys("j", "down", "tab"), key.WithHelp("↓/j", "next group")),
		Goto:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "go to group")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevWeek, k.NextWeek, k.NextEntity, k.Goto, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevWeek, k.NextWeek, k.Today},
		{k.PrevEntity, k.NextEntity, k.Goto},
		{k.Reload, k.Help, k.Quit},
	}
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.prompting {
		return m.handlePromptKeys(msg)
	}
	return m.handleNormalKeys(msg)
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.PrevWeek):
		m.week = m.week.Sub(1)
	case key.Matches(msg, m.keys.NextWeek):
		m.week = m.week.Add(1)
	case key.Matches(msg, m.keys.Today):
		m.week = m.now()
	case key.Matches(msg, m.keys.PrevEntity):
		if len(m.entities) == 0 {
			return m, nil
		}
		m.current = (m.current - 1 + len(m.entities)) % len(m.entities)
	case key.Matches(msg, m.keys.NextEntity):
		if len(m.entities) == 0 {
			return m, nil
		}
		m.current = (m.current + 1) % len(m.entities)
	case key.Matches(msg, m.keys.Goto):
		m.prompting = true
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Reload):
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	default:
		return m, nil
	}

	cmd := m.refresh()
	return m, cmd
}

func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompting = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.prompting = false
		m.input.Blur()
		name := m.input.Value()
		if name == "" {
			return m, nil
		}
		m.current = m.selectEntity(name)
		cmd := m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
