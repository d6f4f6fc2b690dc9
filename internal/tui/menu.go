package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/qtyper/internal/session"
)

var (
	menuTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	menuItemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).PaddingLeft(2)
	menuSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).PaddingLeft(0)
	menuErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	menuHintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

type menuEntry struct {
	label  string
	prompt string // non-empty entries ask for a number before resolving
	make   func(n int) session.Policy
	quit   bool
}

// MenuChoice is the resolved result of the startup menu. Interrupted
// distinguishes ctrl-c from the explicit quit entry; the caller maps it to
// the interrupted exit code.
type MenuChoice struct {
	Policy      session.Policy
	Quit        bool
	Interrupted bool
}

// Menu selects a session mode and, for counted or timed modes, prompts for
// the number via a text input.
type Menu struct {
	entries []menuEntry
	index   int

	prompting bool
	input     textinput.Model
	errMsg    string

	done   bool
	choice MenuChoice
}

// NewMenu constructs the mode-selection menu.
func NewMenu() *Menu {
	input := textinput.New()
	input.CharLimit = 5
	input.Width = 8
	return &Menu{
		entries: []menuEntry{
			{label: "single quote", make: func(int) session.Policy { return session.Single() }},
			{label: "multiple quotes", prompt: "how many quotes?", make: func(n int) session.Policy { return session.Multi(n) }},
			{label: "timed", prompt: "how many seconds?", make: func(n int) session.Policy { return session.Timed(time.Duration(n) * time.Second) }},
			{label: "zen", make: func(int) session.Policy { return session.Zen() }},
			{label: "quit", quit: true},
		},
		input: input,
	}
}

// Init implements tea.Model.
func (m *Menu) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.prompting {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if key.Type == tea.KeyCtrlC {
		m.done = true
		m.choice = MenuChoice{Quit: true, Interrupted: true}
		return m, tea.Quit
	}

	if m.prompting {
		return m.updatePrompt(key)
	}
	return m.updateSelection(key)
}

func (m *Menu) updateSelection(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		if m.index > 0 {
			m.index--
		}
	case "down", "j":
		if m.index < len(m.entries)-1 {
			m.index++
		}
	case "q":
		m.done = true
		m.choice = MenuChoice{Quit: true}
		return m, tea.Quit
	case "enter":
		entry := m.entries[m.index]
		if entry.quit {
			m.done = true
			m.choice = MenuChoice{Quit: true}
			return m, tea.Quit
		}
		if entry.prompt != "" {
			m.prompting = true
			m.errMsg = ""
			m.input.SetValue("")
			m.input.Focus()
			return m, textinput.Blink
		}
		m.done = true
		m.choice = MenuChoice{Policy: entry.make(0)}
		return m, tea.Quit
	}
	return m, nil
}

func (m *Menu) updatePrompt(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.prompting = false
		m.errMsg = ""
		return m, nil
	case tea.KeyEnter:
		n, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
		if err != nil || n <= 0 {
			m.errMsg = "enter a positive number"
			return m, nil
		}
		m.done = true
		m.choice = MenuChoice{Policy: m.entries[m.index].make(n)}
		return m, tea.Quit
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(key)
		return m, cmd
	}
}

// View implements tea.Model.
func (m *Menu) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(menuTitleStyle.Render("qtyper"))
	b.WriteString("\n\n")
	if m.prompting {
		b.WriteString(m.entries[m.index].prompt)
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.errMsg != "" {
			b.WriteString(menuErrorStyle.Render(m.errMsg))
			b.WriteString("\n")
		}
		b.WriteString(menuHintStyle.Render("enter to confirm · esc to go back"))
		return b.String()
	}
	for i, entry := range m.entries {
		if i == m.index {
			b.WriteString(menuSelectedStyle.Render(fmt.Sprintf("> %s", entry.label)))
		} else {
			b.WriteString(menuItemStyle.Render(entry.label))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(menuHintStyle.Render("j/k to move · enter to select · q to quit"))
	return b.String()
}

// Choice returns the resolved selection, valid after the program returns.
func (m *Menu) Choice() MenuChoice {
	return m.choice
}
