package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wippyai/mpi-vid/mpi"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	cellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98")).
			Padding(0, 1)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// visibleEvents is how many recent events the TUI shows.
const visibleEvents = 8

type interactiveModel struct {
	err     error
	session *session
	result  string
	history []string
	input   textinput.Model
	histIdx int
	filter  []mpi.Category
}

type execResultMsg struct {
	err    error
	result string
	line   string
}

func newInteractiveModel(s *session) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "create comm 100"
	ti.Prompt = "> "
	ti.Width = 60
	ti.Focus()

	return &interactiveModel{
		session: s,
		input:   ti,
		filter:  mpi.Categories,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			if line == "quit" || line == "exit" {
				return m, tea.Quit
			}
			m.input.SetValue("")
			return m, m.exec(line)

		case "up":
			if len(m.history) > 0 && m.histIdx > 0 {
				m.histIdx--
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.histIdx < len(m.history)-1 {
				m.histIdx++
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			} else {
				m.histIdx = len(m.history)
				m.input.SetValue("")
			}
			return m, nil
		}

	case execResultMsg:
		m.history = append(m.history, msg.line)
		m.histIdx = len(m.history)
		m.result = msg.result
		m.err = msg.err
		m.applyFilter(msg.line)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) exec(line string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Exec(context.Background(), line)
		return execResultMsg{line: line, result: out, err: err}
	}
}

// applyFilter narrows the mapping table after a successful "show <cat>".
func (m *interactiveModel) applyFilter(line string) {
	if m.err != nil {
		return
	}
	fields := strings.Fields(line)
	if len(fields) == 0 || (fields[0] != "show" && fields[0] != "ls") {
		return
	}
	m.filter = mpi.Categories
	if len(fields) == 2 {
		if c, err := mpi.ParseCategory(fields[1]); err == nil {
			m.filter = []mpi.Category{c}
		}
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Virtual ID Table"))
	b.WriteString(" ")
	for i, c := range mpi.Categories {
		if i > 0 {
			b.WriteString(" • ")
		}
		acc, err := m.session.handles.Accessor(c)
		if err != nil {
			continue
		}
		b.WriteString(fmt.Sprintf("%s %d", c.Short(), acc.Len()))
	}
	b.WriteString("\n\n")

	b.WriteString(m.mappingTable())
	b.WriteString("\n\n")

	if events := m.session.Events(); len(events) > 0 {
		if len(events) > visibleEvents {
			events = events[len(events)-visibleEvents:]
		}
		b.WriteString(headerStyle.Render("Recent events"))
		b.WriteString("\n")
		for _, e := range events {
			b.WriteString(eventStyle.Render("  " + e))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	} else if m.result != "" {
		b.WriteString(resultStyle.Render(m.result))
		b.WriteString("\n\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter run • ↑/↓ history • help commands • esc quit"))

	return b.String()
}

func (m *interactiveModel) mappingTable() string {
	rows := m.session.Rows(m.filter)
	if len(rows) == 0 {
		return helpStyle.Render("no live mappings")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))).
		Headers("CATEGORY", "VIRTUAL", "REAL").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})
	return t.Render()
}

func runInteractive(s *session) error {
	p := tea.NewProgram(newInteractiveModel(s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
