package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/offsetlab/layoutkit/report"
	"github.com/offsetlab/layoutkit/sympath"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	memberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	offsetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browseState int

const (
	stateSelectType browseState = iota
	stateViewLayout
	stateQueryPath
)

type browseModel struct {
	ctx      *report.Context
	err      error
	names    []string
	selected int
	typeName string
	size     uint32
	rows     []offsetRow
	input    textinput.Model
	result   string
	state    browseState
}

func newBrowseModel(ctx *report.Context) *browseModel {
	return &browseModel{
		ctx:   ctx,
		names: ctx.DB.CompoundNames(),
		state: stateSelectType,
	}
}

func (m *browseModel) Init() tea.Cmd {
	return nil
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateQueryPath {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectType && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectType && m.selected < len(m.names)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectType:
				m.showLayout()
			case stateQueryPath:
				m.resolvePath()
			}
			return m, nil

		case "/":
			if m.state == stateViewLayout {
				ti := textinput.New()
				ti.Placeholder = "member path, e.g. pos.y or tiles[3]"
				ti.Prompt = m.typeName + "."
				ti.Width = 40
				ti.Focus()
				m.input = ti
				m.result = ""
				m.err = nil
				m.state = stateQueryPath
				return m, textinput.Blink
			}

		case "esc":
			switch m.state {
			case stateViewLayout:
				m.state = stateSelectType
				m.err = nil
			case stateQueryPath:
				m.state = stateViewLayout
				m.result = ""
				m.err = nil
			}
		}
	}

	if m.state == stateQueryPath {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *browseModel) showLayout() {
	name := m.names[m.selected]
	path, err := sympath.Parse(name)
	if err != nil {
		m.err = err
		return
	}
	c, err := m.ctx.DB.Compound(path)
	if err != nil {
		m.err = err
		return
	}
	info, err := m.ctx.Layout.Compound(c)
	if err != nil {
		m.err = err
		return
	}

	m.typeName = name
	m.size = info.Size
	m.rows = sortedOffsets(info.Offsets)
	m.err = nil
	m.state = stateViewLayout
}

func (m *browseModel) resolvePath() {
	path, err := sympath.Parse(m.input.Value())
	if err != nil {
		m.err = err
		m.result = ""
		return
	}
	tp, err := sympath.Parse(m.typeName)
	if err != nil {
		m.err = err
		return
	}
	c, err := m.ctx.DB.Compound(tp)
	if err != nil {
		m.err = err
		return
	}
	typeName, off, err := m.ctx.Layout.Offset(c, path)
	if err != nil {
		m.err = err
		m.result = ""
		return
	}
	m.err = nil
	m.result = fmt.Sprintf("%s.%s = %s (%s)",
		m.typeName, m.input.Value(), report.Hex(uint64(off)), typeName)
}

func (m *browseModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Layout Browser"))
	b.WriteString(" ")
	b.WriteString(m.ctx.Version.Name)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectType:
		b.WriteString("Select a type:\n\n")
		for i, name := range m.names {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + name))
			} else {
				b.WriteString("  " + name)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter layout • q quit"))

	case stateViewLayout:
		b.WriteString(fmt.Sprintf("%s  size=%s\n\n",
			memberStyle.Render(m.typeName), offsetStyle.Render(report.Hex(uint64(m.size)))))
		for _, row := range m.rows {
			b.WriteString("  ")
			b.WriteString(offsetStyle.Render(report.Hex(uint64(row.offset))))
			b.WriteString("  ")
			b.WriteString(memberStyle.Render(row.name))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("/ lookup path • esc back • q quit"))

	case stateQueryPath:
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		if m.result != "" {
			b.WriteString(resultStyle.Render(m.result))
			b.WriteString("\n\n")
		}
		b.WriteString(helpStyle.Render("enter resolve • esc back"))
	}

	if m.err != nil {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return b.String()
}

func runBrowse(ctx *report.Context) error {
	p := tea.NewProgram(newBrowseModel(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
