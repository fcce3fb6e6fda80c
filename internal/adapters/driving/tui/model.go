// Package tui implements the interactive question prompt. One question
// per turn: type, press Enter, read the answer. "exit", "quit" or ":q"
// leaves the loop.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opscore-io/netquery/internal/core/domain"
	"github.com/opscore-io/netquery/internal/core/ports/driving"
)

// queryTimeout bounds a single Ask round trip.
const queryTimeout = 15 * time.Second

// answerMsg carries the result of an Ask round trip back to Update.
type answerMsg struct {
	query  string
	answer *domain.Answer
	err    error
}

// Model is the Bubble Tea model for the REPL.
type Model struct {
	query    driving.QueryService
	input    textinput.Model
	viewport viewport.Model
	status   string
	ready    bool
	busy     bool
}

// New creates the REPL model.
func New(query driving.QueryService) Model {
	ti := textinput.New()
	ti.Prompt = "質問> "
	ti.Placeholder = "ノード数は? / L2SW1のインターフェース一覧 (exit で終了)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		query:    query,
		input:    ti,
		viewport: vp,
		status:   "Ready.",
	}
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, fh := answerBoxStyle.GetFrameSize()
		vh := msg.Height - fh - 4
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = vh
		return m, nil

	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("%s [%s]", msg.query, msg.answer.Kind)
		m.viewport.SetContent(renderAnswer(msg.answer))
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" {
			q := strings.TrimSpace(m.input.Value())
			switch {
			case q == "":
				return m, nil
			case isExit(q):
				return m, tea.Quit
			case m.busy:
				return m, nil
			}
			m.busy = true
			m.status = "Thinking..."
			m.input.Reset()
			return m, m.ask(q)
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the REPL layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("netquery")
	answer := answerBoxStyle.Render(m.viewport.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + answer + "\n" + m.input.View() + "\n" + status
}

// ask runs the query off the UI goroutine.
func (m Model) ask(q string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		answer, err := m.query.Ask(ctx, q, domain.SearchOptions{})
		return answerMsg{query: q, answer: answer, err: err}
	}
}

func renderAnswer(a *domain.Answer) string {
	text := a.Text
	if a.Truncated {
		text += "\n(note: candidate scan hit the row cap; results may be incomplete)"
	}
	return text
}

func isExit(q string) bool {
	switch strings.ToLower(q) {
	case "exit", "quit", ":q":
		return true
	}
	return false
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
