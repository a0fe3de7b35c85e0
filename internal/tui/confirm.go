// ABOUTME: Yes/no confirmation prompt as a bubbletea model.
// ABOUTME: PromptConfirmer runs it as a blog.Confirmer for CLI commands.
package tui

import (
	"context"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel asks a single yes/no question. Anything but y counts as no.
type ConfirmModel struct {
	prompt   string
	answered bool
	yes      bool
}

// NewConfirmModel creates a prompt for question.
func NewConfirmModel(question string) ConfirmModel {
	return ConfirmModel{prompt: question}
}

// Init implements tea.Model.
func (m ConfirmModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch strings.ToLower(key.String()) {
	case "y":
		m.answered, m.yes = true, true
	case "n", "enter", "esc", "ctrl+c", "q":
		m.answered, m.yes = true, false
	default:
		return m, nil
	}
	return m, tea.Quit
}

// View implements tea.Model.
func (m ConfirmModel) View() string {
	if m.answered {
		if m.yes {
			return successStyle.Render(m.prompt+"? yes") + "\n"
		}
		return promptStyle.Render(m.prompt+"? no") + "\n"
	}
	return modalStyle.Render(m.prompt+"?") + "\n" + promptStyle.Render("[y]es  [n]o") + "\n"
}

// Confirmed returns true when the user answered yes.
func (m ConfirmModel) Confirmed() bool {
	return m.answered && m.yes
}

// PromptConfirmer asks on a terminal.
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm implements blog.Confirmer. Errors and cancellation count as no.
func (p PromptConfirmer) Confirm(ctx context.Context, prompt string) bool {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}
	final, err := tea.NewProgram(NewConfirmModel(prompt), opts...).Run()
	if err != nil {
		return false
	}
	m, ok := final.(ConfirmModel)
	return ok && m.Confirmed()
}
