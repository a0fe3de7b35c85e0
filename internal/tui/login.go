// ABOUTME: Interactive login wizard for the blog backend.
// ABOUTME: bubbletea model collecting email and a masked password, then submitting them.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/quill/internal/api"
)

// Step represents the current wizard step.
type Step int

const (
	StepEmail Step = iota
	StepPassword
	StepSubmitting
	StepDone
	StepFailed
)

// LoginFn exchanges email and password for a stored credential.
type LoginFn func(ctx context.Context, email, password string) error

// loginResultMsg carries the result of an async login attempt.
type loginResultMsg struct {
	err error
}

// LoggedInMsg is emitted by an embedded wizard after a successful login.
type LoggedInMsg struct{}

// LoginCancelledMsg is emitted by an embedded wizard when the user backs out.
type LoginCancelledMsg struct{}

// cancelHolder shares a cancel function across bubbletea model copies.
// It must be a pointer field so value-receiver methods can store the cancel
// func and have it visible to every copy of the model.
type cancelHolder struct {
	cancel context.CancelFunc
}

// LoginModel is the bubbletea model for the login wizard.
type LoginModel struct {
	step     Step
	inputs   [2]textinput.Model
	spinner  spinner.Model
	loginFn  LoginFn
	cancel   *cancelHolder
	err      error
	quitting bool
	embedded bool
}

// NewLoginModel creates a login wizard, pre-filling the email when known.
func NewLoginModel(email string, fn LoginFn) LoginModel {
	emailInput := textinput.New()
	emailInput.Placeholder = "you@example.com"
	emailInput.Focus()
	emailInput.Width = 40
	if email != "" {
		emailInput.SetValue(email)
	}

	passInput := textinput.New()
	passInput.Placeholder = "password"
	passInput.EchoMode = textinput.EchoPassword
	passInput.Width = 40

	s := spinner.New()
	s.Spinner = spinner.Dot

	return LoginModel{
		step:    StepEmail,
		inputs:  [2]textinput.Model{emailInput, passInput},
		spinner: s,
		loginFn: fn,
		cancel:  &cancelHolder{},
	}
}

// Embedded returns a copy that reports completion with LoggedInMsg and
// LoginCancelledMsg instead of quitting the program.
func (m LoginModel) Embedded() LoginModel {
	m.embedded = true
	return m
}

// Init implements tea.Model.
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEscape:
			return m.abort()
		}

		switch m.step {
		case StepEmail, StepPassword:
			return m.updateInput(msg)
		case StepFailed:
			return m.updateFailed(msg)
		}

	case loginResultMsg:
		m.cancel.cancel = nil
		if msg.err == nil {
			m.step = StepDone
			return m, m.finish()
		}
		m.err = msg.err
		m.step = StepFailed
		return m, nil

	case spinner.TickMsg:
		if m.step == StepSubmitting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m LoginModel) abort() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.cancel.cancel != nil {
		m.cancel.cancel()
	}
	if m.embedded {
		return m, func() tea.Msg { return LoginCancelledMsg{} }
	}
	return m, tea.Quit
}

func (m LoginModel) finish() tea.Cmd {
	if m.embedded {
		return func() tea.Msg { return LoggedInMsg{} }
	}
	return tea.Quit
}

func (m LoginModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		idx := int(m.step)
		if strings.TrimSpace(m.inputs[idx].Value()) == "" {
			return m, nil
		}
		m.inputs[idx].Blur()

		if m.step == StepEmail {
			m.inputs[0].SetValue(strings.TrimSpace(m.inputs[0].Value()))
			m.step = StepPassword
			m.inputs[1].Focus()
			return m, textinput.Blink
		}
		m.step = StepSubmitting
		return m, tea.Batch(m.submit(), m.spinner.Tick)
	}

	idx := int(m.step)
	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(msg)
	return m, cmd
}

func (m LoginModel) updateFailed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyRunes {
		switch msg.Runes[0] {
		case 'r':
			m.err = nil
			m.step = StepPassword
			m.inputs[1].SetValue("")
			m.inputs[1].Focus()
			return m, textinput.Blink
		case 'q':
			return m.abort()
		}
	}
	return m, nil
}

func (m LoginModel) submit() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel.cancel = cancel
	email := m.inputs[0].Value()
	password := m.inputs[1].Value()
	fn := m.loginFn
	return func() tea.Msg {
		return loginResultMsg{err: fn(ctx, email, password)}
	}
}

// View implements tea.Model.
func (m LoginModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(header("Log in"))
	b.WriteString("\n\n")

	switch m.step {
	case StepEmail:
		b.WriteString(stepStyle.Render("Email"))
		b.WriteString("\n")
		b.WriteString(m.inputs[0].View())
		b.WriteString("\n")

	case StepPassword:
		b.WriteString(fmt.Sprintf("  Email: %s\n\n", m.inputs[0].Value()))
		b.WriteString(stepStyle.Render("Password"))
		b.WriteString("\n")
		b.WriteString(m.inputs[1].View())
		b.WriteString("\n")

	case StepSubmitting:
		b.WriteString(fmt.Sprintf("  Email: %s\n\n", m.inputs[0].Value()))
		b.WriteString(m.spinner.View())
		b.WriteString(" Logging in...")
		b.WriteString("\n")

	case StepDone:
		b.WriteString(successStyle.Render("✓ Logged in!"))
		b.WriteString("\n")

	case StepFailed:
		b.WriteString(errorStyle.Render("✗ " + failureText(m.err)))
		b.WriteString("\n\n")
		b.WriteString(promptStyle.Render("[r]etry  [q]uit"))
		b.WriteString("\n")
	}

	return b.String()
}

func failureText(err error) string {
	switch {
	case err == nil:
		return "unknown error"
	case errors.Is(err, api.ErrInvalidCredentials):
		return api.ErrInvalidCredentials.Error()
	default:
		return fmt.Sprintf("Login failed: %v", err)
	}
}

// Email returns the entered email.
func (m LoginModel) Email() string {
	return m.inputs[0].Value()
}

// LoggedIn returns true if the login succeeded and the user did not cancel.
func (m LoginModel) LoggedIn() bool {
	return m.step == StepDone && !m.quitting
}
