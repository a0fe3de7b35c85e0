// ABOUTME: Unit tests for the yes/no confirmation prompt.
// ABOUTME: Drives the model with synthetic key messages.
package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/quill/internal/blog"
)

var _ blog.Confirmer = PromptConfirmer{}

func TestConfirmModel_Answers(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		want bool
	}{
		{"y", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}}, true},
		{"Y", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'Y'}}, true},
		{"n", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}}, false},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, false},
		{"esc", tea.KeyMsg{Type: tea.KeyEscape}, false},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewConfirmModel(blog.DeletePrompt)
			updated, cmd := m.Update(tt.key)
			m = updated.(ConfirmModel)
			if m.Confirmed() != tt.want {
				t.Errorf("Confirmed() = %v, want %v", m.Confirmed(), tt.want)
			}
			if cmd == nil {
				t.Error("expected quit cmd after an answer")
			}
		})
	}
}

func TestConfirmModel_IgnoresOtherKeys(t *testing.T) {
	m := NewConfirmModel(blog.SavePrompt)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	m = updated.(ConfirmModel)
	if cmd != nil || m.answered {
		t.Error("expected unrelated key to be ignored")
	}
	if m.Confirmed() {
		t.Error("unanswered prompt must not count as yes")
	}
}

func TestConfirmModel_View(t *testing.T) {
	m := NewConfirmModel(blog.SavePrompt)
	view := m.View()
	if !strings.Contains(view, blog.SavePrompt) {
		t.Errorf("expected prompt in view, got %q", view)
	}
	if !strings.Contains(view, "[y]es") {
		t.Error("expected key hints in view")
	}
}
