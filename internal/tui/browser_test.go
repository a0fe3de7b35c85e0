// ABOUTME: Tests for the blog browser model against the in-memory backend.
// ABOUTME: Commands are executed inline and their messages fed back through Update.
package tui

import (
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zaptest"

	"github.com/2389-research/quill/internal/api"
	"github.com/2389-research/quill/internal/api/apitest"
	"github.com/2389-research/quill/internal/blog"
	"github.com/2389-research/quill/internal/models"
	"github.com/2389-research/quill/internal/render"
)

func newTestBrowser(t *testing.T, backend *apitest.Backend, cred models.Credential, start blog.Route) (Browser, *blog.MemoryTokenStore) {
	t.Helper()
	r, err := render.New("notty", 80)
	if err != nil {
		t.Fatalf("render.New error: %v", err)
	}
	tokens := blog.NewMemoryTokenStore(cred)
	m := NewBrowser(context.Background(), BrowserDeps{
		Gateway:  api.NewClient(backend.URL()),
		Tokens:   tokens,
		Renderer: r,
		Logger:   zaptest.NewLogger(t),
	}, start)
	return drive(t, m, m.Init()), tokens
}

// drive runs cmd and feeds the browser's own messages back into Update until
// no work is left. Timer-driven messages (spinner, cursor blink) are dropped.
func drive(t *testing.T, m Browser, cmd tea.Cmd) Browser {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case eventMsg, postsLoadedMsg, loginResultMsg, LoggedInMsg, LoginCancelledMsg:
			updated, follow := m.Update(msg)
			m = updated.(Browser)
			queue = append(queue, follow)
		}
	}
	return m
}

func press(t *testing.T, m Browser, k tea.KeyMsg) Browser {
	t.Helper()
	updated, cmd := m.Update(k)
	return drive(t, updated.(Browser), cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func ownerBackend(t *testing.T) *apitest.Backend {
	t.Helper()
	backend := apitest.NewBackend()
	t.Cleanup(backend.Close)
	backend.AddUser("u1", "me@example.com", "pw", "tok-1")
	backend.AddUser("u2", "other@example.com", "pw2", "tok-2")
	backend.Seed("42", "u1", "Hello", "World")
	backend.Seed("43", "u2", "Second", "Post")
	return backend
}

func TestBrowser_ListInServerOrder(t *testing.T) {
	m, _ := newTestBrowser(t, ownerBackend(t), "", blog.Route{Kind: blog.RouteList})

	if len(m.posts) != 2 || m.posts[0].ID != "42" || m.posts[1].ID != "43" {
		t.Fatalf("unexpected posts %+v", m.posts)
	}
	view := m.View()
	if !strings.Contains(view, "Hello") || !strings.Contains(view, "Second") {
		t.Errorf("expected both titles in view, got %q", view)
	}
	if !strings.Contains(view, "l login") || strings.Contains(view, "n new") {
		t.Errorf("anonymous list must offer login and not new, got %q", view)
	}

	m = press(t, m, runes("n"))
	if m.Route().Kind != blog.RouteList {
		t.Error("anonymous user must not open the new-post editor")
	}
}

func TestBrowser_OpenReadFromList(t *testing.T) {
	m, _ := newTestBrowser(t, ownerBackend(t), "", blog.Route{Kind: blog.RouteList})

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.Route() != (blog.Route{Kind: blog.RouteRead, ID: "43"}) {
		t.Fatalf("expected read route for 43, got %+v", m.Route())
	}
	if m.ctrl.State() != blog.StateViewing {
		t.Errorf("expected viewing, got %s", m.ctrl.State())
	}
	if !strings.Contains(m.View(), "Second") {
		t.Error("expected rendered post in view")
	}
}

func TestBrowser_ReadOwnerOffersEdit(t *testing.T) {
	m, _ := newTestBrowser(t, ownerBackend(t), "tok-1", blog.Route{Kind: blog.RouteRead, ID: "42"})
	if !strings.Contains(m.View(), "e edit") {
		t.Errorf("owner should see edit controls, got %q", m.View())
	}

	m, _ = newTestBrowser(t, ownerBackend(t), "tok-2", blog.Route{Kind: blog.RouteRead, ID: "42"})
	if strings.Contains(m.View(), "e edit") {
		t.Error("non-owner must not see edit controls")
	}
	m = press(t, m, runes("e"))
	if m.Route().Kind != blog.RouteRead {
		t.Error("non-owner must not open the editor")
	}
}

func TestBrowser_NotFound(t *testing.T) {
	m, _ := newTestBrowser(t, ownerBackend(t), "", blog.Route{Kind: blog.RouteRead, ID: "999"})
	if m.ctrl.State() != blog.StateNotFound {
		t.Errorf("expected not found, got %s", m.ctrl.State())
	}
	if !strings.Contains(m.View(), blog.NotFoundMessage) {
		t.Errorf("expected not-found message, got %q", m.View())
	}
}

func TestBrowser_NonOwnerEditorRedirects(t *testing.T) {
	m, _ := newTestBrowser(t, ownerBackend(t), "tok-2", blog.Route{Kind: blog.RouteEdit, ID: "42"})

	if m.Route() != (blog.Route{Kind: blog.RouteRead, ID: "42"}) {
		t.Fatalf("expected redirect to read view, got %+v", m.Route())
	}
	if m.ctrl.State() != blog.StateViewing {
		t.Errorf("expected viewing after redirect, got %s", m.ctrl.State())
	}
}

func TestBrowser_CreatePost(t *testing.T) {
	backend := ownerBackend(t)
	m, _ := newTestBrowser(t, backend, "tok-1", blog.Route{Kind: blog.RouteList})

	m = press(t, m, runes("n"))
	if !m.Route().IsNew() || m.ctrl.State() != blog.StateEditing {
		t.Fatalf("expected new-post editor, got %+v %s", m.Route(), m.ctrl.State())
	}

	m.title.SetValue("Fresh")
	m.body.SetValue("Body text")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.ctrl.State() != blog.StateSaveConfirm {
		t.Fatalf("expected save confirm, got %s", m.ctrl.State())
	}
	if !strings.Contains(m.View(), blog.SavePrompt) {
		t.Error("expected save prompt in view")
	}

	m = press(t, m, runes("y"))

	creates := backend.RequestsTo("POST", "/posts")
	if len(creates) != 1 {
		t.Fatalf("expected one create, got %d", len(creates))
	}
	if creates[0].Authorization != "tok-1" {
		t.Errorf("create must send the raw token, got %q", creates[0].Authorization)
	}
	if m.Route().Kind != blog.RouteList {
		t.Errorf("expected list after create, got %+v", m.Route())
	}
	if len(m.posts) != 3 {
		t.Errorf("expected reloaded list with new post, got %d", len(m.posts))
	}
	if !strings.Contains(m.View(), blog.AlertSaved) {
		t.Error("expected success alert in view")
	}
}

func TestBrowser_KeysIgnoredWhileSaving(t *testing.T) {
	backend := ownerBackend(t)
	m, _ := newTestBrowser(t, backend, "tok-1", blog.Route{Kind: blog.RouteEdit, ID: "42"})

	m.body.SetValue("Updated")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	updated, saveCmd := m.Update(runes("y"))
	m = updated.(Browser)
	if m.ctrl.State() != blog.StateSaving {
		t.Fatalf("expected saving, got %s", m.ctrl.State())
	}

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = updated.(Browser)
	if cmd != nil || m.ctrl.State() != blog.StateSaving {
		t.Error("expected keys to be ignored while saving")
	}

	m = drive(t, m, saveCmd)
	if n := len(backend.RequestsTo("PUT", "/posts/42")); n != 1 {
		t.Errorf("expected one update, got %d", n)
	}
	if m.Route() != (blog.Route{Kind: blog.RouteRead, ID: "42"}) {
		t.Errorf("expected read view after update, got %+v", m.Route())
	}
	if post := m.ctrl.Post(); post == nil || post.Content != "Updated" {
		t.Errorf("expected refreshed content, got %+v", post)
	}
}

func TestBrowser_ConfirmStartsSpinner(t *testing.T) {
	backend := ownerBackend(t)
	m, _ := newTestBrowser(t, backend, "tok-1", blog.Route{Kind: blog.RouteRead, ID: "42"})

	m = press(t, m, runes("d"))
	updated, cmd := m.Update(runes("y"))
	m = updated.(Browser)
	if m.ctrl.State() != blog.StateDeleting {
		t.Fatalf("expected deleting, got %s", m.ctrl.State())
	}

	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatalf("expected a batch of delete and spinner, got %T", cmd())
	}
	ticked := false
	for _, c := range batch {
		if c == nil {
			continue
		}
		msg := c()
		if _, isTick := msg.(spinner.TickMsg); isTick {
			ticked = true
			continue
		}
		m = drive(t, m, func() tea.Msg { return msg })
	}
	if !ticked {
		t.Error("expected the spinner to tick while deleting")
	}
	if n := len(backend.RequestsTo("DELETE", "/posts/42")); n != 1 {
		t.Errorf("expected one delete, got %d", n)
	}
}

func TestBrowser_DeclinedDeleteSendsNothing(t *testing.T) {
	backend := ownerBackend(t)
	m, _ := newTestBrowser(t, backend, "tok-1", blog.Route{Kind: blog.RouteRead, ID: "42"})

	m = press(t, m, runes("d"))
	if m.ctrl.State() != blog.StateDeleteConfirm {
		t.Fatalf("expected delete confirm, got %s", m.ctrl.State())
	}
	if !strings.Contains(m.View(), blog.DeletePrompt) {
		t.Error("expected delete prompt in view")
	}

	m = press(t, m, runes("n"))
	if m.ctrl.State() != blog.StateViewing {
		t.Errorf("expected viewing after decline, got %s", m.ctrl.State())
	}
	if n := len(backend.RequestsTo("DELETE", "/posts/42")); n != 0 {
		t.Errorf("expected no delete request, got %d", n)
	}
}

func TestBrowser_DeletePost(t *testing.T) {
	backend := ownerBackend(t)
	m, _ := newTestBrowser(t, backend, "tok-1", blog.Route{Kind: blog.RouteRead, ID: "42"})

	m = press(t, m, runes("d"))
	m = press(t, m, runes("y"))

	if m.Route().Kind != blog.RouteList {
		t.Errorf("expected list after delete, got %+v", m.Route())
	}
	if len(backend.Posts()) != 1 {
		t.Errorf("expected post removed, got %d posts", len(backend.Posts()))
	}
	if !strings.Contains(m.View(), blog.AlertDeleted) {
		t.Error("expected delete alert in view")
	}
}

func TestBrowser_LoginFlow(t *testing.T) {
	m, tokens := newTestBrowser(t, ownerBackend(t), "", blog.Route{Kind: blog.RouteList})

	m = press(t, m, runes("l"))
	if m.Route().Kind != blog.RouteLogin {
		t.Fatalf("expected login route, got %+v", m.Route())
	}

	m.login.inputs[0].SetValue("me@example.com")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m.login.inputs[1].SetValue("pw")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.Route().Kind != blog.RouteList {
		t.Fatalf("expected list after login, got %+v", m.Route())
	}
	if cred, ok := tokens.Get(); !ok || cred != "tok-1" {
		t.Errorf("expected stored token, got %q %v", cred, ok)
	}
	if !strings.Contains(m.View(), "n new") {
		t.Error("logged-in list should offer new post")
	}
}

func TestBrowser_LoginCancelReturnsToList(t *testing.T) {
	m, tokens := newTestBrowser(t, ownerBackend(t), "", blog.Route{Kind: blog.RouteLogin})

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.Route().Kind != blog.RouteList {
		t.Errorf("expected list after cancel, got %+v", m.Route())
	}
	if _, ok := tokens.Get(); ok {
		t.Error("cancelled login must not store a token")
	}
}

func TestBrowser_Logout(t *testing.T) {
	m, tokens := newTestBrowser(t, ownerBackend(t), "tok-1", blog.Route{Kind: blog.RouteList})

	m = press(t, m, runes("x"))
	if _, ok := tokens.Get(); ok {
		t.Error("expected token cleared")
	}
	if !strings.Contains(m.View(), "Logged out.") {
		t.Error("expected logout alert")
	}
}
