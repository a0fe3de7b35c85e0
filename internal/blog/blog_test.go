// ABOUTME: Tests for routes, the ownership verifier, the list controller, and sessions.
// ABOUTME: Uses the fake gateway and the in-memory backend.
package blog

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/2389-research/quill/internal/api"
	"github.com/2389-research/quill/internal/api/apitest"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		path string
		want Route
	}{
		{"/", Route{Kind: RouteList}},
		{"", Route{}},
		{"/login", Route{Kind: RouteLogin}},
		{"/42", Route{Kind: RouteRead, ID: "42"}},
		{"/42/", Route{Kind: RouteRead, ID: "42"}},
		{"/post/42", Route{Kind: RouteEdit, ID: "42"}},
		{"/post/new", Route{Kind: RouteEdit, ID: "new"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ParseRoute(tt.path)
			if tt.path == "" {
				if err == nil {
					t.Error("expected error for empty path")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRoute(%q) error: %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("ParseRoute(%q) = %+v, want %+v", tt.path, got, tt.want)
			}
			if got.Path() != "/"+trimSlashes(tt.path) && tt.path != "/" {
				t.Errorf("Path() = %q for %q", got.Path(), tt.path)
			}
		})
	}
}

func trimSlashes(s string) string {
	for len(s) > 0 && s[0] == '/' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

func TestParseRouteRejectsUnknown(t *testing.T) {
	for _, path := range []string{"42", "/post", "/post/", "/a/b", "/post/1/2"} {
		if _, err := ParseRoute(path); err == nil {
			t.Errorf("expected error for %q", path)
		}
	}
}

func TestRouteIsNew(t *testing.T) {
	if !(Route{Kind: RouteEdit, ID: "new"}).IsNew() {
		t.Error("expected /post/new to be new")
	}
	if (Route{Kind: RouteRead, ID: "new"}).IsNew() {
		t.Error("read route is never new")
	}
}

func TestVerifierAnonymousSkipsNetwork(t *testing.T) {
	gw := &fakeGateway{owner: true}
	v := NewVerifier(gw, NewMemoryTokenStore(""), nil)

	o := v.Check(context.Background(), "42")
	if o.Allowed() {
		t.Error("expected anonymous ownership to be denied")
	}
	if !o.Checked() {
		t.Error("expected a decision")
	}
	if len(gw.Calls()) != 0 {
		t.Errorf("expected no network calls, got %v", gw.Calls())
	}
}

func TestVerifierFailsClosed(t *testing.T) {
	backend := apitest.NewBackend()
	defer backend.Close()
	backend.AddUser("u1", "a@example.com", "pw", "tok")
	backend.Seed("42", "u1", "t", "c")
	backend.Fail["GET /posts/verify-owner/42"] = http.StatusInternalServerError

	v := NewVerifier(api.NewClient(backend.URL()), NewMemoryTokenStore("tok"), nil)
	if v.Check(context.Background(), "42").Allowed() {
		t.Error("expected false on 500")
	}

	unreachable := NewVerifier(api.NewClient("http://localhost:1"), NewMemoryTokenStore("tok"), nil)
	if unreachable.Check(context.Background(), "42").Allowed() {
		t.Error("expected false on transport error")
	}
}

func TestVerifierOwner(t *testing.T) {
	backend := apitest.NewBackend()
	defer backend.Close()
	backend.AddUser("u1", "a@example.com", "pw", "tok")
	backend.Seed("42", "u1", "t", "c")

	o := NewVerifier(api.NewClient(backend.URL()), NewMemoryTokenStore("tok"), nil).Check(context.Background(), "42")
	if !o.Allowed() || o.PostID() != "42" {
		t.Errorf("expected owner of 42, got %+v", o)
	}
}

func TestListControllerLoadAll(t *testing.T) {
	backend := apitest.NewBackend()
	defer backend.Close()
	backend.Seed("b", "u1", "B", "")
	backend.Seed("a", "u1", "A", "")

	tokens := NewMemoryTokenStore("")
	l := NewListController(api.NewClient(backend.URL()), tokens)

	posts, err := l.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != "b" || posts[1].ID != "a" {
		t.Errorf("expected server order [b a], got %+v", posts)
	}
	if l.CanCreate() {
		t.Error("expected CanCreate false without a token")
	}
	_ = tokens.Set("tok")
	if !l.CanCreate() {
		t.Error("expected CanCreate true with a token")
	}
}

func TestListControllerPropagatesFailure(t *testing.T) {
	backend := apitest.NewBackend()
	defer backend.Close()
	backend.Fail["GET /posts"] = http.StatusServiceUnavailable

	_, err := NewListController(api.NewClient(backend.URL()), NewMemoryTokenStore("")).LoadAll(context.Background())
	if api.StatusOf(err) != http.StatusServiceUnavailable {
		t.Errorf("expected wrapped 503, got %v", err)
	}
}

func TestSessionLogin(t *testing.T) {
	backend := apitest.NewBackend()
	defer backend.Close()
	backend.AddUser("u1", "a@example.com", "secret", "fresh-token")

	tokens := NewMemoryTokenStore("old-token")
	u := &ui{}
	s := NewSession(api.NewClient(backend.URL()), tokens, u)

	if err := s.Login(context.Background(), "a@example.com", "secret"); err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if cred, _ := tokens.Get(); cred != "fresh-token" {
		t.Errorf("expected fresh-token, got %q", cred)
	}
	if u.lastPath() != "/" {
		t.Errorf("expected navigation to /, got %v", u.paths)
	}
}

func TestSessionLoginInvalid(t *testing.T) {
	backend := apitest.NewBackend()
	defer backend.Close()
	backend.AddUser("u1", "a@example.com", "secret", "tok")

	tokens := NewMemoryTokenStore("old-token")
	u := &ui{}
	s := NewSession(api.NewClient(backend.URL()), tokens, u)

	err := s.Login(context.Background(), "a@example.com", "nope")
	if !errors.Is(err, api.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if cred, _ := tokens.Get(); cred != "old-token" {
		t.Errorf("failed login must not touch the token, got %q", cred)
	}
	if len(u.paths) != 0 {
		t.Errorf("failed login must not navigate, got %v", u.paths)
	}
}

func TestSessionLogout(t *testing.T) {
	tokens := NewMemoryTokenStore("tok")
	s := NewSession(&fakeGateway{}, tokens, &ui{})
	if !s.LoggedIn() {
		t.Fatal("expected logged in")
	}
	if err := s.Logout(); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if s.LoggedIn() {
		t.Error("expected logged out")
	}
}
