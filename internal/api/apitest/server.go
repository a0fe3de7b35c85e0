// ABOUTME: In-memory fake of the blog backend for tests.
// ABOUTME: Serves the post, verify-owner, and login endpoints and records every request.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/2389-research/quill/internal/models"
)

// Request is a recorded call to the fake backend.
type Request struct {
	Method        string
	Path          string
	Authorization string
	Body          string
}

// Backend is a fake blog API. Tokens map to user ids.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	posts    []models.Post
	nextID   int
	tokens   map[string]string // token -> user id
	users    map[string]user   // email -> user
	requests []Request

	// Fail forces the given status for every request whose "METHOD path" matches the key.
	Fail map[string]int

	// Bodies answers 200 with the given raw JSON for every request whose "METHOD path" matches the key.
	Bodies map[string]string
}

type user struct {
	id       string
	password string
	token    string
}

// NewBackend starts a fake backend. Close it with Backend.Close.
func NewBackend() *Backend {
	b := &Backend{
		nextID: 1,
		tokens: make(map[string]string),
		users:  make(map[string]user),
		Fail:   make(map[string]int),
		Bodies: make(map[string]string),
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	return b
}

// URL returns the base URL of the fake.
func (b *Backend) URL() string {
	return b.Server.URL
}

// Close shuts the server down.
func (b *Backend) Close() {
	b.Server.Close()
}

// AddUser registers a user that can log in and owns posts created with token.
func (b *Backend) AddUser(userID, email, password, token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[email] = user{id: userID, password: password, token: token}
	b.tokens[token] = userID
}

// Seed stores a post with an explicit id and owner.
func (b *Backend) Seed(id, userID, title, content string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	b.posts = append(b.posts, models.Post{
		ID: id, UserID: userID, Title: title, Content: content,
		CreatedAt: now, UpdatedAt: now,
	})
}

// Posts returns a copy of the stored posts.
func (b *Backend) Posts() []models.Post {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Post, len(b.posts))
	copy(out, b.posts)
	return out
}

// Requests returns a copy of the recorded requests.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// RequestsTo returns the recorded requests matching method and path.
func (b *Backend) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.requests = append(b.requests, Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		Body:          string(body),
	})

	if status, ok := b.Fail[r.Method+" "+r.URL.Path]; ok {
		w.WriteHeader(status)
		return
	}
	if raw, ok := b.Bodies[r.Method+" "+r.URL.Path]; ok {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(raw))
		return
	}

	path := r.URL.Path
	switch {
	case path == "/users/login" && r.Method == http.MethodPost:
		b.login(w, body)
	case path == "/posts" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, b.posts)
	case path == "/posts" && r.Method == http.MethodPost:
		// Creation takes the bare token.
		b.create(w, r.Header.Get("Authorization"), body)
	case strings.HasPrefix(path, "/posts/verify-owner/") && r.Method == http.MethodGet:
		b.verifyOwner(w, r, strings.TrimPrefix(path, "/posts/verify-owner/"))
	case strings.HasPrefix(path, "/posts/"):
		id := strings.TrimPrefix(path, "/posts/")
		switch r.Method {
		case http.MethodGet:
			b.get(w, id)
		case http.MethodPut:
			b.update(w, r, id, body)
		case http.MethodDelete:
			b.remove(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *Backend) login(w http.ResponseWriter, body []byte) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(body, &creds); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	u, ok := b.users[creds.Email]
	if !ok || u.password != creds.Password {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(u.token))
}

func (b *Backend) create(w http.ResponseWriter, auth string, body []byte) {
	userID, ok := b.tokens[auth]
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	var draft models.Draft
	if err := json.Unmarshal(body, &draft); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	now := time.Now().UTC()
	post := models.Post{
		ID: strconv.Itoa(1000 + b.nextID), UserID: userID,
		Title: draft.Title, Content: draft.Content,
		CreatedAt: now, UpdatedAt: now,
	}
	b.nextID++
	b.posts = append(b.posts, post)
	writeJSON(w, http.StatusCreated, post)
}

func (b *Backend) get(w http.ResponseWriter, id string) {
	if i := b.index(id); i >= 0 {
		writeJSON(w, http.StatusOK, b.posts[i])
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (b *Backend) verifyOwner(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := b.bearer(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	i := b.index(id)
	if i < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isOwner": b.posts[i].UserID == userID})
}

func (b *Backend) update(w http.ResponseWriter, r *http.Request, id string, body []byte) {
	i, ok := b.owned(w, r, id)
	if !ok {
		return
	}
	var draft models.Draft
	if err := json.Unmarshal(body, &draft); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	b.posts[i].Title = draft.Title
	b.posts[i].Content = draft.Content
	b.posts[i].UpdatedAt = time.Now().UTC()
	writeJSON(w, http.StatusOK, b.posts[i])
}

func (b *Backend) remove(w http.ResponseWriter, r *http.Request, id string) {
	i, ok := b.owned(w, r, id)
	if !ok {
		return
	}
	b.posts = append(b.posts[:i], b.posts[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

// owned resolves the post index and checks the bearer owns it, writing the failure status.
func (b *Backend) owned(w http.ResponseWriter, r *http.Request, id string) (int, bool) {
	userID, ok := b.bearer(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return -1, false
	}
	i := b.index(id)
	if i < 0 {
		w.WriteHeader(http.StatusNotFound)
		return -1, false
	}
	if b.posts[i].UserID != userID {
		w.WriteHeader(http.StatusForbidden)
		return -1, false
	}
	return i, true
}

func (b *Backend) bearer(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	userID, ok := b.tokens[strings.TrimPrefix(auth, "Bearer ")]
	return userID, ok
}

func (b *Backend) index(id string) int {
	for i, p := range b.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
