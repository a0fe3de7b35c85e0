// ABOUTME: Core data models for blog posts, drafts, and credentials.
// ABOUTME: Mirrors the backend JSON shapes and provides the draft constructor.
package models

import (
	"strings"
	"time"
)

// NewPostID is the route sentinel for the editor of a post that does not exist yet.
const NewPostID = "new"

// Post is a blog post as served by the backend.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"` // Markdown
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewDraft returns an empty, never persisted post.
func NewDraft() *Post {
	now := time.Now()
	return &Post{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsDraft returns true if the post has not been persisted yet.
func (p *Post) IsDraft() bool {
	return p.ID == ""
}

// Draft returns the editable payload of the post.
func (p *Post) Draft() Draft {
	return Draft{Title: p.Title, Content: p.Content}
}

// Draft is the body sent on create and update.
type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// IsEmpty returns true if both title and content are blank.
func (d Draft) IsEmpty() bool {
	return strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Content) == ""
}

// Credential is an opaque bearer token. The zero value means anonymous.
type Credential string

// IsZero returns true for the anonymous credential.
func (c Credential) IsZero() bool {
	return c == ""
}
