// ABOUTME: Tests for Markdown rendering.
// ABOUTME: Uses the notty style so output is free of escape codes.
package render

import (
	"strings"
	"testing"

	"github.com/2389-research/quill/internal/models"
)

func TestMarkdownPlainStyle(t *testing.T) {
	r, err := New("notty", 80)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	out, err := r.Markdown("Some **bold** text")
	if err != nil {
		t.Fatalf("Markdown error: %v", err)
	}
	if !strings.Contains(out, "bold") {
		t.Errorf("expected rendered text, got %q", out)
	}
}

func TestPostIncludesTitleAndContent(t *testing.T) {
	r, err := New("notty", 80)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	out, err := r.Post(&models.Post{ID: "42", Title: "Hello", Content: "World"})
	if err != nil {
		t.Fatalf("Post error: %v", err)
	}
	if !strings.Contains(out, "Hello") || !strings.Contains(out, "World") {
		t.Errorf("expected title and content, got %q", out)
	}
}

func TestNewUnknownStyleFails(t *testing.T) {
	if _, err := New("/nonexistent/style.json", 80); err == nil {
		t.Error("expected error for missing style file")
	}
}
