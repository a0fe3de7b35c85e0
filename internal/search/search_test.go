// ABOUTME: Tests for post ranking, cosine similarity, and the hashing embedder.
// ABOUTME: Uses a simple test embedder for deterministic vector testing.
package search

import (
	"errors"
	"math"
	"testing"

	"github.com/2389-research/quill/internal/models"
)

// testEmbedder returns canned vectors keyed by text.
type testEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (e *testEmbedder) Embed(text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 0}, nil
}

func (e *testEmbedder) Dimension() int {
	return 3
}

func samplePosts() []models.Post {
	return []models.Post{
		{ID: "1", Title: "Cooking pasta", Content: "Boil water first."},
		{ID: "2", Title: "Go channels", Content: "Channels connect goroutines."},
		{ID: "3", Title: "Gardening", Content: "Notes on channels for irrigation."},
	}
}

func TestCosineSimilarityIdentical(t *testing.T) {
	a := []float32{1, 2, 3}
	if got := CosineSimilarity(a, a); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("expected 1.0, got %f", got)
	}
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 0}, []float32{0, 1}); math.Abs(got) > 1e-6 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestCosineSimilarityDifferentLengths(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}); got != 0 {
		t.Errorf("expected 0 for different lengths, got %f", got)
	}
}

func TestCosineSimilarityEmpty(t *testing.T) {
	if got := CosineSimilarity(nil, nil); got != 0 {
		t.Errorf("expected 0 for empty, got %f", got)
	}
}

func TestHashEmbedderDeterministicAndNormalized(t *testing.T) {
	e := NewHashEmbedder(64)
	if e.Dimension() != 64 {
		t.Errorf("expected dimension 64, got %d", e.Dimension())
	}

	a, _ := e.Embed("Hello, World")
	b, _ := e.Embed("hello world")
	if got := CosineSimilarity(a, b); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("expected case and punctuation to be ignored, got %f", got)
	}

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("expected unit vector, got norm %f", norm)
	}

	empty, _ := e.Embed("   ")
	for _, v := range empty {
		if v != 0 {
			t.Fatal("expected zero vector for empty text")
		}
	}
}

func TestPostsWithEmbedder(t *testing.T) {
	e := &testEmbedder{vectors: map[string][]float32{
		"query":                                          {1, 0, 0},
		"Cooking pasta\n\nBoil water first.":             {0, 1, 0},
		"Go channels\n\nChannels connect goroutines.":    {1, 0, 0},
		"Gardening\n\nNotes on channels for irrigation.": {1, 1, 0},
	}}

	results, err := Posts(e, samplePosts(), "query", Options{})
	if err != nil {
		t.Fatalf("Posts error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Post.ID != "2" || results[1].Post.ID != "3" {
		t.Errorf("unexpected order: %s, %s", results[0].Post.ID, results[1].Post.ID)
	}
}

func TestPostsEmbedderError(t *testing.T) {
	e := &testEmbedder{err: errors.New("boom")}
	if _, err := Posts(e, samplePosts(), "anything", Options{}); err == nil {
		t.Error("expected embedder error")
	}
}

func TestPostsHashEmbedderPrefersMatchingPost(t *testing.T) {
	results, err := Posts(NewHashEmbedder(0), samplePosts(), "go channels goroutines", Options{})
	if err != nil {
		t.Fatalf("Posts error: %v", err)
	}
	if len(results) == 0 || results[0].Post.ID != "2" {
		t.Errorf("expected post 2 first, got %+v", results)
	}
}

func TestPostsSubstringFallback(t *testing.T) {
	results, err := Posts(nil, samplePosts(), "CHANNELS", Options{})
	if err != nil {
		t.Fatalf("Posts error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(results))
	}
	// Title hit outranks a content-only hit.
	if results[0].Post.ID != "2" || results[1].Post.ID != "3" {
		t.Errorf("unexpected order: %s, %s", results[0].Post.ID, results[1].Post.ID)
	}
}

func TestPostsEmptyQueryKeepsOrderAndLimit(t *testing.T) {
	results, err := Posts(nil, samplePosts(), "", Options{Limit: 2})
	if err != nil {
		t.Fatalf("Posts error: %v", err)
	}
	if len(results) != 2 || results[0].Post.ID != "1" || results[1].Post.ID != "2" {
		t.Errorf("expected first two posts in order, got %+v", results)
	}
}
