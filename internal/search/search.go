// ABOUTME: Client-side ranking of loaded posts against a query.
// ABOUTME: Uses vector embeddings when available, substring matching otherwise.
package search

import (
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/2389-research/quill/internal/models"
)

// Embedder generates vector embeddings from text.
type Embedder interface {
	// Embed returns a vector embedding for the given text.
	Embed(text string) ([]float32, error)

	// Dimension returns the dimensionality of the output vectors.
	Dimension() int
}

// Result pairs a post with its relevance score.
type Result struct {
	Post  models.Post
	Score float64
}

// Options configures a search.
type Options struct {
	Limit int
}

// HashEmbedder maps text to a normalized bag-of-words vector using feature hashing.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates an embedder with dim buckets. dim <= 0 uses 512.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = 512
	}
	return &HashEmbedder{dim: dim}
}

// Embed implements Embedder.
func (e *HashEmbedder) Embed(text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[h.Sum32()%uint32(e.dim)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec, nil
}

// Dimension implements Embedder.
func (e *HashEmbedder) Dimension() int {
	return e.dim
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// CosineSimilarity computes the cosine similarity between two vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Posts ranks posts against query, best first. Posts with a zero score are
// dropped and ties keep server order. A nil embedder falls back to
// case-insensitive substring matching. An empty query returns posts unranked.
func Posts(embedder Embedder, posts []models.Post, query string, opts Options) ([]Result, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	var results []Result
	switch {
	case strings.TrimSpace(query) == "":
		for _, p := range posts {
			results = append(results, Result{Post: p})
		}
	case embedder == nil:
		results = substringMatches(posts, query)
	default:
		queryVec, err := embedder.Embed(query)
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			vec, err := embedder.Embed(p.Title + "\n\n" + p.Content)
			if err != nil {
				return nil, err
			}
			if score := CosineSimilarity(queryVec, vec); score > 0 {
				results = append(results, Result{Post: p, Score: score})
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > len(results) {
		limit = len(results)
	}
	return results[:limit], nil
}

// substringMatches scores a title hit above a content hit.
func substringMatches(posts []models.Post, query string) []Result {
	q := strings.ToLower(query)
	var results []Result
	for _, p := range posts {
		var score float64
		if strings.Contains(strings.ToLower(p.Title), q) {
			score += 2
		}
		if strings.Contains(strings.ToLower(p.Content), q) {
			score++
		}
		if score > 0 {
			results = append(results, Result{Post: p, Score: score})
		}
	}
	return results
}
