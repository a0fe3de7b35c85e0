// ABOUTME: List controller for the landing view.
// ABOUTME: Loads posts in server order; token presence drives the "New" affordance.
package blog

import (
	"context"
	"fmt"

	"github.com/2389-research/quill/internal/models"
)

// ListController loads the post collection.
type ListController struct {
	posts  PostLister
	tokens TokenStore
}

// NewListController creates a list controller.
func NewListController(posts PostLister, tokens TokenStore) *ListController {
	return &ListController{posts: posts, tokens: tokens}
}

// LoadAll returns the posts in the order the server sent them.
func (l *ListController) LoadAll(ctx context.Context) ([]models.Post, error) {
	posts, err := l.posts.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}
	return posts, nil
}

// CanCreate returns true when a credential is stored. Presentation only.
func (l *ListController) CanCreate() bool {
	_, ok := l.tokens.Get()
	return ok
}
