// ABOUTME: Ownership verifier gating edit and delete affordances.
// ABOUTME: Advisory only; the server re-checks every mutating call.
package blog

import (
	"context"

	"go.uber.org/zap"

	"github.com/2389-research/quill/internal/models"
)

// Ownership is the verifier's decision for one post and one credential.
// It only drives what the UI offers. Gateway calls never accept it; they carry
// their own credential and the server decides.
type Ownership struct {
	postID  string
	cred    models.Credential
	allowed bool
	checked bool
}

// PostID returns the post the decision was made for.
func (o Ownership) PostID() string {
	return o.postID
}

// Allowed returns true if the server confirmed ownership.
func (o Ownership) Allowed() bool {
	return o.allowed
}

// Checked returns true once a decision exists. The zero Ownership is pending.
func (o Ownership) Checked() bool {
	return o.checked
}

// Verifier decides whether the current identity may edit or delete a post.
type Verifier struct {
	checker OwnershipChecker
	tokens  TokenStore
	logger  *zap.Logger
}

// NewVerifier creates a verifier over the backend check and the token store.
func NewVerifier(checker OwnershipChecker, tokens TokenStore, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{checker: checker, tokens: tokens, logger: logger}
}

// Check verifies ownership of postID with the currently stored credential.
func (v *Verifier) Check(ctx context.Context, postID string) Ownership {
	cred, _ := v.tokens.Get()
	return v.check(ctx, postID, cred)
}

// check verifies ownership for an explicit credential. Anonymous callers are
// denied without a network call.
func (v *Verifier) check(ctx context.Context, postID string, cred models.Credential) Ownership {
	o := Ownership{postID: postID, cred: cred, checked: true}
	if cred.IsZero() {
		return o
	}
	o.allowed = v.checker.VerifyOwnership(ctx, postID, cred)
	v.logger.Debug("ownership verified", zap.String("post_id", postID), zap.Bool("owner", o.allowed))
	return o
}
