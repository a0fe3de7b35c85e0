// ABOUTME: Session controller for logging in and out.
// ABOUTME: Replaces the stored token on login and navigates home.
package blog

import (
	"context"
	"fmt"
)

// Session manages the stored credential.
type Session struct {
	auth   Authenticator
	tokens TokenStore
	nav    Navigator
}

// NewSession creates a session controller.
func NewSession(auth Authenticator, tokens TokenStore, nav Navigator) *Session {
	return &Session{auth: auth, tokens: tokens, nav: nav}
}

// Login exchanges email and password for a token, stores it, and navigates to
// the list. Backend rejections are returned as api.ErrInvalidCredentials.
func (s *Session) Login(ctx context.Context, email, password string) error {
	cred, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := s.tokens.Clear(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	if err := s.tokens.Set(cred); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	s.nav.Navigate("/")
	return nil
}

// Logout forgets the stored token.
func (s *Session) Logout() error {
	return s.tokens.Clear()
}

// LoggedIn returns true when a token is stored.
func (s *Session) LoggedIn() bool {
	_, ok := s.tokens.Get()
	return ok
}
