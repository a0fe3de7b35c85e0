// ABOUTME: Interfaces for everything the blog controllers depend on.
// ABOUTME: Gateway, token store, navigation, alerts, and interactive confirmation.
package blog

import (
	"context"
	"sync"

	"github.com/2389-research/quill/internal/models"
)

// PostLister loads the post collection.
type PostLister interface {
	FetchAll(ctx context.Context) ([]models.Post, error)
}

// OwnershipChecker asks the backend whether a credential owns a post.
type OwnershipChecker interface {
	VerifyOwnership(ctx context.Context, id string, cred models.Credential) bool
}

// Authenticator exchanges login details for a credential.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (models.Credential, error)
}

// Gateway is the full set of backend calls used by the post lifecycle.
// Every mutating call takes the credential explicitly.
type Gateway interface {
	PostLister
	OwnershipChecker
	Authenticator

	// FetchByID returns (nil, nil) when the server has no such post.
	FetchByID(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, draft models.Draft, cred models.Credential) error
	Update(ctx context.Context, id string, draft models.Draft, cred models.Credential) error
	Remove(ctx context.Context, id string, cred models.Credential) error
}

// TokenStore holds the current credential for this client.
type TokenStore interface {
	// Get returns the stored credential and whether one is present.
	Get() (models.Credential, bool)

	// Set replaces the stored credential. Setting the zero credential clears it.
	Set(cred models.Credential) error

	// Clear forgets the stored credential.
	Clear() error
}

// Navigator moves the client to another route path.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(path string) { f(path) }

// Notifier shows an alert-style message to the user.
type Notifier interface {
	Alert(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

// Alert implements Notifier.
func (f NotifierFunc) Alert(msg string) { f(msg) }

// Confirmer asks the user a yes/no question before a side effect.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// MemoryTokenStore keeps the credential in memory only.
type MemoryTokenStore struct {
	mu   sync.Mutex
	cred models.Credential
}

// NewMemoryTokenStore returns a store holding cred, which may be empty.
func NewMemoryTokenStore(cred models.Credential) *MemoryTokenStore {
	return &MemoryTokenStore{cred: cred}
}

// Get implements TokenStore.
func (m *MemoryTokenStore) Get() (models.Credential, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cred, !m.cred.IsZero()
}

// Set implements TokenStore.
func (m *MemoryTokenStore) Set(cred models.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = cred
	return nil
}

// Clear implements TokenStore.
func (m *MemoryTokenStore) Clear() error {
	return m.Set("")
}
