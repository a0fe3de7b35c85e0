// ABOUTME: File-backed token store persisting the bearer credential in YAML.
// ABOUTME: One well-known key, written atomically with owner-only permissions.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/2389-research/quill/internal/models"
)

// CredentialFile stores the current credential under the "token" key of a YAML file.
// The file is re-read on every Get so a login from another process is picked up.
type CredentialFile struct {
	mu   sync.Mutex
	path string
}

// credentialDoc is the YAML structure of the credential file.
type credentialDoc struct {
	Token string `yaml:"token"`
}

// NewCredentialFile creates a store backed by path. The file need not exist.
func NewCredentialFile(path string) *CredentialFile {
	return &CredentialFile{path: path}
}

// Path returns the backing file path.
func (f *CredentialFile) Path() string {
	return f.path
}

// Get returns the stored credential. A missing or unreadable file means anonymous.
func (f *CredentialFile) Get() (models.Credential, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var doc credentialDoc
	if err := readYAML(f.path, &doc); err != nil {
		return "", false
	}
	cred := models.Credential(doc.Token)
	return cred, !cred.IsZero()
}

// Set persists cred. The zero credential clears the file.
func (f *CredentialFile) Set(cred models.Credential) error {
	if cred.IsZero() {
		return f.Clear()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := yaml.Marshal(&credentialDoc{Token: string(cred)})
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}
	return atomicWrite(f.path, data, 0600)
}

// Clear removes the credential file.
func (f *CredentialFile) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credential: %w", err)
	}
	return nil
}

// readYAML decodes the file at path into v.
func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}

// atomicWrite writes data to a temp file in the target directory and renames it into place.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	return os.Rename(tmpName, path)
}
