// Package secrets stores the API token encrypted at rest with age.
//
// An X25519 identity is generated on first use and kept next to the config
// file (mode 0600); the token is encrypted to that identity's recipient.
package secrets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
)

const (
	identityFile = "identity.txt"
	tokenFile    = "token.age"
)

// ErrNoToken indicates no token has been stored yet.
var ErrNoToken = errors.New("secrets: no API token stored")

// Store reads and writes the encrypted token under dir.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// TokenPath returns where the encrypted token lives.
func (s *Store) TokenPath() string {
	return filepath.Join(s.dir, tokenFile)
}

// SaveToken encrypts token and writes it, creating the identity if needed.
func (s *Store) SaveToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("secrets: empty token")
	}

	id, err := s.identity(true)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, id.Recipient())
	if err != nil {
		return fmt.Errorf("secrets: encrypting token: %w", err)
	}
	if _, err := io.WriteString(w, token); err != nil {
		return fmt.Errorf("secrets: encrypting token: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("secrets: encrypting token: %w", err)
	}

	if err := os.WriteFile(s.TokenPath(), buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("secrets: writing token: %w", err)
	}
	return nil
}

// LoadToken decrypts the stored token.
func (s *Store) LoadToken() (string, error) {
	data, err := os.ReadFile(s.TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("secrets: reading token: %w", err)
	}

	id, err := s.identity(false)
	if err != nil {
		return "", err
	}

	r, err := age.Decrypt(bytes.NewReader(data), id)
	if err != nil {
		return "", fmt.Errorf("secrets: decrypting token: %w", err)
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("secrets: decrypting token: %w", err)
	}
	return strings.TrimSpace(string(plain)), nil
}

// DeleteToken removes the stored token. A missing token is not an error.
func (s *Store) DeleteToken() error {
	if err := os.Remove(s.TokenPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("secrets: removing token: %w", err)
	}
	return nil
}

// HasToken reports whether an encrypted token exists.
func (s *Store) HasToken() bool {
	_, err := os.Stat(s.TokenPath())
	return err == nil
}

func (s *Store) identity(create bool) (*age.X25519Identity, error) {
	path := filepath.Join(s.dir, identityFile)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		id, err := age.ParseX25519Identity(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, fmt.Errorf("secrets: parsing identity: %w", err)
		}
		return id, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("secrets: reading identity: %w", err)
	case !create:
		return nil, ErrNoToken
	}

	id, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("secrets: generating identity: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("secrets: creating dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id.String()+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("secrets: writing identity: %w", err)
	}
	return id, nil
}

// Resolve returns the token from env if set, else from the store.
func Resolve(envToken string, s *Store) (string, error) {
	if t := strings.TrimSpace(envToken); t != "" {
		return t, nil
	}
	return s.LoadToken()
}

// Mask hides all but the edges of a token for display.
func Mask(token string) string {
	if len(token) > 16 {
		return token[:6] + "..." + token[len(token)-4:]
	}
	if len(token) > 4 {
		return token[:4] + "..."
	}
	return "****"
}
