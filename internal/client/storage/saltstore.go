// Package storage persists the per-user salts the CLI needs to re-derive
// its private key at login.
package storage

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/zkauth/internal/common"
)

// SaltStore keeps KDF salts between sessions. Salts are not secret, but
// without the right one the passphrase derives a different key.
type SaltStore interface {
	Save(username string, salt []byte) error
	Load(username string) ([]byte, error)
}

// FileSaltStore stores salts in a single JSON file, username → hex salt.
type FileSaltStore struct {
	mu   sync.Mutex
	path string
}

func NewFileSaltStore(path string) *FileSaltStore {
	return &FileSaltStore{path: path}
}

// DefaultPath places the salt file under the user's home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".zkauth", "salts.json"), nil
}

func (s *FileSaltStore) Save(username string, salt []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	salts, err := s.read()
	if err != nil {
		return err
	}
	salts[username] = hex.EncodeToString(salt)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating salt store directory: %w", err)
	}
	data, err := json.MarshalIndent(salts, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding salt store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing salt store: %w", err)
	}
	return nil
}

func (s *FileSaltStore) Load(username string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	salts, err := s.read()
	if err != nil {
		return nil, err
	}
	enc, ok := salts[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	salt, err := hex.DecodeString(enc)
	if err != nil {
		return nil, fmt.Errorf("corrupt salt entry for %q: %w", username, err)
	}
	return salt, nil
}

func (s *FileSaltStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading salt store: %w", err)
	}
	salts := map[string]string{}
	if err := json.Unmarshal(data, &salts); err != nil {
		return nil, fmt.Errorf("decoding salt store: %w", err)
	}
	return salts, nil
}
