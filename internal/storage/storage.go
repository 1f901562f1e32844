package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const sessionFile = "session.json"

// SessionData represents the structure of the session data stored in the file
type SessionData struct {
	PublicKey string `json:"publicKey"`
	UpdatedAt int64  `json:"updated_at"`
}

// Store keeps the connected account between runs, the way a page keeps a
// value in local storage.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// GetAppDataDir returns the default application data directory
func GetAppDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".solmint"), nil
}

// Path returns the session file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, sessionFile)
}

// SaveAccount caches the account identifier.
func (s *Store) SaveAccount(publicKey string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create app data directory: %w", err)
	}

	data := SessionData{
		PublicKey: publicKey,
		UpdatedAt: time.Now().Unix(),
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	if err := os.Rename(tmp, s.Path()); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	return nil
}

// LoadAccount returns the cached account, or "" when nothing is cached.
func (s *Store) LoadAccount() (string, error) {
	fileData, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read session file: %w", err)
	}

	var data SessionData
	if err := json.Unmarshal(fileData, &data); err != nil {
		return "", fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	return data.PublicKey, nil
}

// ClearAccount removes the cached account. Clearing an empty store is a no-op.
func (s *Store) ClearAccount() error {
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
