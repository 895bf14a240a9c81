package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"bookhub/internal/platform/logging"

	"gopkg.in/yaml.v3"
)

// Store is a small YAML key/value file standing in for browser local storage.
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]string
	loaded bool
	now    func() time.Time
}

func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// NewMemoryStore keeps values in memory only.
func NewMemoryStore() *Store {
	return &Store{values: map[string]string{}, loaded: true, now: time.Now}
}

func (s *Store) load() error {
	if s.loaded {
		return nil
	}
	s.values = map[string]string{}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("read token store: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return fmt.Errorf("parse token store %s: %w", s.path, err)
	}
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.loaded = true
	return nil
}

func (s *Store) flush() error {
	if s.path == "" {
		return nil
	}
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write token store: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		logging.Warn().Err(err).Msg("token store unreadable")
		return ""
	}
	return s.values[key]
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	s.values[key] = value
	return s.flush()
}

func (s *Store) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	for _, k := range keys {
		delete(s.values, k)
	}
	return s.flush()
}

// Token returns the stored bearer token, or "" when absent or past its exp claim.
func (s *Store) Token() string {
	if s == nil {
		return ""
	}
	tok := s.Get(KeyToken)
	if tok != "" && Expired(tok, s.now()) {
		logging.Debug().Msg("stored token expired")
		return ""
	}
	return tok
}

// Clear forgets the token and username.
func (s *Store) Clear() {
	if err := s.Delete(KeyToken, KeyUsername); err != nil {
		logging.Warn().Err(err).Msg("clear token store")
	}
}
