package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"
)

// ErrNoToken is returned when no ownership token is held for a review.
var ErrNoToken = errors.New("no ownership token stored for this review")

// TokenStore keeps the ownership tokens this client received. It is the
// only thing that lets a client edit or delete its own reviews later.
type TokenStore interface {
	Save(id int64, token string) error
	Lookup(id int64) (string, error)
	Forget(id int64) error
}

// MemoryTokenStore holds up to size tokens for the life of the process,
// evicting the least recently used.
type MemoryTokenStore struct {
	cache *lru.Cache[int64, string]
}

func NewMemoryTokenStore(size int) (*MemoryTokenStore, error) {
	cache, err := lru.New[int64, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating token cache: %w", err)
	}
	return &MemoryTokenStore{cache: cache}, nil
}

func (s *MemoryTokenStore) Save(id int64, token string) error {
	s.cache.Add(id, token)
	return nil
}

func (s *MemoryTokenStore) Lookup(id int64) (string, error) {
	token, ok := s.cache.Get(id)
	if !ok {
		return "", ErrNoToken
	}
	return token, nil
}

func (s *MemoryTokenStore) Forget(id int64) error {
	s.cache.Remove(id)
	return nil
}

// FileTokenStore persists tokens as a YAML map of review id to token.
// The file is created with owner-only permissions.
type FileTokenStore struct {
	path string
	mu   sync.Mutex
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultTokenPath returns ~/.config/reviewctl/tokens.yaml.
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "reviewctl", "tokens.yaml"), nil
}

func (s *FileTokenStore) Save(id int64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.load()
	if err != nil {
		return err
	}
	tokens[id] = token
	return s.write(tokens)
}

func (s *FileTokenStore) Lookup(id int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.load()
	if err != nil {
		return "", err
	}
	token, ok := tokens[id]
	if !ok {
		return "", ErrNoToken
	}
	return token, nil
}

func (s *FileTokenStore) Forget(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := tokens[id]; !ok {
		return nil
	}
	delete(tokens, id)
	return s.write(tokens)
}

func (s *FileTokenStore) load() (map[int64]string, error) {
	tokens := make(map[int64]string)

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return tokens, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	if err := yaml.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}
	if tokens == nil {
		tokens = make(map[int64]string)
	}
	return tokens, nil
}

// write replaces the file via rename so a crash never leaves it truncated.
func (s *FileTokenStore) write(tokens map[int64]string) error {
	data, err := yaml.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("encoding token file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tokens-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("securing token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing token file: %w", err)
	}
	return nil
}
