package credential

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/davidbz/sgrep/internal/domain"
)

const (
	dirName  = "sgrep"
	fileName = "credentials.yaml"
	dirPerm  = 0o700
	filePerm = 0o600
)

type storeFile struct {
	Providers map[string]string `yaml:"providers"`
}

// FileStore persists tokens in a YAML file readable only by the owner.
type FileStore struct {
	mu      sync.Mutex
	path    string
	resolve func() (string, error)
}

// NewFileStore creates a store backed by path. Nothing is read until Lookup.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// NewDefaultFileStore creates a store at DefaultPath. The path is resolved on
// first use, so runs that never need a token do not depend on it.
func NewDefaultFileStore() *FileStore {
	return &FileStore{resolve: DefaultPath}
}

// DefaultPath returns %APPDATA%\sgrep\credentials.yaml on Windows and
// $HOME/.sgrep/credentials.yaml elsewhere.
func DefaultPath() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", errors.New("APPDATA is not set")
		}
		return filepath.Join(appData, dirName, fileName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, "."+dirName, fileName), nil
}

// Path returns the file backing the store, or "" if it has not been resolved.
func (s *FileStore) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.path
}

// location must be called with s.mu held.
func (s *FileStore) location() (string, error) {
	if s.path != "" {
		return s.path, nil
	}
	if s.resolve == nil {
		return "", errors.New("credentials file path is empty")
	}

	path, err := s.resolve()
	if err != nil {
		return "", fmt.Errorf("failed to locate credentials file: %w", err)
	}
	s.path = path
	return path, nil
}

// Lookup returns the stored token for provider. A missing file means no
// token; an unreadable or malformed file is an error.
func (s *FileStore) Lookup(_ context.Context, provider string) (domain.Token, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return "", false, err
	}

	token := file.Providers[provider]
	if token == "" {
		return "", false, nil
	}
	return domain.Token(token), true, nil
}

// Save stores token for provider, keeping tokens of other providers.
func (s *FileStore) Save(_ context.Context, provider string, token domain.Token) error {
	if provider == "" {
		return errors.New("provider cannot be empty")
	}
	if token == "" {
		return errors.New("token cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return err
	}
	if file.Providers == nil {
		file.Providers = make(map[string]string)
	}
	file.Providers[provider] = string(token)

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	path, err := s.location()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(tmp, filePerm); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to restrict credentials file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	return nil
}

func (s *FileStore) read() (*storeFile, error) {
	path, err := s.location()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &storeFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}

	var file storeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
	}
	return &file, nil
}
