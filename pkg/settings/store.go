package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	configDirName = "notetrans"
	fileName      = "settings.json"
)

// Store loads and saves the settings record.
type Store interface {
	// Load returns the persisted record merged over Defaults().
	// A store with nothing persisted yet yields Defaults() and no error.
	Load() (Settings, error)
	// Save persists the full record.
	Save(Settings) error
}

// FileStore persists settings to a single file. Files ending in .yaml or
// .yml are YAML, anything else is JSON.
type FileStore struct {
	Path string
}

// NewFileStore returns a FileStore at path, or at DefaultPath() when path is empty.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &FileStore{Path: path}, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/notetrans/settings.json,
// falling back to ~/.config/notetrans/settings.json.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, configDirName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", configDirName, fileName), nil
}

func (f *FileStore) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(f.Path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the settings file and merges it over Defaults().
// Keys absent from the file keep their default value.
func (f *FileStore) Load() (Settings, error) {
	s := Defaults()

	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("reading settings file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return s, nil
	}

	if f.isYAML() {
		err = yaml.Unmarshal(data, &s)
	} else {
		err = json.Unmarshal(data, &s)
	}
	if err != nil {
		return Defaults(), fmt.Errorf("parsing settings file %s: %w", f.Path, err)
	}
	return s, nil
}

// Save writes the record with 0600 permissions, creating the directory if needed.
func (f *FileStore) Save(s Settings) error {
	var (
		data []byte
		err  error
	)
	if f.isYAML() {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0600); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

// MemoryStore keeps the record in memory. Useful for embedding and tests.
type MemoryStore struct {
	mu    sync.Mutex
	saved *Settings
}

// Load returns the last saved record, or Defaults().
func (m *MemoryStore) Load() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return Defaults(), nil
	}
	return *m.saved, nil
}

// Save stores a copy of s.
func (m *MemoryStore) Save(s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = &s
	return nil
}
