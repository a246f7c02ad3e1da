package tracker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// Preferences is what survives between sessions: the last selected user.
type Preferences struct {
	UserID   string `toml:"user_id"`
	UserName string `toml:"user_name"`
}

type PreferencesStore interface {
	Load() (Preferences, error)
	Save(prefs Preferences) error
}

// FilePreferencesStore keeps preferences in a TOML file. A missing file reads
// as empty preferences.
type FilePreferencesStore struct {
	path string
}

func NewFilePreferencesStore(path string) *FilePreferencesStore {
	return &FilePreferencesStore{
		path: path,
	}
}

func (s *FilePreferencesStore) Path() string {
	return s.path
}

func (s *FilePreferencesStore) Load() (Preferences, error) {
	var prefs Preferences
	if _, err := toml.DecodeFile(s.path, &prefs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Preferences{}, nil
		}
		return Preferences{}, fmt.Errorf("decode preferences %s: %w", s.path, err)
	}
	return prefs, nil
}

// Save writes to a temp file next to the target and renames it into place, so
// a failed write never leaves a truncated preferences file behind.
func (s *FilePreferencesStore) Save(prefs Preferences) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp preferences file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err := toml.NewEncoder(f).Encode(prefs); err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync preferences: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close preferences file: %w", err)
	}
	if err := os.Rename(f.Name(), s.path); err != nil {
		return fmt.Errorf("replace preferences file: %w", err)
	}
	return nil
}

type MemoryPreferencesStore struct {
	mu    sync.Mutex
	prefs Preferences
	saves int
}

func NewMemoryPreferencesStore(prefs Preferences) *MemoryPreferencesStore {
	return &MemoryPreferencesStore{
		prefs: prefs,
	}
}

func (s *MemoryPreferencesStore) Load() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs, nil
}

func (s *MemoryPreferencesStore) Save(prefs Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = prefs
	s.saves++
	return nil
}

// Saves returns how many times preferences were saved.
func (s *MemoryPreferencesStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
