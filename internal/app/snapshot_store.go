package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Snapshot is the on-disk and on-the-wire form of the whole session state.
type Snapshot struct {
	Chats          []Session `json:"chats"`
	SelectedChatID string    `json:"selectedChatId,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SnapshotStore keeps one JSON snapshot per signed-in identity under the
// data root, plus a single unscoped theme-preference file.
//
// Layout:
//
//	<root>/snapshot/<identity hash>.json
//	<root>/theme
type SnapshotStore struct {
	Root string
	mu   sync.Mutex
}

// DefaultDataRoot prefers XDG data dirs, then the home directory, then tmp.
func DefaultDataRoot() string {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "anushandhan")
	}
	if base, err := os.UserHomeDir(); err == nil && base != "" {
		return filepath.Join(base, ".local", "share", "anushandhan")
	}
	return filepath.Join(os.TempDir(), "anushandhan")
}

func NewSnapshotStore(root string) *SnapshotStore {
	if strings.TrimSpace(root) == "" {
		root = DefaultDataRoot()
	}
	return &SnapshotStore{Root: root}
}

// identityKey hashes the user id so the filename carries no identity. The
// signed-out state gets its own stable key.
func identityKey(userID string) string {
	if userID == "" {
		userID = "anonymous"
	}
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])[:16]
}

func (s *SnapshotStore) snapshotPath(userID string) string {
	return filepath.Join(s.Root, "snapshot", identityKey(userID)+".json")
}

// Save writes the snapshot for the given identity.
func (s *SnapshotStore) Save(userID string, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.snapshotPath(userID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &PersistenceError{Target: "local", Err: err}
	}
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return &PersistenceError{Target: "local", Err: err}
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return &PersistenceError{Target: "local", Err: err}
	}
	return nil
}

// Load reads the snapshot for the given identity. The second return is false
// when no snapshot exists yet.
func (s *SnapshotStore) Load(userID string) (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.snapshotPath(userID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, &PersistenceError{Target: "local", Err: err}
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, &PersistenceError{Target: "local", Err: err}
	}
	return snap, true, nil
}

// SaveTheme persists the display-theme preference, shared across identities.
func (s *SnapshotStore) SaveTheme(theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return &PersistenceError{Target: "local", Err: err}
	}
	if err := os.WriteFile(filepath.Join(s.Root, "theme"), []byte(theme), 0o644); err != nil {
		return &PersistenceError{Target: "local", Err: err}
	}
	return nil
}

// LoadTheme returns the stored theme preference, or "" when unset.
func (s *SnapshotStore) LoadTheme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(filepath.Join(s.Root, "theme"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
