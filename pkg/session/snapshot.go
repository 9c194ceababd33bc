package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/tgoo/authadm/pkg/service"
)

// Snapshot is the durable subset of session state: what survives a process
// restart. Transient flags (loading) are never part of it.
type Snapshot struct {
	Token         string               `json:"token"`
	User          *service.UserProfile `json:"user"`
	Authenticated bool                 `json:"authenticated"`
}

// FileStorage persists session snapshots as a JSON file under a fixed
// path. It is the serialize/deserialize boundary between session state and
// durable storage, and doubles as the transport's token source.
type FileStorage struct {
	log  logrus.FieldLogger
	path string
}

// NewFileStorage creates a FileStorage writing to the given path.
func NewFileStorage(log logrus.FieldLogger, path string) *FileStorage {
	return &FileStorage{
		log:  log.WithField("component", "session-storage"),
		path: path,
	}
}

// Load reads the persisted snapshot. A missing, unreadable, or corrupt
// file is treated as no snapshot at all, never as a fatal error.
func (s *FileStorage) Load() *Snapshot {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.WithError(err).Debug("Ignoring corrupt session snapshot")

		return nil
	}

	return &snap
}

// Save writes the snapshot. The file is user-readable only; it holds a
// bearer token.
func (s *FileStorage) Save(snap *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session snapshot: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing session snapshot: %w", err)
	}

	return nil
}

// Token returns the persisted bearer token, or "" when none is stored.
// Consulted by the transport before every request.
func (s *FileStorage) Token() string {
	snap := s.Load()
	if snap == nil {
		return ""
	}

	return snap.Token
}

// Clear removes the persisted snapshot. Invoked by the transport on an
// unauthorized response.
func (s *FileStorage) Clear() {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.log.WithError(err).Warn("Failed to remove session snapshot")
	}
}
