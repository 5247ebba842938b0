// Package filerepo persists the session as a single JSON blob on disk, the
// durable stand-in for the browser's "auth-storage" localStorage entry.
package filerepo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/dhriti-exe/MIS-Portal-CDAC/session"
)

// schemaVersion tags the persisted blob so a future field rename cannot be
// silently misread as current data. There is no migration: a blob carrying a
// different version is treated as absent.
const schemaVersion = 1

const fileMode = 0o600

type blob struct {
	Version int `json:"version"`
	session.Session
}

var _ session.Repo = (*FileRepo)(nil)

// FileRepo stores the session blob at a fixed path, creating parent
// directories on the first write. Writes go through a temp file + rename so a
// crash mid-write leaves the previous blob intact.
type FileRepo struct {
	mu   sync.Mutex
	path string
}

// New creates a FileRepo rooted at path.
func New(path string) (*FileRepo, error) {
	if path == "" {
		return nil, errors.New("[filerepo.New] path is required")
	}
	return &FileRepo{path: path}, nil
}

// Load reads the persisted session. A missing file or a blob with an
// unexpected schema version yields session.ErrNotPersisted.
func (r *FileRepo) Load() (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, session.ErrNotPersisted
		}
		return nil, errors.Wrap(err, "[FileRepo.Load] read session file")
	}

	var b blob
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, errors.Wrap(err, "[FileRepo.Load] decode session file")
	}
	if b.Version != schemaVersion {
		return nil, session.ErrNotPersisted
	}
	s := b.Session
	return &s, nil
}

// Save replaces the persisted blob. The write is synchronous: when Save
// returns, a subsequent Load (from this or another process) observes the new
// state.
func (r *FileRepo) Save(s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return errors.Wrap(err, "[FileRepo.Save] create session directory")
	}

	data, err := json.MarshalIndent(blob{Version: schemaVersion, Session: *s}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileRepo.Save] encode session")
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, fileMode); err != nil {
		return errors.Wrap(err, "[FileRepo.Save] write session file")
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return errors.Wrap(err, "[FileRepo.Save] replace session file")
	}
	return nil
}

// Clear removes the persisted blob. Clearing an already-absent blob is not an
// error.
func (r *FileRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileRepo.Clear] remove session file")
	}
	return nil
}
