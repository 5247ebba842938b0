package session

// Repo persists the Session entity as a single blob. Save replaces the whole
// blob; Load returns ErrNotPersisted when nothing has been written yet.
// Implementations must make a Save observable by the next Load, including a
// Load from a different process.
type Repo interface {
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}
