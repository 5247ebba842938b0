package session

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Store is the single source of truth for the Session entity. Every mutation
// is written through the Repo before the call returns, so a crash immediately
// after a mutation loses nothing and a rehydrated process observes the last
// write. Reads return snapshots; callers never hold a live reference into the
// store's state.
type Store struct {
	mu      sync.RWMutex
	current Session
	repo    Repo
	logger  zerolog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for persistence failures.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore builds a Store backed by repo and rehydrates the last persisted
// session. A missing blob starts the store empty; any partial state the repo
// returns (token without identity, identity without tokens) is restored
// verbatim and tolerated by the rest of the system.
func NewStore(repo Repo, options ...StoreOption) (*Store, error) {
	if repo == nil {
		return nil, errors.New("[NewStore] repo is required")
	}

	store := &Store{
		repo:   repo,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(store)
	}

	persisted, err := repo.Load()
	if err != nil {
		if errors.Is(err, ErrNotPersisted) {
			return store, nil
		}
		return nil, errors.Wrap(err, "[NewStore] repo.Load")
	}
	if persisted != nil {
		store.current = persisted.clone()
		store.current.AccessToken = normalizeToken(store.current.AccessToken)
		store.current.RefreshToken = normalizeToken(store.current.RefreshToken)
	}
	return store, nil
}

// State returns a snapshot of the current session.
func (s *Store) State() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

// SetAuth atomically replaces the identity and both tokens. Token arguments
// are trimmed; a whitespace-only token is stored as absent rather than as an
// empty-but-present credential.
func (s *Store) SetAuth(identity *Identity, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Session{
		Identity:     identity.Clone(),
		AccessToken:  normalizeToken(accessToken),
		RefreshToken: normalizeToken(refreshToken),
	}
	return s.persistLocked("SetAuth")
}

// UpdateUser shallow-merges the set fields of partial into the current
// identity. Calling it with no identity present is a caller error but must
// not crash the session: it is a logged no-op. The role is immutable within
// a session, so a differing role in partial is ignored.
func (s *Store) UpdateUser(partial IdentityUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Identity == nil {
		s.logger.Debug().Msg("UpdateUser called with no identity set")
		return nil
	}

	partial.applyTo(s.current.Identity)
	return s.persistLocked("UpdateUser")
}

// ClearAuth resets the identity and both tokens to absent. The persisted blob
// is removed synchronously so a read from another execution context observes
// the cleared state.
func (s *Store) ClearAuth() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Session{}
	if err := s.repo.Clear(); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear persisted session")
		return errors.Wrap(err, "[Store.ClearAuth] repo.Clear")
	}
	return nil
}

func (s *Store) persistLocked(op string) error {
	snapshot := s.current.clone()
	if err := s.repo.Save(&snapshot); err != nil {
		s.logger.Error().Err(err).Str("operation", op).Msg("failed to persist session")
		return errors.Wrapf(err, "[Store.%s] repo.Save", op)
	}
	return nil
}

// IdentityUpdate holds the fields UpdateUser may merge into the current
// identity. Nil fields are left untouched; Role is deliberately not merge-
// able.
type IdentityUpdate struct {
	Email       *string
	IsActive    *bool
	ApplicantID *int64
	CenterID    *int64
	EmployeeID  *int64
}

func (u IdentityUpdate) applyTo(id *Identity) {
	if u.Email != nil {
		id.Email = *u.Email
	}
	if u.IsActive != nil {
		id.IsActive = *u.IsActive
	}
	if u.ApplicantID != nil {
		id.ApplicantID = clonePtr(u.ApplicantID)
	}
	if u.CenterID != nil {
		id.CenterID = clonePtr(u.CenterID)
	}
	if u.EmployeeID != nil {
		id.EmployeeID = clonePtr(u.EmployeeID)
	}
}
