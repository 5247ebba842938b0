package session

import "github.com/pkg/errors"

var (
	// ErrNotPersisted is returned by Repo.Load when no session blob exists.
	ErrNotPersisted = errors.New("no persisted session")
)
