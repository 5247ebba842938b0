package repofake

import (
	"sync"

	"github.com/dhriti-exe/MIS-Portal-CDAC/session"
)

var _ session.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory session.Repo for tests and for callers that
// want a throwaway, non-durable session.
type FakeSessionRepo struct {
	lock      sync.RWMutex
	persisted *session.Session

	SaveCalls  int
	ClearCalls int
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

func (r *FakeSessionRepo) Load() (*session.Session, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.persisted == nil {
		return nil, session.ErrNotPersisted
	}
	cp := *r.persisted
	return &cp, nil
}

func (r *FakeSessionRepo) Save(s *session.Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	cp := *s
	r.persisted = &cp
	r.SaveCalls++
	return nil
}

func (r *FakeSessionRepo) Clear() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.persisted = nil
	r.ClearCalls++
	return nil
}
