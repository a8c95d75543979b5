package memory

import (
	"context"
	"sync"
	"time"

	"ai-invoicing-be/pkg/conversation"

	"github.com/patrickmn/go-cache"
)

// SessionRepository is the single-process conversation store, used in dev and
// tests. Sessions expire after an hour of inactivity, which also abandons any
// half-filled draft.
type SessionRepository struct {
	cache *cache.Cache

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock is reference-counted so the map entry disappears once the last
// waiter releases, instead of growing with every session ever seen.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewSessionRepository() *SessionRepository {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
		locks: make(map[string]*sessionLock),
	}
}

func (r *SessionRepository) Get(_ context.Context, id string) (*conversation.Session, error) {
	if x, found := r.cache.Get(id); found {
		return x.(*conversation.Session), nil
	}
	return nil, nil
}

func (r *SessionRepository) Save(_ context.Context, session *conversation.Session) error {
	session.UpdatedAt = time.Now()
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}

// Acquire serializes turns of one session. Different sessions never wait on
// each other.
func (r *SessionRepository) Acquire(_ context.Context, id string) (func(), error) {
	r.mu.Lock()
	l, ok := r.locks[id]
	if !ok {
		l = &sessionLock{}
		r.locks[id] = l
	}
	l.refs++
	r.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, id)
		}
		r.mu.Unlock()
	}, nil
}
