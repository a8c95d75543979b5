package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ai-invoicing-be/pkg/conversation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionTTL = 1 * time.Hour

	// lockTTL bounds how long a crashed instance can hold a session hostage.
	lockTTL       = 30 * time.Second
	lockRetryWait = 50 * time.Millisecond
)

// releaseScript deletes the lock only when the caller still owns it, so an
// expired-and-reacquired lock is never released by the previous holder.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

// SessionRepository keeps conversation sessions in Redis so any process
// instance can pick up a turn mid-conversation.
type SessionRepository struct {
	rdb    *redis.Client
	prefix string
}

func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{
		rdb:    rdb,
		prefix: "session:",
	}
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*conversation.Session, error) {
	raw, err := r.rdb.Get(ctx, r.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var session conversation.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *conversation.Session) error {
	session.UpdatedAt = time.Now()
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.prefix+session.ID, raw, sessionTTL).Err()
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, r.prefix+id).Err()
}

// Acquire takes a distributed per-session lock so turns of one conversation
// stay serialized even when several instances share the store.
func (r *SessionRepository) Acquire(ctx context.Context, id string) (func(), error) {
	key := r.prefix + "lock:" + id
	token := uuid.NewString()

	for {
		ok, err := r.rdb.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryWait):
		}
	}

	return func() {
		// The caller's ctx may already be cancelled; the lock must go anyway.
		r.rdb.Eval(context.Background(), releaseScript, []string{key}, token)
	}, nil
}
