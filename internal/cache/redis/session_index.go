// Package redis caches the session token index in Redis.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/model"
)

const sessionIndexPrefix = "fgs:tok:"

var _ model.SessionStore = (*SessionStore)(nil)

// SessionStore puts a token -> session id index in front of another store.
// Index entries expire with the token they describe.
type SessionStore struct {
	next   model.SessionStore
	redis  *redis.Client
	logger *logger.Logger
	now    func() time.Time
}

func NewSessionStore(next model.SessionStore, client *redis.Client, logger *logger.Logger) *SessionStore {
	return &SessionStore{
		next:   next,
		redis:  client,
		logger: logger,
		now:    time.Now,
	}
}

func (s *SessionStore) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return sessionIndexPrefix + hex.EncodeToString(sum[:])
}

func (s *SessionStore) Create(ctx context.Context, session model.Session) (model.Session, error) {
	created, err := s.next.Create(ctx, session)
	if err != nil {
		return model.Session{}, err
	}
	s.remember(ctx, created)
	return created, nil
}

func (s *SessionStore) GetByID(ctx context.Context, id uuid.UUID) (model.Session, error) {
	return s.next.GetByID(ctx, id)
}

func (s *SessionStore) UpdateData(ctx context.Context, id uuid.UUID, data model.SessionData) error {
	return s.next.UpdateData(ctx, id, data)
}

// GetByToken resolves token through the index, falling back to the wrapped store.
func (s *SessionStore) GetByToken(ctx context.Context, token string) (model.Session, error) {
	key := s.key(token)

	raw, err := s.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		if id, parseErr := uuid.Parse(raw); parseErr == nil {
			session, getErr := s.next.GetByID(ctx, id)
			if getErr == nil && session.Token != nil && *session.Token == token {
				return session, nil
			}
			if getErr != nil && !errors.Is(getErr, model.ErrNotFound) {
				return model.Session{}, getErr
			}
		}
		s.forget(ctx, key)
	case errors.Is(err, redis.Nil):
	default:
		s.logger.Warn("Session cache: index lookup failed",
			"error", err.Error())
	}

	session, err := s.next.GetByToken(ctx, token)
	if err != nil {
		return model.Session{}, err
	}
	s.remember(ctx, session)
	return session, nil
}

func (s *SessionStore) remember(ctx context.Context, session model.Session) {
	if session.Token == nil || session.Expiry == nil {
		return
	}
	ttl := session.Expiry.Sub(s.now())
	if ttl <= 0 {
		return
	}
	if err := s.redis.Set(ctx, s.key(*session.Token), session.ID.String(), ttl).Err(); err != nil {
		s.logger.Warn("Session cache: failed to index session",
			"session_id", session.ID.String(),
			"error", err.Error())
	}
}

func (s *SessionStore) forget(ctx context.Context, key string) {
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("Session cache: failed to drop stale index entry",
			"error", err.Error())
	}
}

// Ping checks that Redis is reachable.
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}
