package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStore defines persistence operations for sessions.
type SessionStore interface {
	Create(ctx context.Context, session Session) (Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (Session, error)
	GetByToken(ctx context.Context, token string) (Session, error)
	UpdateData(ctx context.Context, id uuid.UUID, data SessionData) error
}

// Session binds an identity or an application to a token and per-backend credentials.
type Session struct {
	ID        uuid.UUID
	Email     *string
	Creator   *string
	Data      SessionData
	Token     *string
	Expiry    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Embedded reports whether the session was created by an application.
func (s Session) Embedded() bool {
	return s.Creator != nil && *s.Creator != ""
}

// Expired reports whether the session token expiry is before now.
func (s Session) Expired(now time.Time) bool {
	return s.Expiry != nil && now.After(*s.Expiry)
}

const serviceKey = "service"

// SessionData is the opaque document stored with a session.
// The "service" key maps backend names to credential records.
type SessionData map[string]any

// Services returns the backend records stored under the "service" key.
// The returned map must not be mutated.
func (d SessionData) Services() map[string]map[string]any {
	out := make(map[string]map[string]any)

	raw, ok := d[serviceKey].(map[string]any)
	if !ok {
		return out
	}
	for name, v := range raw {
		if record, ok := v.(map[string]any); ok {
			out[name] = record
		}
	}

	return out
}

// WithService returns a copy of d where service[name] is replaced by record.
// Other keys and other backend entries are carried over unchanged.
func (d SessionData) WithService(name string, record map[string]any) SessionData {
	next := make(SessionData, len(d)+1)
	for k, v := range d {
		next[k] = v
	}

	services := make(map[string]any)
	if raw, ok := d[serviceKey].(map[string]any); ok {
		for k, v := range raw {
			services[k] = v
		}
	}
	services[name] = record
	next[serviceKey] = services

	return next
}
