package context

import (
	"context"

	"github.com/dtroode/filegate-session/internal/model"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	applicationKey
)

var _ model.ContextManager = (*Manager)(nil)

// Manager stores the authenticated session or application on a request context.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) SetSessionToContext(ctx context.Context, session model.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

func (m *Manager) GetSessionFromContext(ctx context.Context) (model.Session, bool) {
	session, ok := ctx.Value(sessionKey).(model.Session)
	return session, ok
}

func (m *Manager) SetApplicationToContext(ctx context.Context, app model.Application) context.Context {
	return context.WithValue(ctx, applicationKey, app)
}

func (m *Manager) GetApplicationFromContext(ctx context.Context) (model.Application, bool) {
	app, ok := ctx.Value(applicationKey).(model.Application)
	return app, ok
}
