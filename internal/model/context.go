package model

import "context"

// ContextManager stores the authenticated principal on a request context.
type ContextManager interface {
	SetSessionToContext(ctx context.Context, session Session) context.Context
	GetSessionFromContext(ctx context.Context) (Session, bool)
	SetApplicationToContext(ctx context.Context, app Application) context.Context
	GetApplicationFromContext(ctx context.Context) (Application, bool)
}
