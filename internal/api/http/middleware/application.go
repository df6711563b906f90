package middleware

import (
	"net/http"

	"github.com/dtroode/filegate-session/internal/api/http/respond"
	"github.com/dtroode/filegate-session/internal/identity"
	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/model"
)

// ApplicationResolver maps an application bearer secret to its registration.
type ApplicationResolver interface {
	ResolveApplication(secret string) (model.Application, error)
}

// Application requires a registered application's bearer secret.
type Application struct {
	resolver       ApplicationResolver
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewApplication(resolver ApplicationResolver, contextManager model.ContextManager, logger *logger.Logger) *Application {
	return &Application{resolver: resolver, contextManager: contextManager, logger: logger}
}

func (m *Application) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret, err := identity.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			respond.Error(w, m.logger, err)
			return
		}

		app, err := m.resolver.ResolveApplication(secret)
		if err != nil {
			m.logger.Warn("Application middleware: unknown application secret",
				"remote_addr", r.RemoteAddr)
			respond.Error(w, m.logger, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(m.contextManager.SetApplicationToContext(r.Context(), app)))
	})
}
