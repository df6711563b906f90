package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/filegate-session/internal/api/errors"
	"github.com/dtroode/filegate-session/internal/api/http/respond"
	"github.com/dtroode/filegate-session/internal/identity"
	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/model"
)

// Authenticate resolves the session behind the bearer token and puts it on the context.
// A session token must be a valid, unexpired JWT bound to a stored session. Sessions
// created by applications carry no token and are addressed by their id instead.
type Authenticate struct {
	tokens         model.TokenManager
	sessions       model.SessionStore
	contextManager model.ContextManager
	logger         *logger.Logger
	now            func() time.Time
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(
	tokens model.TokenManager,
	sessions model.SessionStore,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Authenticate {
	return &Authenticate{
		tokens:         tokens,
		sessions:       sessions,
		contextManager: contextManager,
		logger:         logger,
		now:            time.Now,
	}
}

func (m *Authenticate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := identity.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			respond.Error(w, m.logger, err)
			return
		}

		session, err := m.resolve(r, token)
		if err != nil {
			respond.Error(w, m.logger, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(m.contextManager.SetSessionToContext(r.Context(), session)))
	})
}

func (m *Authenticate) resolve(r *http.Request, token string) (model.Session, error) {
	ctx := r.Context()

	if id, parseErr := uuid.Parse(token); parseErr == nil {
		session, err := m.sessions.GetByID(ctx, id)
		if errors.Is(err, model.ErrNotFound) || (err == nil && !session.Embedded()) {
			return model.Session{}, apiErrors.NewErrUnauthorized("invalid session")
		}
		if err != nil {
			return model.Session{}, err
		}
		return session, nil
	}

	email, err := m.tokens.ParseSessionToken(token)
	if err != nil {
		m.logger.Debug("Authenticate middleware: invalid session token",
			"error", err.Error())
		return model.Session{}, apiErrors.NewErrUnauthorized("invalid session token")
	}

	session, err := m.sessions.GetByToken(ctx, token)
	if errors.Is(err, model.ErrNotFound) {
		return model.Session{}, apiErrors.NewErrUnauthorized("invalid session token")
	}
	if err != nil {
		return model.Session{}, err
	}

	if session.Expired(m.now()) || session.Email == nil || *session.Email != email {
		return model.Session{}, apiErrors.NewErrUnauthorized("session expired")
	}

	return session, nil
}
