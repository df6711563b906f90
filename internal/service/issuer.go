package service

import (
	"context"
	"fmt"

	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/metrics"
	"github.com/dtroode/filegate-session/internal/model"
)

// Issuer mints session tokens for verified identities.
type Issuer struct {
	users    model.UserStore
	sessions model.SessionStore
	tokens   model.TokenManager
	metrics  metrics.MetricsCollector
	logger   *logger.Logger
}

func NewIssuer(
	users model.UserStore,
	sessions model.SessionStore,
	tokens model.TokenManager,
	metrics metrics.MetricsCollector,
	logger *logger.Logger,
) *Issuer {
	return &Issuer{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		metrics:  metrics,
		logger:   logger,
	}
}

// IssueSession creates the user if needed and persists a new session with empty data.
// Every call creates a new session row.
func (s *Issuer) IssueSession(ctx context.Context, provider string, identity model.Identity) (model.IssuedToken, error) {
	user, err := s.users.FindOrCreate(ctx, identity.Email, identity.Name)
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("failed to find or create user: %w", err)
	}

	issued, err := s.tokens.GenerateSessionToken(user)
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	email := user.Email
	session, err := s.sessions.Create(ctx, model.Session{
		Email:  &email,
		Data:   model.SessionData{},
		Token:  &issued.Token,
		Expiry: &issued.Expiry,
	})
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("failed to create session: %w", err)
	}

	s.metrics.RecordSessionIssued(provider)
	s.logger.Info("Issuer service: session issued",
		"session_id", session.ID.String(),
		"provider", provider)

	return issued, nil
}
