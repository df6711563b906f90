package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/filegate-session/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

type SessionRepository struct {
	db *Connection
}

func NewSessionRepository(db *Connection) *SessionRepository {
	return &SessionRepository{
		db: db,
	}
}

const sessionColumns = `id, email, creator, data, token, expiry, created_at, updated_at`

func scanSession(row pgx.Row) (model.Session, error) {
	var s model.Session
	err := row.Scan(
		&s.ID, &s.Email, &s.Creator, &s.Data, &s.Token, &s.Expiry, &s.CreatedAt, &s.UpdatedAt,
	)
	if s.Data == nil {
		s.Data = model.SessionData{}
	}
	return s, err
}

func (r *SessionRepository) Create(ctx context.Context, session model.Session) (model.Session, error) {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.Data == nil {
		session.Data = model.SessionData{}
	}

	query := `INSERT INTO sessions (id, email, creator, data, token, expiry)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + sessionColumns

	saved, err := scanSession(r.db.QueryRow(ctx, query,
		session.ID, session.Email, session.Creator, session.Data, session.Token, session.Expiry,
	))
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	return saved, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	session, err := scanSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Session{}, model.ErrNotFound
		}
		return model.Session{}, fmt.Errorf("failed to get session by id: %w", err)
	}

	return session, nil
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE token = $1`

	session, err := scanSession(r.db.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Session{}, model.ErrNotFound
		}
		return model.Session{}, fmt.Errorf("failed to get session by token: %w", err)
	}

	return session, nil
}

// UpdateData replaces the session's data document.
func (r *SessionRepository) UpdateData(ctx context.Context, id uuid.UUID, data model.SessionData) error {
	if data == nil {
		data = model.SessionData{}
	}

	query := `UPDATE sessions SET data = $2, updated_at = now() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, data)
	if err != nil {
		return fmt.Errorf("failed to update session data: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}
