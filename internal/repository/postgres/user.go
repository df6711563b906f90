package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/filegate-session/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	query := `SELECT id, email, name, created_at, updated_at
			  FROM users WHERE email = $1`

	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// FindOrCreate inserts the user unless the email is already known, then reads it back.
// The stored name is not overwritten for existing users.
func (r *UserRepository) FindOrCreate(ctx context.Context, email, name string) (model.User, error) {
	query := `INSERT INTO users (id, email, name)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (email) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, uuid.New(), email, name); err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return r.GetByEmail(ctx, email)
}
