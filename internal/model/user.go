package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	// FindOrCreate returns the user with the given email, creating it if absent.
	FindOrCreate(ctx context.Context, email, name string) (User, error)
}

// User represents a person known by email.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
