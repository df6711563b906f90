package model

import "time"

// TokenManager generates and validates session tokens.
type TokenManager interface {
	GenerateSessionToken(user User) (IssuedToken, error)
	ParseSessionToken(token string) (email string, err error)
}

// IssuedToken is a minted session token and its expiry.
type IssuedToken struct {
	Token  string
	Expiry time.Time
}
