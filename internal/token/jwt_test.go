package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/filegate-session/internal/model"
)

func TestJWT_SessionToken_Roundtrip(t *testing.T) {
	j := NewJWT("secret", time.Hour)
	u := model.User{Email: "a@b.com", Name: "A"}

	issued, err := j.GenerateSessionToken(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.Expiry, 5*time.Second)

	email, err := j.ParseSessionToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", email)
}

func TestJWT_TokensAreDistinct(t *testing.T) {
	j := NewJWT("secret", time.Hour)
	u := model.User{Email: "a@b.com"}

	first, err := j.GenerateSessionToken(u)
	require.NoError(t, err)
	second, err := j.GenerateSessionToken(u)
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
}

func TestJWT_WrongSecret(t *testing.T) {
	issued, err := NewJWT("secret", time.Hour).GenerateSessionToken(model.User{Email: "a@b.com"})
	require.NoError(t, err)

	_, err = NewJWT("other", time.Hour).ParseSessionToken(issued.Token)
	require.Error(t, err)
}

func TestJWT_Expired(t *testing.T) {
	j := &JWT{secretKey: "secret", ttl: time.Minute, now: func() time.Time { return time.Now().Add(-time.Hour) }}
	issued, err := j.GenerateSessionToken(model.User{Email: "a@b.com"})
	require.NoError(t, err)

	_, err = NewJWT("secret", time.Minute).ParseSessionToken(issued.Token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWT_TokenType_Mismatch(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a@b.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		TokenType: "refresh",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWT("secret", time.Hour).ParseSessionToken(raw)
	require.Error(t, err)
}

func TestJWT_Garbage(t *testing.T) {
	_, err := NewJWT("secret", time.Hour).ParseSessionToken("not-a-jwt")
	require.Error(t, err)
}
