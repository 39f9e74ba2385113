package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier("secret", []string{"admin"})

	tok, err := v.Issue(42, "user", time.Minute)
	require.NoError(t, err)
	id, err := v.Identity(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id.UserID)
	assert.Equal(t, "user", id.Role)
	assert.False(t, id.Elevated)

	tok, err = v.Issue(1, "admin", time.Minute)
	require.NoError(t, err)
	id, err = v.Identity(tok)
	require.NoError(t, err)
	assert.True(t, id.Elevated)
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier("secret", nil)

	expired, err := v.Issue(42, "user", -time.Minute)
	require.NoError(t, err)
	_, err = v.Identity(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign, err := NewVerifier("other", nil).Issue(42, "user", time.Minute)
	require.NoError(t, err)
	_, err = v.Identity(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: "user"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = v.Identity(noSubject)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Identity("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	tok, ok = BearerToken("bearer xyz")
	assert.True(t, ok)
	assert.Equal(t, "xyz", tok)

	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)
}
