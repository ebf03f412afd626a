package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var member = Subject{UserID: "user-1", Email: "a@example.com", Role: "member"}

func TestIssuePairAndVerify(t *testing.T) {
	m := NewJWTManager("secret", "podbook")

	pair, err := m.IssuePair(member, time.Minute, time.Hour)
	require.NoError(t, err)

	access, err := m.Verify(pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", access.UserID())
	assert.Equal(t, "a@example.com", access.Email)
	assert.Equal(t, "member", access.Role)

	refresh, err := m.Verify(pair.RefreshToken, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", refresh.UserID())
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	m := NewJWTManager("secret", "podbook")
	pair, err := m.IssuePair(member, time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = m.Verify(pair.RefreshToken, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.Verify(pair.AccessToken, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejects(t *testing.T) {
	m := NewJWTManager("secret", "podbook")

	expired, err := m.Issue(member, TokenTypeAccess, -time.Minute)
	require.NoError(t, err)
	_, err = m.Verify(expired, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrExpiredToken)

	foreign, err := NewJWTManager("other-secret", "podbook").Issue(member, TokenTypeAccess, time.Minute)
	require.NoError(t, err)
	_, err = m.Verify(foreign, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer, err := NewJWTManager("secret", "someone-else").Issue(member, TokenTypeAccess, time.Minute)
	require.NoError(t, err)
	_, err = m.Verify(wrongIssuer, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	anonymous, err := m.Issue(Subject{Email: "x@example.com"}, TokenTypeAccess, time.Minute)
	require.NoError(t, err)
	_, err = m.Verify(anonymous, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Verify("not-a-token", TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyUsesInjectedClock(t *testing.T) {
	m := NewJWTManager("secret", "podbook")
	token, err := m.Issue(member, TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = m.Verify(token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
