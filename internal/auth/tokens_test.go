package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedTokens(t *testing.T, secret string, now time.Time) *Tokens {
	t.Helper()
	tok, err := NewTokens(secret)
	require.NoError(t, err)
	tok.now = func() time.Time { return now }
	return tok
}

func TestNewTokens_RequiresSecret(t *testing.T) {
	_, err := NewTokens("")
	assert.Error(t, err)
}

func TestTokens_SessionRoundTrip(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tok := fixedTokens(t, "s3cret", now)

	token, exp, err := tok.IssueSession("user-1")
	require.NoError(t, err)
	assert.Equal(t, now.Add(SessionTTL), exp)

	id, err := tok.ParseSession(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, purposeSession, claims.Purpose)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
}

func TestTokens_Expired(t *testing.T) {
	issued := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	token, err := fixedTokens(t, "s3cret", issued).IssueReset("user-1")
	require.NoError(t, err)

	_, err = fixedTokens(t, "s3cret", issued.Add(ResetTTL-time.Second)).ParseReset(token)
	assert.NoError(t, err)

	_, err = fixedTokens(t, "s3cret", issued.Add(ResetTTL+time.Second)).ParseReset(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokens_WrongSecret(t *testing.T) {
	now := time.Now()
	token, _, err := fixedTokens(t, "one", now).IssueSession("user-1")
	require.NoError(t, err)

	_, err = fixedTokens(t, "two", now).ParseSession(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokens_PurposeIsolation(t *testing.T) {
	tok := fixedTokens(t, "s3cret", time.Now())

	reset, err := tok.IssueReset("user-1")
	require.NoError(t, err)
	_, err = tok.ParseSession(reset)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	session, _, err := tok.IssueSession("user-1")
	require.NoError(t, err)
	_, err = tok.ParseReset(session)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokens_RejectsUnsignedAndMalformed(t *testing.T) {
	tok := fixedTokens(t, "s3cret", time.Now())

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID:  "user-1",
		Purpose: purposeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tok.ParseSession(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = tok.ParseSession("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokens_RequiresExpiry(t *testing.T) {
	tok := fixedTokens(t, "s3cret", time.Now())

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:  "user-1",
		Purpose: purposeSession,
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = tok.ParseSession(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
