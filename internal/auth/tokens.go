package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionTTL = 7 * 24 * time.Hour
	ResetTTL   = time.Hour

	purposeSession = "session"
	purposeReset   = "password_reset"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type Claims struct {
	UserID  string `json:"id"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Tokens signs and checks HS256 tokens. A token minted for one purpose is
// rejected for every other purpose.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

func NewTokens(secret string) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &Tokens{secret: []byte(secret), now: time.Now}, nil
}

func (t *Tokens) IssueSession(userID string) (string, time.Time, error) {
	return t.issue(userID, purposeSession, SessionTTL)
}

func (t *Tokens) IssueReset(userID string) (string, error) {
	token, _, err := t.issue(userID, purposeReset, ResetTTL)
	return token, err
}

func (t *Tokens) ParseSession(token string) (string, error) {
	return t.parse(token, purposeSession)
}

func (t *Tokens) ParseReset(token string) (string, error) {
	return t.parse(token, purposeReset)
}

func (t *Tokens) issue(userID, purpose string, ttl time.Duration) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(ttl)
	claims := Claims{
		UserID:  userID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

func (t *Tokens) parse(token, purpose string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return "", ErrTokenExpired
	}
	if err != nil {
		return "", ErrTokenInvalid
	}
	if claims.Purpose != purpose || claims.UserID == "" {
		return "", ErrTokenInvalid
	}
	return claims.UserID, nil
}
