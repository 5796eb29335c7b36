package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTTL is the lifetime of a session token and of its cookie.
const SessionTTL = 7 * 24 * time.Hour

var (
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenBadSignature = errors.New("token signature invalid")
	ErrTokenExpired      = errors.New("token expired")
)

type SessionClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies session tokens with a single HS256 secret.
// Changing the secret invalidates every outstanding token.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    SessionTTL,
		now:    time.Now,
	}
}

// WithClock returns a copy of c reading time from now.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	cp := *c
	cp.now = now
	return &cp
}

func (c *TokenCodec) Issue(userID uuid.UUID) (string, time.Time, error) {
	issuedAt := c.now()
	expiresAt := issuedAt.Add(c.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify returns the user id of a valid token. Failures are one of
// ErrTokenMalformed, ErrTokenBadSignature or ErrTokenExpired.
func (c *TokenCodec) Verify(tokenString string) (uuid.UUID, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return uuid.Nil, ErrTokenBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return uuid.Nil, ErrTokenExpired
	default:
		return uuid.Nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: bad userId claim", ErrTokenMalformed)
	}
	return userID, nil
}
