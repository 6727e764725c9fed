package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const (
	// Scope is the only scope listing tokens are issued for.
	Scope = "storefront_listing"

	issuer = "storefront"

	minSecretLen = 32
)

// ErrSessionMismatch is returned when a token was issued for another session.
var ErrSessionMismatch = errors.New("token session does not match")

// Claims are the claims of an anti-forgery token.
type Claims struct {
	Scope     string `json:"scope"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies anti-forgery tokens for listing requests.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a token manager. The secret must be at least 32
// bytes long.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("anti-forgery secret must be at least %d bytes", minSecretLen)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("anti-forgery token ttl must be positive, got %s", ttl)
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue creates a signed token bound to sessionID.
func (m *TokenManager) Issue(sessionID string) (token string, expiresAt time.Time, err error) {
	now := m.now().UTC()
	expiresAt = now.Add(m.ttl)

	claims := &Claims{
		Scope:     Scope,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign anti-forgery token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify checks the token's signature, issuer, scope and expiry. When
// sessionID is not empty the token must have been issued for it. Every
// failure is reported as a security check error.
func (m *TokenManager) Verify(token, sessionID string) (*Claims, error) {
	if token == "" {
		return nil, securityError(errors.New("token missing"))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, securityError(fmt.Errorf("parse anti-forgery token: %w", err))
	}
	if !parsed.Valid || claims.Scope != Scope {
		return nil, securityError(errors.New("token scope is invalid"))
	}
	if sessionID != "" && claims.SessionID != sessionID {
		return nil, securityError(ErrSessionMismatch)
	}

	return claims, nil
}

func securityError(cause error) *apperrors.AppError {
	err := apperrors.SecurityCheckFailed()
	err.Err = cause
	return err
}
