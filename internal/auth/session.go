// Package auth issues and validates storefront session tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/caseforge/caseforge/internal/domain"
)

const (
	DefaultSessionTTL         = 24 * time.Hour
	DefaultClockSkewTolerance = 5 * time.Minute
)

// Identity is the authenticated principal carried through a request.
type Identity struct {
	UserID    uuid.UUID
	Email     string
	FirstName string
	LastName  string
}

// SessionClaims are the JWT claims embedded in a session token.
type SessionClaims struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	jwt.RegisteredClaims
}

// SessionConfig holds configuration for the session manager.
type SessionConfig struct {
	Secret    []byte
	Issuer    string
	TTL       time.Duration // Optional: defaults to DefaultSessionTTL
	ClockSkew time.Duration // Optional: defaults to DefaultClockSkewTolerance
}

// SessionManager mints and verifies session tokens.
type SessionManager struct {
	secret    []byte
	issuer    string
	ttl       time.Duration
	clockSkew time.Duration
}

// NewSessionManager creates a new session manager.
func NewSessionManager(cfg SessionConfig) (*SessionManager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("session secret is required")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}

	clockSkew := cfg.ClockSkew
	if clockSkew == 0 {
		clockSkew = DefaultClockSkewTolerance
	}

	return &SessionManager{
		secret:    cfg.Secret,
		issuer:    cfg.Issuer,
		ttl:       ttl,
		clockSkew: clockSkew,
	}, nil
}

// Issue creates a signed session token for a user.
func (m *SessionManager) Issue(user *domain.User) (string, error) {
	now := time.Now()

	claims := SessionClaims{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return signed, nil
}

// Verify validates a session token and returns the identity it carries.
func (m *SessionManager) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithLeeway(m.clockSkew))
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session token")
	}

	if m.issuer != "" && claims.Issuer != m.issuer {
		return nil, fmt.Errorf("invalid issuer: got %s, want %s", claims.Issuer, m.issuer)
	}
	if claims.ExpiresAt == nil {
		return nil, errors.New("missing expiration claim")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}

	return &Identity{
		UserID:    userID,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}, nil
}
