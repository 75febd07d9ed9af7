// Package middleware provides HTTP middleware for the storefront API.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/caseforge/caseforge/internal/auth"
)

type contextKey string

const (
	BearerPrefix                       = "bearer"
	SessionCookieName                  = "cf_session"
	RedirectParam                      = "post_login_redirect_url"
	IdentityContextKey      contextKey = "identity"
)

// SessionVerifier validates a session token.
type SessionVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// SessionAuth gates protected paths behind a valid session. Public paths pass
// through; protected paths without a session are redirected to the login
// entry point with the original path attached for the post-login hop.
type SessionAuth struct {
	sessions   SessionVerifier
	classifier *Classifier
	loginPath  string
	logger     *slog.Logger
}

// SessionAuthConfig holds configuration for the session middleware.
type SessionAuthConfig struct {
	Sessions   SessionVerifier
	Classifier *Classifier
	LoginPath  string
}

// NewSessionAuth creates the session middleware.
func NewSessionAuth(cfg SessionAuthConfig, logger *slog.Logger) *SessionAuth {
	return &SessionAuth{
		sessions:   cfg.Sessions,
		classifier: cfg.Classifier,
		loginPath:  cfg.LoginPath,
		logger:     logger,
	}
}

// Handler returns the middleware function.
func (m *SessionAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := m.identityFromRequest(r)
		if err == nil && identity != nil {
			r = r.WithContext(context.WithValue(r.Context(), IdentityContextKey, identity))
		}

		if m.classifier.Classify(r.URL.Path) == AccessPublic {
			next.ServeHTTP(w, r)
			return
		}

		if identity == nil {
			// A failed session check is unauthenticated, never fatal.
			if err != nil && !errors.Is(err, http.ErrNoCookie) {
				m.logger.Warn("session_check_failed", "path", r.URL.Path, "error", err)
			}

			redirectURL := m.loginPath + "?" + RedirectParam + "=" + url.QueryEscape(r.URL.Path)
			http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// identityFromRequest reads the session from the cookie or the Authorization
// header and validates it.
func (m *SessionAuth) identityFromRequest(r *http.Request) (*auth.Identity, error) {
	token, err := extractSessionToken(r)
	if err != nil {
		return nil, err
	}

	return m.sessions.Verify(token)
}

func extractSessionToken(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", http.ErrNoCookie
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], BearerPrefix) {
		return "", errors.New("invalid authorization format")
	}

	return parts[1], nil
}

// GetIdentityFromContext extracts the authenticated identity from a request
// context.
func GetIdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(*auth.Identity)
	return identity, ok
}
