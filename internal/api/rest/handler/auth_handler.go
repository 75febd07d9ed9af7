// Session sign-in here is demo-grade email lookup, matching the development
// auth provider the storefront runs against. Production deployments sit
// behind a real identity provider and only use the callback flow.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/caseforge/caseforge/internal/api/rest/middleware"
	"github.com/caseforge/caseforge/internal/domain"
	"github.com/caseforge/caseforge/internal/repository"
)

const (
	// LoginStateCookie identifies a login attempt so the callback can pick
	// up the pending configuration handoff.
	LoginStateCookie = "cf_login_state"

	// LoginRedirectCookie remembers where to send the customer after login.
	LoginRedirectCookie = "cf_login_redirect"

	// AuthCallbackPath is where the customer lands after signing in.
	AuthCallbackPath = "/auth-callback"

	loginStateMaxAge = 15 * 60
)

// UserReader looks up users during sign-in.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// SessionIssuer mints a session token for an authenticated user.
type SessionIssuer interface {
	Issue(user *domain.User) (string, error)
}

// HandoffStore carries the pending configuration ID across the login hop.
type HandoffStore interface {
	SetHandoff(ctx context.Context, sessionID, configID string) error
	TakeHandoff(ctx context.Context, sessionID string) (string, bool, error)
}

// AuthHandler handles sign-in, sign-out and the post-login callback.
type AuthHandler struct {
	users      UserReader
	sessions   SessionIssuer
	handoffs   HandoffStore
	secureOnly bool
	logger     *slog.Logger
}

// AuthHandlerConfig holds the auth handler's collaborators.
type AuthHandlerConfig struct {
	Users      UserReader
	Sessions   SessionIssuer
	Handoffs   HandoffStore
	SecureOnly bool
}

func NewAuthHandler(cfg AuthHandlerConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:      cfg.Users,
		sessions:   cfg.Sessions,
		handoffs:   cfg.Handoffs,
		secureOnly: cfg.SecureOnly,
		logger:     logger,
	}
}

// SignInRequest is the sign-in payload.
type SignInRequest struct {
	Email string `json:"email"`
}

// SignInResponse returns the issued session token.
type SignInResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}

// LoginEntry handles GET /api/auth/login. The session middleware redirects
// protected requests here with the original path in post_login_redirect_url.
// The entry records the redirect target and any pending configuration, then
// tells the caller to authenticate.
func (h *AuthHandler) LoginEntry(w http.ResponseWriter, r *http.Request) {
	if target := safeRedirectPath(r.URL.Query().Get(middleware.RedirectParam)); target != "" {
		h.setCookie(w, LoginRedirectCookie, target, loginStateMaxAge)
	}

	// A designer screen sends its unsaved configuration along so the
	// callback can resume the preview flow after login.
	if configID := r.URL.Query().Get("config"); configID != "" {
		if _, err := uuid.Parse(configID); err == nil {
			state := uuid.NewString()
			if err := h.handoffs.SetHandoff(r.Context(), state, configID); err != nil {
				h.logger.Warn("Failed to record configuration handoff", "error", err)
			} else {
				h.setCookie(w, LoginStateCookie, state, loginStateMaxAge)
			}
		}
	}

	WriteErrorResponse(w, http.StatusUnauthorized, "authentication_required", "Sign in to continue")
}

// SignIn handles POST /api/auth/login.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request format")
		return
	}
	if req.Email == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Email is required")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		var notFoundErr *repository.NotFoundError
		if errors.As(err, &notFoundErr) {
			h.logger.Warn("Sign in attempt for unknown user", "email", req.Email)
		} else {
			h.logger.Error("Failed to look up user during sign in", "error", err)
		}
		WriteErrorResponse(w, http.StatusUnauthorized, "authentication_failed", "Authentication failed")
		return
	}

	token, err := h.sessions.Issue(user)
	if err != nil {
		h.logger.Error("Failed to issue session token", "user_id", user.ID, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "authentication_failed", "Authentication failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureOnly,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("User signed in", "user_id", user.ID)
	WriteJSONResponse(w, http.StatusOK, SignInResponse{
		Token:     token,
		TokenType: "Bearer",
	})
}

// SignOut handles GET /api/auth/logout.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, middleware.SessionCookieName, "", -1)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Callback handles GET /auth-callback. A pending configuration handoff wins
// over the remembered redirect target; either way the customer ends up back
// in the flow they left.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	target := "/"

	if cookie, err := r.Cookie(LoginRedirectCookie); err == nil {
		if path := safeRedirectPath(cookie.Value); path != "" {
			target = path
		}
		h.setCookie(w, LoginRedirectCookie, "", -1)
	}

	if cookie, err := r.Cookie(LoginStateCookie); err == nil {
		configID, ok, err := h.handoffs.TakeHandoff(r.Context(), cookie.Value)
		if err != nil {
			h.logger.Warn("Failed to read configuration handoff", "error", err)
		} else if ok {
			target = "/configure/preview?id=" + configID
		}
		h.setCookie(w, LoginStateCookie, "", -1)
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureOnly,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeRedirectPath keeps post-login redirects on this origin.
func safeRedirectPath(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return ""
	}
	return raw
}
