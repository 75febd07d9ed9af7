package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/caseforge/caseforge/internal/api/rest/middleware"
	"github.com/caseforge/caseforge/internal/diag"
)

// DiagnosticsHandler reports session state and recent warnings. The
// storefront calls it when the checkout flow misbehaves, so it must answer
// even when the caller has no session.
type DiagnosticsHandler struct {
	buffer      *diag.Buffer
	environment string
	production  bool
	logger      *slog.Logger
}

func NewDiagnosticsHandler(buffer *diag.Buffer, environment string, production bool, logger *slog.Logger) *DiagnosticsHandler {
	return &DiagnosticsHandler{
		buffer:      buffer,
		environment: environment,
		production:  production,
		logger:      logger,
	}
}

// DiagnosticsUser mirrors the session identity in the diagnostics payload.
type DiagnosticsUser struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
}

// DiagnosticsResponse is the successful diagnostics payload.
type DiagnosticsResponse struct {
	Status         string           `json:"status"`
	Authenticated  bool             `json:"authenticated"`
	User           *DiagnosticsUser `json:"user"`
	Timestamp      string           `json:"timestamp"`
	Environment    string           `json:"environment"`
	RecentWarnings []diag.Entry     `json:"recentWarnings,omitempty"`
}

// Status handles GET /api/diagnostics.
func (h *DiagnosticsHandler) Status(w http.ResponseWriter, r *http.Request) {
	response := DiagnosticsResponse{
		Status:      "success",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Environment: h.environment,
	}

	if identity, ok := middleware.GetIdentityFromContext(r.Context()); ok {
		response.Authenticated = true
		response.User = &DiagnosticsUser{
			ID:        identity.UserID,
			Email:     identity.Email,
			FirstName: identity.FirstName,
			LastName:  identity.LastName,
		}
	}

	// Recent warnings stay internal in production.
	if !h.production && h.buffer != nil {
		response.RecentWarnings = h.buffer.Snapshot()
	}

	WriteJSONResponse(w, http.StatusOK, response)
}
