package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/caseforge/caseforge/internal/api/rest/middleware"
	"github.com/caseforge/caseforge/internal/auth"
	"github.com/caseforge/caseforge/internal/orders"
)

// StatusPoller resolves an order's payment status, retrying transient
// failures before giving up.
type StatusPoller interface {
	Poll(ctx context.Context, orderID string, identity *auth.Identity) (*orders.PaymentStatus, error)
}

// OrderHandler handles HTTP requests for order status.
type OrderHandler struct {
	poller StatusPoller
	logger *slog.Logger
}

func NewOrderHandler(poller StatusPoller, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		poller: poller,
		logger: logger,
	}
}

// GetPaymentStatus handles GET /api/orders/{id}/payment-status. The thank-you
// screen polls this until the payment confirmation lands.
func (h *OrderHandler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	identity, _ := middleware.GetIdentityFromContext(r.Context())

	status, err := h.poller.Poll(r.Context(), orderID, identity)
	switch {
	case errors.Is(err, orders.ErrMissingOrderID):
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "An order ID is required")
		return
	case errors.Is(err, orders.ErrOrderNotFound):
		WriteErrorResponse(w, http.StatusNotFound, "not_found", "This order does not exist.")
		return
	case err != nil:
		h.logger.Error("Failed to resolve payment status", "order_id", orderID, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "internal_error", "An internal error occurred while checking the payment status")
		return
	}

	WriteJSONResponse(w, http.StatusOK, status)
}
