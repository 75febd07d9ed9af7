package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/caseforge/caseforge/internal/domain"
	"github.com/caseforge/caseforge/internal/repository"
)

const (
	// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
	SignatureHeader = "X-Signature"

	// EventPaymentSucceeded is the only event type the storefront acts on.
	EventPaymentSucceeded = "payment.succeeded"

	maxWebhookBytes = 1 << 20
)

// PaymentRecorder marks an order as paid with its final addresses.
type PaymentRecorder interface {
	MarkPaid(ctx context.Context, orderID uuid.UUID, billing, shipping domain.Address) error
}

// WebhookHandler receives payment provider callbacks.
type WebhookHandler struct {
	payments PaymentRecorder
	secret   []byte
	logger   *slog.Logger
}

func NewWebhookHandler(payments PaymentRecorder, secret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		payments: payments,
		secret:   []byte(secret),
		logger:   logger,
	}
}

// WebhookEvent is the provider's callback envelope.
type WebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		OrderID         uuid.UUID      `json:"orderId"`
		BillingAddress  domain.Address `json:"billingAddress"`
		ShippingAddress domain.Address `json:"shippingAddress"`
	} `json:"data"`
}

// HandlePayment handles POST /api/webhooks/payment. Events are acknowledged
// even when already applied, so provider retries are harmless.
func (h *WebhookHandler) HandlePayment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "The request body could not be read")
		return
	}

	if !h.verifySignature(body, r.Header.Get(SignatureHeader)) {
		h.logger.Warn("Webhook signature mismatch")
		WriteErrorResponse(w, http.StatusUnauthorized, "invalid_signature", "The webhook signature is invalid")
		return
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "The event payload is malformed")
		return
	}

	if event.Type != EventPaymentSucceeded {
		h.logger.Debug("Ignoring webhook event", "type", event.Type)
		WriteJSONResponse(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	if event.Data.OrderID == uuid.Nil {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "An order ID is required")
		return
	}

	err = h.payments.MarkPaid(r.Context(), event.Data.OrderID, event.Data.BillingAddress, event.Data.ShippingAddress)
	if err != nil {
		var notFoundErr *repository.NotFoundError
		if errors.As(err, &notFoundErr) {
			h.logger.Warn("Webhook for unknown order", "order_id", event.Data.OrderID)
			WriteErrorResponse(w, http.StatusNotFound, "not_found", "The referenced order does not exist")
			return
		}

		h.logger.Error("Failed to record payment", "order_id", event.Data.OrderID, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "internal_error", "The payment could not be recorded")
		return
	}

	h.logger.Info("Payment recorded", "order_id", event.Data.OrderID)
	WriteJSONResponse(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if len(h.secret) == 0 || signature == "" {
		return false
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	return hmac.Equal(provided, mac.Sum(nil))
}
