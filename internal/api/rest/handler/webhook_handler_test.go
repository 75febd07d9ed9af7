package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/caseforge/caseforge/internal/domain"
	"github.com/caseforge/caseforge/internal/repository"
)

type mockPaymentRecorder struct {
	mock.Mock
}

func (m *mockPaymentRecorder) MarkPaid(ctx context.Context, orderID uuid.UUID, billing, shipping domain.Address) error {
	return m.Called(ctx, orderID, billing, shipping).Error(0)
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookHandler_HandlePayment(t *testing.T) {
	const secret = "webhook-secret"

	orderID := uuid.New()
	billing := domain.Address{Name: "Casey", Street: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}
	shipping := billing

	paymentEvent := func(eventType string) []byte {
		body, _ := json.Marshal(map[string]any{
			"type": eventType,
			"data": map[string]any{
				"orderId":         orderID,
				"billingAddress":  billing,
				"shippingAddress": shipping,
			},
		})
		return body
	}

	testCases := map[string]struct {
		body           []byte
		signature      string
		mockError      error
		expectMarkPaid bool
		expectedStatus int
	}{

		"should record a succeeded payment": {
			body:           paymentEvent(EventPaymentSucceeded),
			signature:      signBody(secret, paymentEvent(EventPaymentSucceeded)),
			expectMarkPaid: true,
			expectedStatus: http.StatusOK,
		},

		"should reject a missing signature": {
			body:           paymentEvent(EventPaymentSucceeded),
			signature:      "",
			expectedStatus: http.StatusUnauthorized,
		},

		"should reject a forged signature": {
			body:           paymentEvent(EventPaymentSucceeded),
			signature:      signBody("other-secret", paymentEvent(EventPaymentSucceeded)),
			expectedStatus: http.StatusUnauthorized,
		},

		"should acknowledge and ignore other event types": {
			body:           paymentEvent("payment.created"),
			signature:      signBody(secret, paymentEvent("payment.created")),
			expectedStatus: http.StatusOK,
		},

		"should return not found for an unknown order": {
			body:           paymentEvent(EventPaymentSucceeded),
			signature:      signBody(secret, paymentEvent(EventPaymentSucceeded)),
			mockError:      &repository.NotFoundError{Resource: "order", Key: "id", Value: orderID.String()},
			expectMarkPaid: true,
			expectedStatus: http.StatusNotFound,
		},

		"should reject a malformed payload": {
			body:           []byte("{"),
			signature:      signBody(secret, []byte("{")),
			expectedStatus: http.StatusBadRequest,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			payments := &mockPaymentRecorder{}
			if tc.expectMarkPaid {
				payments.On("MarkPaid", mock.Anything, orderID, billing, shipping).Return(tc.mockError)
			}

			handler := NewWebhookHandler(payments, secret, newTestLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payment", bytes.NewReader(tc.body))
			if tc.signature != "" {
				req.Header.Set(SignatureHeader, tc.signature)
			}
			w := httptest.NewRecorder()

			handler.HandlePayment(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)

			if !tc.expectMarkPaid {
				payments.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
			payments.AssertExpectations(t)
		})
	}
}

func TestWebhookHandler_RepeatedDelivery(t *testing.T) {
	const secret = "webhook-secret"

	orderID := uuid.New()
	body, _ := json.Marshal(map[string]any{
		"type": EventPaymentSucceeded,
		"data": map[string]any{"orderId": orderID},
	})

	payments := &mockPaymentRecorder{}
	payments.On("MarkPaid", mock.Anything, orderID, domain.Address{}, domain.Address{}).Return(nil).Twice()

	handler := NewWebhookHandler(payments, secret, newTestLogger())

	// Provider retries deliver the same event twice; both are acknowledged.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payment", bytes.NewReader(body))
		req.Header.Set(SignatureHeader, signBody(secret, body))
		w := httptest.NewRecorder()

		handler.HandlePayment(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	}
	payments.AssertExpectations(t)
}
