// Package poller re-invokes the payment-status query for callers waiting on
// checkout confirmation.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/caseforge/caseforge/internal/auth"
	"github.com/caseforge/caseforge/internal/orders"
	"github.com/caseforge/caseforge/pkg/retry"
)

// StatusSource is the payment-status query being polled.
type StatusSource interface {
	GetPaymentStatus(ctx context.Context, orderID string, identity *auth.Identity) (*orders.PaymentStatus, error)
}

// Waiter polls an order's payment status. Transient failures are retried
// under the policy; terminal answers (paid, not found, missing id) and the
// non-terminal unpaid answer pass straight through to the caller, who decides
// whether to poll again.
type Waiter struct {
	source StatusSource
	policy retry.Policy
	logger *slog.Logger
}

// NewWaiter creates a poller over source. A zero policy defaults to three
// attempts a second apart, mirroring the storefront's thank-you page.
func NewWaiter(source StatusSource, policy retry.Policy, logger *slog.Logger) *Waiter {
	if policy.MaxAttempts == 0 {
		policy = retry.Policy{MaxAttempts: 3, Delay: time.Second}
	}
	if policy.Retryable == nil {
		policy.Retryable = isTransient
	}

	return &Waiter{
		source: source,
		policy: policy,
		logger: logger,
	}
}

// Poll runs one status query with transient-failure retries.
func (w *Waiter) Poll(ctx context.Context, orderID string, identity *auth.Identity) (*orders.PaymentStatus, error) {
	status, err := retry.DoValue(ctx, w.policy, func(ctx context.Context) (*orders.PaymentStatus, error) {
		return w.source.GetPaymentStatus(ctx, orderID, identity)
	})
	if err != nil {
		return nil, err
	}

	if !status.Paid {
		w.logger.Debug("payment_pending", "order_id", orderID)
	}
	return status, nil
}

func isTransient(err error) bool {
	return !errors.Is(err, orders.ErrMissingOrderID) && !errors.Is(err, orders.ErrOrderNotFound)
}
