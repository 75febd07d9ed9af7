// Package orders answers payment-status queries scoped to the requesting user.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/caseforge/caseforge/internal/auth"
	"github.com/caseforge/caseforge/internal/domain"
	"github.com/caseforge/caseforge/internal/repository"
)

var (
	// ErrMissingOrderID is returned when no order ID was supplied.
	ErrMissingOrderID = errors.New("missing order id")

	// ErrOrderNotFound covers absent and foreign-owned orders alike, so a
	// caller cannot probe which order IDs exist.
	ErrOrderNotFound = errors.New("order not found")
)

// PaymentStatus is the result of one poll. Paid is terminal; an unpaid
// status is expected to be polled again by the caller.
type PaymentStatus struct {
	Paid  bool          `json:"paid"`
	Order *domain.Order `json:"order,omitempty"`
}

// OrderStore is the slice of the order repository the service needs.
type OrderStore interface {
	GetOrderForUser(ctx context.Context, orderID, userID uuid.UUID) (*domain.Order, error)
}

// StatusCache keeps recent poll results fresh for the revalidation window.
type StatusCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Service resolves payment status for orders.
type Service struct {
	orders OrderStore
	cache  StatusCache
	ttl    time.Duration
	logger *slog.Logger
}

// ServiceConfig holds configuration for the order status service.
type ServiceConfig struct {
	Orders OrderStore
	Cache  StatusCache   // Optional: nil disables caching
	TTL    time.Duration // Optional: freshness window for cached statuses
}

// NewService creates a new order status service.
func NewService(cfg ServiceConfig, logger *slog.Logger) *Service {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 30 * time.Second
	}

	return &Service{
		orders: cfg.Orders,
		cache:  cfg.Cache,
		ttl:    ttl,
		logger: logger,
	}
}

// GetPaymentStatus looks up the order's paid state for the authenticated
// identity. Absent and foreign-owned orders both resolve to
// ErrOrderNotFound.
func (s *Service) GetPaymentStatus(ctx context.Context, orderID string, identity *auth.Identity) (*PaymentStatus, error) {
	if orderID == "" {
		return nil, ErrMissingOrderID
	}
	if identity == nil {
		return nil, ErrOrderNotFound
	}

	id, err := uuid.Parse(orderID)
	if err != nil {
		// A malformed ID cannot exist; same answer as an unknown one.
		return nil, ErrOrderNotFound
	}

	key := statusKey(id, identity.UserID)
	if s.cache != nil {
		var cached PaymentStatus
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("status_cache_read_failed", "order_id", id, "error", err)
		} else if found {
			return &cached, nil
		}
	}

	order, err := s.orders.GetOrderForUser(ctx, id, identity.UserID)
	if err != nil {
		var notFoundErr *repository.NotFoundError
		if errors.As(err, &notFoundErr) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("query payment status for order %s: %w", id, err)
	}

	status := &PaymentStatus{Paid: order.IsPaid}
	if order.IsPaid {
		status.Order = order
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, status, s.ttl); err != nil {
			s.logger.Warn("status_cache_write_failed", "order_id", id, "error", err)
		}
	}

	return status, nil
}

func statusKey(orderID, userID uuid.UUID) string {
	return fmt.Sprintf("order:%s:%s", orderID, userID)
}
