package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caseforge/caseforge/internal/domain"
	"github.com/caseforge/caseforge/internal/repository"
)

const (
	OrderResource = "order"
)

// OrderRepository provides database operations for orders. Orders are created
// by the payment collaborator; this service only reads them and applies the
// webhook's paid transition.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository instance.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{
		pool: pool,
	}
}

// GetOrderForUser retrieves an order scoped to its owner, including the
// linked configuration and addresses. A foreign-owned or absent order is the
// same NotFoundError either way.
func (r *OrderRepository) GetOrderForUser(ctx context.Context, orderID, userID uuid.UUID) (*domain.Order, error) {
	query := `SELECT o.id, o.user_id, o.configuration_id, o.amount_cents, o.is_paid,
                     o.billing_address, o.shipping_address, o.created_at,
                     c.id, c.image_url, c.width, c.height, c.color, c.model, c.material, c.finish,
                     c.artifact_url, c.created_at, c.updated_at
              FROM orders o
              JOIN configurations c ON c.id = o.configuration_id
              WHERE o.id = $1 AND o.user_id = $2`

	var (
		order                          domain.Order
		cfg                            domain.Configuration
		billing, shipping              []byte
		color, model, material, finish string
	)
	err := r.pool.QueryRow(ctx, query, orderID, userID).Scan(
		&order.ID,
		&order.UserID,
		&order.ConfigurationID,
		&order.AmountCents,
		&order.IsPaid,
		&billing,
		&shipping,
		&order.CreatedAt,
		&cfg.ID,
		&cfg.ImageURL,
		&cfg.Width,
		&cfg.Height,
		&color,
		&model,
		&material,
		&finish,
		&cfg.ArtifactURL,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &repository.NotFoundError{
				Resource: OrderResource,
				Key:      "id",
				Value:    orderID.String(),
			}
		}
		return nil, fmt.Errorf("retrieve order %s: %w", orderID, err)
	}

	attrs, err := parseAttributes(color, model, material, finish)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", orderID, err)
	}
	cfg.Attributes = attrs
	order.Configuration = &cfg

	if order.BillingAddress, err = decodeAddress(billing); err != nil {
		return nil, fmt.Errorf("order %s billing address: %w", orderID, err)
	}
	if order.ShippingAddress, err = decodeAddress(shipping); err != nil {
		return nil, fmt.Errorf("order %s shipping address: %w", orderID, err)
	}

	return &order, nil
}

// MarkPaid flips an order to paid and records the checkout addresses. Applied
// once from the payment webhook; repeated events are idempotent.
func (r *OrderRepository) MarkPaid(ctx context.Context, orderID uuid.UUID, billing, shipping domain.Address) error {
	billingJSON, err := json.Marshal(billing)
	if err != nil {
		return fmt.Errorf("encode billing address: %w", err)
	}
	shippingJSON, err := json.Marshal(shipping)
	if err != nil {
		return fmt.Errorf("encode shipping address: %w", err)
	}

	query := `UPDATE orders
              SET is_paid = TRUE, billing_address = $2, shipping_address = $3
              WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, orderID, billingJSON, shippingJSON)
	if err != nil {
		return fmt.Errorf("mark order %s paid: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return &repository.NotFoundError{
			Resource: OrderResource,
			Key:      "id",
			Value:    orderID.String(),
		}
	}

	return nil
}

func decodeAddress(data []byte) (*domain.Address, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var addr domain.Address
	if err := json.Unmarshal(data, &addr); err != nil {
		return nil, err
	}
	return &addr, nil
}
