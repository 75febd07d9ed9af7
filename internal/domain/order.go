package domain

import (
	"time"

	"github.com/google/uuid"
)

// Address holds a billing or shipping address captured at checkout.
type Address struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Order is owned by the payment collaborator. This service reads orders for
// status polling and flips IsPaid from the payment webhook; nothing else
// mutates them.
type Order struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"userId"`
	ConfigurationID uuid.UUID      `json:"configurationId"`
	AmountCents     int            `json:"amountCents"`
	IsPaid          bool           `json:"isPaid"`
	Configuration   *Configuration `json:"configuration,omitempty"`
	BillingAddress  *Address       `json:"billingAddress,omitempty"`
	ShippingAddress *Address       `json:"shippingAddress,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}
