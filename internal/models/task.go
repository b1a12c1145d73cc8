package models

import (
	"time"

	"github.com/google/uuid"
)

// Task lifecycle statuses. A task is created open, becomes assigned when the
// customer picks a helper, becomes paid exclusively through the payment
// reconciliation path, and may be closed by the customer afterwards.
const (
	TaskStatusOpen     = "open"
	TaskStatusAssigned = "assigned"
	TaskStatusPaid     = "paid"
	TaskStatusClosed   = "closed"
)

type Task struct {
	ID                 uuid.UUID  `json:"id"`
	CustomerID         uuid.UUID  `json:"customer_id"`
	HelperID           *uuid.UUID `json:"helper_id,omitempty"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Status             string     `json:"status"`
	PriceCents         int64      `json:"price_cents"`
	CommissionCents    *int64     `json:"commission_cents,omitempty"`
	PayoutCents        *int64     `json:"payout_cents,omitempty"`
	ExternalPaymentRef *string    `json:"external_payment_ref,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
