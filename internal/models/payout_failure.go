package models

import (
	"time"

	"github.com/google/uuid"
)

// PayoutFailure records a transfer that could not be initiated after a task
// was marked paid. The paid status and payout amount stay on the task, so
// operators can retry the transfer from the provider dashboard.
type PayoutFailure struct {
	ID          uuid.UUID `json:"id"`
	TaskID      uuid.UUID `json:"task_id"`
	HelperID    uuid.UUID `json:"helper_id"`
	AmountCents int64     `json:"amount_cents"`
	Destination string    `json:"destination"`
	Reason      string    `json:"reason"`
	Resolved    bool      `json:"resolved"`
	CreatedAt   time.Time `json:"created_at"`
}
