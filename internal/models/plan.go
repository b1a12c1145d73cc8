package models

import (
	"time"

	"github.com/google/uuid"
)

// Plan is a helper subscription tier. CommissionRatePercent is the platform's
// cut of a task price, 0–100 inclusive.
type Plan struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"name"`
	CommissionRatePercent int       `json:"commission_rate_percent"`
	MonthlyPriceCents     int64     `json:"monthly_price_cents"`
	CreatedAt             time.Time `json:"created_at"`
}
