package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleCustomer = "customer"
	RoleHelper   = "helper"
	RoleAdmin    = "admin"
)

type User struct {
	ID                      uuid.UUID  `json:"id"`
	Email                   string     `json:"email"`
	DisplayName             string     `json:"display_name"`
	PasswordHash            string     `json:"-"`
	Role                    string     `json:"role"`
	PlanID                  *uuid.UUID `json:"plan_id,omitempty"`
	ExternalPayoutAccountID *string    `json:"external_payout_account_id,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}
