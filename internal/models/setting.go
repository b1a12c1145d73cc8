package models

import "time"

// Well-known settings keys.
const (
	SettingStripeWebhookSecret = "stripe_webhook_secret"
)

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
