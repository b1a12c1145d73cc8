package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/neighborly/backend/internal/models"
	"github.com/neighborly/backend/internal/repository"
)

// ErrSecretNotConfigured is returned when no webhook signing secret is stored
// in settings. This is an operator error: the webhook endpoint must refuse
// the request rather than skip verification.
var ErrSecretNotConfigured = errors.New("payment webhook secret not configured")

// ErrInvalidSignature is returned when the signature header does not match
// the payload. The request must be rejected so the provider redelivers later.
var ErrInvalidSignature = errors.New("invalid payment event signature")

// SecretReader is the settings lookup the verifier needs.
type SecretReader interface {
	Get(ctx context.Context, key string) (string, error)
}

// Verifier authenticates inbound payment-provider events. The signing secret
// is read from the settings store on every request, and verification runs
// over the exact raw bytes received.
type Verifier struct {
	settings SecretReader
}

func NewVerifier(settings SecretReader) *Verifier {
	return &Verifier{settings: settings}
}

func (v *Verifier) Verify(ctx context.Context, payload []byte, sigHeader string) (*stripe.Event, error) {
	secret, err := v.settings.Get(ctx, models.SettingStripeWebhookSecret)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSecretNotConfigured
	}
	if err != nil {
		return nil, err
	}
	if secret == "" {
		return nil, ErrSecretNotConfigured
	}
	ev, err := webhook.ConstructEvent(payload, sigHeader, secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return &ev, nil
}
