package billing

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/transfer"
)

const defaultTransferTimeout = 10 * time.Second

// PayoutClient initiates a transfer of the helper's share to their connected
// account. Failures never block the caller's success path; the reconciler
// records them for manual retry.
type PayoutClient interface {
	Transfer(ctx context.Context, amountCents int64, destination, transferGroup string) (string, error)
}

// StripePayoutClient calls the Stripe transfers API. The deployment runs in a
// single currency.
type StripePayoutClient struct {
	currency string
	timeout  time.Duration
}

func NewStripePayoutClient(apiKey, currency string) *StripePayoutClient {
	stripe.Key = apiKey
	return &StripePayoutClient{currency: currency, timeout: defaultTransferTimeout}
}

var _ PayoutClient = (*StripePayoutClient)(nil)

// Transfer sends amountCents to the destination connected account, tagged
// with transferGroup (the task id) for correlation. The call is bounded by a
// timeout; hitting it is treated as any other transfer failure.
func (c *StripePayoutClient) Transfer(ctx context.Context, amountCents int64, destination, transferGroup string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := &stripe.TransferParams{
		Params:        stripe.Params{Context: ctx},
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(c.currency),
		Destination:   stripe.String(destination),
		TransferGroup: stripe.String(transferGroup),
	}
	tr, err := transfer.New(params)
	if err != nil {
		return "", err
	}
	return tr.ID, nil
}
