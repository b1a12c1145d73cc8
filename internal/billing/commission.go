package billing

// DefaultCommissionRatePercent applies when a helper has no subscription plan
// (or the referenced plan no longer exists).
const DefaultCommissionRatePercent = 15

// SplitPrice computes the platform commission and the helper payout for a
// task price. Rounding is half-up, done in integer math so the result is
// exact: commission = round(price * rate / 100). The payout is derived by
// subtraction, never computed independently, so commission + payout always
// equals the price.
//
// priceCents must be >= 0 and ratePercent in [0, 100].
func SplitPrice(priceCents int64, ratePercent int) (commissionCents, payoutCents int64) {
	commissionCents = (priceCents*int64(ratePercent) + 50) / 100
	return commissionCents, priceCents - commissionCents
}
