// Package settlement splits a completed sale between the platform and the seller.
package settlement

import (
	"scrapmarket-backend/internal/domain"
)

// Result is the split of a negotiated total.
type Result struct {
	PlatformProfit domain.Money `json:"platform_profit"`
	SellerPayout   domain.Money `json:"seller_payout"`
}

// Compute returns platformProfit = total × rate rounded half-up to minor
// units, and sellerPayout = total − platformProfit. The payout is never
// rounded on its own, so the two always add back to total.
func Compute(total domain.Money, rate domain.Rate) (Result, error) {
	if total.IsNegative() {
		return Result{}, domain.InvalidAmount("negotiated total cannot be negative")
	}
	// Round is half away from zero, which is half-up for non-negative values.
	profit := domain.NewMoney(total.Decimal().Mul(rate.Decimal()).Round(domain.MinorUnits))
	return Result{
		PlatformProfit: profit,
		SellerPayout:   total.Sub(profit),
	}, nil
}
