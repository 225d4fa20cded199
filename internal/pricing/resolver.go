// Package pricing computes the protection fee for a cart total under a
// shop's pricing configuration. Resolution is pure: the same config and total
// always produce the same fee.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shipmatic/dashboard/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// FeeResult is the outcome of a fee resolution. NoMatchingTier flags a tiered
// config whose ranges do not cover the cart total (a configuration gap); the
// fee is then zero and the caller should prompt a settings review rather than
// treat it as a failure.
type FeeResult struct {
	Fee            domain.Money `json:"fee"`
	NoMatchingTier bool         `json:"no_matching_tier"`
}

// Resolve computes the protection fee for cartTotal under cfg.
//
// Percentage: cartTotal * rate / 100, rounded half up to the minor unit.
// Fixed: the configured amount; its currency must match the cart's.
// Tiered: first tier (by ascending min) whose inclusive range contains the
// total; overlaps resolve to the lowest min, gaps fail closed with
// NoMatchingTier set.
//
// The fee is never negative: a percentage of a negative total clamps to zero.
func Resolve(cfg domain.PricingConfig, cartTotal domain.Money) (FeeResult, error) {
	switch cfg.Mode {
	case domain.PricingPercentage:
		fee := domain.NewMoney(
			cartTotal.Amount.Mul(cfg.Rate).Div(hundred),
			cartTotal.Currency,
		).Round()
		if fee.IsNegative() {
			fee = domain.ZeroMoney(cartTotal.Currency)
		}
		return FeeResult{Fee: fee}, nil

	case domain.PricingFixed:
		if cfg.Amount.Currency != cartTotal.Currency {
			return FeeResult{}, fmt.Errorf("fixed fee %s against %s cart: %w",
				cfg.Amount.Currency, cartTotal.Currency, domain.ErrCurrencyMismatch)
		}
		return FeeResult{Fee: cfg.Amount.Round()}, nil

	case domain.PricingTiered:
		for _, tier := range cfg.SortedTiers() {
			if cartTotal.Amount.GreaterThanOrEqual(tier.Min.Amount) &&
				cartTotal.Amount.LessThanOrEqual(tier.Max.Amount) {
				return FeeResult{Fee: tier.Price.Round()}, nil
			}
		}
		return FeeResult{
			Fee:            domain.ZeroMoney(cartTotal.Currency),
			NoMatchingTier: true,
		}, nil

	default:
		return FeeResult{}, fmt.Errorf("unknown pricing mode %q", cfg.Mode)
	}
}
