package domain

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

type PricingMode string

const (
	PricingPercentage PricingMode = "percentage"
	PricingFixed      PricingMode = "fixed"
	PricingTiered     PricingMode = "tiered"
)

// Tier is a cart-value range with a flat protection fee. Min and Max are
// inclusive bounds on the cart total.
type Tier struct {
	Min   Money `json:"min"`
	Max   Money `json:"max"`
	Price Money `json:"price"`
}

// PricingConfig is the tagged union of the three pricing modes. Exactly one
// of Rate, Amount or Tiers is meaningful, selected by Mode. Instances are
// validated once at the settings-load boundary (DecodePricingConfig), not on
// every fee computation.
type PricingConfig struct {
	Mode   PricingMode     `json:"mode"`
	Rate   decimal.Decimal `json:"rate,omitempty"`
	Amount Money           `json:"amount,omitempty"`
	Tiers  []Tier          `json:"tiers,omitempty"`
}

// SortedTiers returns the tiers ordered by ascending Min. Callers may supply
// tiers in any order; resolution always works on the sorted view.
func (c PricingConfig) SortedTiers() []Tier {
	tiers := make([]Tier, len(c.Tiers))
	copy(tiers, c.Tiers)
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].Min.Amount.LessThan(tiers[j].Min.Amount)
	})
	return tiers
}

// DecodePricingConfig parses and validates a persisted pricing blob. This is
// the single validation point for the union: anything that decodes cleanly
// here is well-formed input for the pricing resolver.
func DecodePricingConfig(raw []byte) (PricingConfig, error) {
	var cfg PricingConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return PricingConfig{}, fmt.Errorf("decode pricing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return PricingConfig{}, err
	}
	return cfg, nil
}

// Validate checks the mode-specific fields.
func (c PricingConfig) Validate() error {
	switch c.Mode {
	case PricingPercentage:
		if c.Rate.IsNegative() || c.Rate.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("percentage rate %s out of range [0,100]", c.Rate)
		}
	case PricingFixed:
		if c.Amount.Currency == "" {
			return fmt.Errorf("fixed amount requires a currency")
		}
		if c.Amount.IsNegative() {
			return fmt.Errorf("fixed amount %s is negative", c.Amount)
		}
	case PricingTiered:
		if len(c.Tiers) == 0 {
			return fmt.Errorf("tiered pricing requires at least one tier")
		}
		for i, t := range c.Tiers {
			if t.Min.Currency != t.Max.Currency || t.Min.Currency != t.Price.Currency {
				return fmt.Errorf("tier %d mixes currencies", i)
			}
			if t.Max.Amount.LessThan(t.Min.Amount) {
				return fmt.Errorf("tier %d has max %s below min %s", i, t.Max, t.Min)
			}
			if t.Price.IsNegative() {
				return fmt.Errorf("tier %d has negative price %s", i, t.Price)
			}
		}
	default:
		return fmt.Errorf("unknown pricing mode %q", c.Mode)
	}
	return nil
}

// WidgetSettings is the per-shop protection widget configuration. Appearance
// holds the opaque styling blob (colors, paddings, icon choices) the admin UI
// owns; this layer stores and serves it without interpreting it.
type WidgetSettings struct {
	Shop                string          `json:"shop"`
	AddonTitle          string          `json:"addon_title"`
	EnabledDescription  string          `json:"enabled_description"`
	DisabledDescription string          `json:"disabled_description"`
	Published           bool            `json:"published"`
	Pricing             PricingConfig   `json:"pricing"`
	MinimumCharge       Money           `json:"minimum_charge"`
	IncrementAmount     Money           `json:"increment_amount"`
	Appearance          json.RawMessage `json:"appearance,omitempty"`
}

// DefaultClaimExpiryDays is the claim-portal window applied when a shop has
// never saved portal settings.
const DefaultClaimExpiryDays = 45

// ClaimPortalSettings governs the customer-facing claim portal: the default
// resolution offered and how many days after order creation a claim stays
// actionable before it expires.
type ClaimPortalSettings struct {
	Shop       string           `json:"shop"`
	Resolution ResolutionMethod `json:"resolution"`
	Days       int              `json:"days"`
}

// DefaultClaimPortalSettings mirrors the portal's out-of-the-box values.
func DefaultClaimPortalSettings(shop string) ClaimPortalSettings {
	return ClaimPortalSettings{
		Shop:       shop,
		Resolution: ResolutionRefund,
		Days:       DefaultClaimExpiryDays,
	}
}
