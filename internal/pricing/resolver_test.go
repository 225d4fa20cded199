package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shipmatic/dashboard/internal/domain"
)

func usd(t *testing.T, amount string) domain.Money {
	t.Helper()
	m, err := domain.MoneyFromString(amount, "USD")
	require.NoError(t, err)
	return m
}

func tier(t *testing.T, min, max, price string) domain.Tier {
	t.Helper()
	return domain.Tier{
		Min:   usd(t, min),
		Max:   usd(t, max),
		Price: usd(t, price),
	}
}

func TestResolvePercentage(t *testing.T) {
	t.Parallel()

	cfg := domain.PricingConfig{
		Mode: domain.PricingPercentage,
		Rate: decimal.NewFromInt(5),
	}

	result, err := Resolve(cfg, usd(t, "100.00"))
	require.NoError(t, err)
	require.False(t, result.NoMatchingTier)
	require.True(t, result.Fee.Equal(usd(t, "5.00")), "got %s", result.Fee)
	require.Equal(t, "USD", result.Fee.Currency)
}

func TestResolvePercentageRoundsHalfUp(t *testing.T) {
	t.Parallel()

	// 1% of 50.50 is 0.505, which must round up to 0.51.
	cfg := domain.PricingConfig{
		Mode: domain.PricingPercentage,
		Rate: decimal.NewFromInt(1),
	}

	result, err := Resolve(cfg, usd(t, "50.50"))
	require.NoError(t, err)
	require.True(t, result.Fee.Equal(usd(t, "0.51")), "got %s", result.Fee)
}

func TestResolvePercentageNeverExceedsTwoDecimals(t *testing.T) {
	t.Parallel()

	cfg := domain.PricingConfig{
		Mode: domain.PricingPercentage,
		Rate: decimal.RequireFromString("7.5"),
	}

	totals := []string{"33.33", "0.01", "19.99", "123.45", "999999.99"}
	for _, total := range totals {
		result, err := Resolve(cfg, usd(t, total))
		require.NoError(t, err)
		require.LessOrEqual(t, int(-result.Fee.Amount.Exponent()), 2,
			"fee %s for total %s has more than 2 decimals", result.Fee, total)
	}
}

func TestResolvePercentageNegativeTotalClampsToZero(t *testing.T) {
	t.Parallel()

	cfg := domain.PricingConfig{
		Mode: domain.PricingPercentage,
		Rate: decimal.NewFromInt(5),
	}

	result, err := Resolve(cfg, usd(t, "-40.00"))
	require.NoError(t, err)
	require.True(t, result.Fee.IsZero())
	require.False(t, result.Fee.IsNegative())
}

func TestResolveFixed(t *testing.T) {
	t.Parallel()

	cfg := domain.PricingConfig{
		Mode:   domain.PricingFixed,
		Amount: usd(t, "3.00"),
	}

	result, err := Resolve(cfg, usd(t, "250.00"))
	require.NoError(t, err)
	require.True(t, result.Fee.Equal(usd(t, "3.00")))

	// Zero cart totals are not special-cased.
	result, err = Resolve(cfg, usd(t, "0.00"))
	require.NoError(t, err)
	require.True(t, result.Fee.Equal(usd(t, "3.00")))
}

func TestResolveFixedCurrencyMismatch(t *testing.T) {
	t.Parallel()

	cfg := domain.PricingConfig{
		Mode:   domain.PricingFixed,
		Amount: usd(t, "3.00"),
	}

	cart, err := domain.MoneyFromString("100.00", "EUR")
	require.NoError(t, err)

	_, err = Resolve(cfg, cart)
	require.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}

func TestResolveTieredUnsortedInput(t *testing.T) {
	t.Parallel()

	// Tiers supplied in reverse order; resolution must not care.
	cfg := domain.PricingConfig{
		Mode: domain.PricingTiered,
		Tiers: []domain.Tier{
			tier(t, "50", "200", "10"),
			tier(t, "0", "50", "5"),
		},
	}

	result, err := Resolve(cfg, usd(t, "75.00"))
	require.NoError(t, err)
	require.False(t, result.NoMatchingTier)
	require.True(t, result.Fee.Equal(usd(t, "10.00")), "got %s", result.Fee)
}

func TestResolveTieredNoMatch(t *testing.T) {
	t.Parallel()

	cfg := domain.PricingConfig{
		Mode: domain.PricingTiered,
		Tiers: []domain.Tier{
			tier(t, "0", "50", "5"),
			tier(t, "50", "200", "10"),
		},
	}

	// Above the highest max: fail closed, zero fee, flag set.
	result, err := Resolve(cfg, usd(t, "300.00"))
	require.NoError(t, err)
	require.True(t, result.NoMatchingTier)
	require.True(t, result.Fee.IsZero())

	// In a gap between tiers.
	gapped := domain.PricingConfig{
		Mode: domain.PricingTiered,
		Tiers: []domain.Tier{
			tier(t, "0", "50", "5"),
			tier(t, "100", "200", "10"),
		},
	}
	result, err = Resolve(gapped, usd(t, "75.00"))
	require.NoError(t, err)
	require.True(t, result.NoMatchingTier)
	require.True(t, result.Fee.IsZero())

	// Below the lowest min.
	result, err = Resolve(gapped, usd(t, "-1.00"))
	require.NoError(t, err)
	require.True(t, result.NoMatchingTier)
	require.True(t, result.Fee.IsZero())
}

func TestResolveTieredOverlapFirstMatchWins(t *testing.T) {
	t.Parallel()

	cfg := domain.PricingConfig{
		Mode: domain.PricingTiered,
		Tiers: []domain.Tier{
			tier(t, "40", "300", "12"),
			tier(t, "0", "100", "4"),
		},
	}

	// 60 is inside both ranges; the tier with the lowest min wins.
	result, err := Resolve(cfg, usd(t, "60.00"))
	require.NoError(t, err)
	require.True(t, result.Fee.Equal(usd(t, "4.00")), "got %s", result.Fee)

	// Shared boundary behaves the same way.
	result, err = Resolve(cfg, usd(t, "100.00"))
	require.NoError(t, err)
	require.True(t, result.Fee.Equal(usd(t, "4.00")), "got %s", result.Fee)
}

func TestResolveTieredBoundsInclusive(t *testing.T) {
	t.Parallel()

	cfg := domain.PricingConfig{
		Mode:  domain.PricingTiered,
		Tiers: []domain.Tier{tier(t, "10", "20", "2")},
	}

	for _, total := range []string{"10.00", "20.00"} {
		result, err := Resolve(cfg, usd(t, total))
		require.NoError(t, err)
		require.False(t, result.NoMatchingTier, "total %s", total)
		require.True(t, result.Fee.Equal(usd(t, "2.00")))
	}
}

func TestResolveIdempotent(t *testing.T) {
	t.Parallel()

	configs := []domain.PricingConfig{
		{Mode: domain.PricingPercentage, Rate: decimal.RequireFromString("2.75")},
		{Mode: domain.PricingFixed, Amount: usd(t, "4.99")},
		{Mode: domain.PricingTiered, Tiers: []domain.Tier{
			tier(t, "0", "50", "5"),
			tier(t, "50", "200", "10"),
		}},
	}

	for _, cfg := range configs {
		for _, total := range []string{"0.00", "49.99", "50.00", "173.21"} {
			first, err1 := Resolve(cfg, usd(t, total))
			second, err2 := Resolve(cfg, usd(t, total))
			require.NoError(t, err1)
			require.NoError(t, err2)
			require.Equal(t, first.NoMatchingTier, second.NoMatchingTier)
			require.True(t, first.Fee.Equal(second.Fee),
				"mode %s total %s: %s vs %s", cfg.Mode, total, first.Fee, second.Fee)
		}
	}
}

func TestResolveDoesNotMutateConfig(t *testing.T) {
	t.Parallel()

	cfg := domain.PricingConfig{
		Mode: domain.PricingTiered,
		Tiers: []domain.Tier{
			tier(t, "50", "200", "10"),
			tier(t, "0", "50", "5"),
		},
	}

	_, err := Resolve(cfg, usd(t, "75.00"))
	require.NoError(t, err)

	// Caller-supplied tier order survives resolution.
	require.True(t, cfg.Tiers[0].Min.Equal(usd(t, "50")))
	require.True(t, cfg.Tiers[1].Min.Equal(usd(t, "0")))
}

func TestResolveUnknownMode(t *testing.T) {
	t.Parallel()

	_, err := Resolve(domain.PricingConfig{Mode: "freeform"}, usd(t, "10.00"))
	require.Error(t, err)
}
