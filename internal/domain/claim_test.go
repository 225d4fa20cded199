package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestClaimSettlementTotal(t *testing.T) {
	t.Parallel()

	c := Claim{
		Currency: "USD",
		Items: map[string]ClaimItem{
			"a": {Quantity: 1, SettlementValue: NewMoney(decimal.RequireFromString("12.50"), "USD")},
			"b": {Quantity: 2, SettlementValue: NewMoney(decimal.RequireFromString("3.00"), "USD")},
			// Wrong currency: skipped rather than coerced.
			"c": {Quantity: 1, SettlementValue: NewMoney(decimal.NewFromInt(99), "EUR")},
		},
	}

	total := c.SettlementTotal()
	require.Equal(t, "15.50 USD", total.String())
}

func TestClaimSettlementTotalEmpty(t *testing.T) {
	t.Parallel()

	c := Claim{Currency: "USD"}
	require.True(t, c.SettlementTotal().IsZero())
	require.Equal(t, "USD", c.SettlementTotal().Currency)
}

func TestClaimExpiredBy(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := Claim{Status: ClaimPending, CreatedAt: created}

	require.False(t, c.ExpiredBy(created.AddDate(0, 0, 44), 45))
	require.True(t, c.ExpiredBy(created.AddDate(0, 0, 46), 45))

	// Exactly at the boundary is still live.
	require.False(t, c.ExpiredBy(created.Add(45*24*time.Hour), 45))

	// Already-expired claims never report true again, so sweeps are one-shot.
	c.Status = ClaimExpired
	require.False(t, c.ExpiredBy(created.AddDate(0, 1, 0), 45))
}

func TestValidClaimStatus(t *testing.T) {
	t.Parallel()

	for _, s := range []ClaimStatus{ClaimPending, ClaimApproved, ClaimRejected, ClaimSettled, ClaimExpired} {
		require.True(t, ValidClaimStatus(s))
	}
	require.False(t, ValidClaimStatus("open"))
	require.False(t, ValidClaimStatus(""))
}
