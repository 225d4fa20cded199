package aggregation

import (
	"github.com/shopspring/decimal"

	"github.com/shipmatic/dashboard/internal/domain"
)

// Rollup is a summary over a filtered set. Average is nil when the set is
// empty (0/0 has no defined value; the UI renders "N/A").
type Rollup struct {
	Count   int           `json:"count"`
	Total   domain.Money  `json:"total"`
	Average *domain.Money `json:"average"`
}

// RollupOrders summarises protection revenue: Count is the number of orders,
// Total the sum of their protection line totals.
func RollupOrders(orders []domain.Order, currency string) Rollup {
	sum := decimal.Zero
	for _, o := range orders {
		sum = sum.Add(o.ProtectionFee().Amount)
	}
	return newRollup(len(orders), sum, currency)
}

// RollupClaims summarises claim exposure: Count is the number of claims,
// Total the sum of their settlement values.
func RollupClaims(claims []domain.Claim, currency string) Rollup {
	sum := decimal.Zero
	for _, c := range claims {
		sum = sum.Add(c.SettlementTotal().Amount)
	}
	return newRollup(len(claims), sum, currency)
}

func newRollup(count int, sum decimal.Decimal, currency string) Rollup {
	r := Rollup{
		Count: count,
		Total: domain.NewMoney(sum, currency).Round(),
	}
	if count > 0 {
		avg := domain.NewMoney(sum.Div(decimal.NewFromInt(int64(count))), currency).Round()
		r.Average = &avg
	}
	return r
}
