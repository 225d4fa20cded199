package domain

import "time"

type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "pending"
	ClaimApproved ClaimStatus = "approved"
	ClaimRejected ClaimStatus = "rejected"
	ClaimSettled  ClaimStatus = "settled"
	ClaimExpired  ClaimStatus = "expired"
)

// ValidClaimStatus reports whether s is one of the known claim statuses.
func ValidClaimStatus(s ClaimStatus) bool {
	switch s {
	case ClaimPending, ClaimApproved, ClaimRejected, ClaimSettled, ClaimExpired:
		return true
	}
	return false
}

// ResolutionMethod is how an approved claim is made whole. Empty means the
// customer has not chosen yet.
type ResolutionMethod string

const (
	ResolutionRefund  ResolutionMethod = "refund"
	ResolutionReorder ResolutionMethod = "reorder"
	ResolutionNone    ResolutionMethod = ""
)

// ClaimItem is one affected line item within a claim.
type ClaimItem struct {
	Quantity        int      `json:"quantity"`
	Reasons         []string `json:"reasons"`
	Notes           string   `json:"notes,omitempty"`
	SettlementValue Money    `json:"settlement_value"`
}

// Claim is a customer-submitted resolution request against an order. OrderID
// is a foreign reference, not an owning pointer.
type Claim struct {
	ID        string               `json:"id"`
	Shop      string               `json:"shop"`
	OrderID   string               `json:"order_id"`
	Status    ClaimStatus          `json:"status"`
	Method    ResolutionMethod     `json:"method"`
	Currency  string               `json:"currency"`
	CreatedAt time.Time            `json:"created_at"`
	Items     map[string]ClaimItem `json:"items"`
}

// SettlementTotal sums the settlement values across the claim's items.
// Items in a different currency are skipped; mixed-currency claims are
// rejected upstream before they reach this layer.
func (c Claim) SettlementTotal() Money {
	total := ZeroMoney(c.Currency)
	for _, item := range c.Items {
		if item.SettlementValue.Currency != c.Currency {
			continue
		}
		total.Amount = total.Amount.Add(item.SettlementValue.Amount)
	}
	return total
}

// ExpiredBy reports whether the claim has outlived the portal's window of
// `days` days at the given instant. Already-expired claims report false so
// sweeps only touch claims that still need the transition.
func (c Claim) ExpiredBy(now time.Time, days int) bool {
	if c.Status == ClaimExpired {
		return false
	}
	return c.CreatedAt.Add(time.Duration(days) * 24 * time.Hour).Before(now)
}
