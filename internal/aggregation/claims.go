package aggregation

import (
	"sort"
	"strings"

	"github.com/shipmatic/dashboard/internal/domain"
)

// FilterClaims applies search, status set and resolution-method set, in that
// order. Search matches the claim's order reference (raw ID plus the order
// name and customer email when the order snapshot is available) and the
// resolution method, case-insensitively. orders may be nil.
func FilterClaims(claims []domain.Claim, orders map[string]domain.Order, q ClaimQuery) []domain.Claim {
	search := strings.ToLower(q.Search)

	var out []domain.Claim
	for _, c := range claims {
		if search != "" && !claimMatchesSearch(c, orders, search) {
			continue
		}
		if len(q.Statuses) > 0 && !containsStatus(q.Statuses, c.Status) {
			continue
		}
		if len(q.Methods) > 0 && !containsMethod(q.Methods, c.Method) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func claimMatchesSearch(c domain.Claim, orders map[string]domain.Order, search string) bool {
	if strings.Contains(strings.ToLower(c.OrderID), search) {
		return true
	}
	if strings.Contains(strings.ToLower(string(c.Method)), search) {
		return true
	}
	if o, ok := orders[c.OrderID]; ok {
		if strings.Contains(strings.ToLower(o.Name), search) {
			return true
		}
		if strings.Contains(strings.ToLower(o.CustomerEmail), search) {
			return true
		}
	}
	return false
}

// SortClaims returns a sorted copy, stable on ties.
func SortClaims(claims []domain.Claim, key ClaimSortKey, dir SortDirection) []domain.Claim {
	sorted := make([]domain.Claim, len(claims))
	copy(sorted, claims)

	less := func(a, b domain.Claim) bool {
		switch key {
		case ClaimSortOrderID:
			return a.OrderID < b.OrderID
		case ClaimSortSettlementValue:
			return a.SettlementTotal().Amount.LessThan(b.SettlementTotal().Amount)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if dir == Descending {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted
}

// ClaimsView runs filter, sort, paginate. It returns the requested page plus
// the full filtered set for totals and filter badges.
func ClaimsView(claims []domain.Claim, orders map[string]domain.Order, q ClaimQuery) (page, filtered []domain.Claim) {
	filtered = FilterClaims(claims, orders, q)
	sorted := SortClaims(filtered, q.SortKey, q.SortDir)
	return Paginate(sorted, q.Page, q.PageSize), filtered
}

// StatusCounts tallies the filtered set per status, for filter badges.
func StatusCounts(claims []domain.Claim) map[domain.ClaimStatus]int {
	counts := make(map[domain.ClaimStatus]int)
	for _, c := range claims {
		counts[c.Status]++
	}
	return counts
}

// MethodCounts tallies the filtered set per resolution method. Claims with
// no chosen method are left out, matching the filter popover.
func MethodCounts(claims []domain.Claim) map[domain.ResolutionMethod]int {
	counts := make(map[domain.ResolutionMethod]int)
	for _, c := range claims {
		if c.Method != domain.ResolutionNone {
			counts[c.Method]++
		}
	}
	return counts
}

func containsStatus(set []domain.ClaimStatus, s domain.ClaimStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsMethod(set []domain.ResolutionMethod, m domain.ResolutionMethod) bool {
	for _, v := range set {
		if v == m {
			return true
		}
	}
	return false
}
