package aggregation

import (
	"sort"
	"strings"

	"github.com/shipmatic/dashboard/internal/domain"
)

// FilterOrders applies the query's search text and fulfillment set, in that
// order. Search is a case-insensitive substring match against the order name
// and customer email.
func FilterOrders(orders []domain.Order, q OrderQuery) []domain.Order {
	search := strings.ToLower(q.Search)

	var out []domain.Order
	for _, o := range orders {
		if search != "" {
			nameMatch := strings.Contains(strings.ToLower(o.Name), search)
			emailMatch := strings.Contains(strings.ToLower(o.CustomerEmail), search)
			if !nameMatch && !emailMatch {
				continue
			}
		}
		if len(q.Fulfillment) > 0 && !containsFulfillment(q.Fulfillment, o.Fulfillment) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// SortOrders returns a sorted copy. The sort is stable: orders that compare
// equal keep their input order.
func SortOrders(orders []domain.Order, key OrderSortKey, dir SortDirection) []domain.Order {
	sorted := make([]domain.Order, len(orders))
	copy(sorted, orders)

	less := func(a, b domain.Order) bool {
		switch key {
		case OrderSortNumber:
			return a.Name < b.Name
		case OrderSortProtectionFee:
			return a.ProtectionFee().Amount.LessThan(b.ProtectionFee().Amount)
		case OrderSortPaid:
			return a.Total.Amount.LessThan(b.Total.Amount)
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

// OrdersView runs the full pipeline: filter, sort, paginate. It returns the
// requested page plus the full filtered set, which callers need for totals
// and filter badges.
func OrdersView(orders []domain.Order, q OrderQuery) (page, filtered []domain.Order) {
	filtered = FilterOrders(orders, q)
	sorted := SortOrders(filtered, q.SortKey, q.SortDir)
	return Paginate(sorted, q.Page, q.PageSize), filtered
}

// FulfillmentCounts tallies the filtered set per fulfillment status, for the
// filter popover badges.
func FulfillmentCounts(orders []domain.Order) map[domain.FulfillmentStatus]int {
	counts := make(map[domain.FulfillmentStatus]int)
	for _, o := range orders {
		counts[o.Fulfillment]++
	}
	return counts
}

func containsFulfillment(set []domain.FulfillmentStatus, s domain.FulfillmentStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
