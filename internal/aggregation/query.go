// Package aggregation turns immutable order/claim snapshots into the
// filtered, sorted, paginated views and date-bucketed series the dashboard
// renders. All entry points are pure: inputs are never mutated and identical
// inputs yield identical output.
package aggregation

import "github.com/shipmatic/dashboard/internal/domain"

type SortDirection string

const (
	Ascending  SortDirection = "ascending"
	Descending SortDirection = "descending"
)

type OrderSortKey string

const (
	OrderSortCreatedAt     OrderSortKey = "created_at"
	OrderSortNumber        OrderSortKey = "order_number"
	OrderSortProtectionFee OrderSortKey = "protection_fee"
	OrderSortPaid          OrderSortKey = "order_paid"
)

type ClaimSortKey string

const (
	ClaimSortCreatedAt       ClaimSortKey = "created_at"
	ClaimSortOrderID         ClaimSortKey = "order_id"
	ClaimSortSettlementValue ClaimSortKey = "settlement_value"
)

// OrderQuery is the complete descriptor for an order list view. An empty
// Search matches everything; an empty Fulfillment set means no filter.
type OrderQuery struct {
	Search      string
	Fulfillment []domain.FulfillmentStatus
	SortKey     OrderSortKey
	SortDir     SortDirection
	Page        int
	PageSize    int
}

// ClaimQuery is the complete descriptor for a claim list view. Empty sets
// mean no filter, same as OrderQuery.
type ClaimQuery struct {
	Search   string
	Statuses []domain.ClaimStatus
	Methods  []domain.ResolutionMethod
	SortKey  ClaimSortKey
	SortDir  SortDirection
	Page     int
	PageSize int
}

// Paginate slices out the 1-indexed page of the given size. Pages past the
// end yield an empty slice, never an error. The result is freshly allocated
// so callers can hold it without aliasing the input.
func Paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 || pageSize < 1 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}
