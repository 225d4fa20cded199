package domain

import "time"

type FulfillmentStatus string

const (
	FulfillmentFulfilled          FulfillmentStatus = "fulfilled"
	FulfillmentPartiallyFulfilled FulfillmentStatus = "partially_fulfilled"
	FulfillmentUnfulfilled        FulfillmentStatus = "unfulfilled"
	FulfillmentScheduled          FulfillmentStatus = "scheduled"
	FulfillmentOnHold             FulfillmentStatus = "on_hold"
)

// ProtectionLineTitle is the line-item title the add-on product is sold
// under. Aggregations that sum protection revenue match on it.
const ProtectionLineTitle = "Shipping Protections"

type LineItem struct {
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice Money  `json:"unit_price"`
}

// Total returns unit price times quantity.
func (li LineItem) Total() Money {
	return li.UnitPrice.MulInt(li.Quantity)
}

// Order is a read-only snapshot of a store order, fetched upstream and never
// mutated here.
type Order struct {
	ID            string            `json:"id"`
	Shop          string            `json:"shop"`
	Name          string            `json:"name"`
	CustomerEmail string            `json:"customer_email"`
	Currency      string            `json:"currency"`
	Total         Money             `json:"total"`
	Fulfillment   FulfillmentStatus `json:"fulfillment_status"`
	CreatedAt     time.Time         `json:"created_at"`
	LineItems     []LineItem        `json:"line_items"`
}

// ProtectionFee sums the protection line items. Orders without the add-on
// yield a zero fee in the order's currency.
func (o Order) ProtectionFee() Money {
	fee := ZeroMoney(o.Currency)
	for _, li := range o.LineItems {
		if li.Title != ProtectionLineTitle {
			continue
		}
		total := li.Total()
		if total.Currency != fee.Currency {
			continue
		}
		fee.Amount = fee.Amount.Add(total.Amount)
	}
	return fee
}

// HasProtection reports whether the order carries the add-on line item.
func (o Order) HasProtection() bool {
	for _, li := range o.LineItems {
		if li.Title == ProtectionLineTitle {
			return true
		}
	}
	return false
}
