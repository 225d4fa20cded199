// Command generate produces the deterministic order/claim snapshots the
// server seeds an empty database with.
package main

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shipmatic/dashboard/internal/domain"
)

const shop = "demo-shop.myshopify.com"

var productTitles = []string{
	"Ceramic Mug", "Linen Throw", "Walnut Cutting Board", "Canvas Tote",
	"Soy Candle", "Brass Bottle Opener", "Wool Socks", "Enamel Pin Set",
}

var claimReasons = []string{"damaged", "lost in transit", "stolen", "wrong item"}

func main() {
	rng := rand.New(rand.NewSource(42))
	baseDir := findTestdataDir()

	// Date range: 2024-01-01 to 2024-02-14.
	startDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	endDate := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	dayRange := int(endDate.Sub(startDate).Hours() / 24)

	fulfillments := []domain.FulfillmentStatus{
		domain.FulfillmentFulfilled,
		domain.FulfillmentFulfilled,
		domain.FulfillmentFulfilled,
		domain.FulfillmentPartiallyFulfilled,
		domain.FulfillmentUnfulfilled,
		domain.FulfillmentScheduled,
		domain.FulfillmentOnHold,
	}

	var orders []domain.Order
	for i := 1; i <= 140; i++ {
		day := rng.Intn(dayRange)
		hour := rng.Intn(24)
		minute := rng.Intn(60)
		createdAt := startDate.AddDate(0, 0, day).Add(
			time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute,
		)

		var items []domain.LineItem
		total := decimal.Zero
		for n := rng.Intn(3) + 1; n > 0; n-- {
			price := roundCents(8 + rng.Float64()*192)
			qty := rng.Intn(3) + 1
			li := domain.LineItem{
				Title:     productTitles[rng.Intn(len(productTitles))],
				Quantity:  qty,
				UnitPrice: domain.NewMoney(price, "USD"),
			}
			items = append(items, li)
			total = total.Add(li.Total().Amount)
		}

		// Most demo orders carry the add-on; the rest show what opting out
		// looks like in the dashboard.
		if rng.Float64() < 0.85 {
			fee := roundCents(1 + rng.Float64()*9)
			li := domain.LineItem{
				Title:     domain.ProtectionLineTitle,
				Quantity:  1,
				UnitPrice: domain.NewMoney(fee, "USD"),
			}
			items = append(items, li)
			total = total.Add(fee)
		}

		orders = append(orders, domain.Order{
			ID:            fmt.Sprintf("ORD-%04d", i),
			Shop:          shop,
			Name:          fmt.Sprintf("#%d", 1000+i),
			CustomerEmail: fmt.Sprintf("customer%03d@example.com", rng.Intn(80)+1),
			Currency:      "USD",
			Total:         domain.NewMoney(total, "USD"),
			Fulfillment:   fulfillments[rng.Intn(len(fulfillments))],
			CreatedAt:     createdAt,
			LineItems:     items,
		})
	}

	writeJSONFile(filepath.Join(baseDir, "orders.json"), orders)
	fmt.Printf("Generated %d orders -> orders.json\n", len(orders))

	// Claims against roughly a fifth of the protected orders.
	var claims []domain.Claim
	claimSeq := 1
	for _, o := range orders {
		if !o.HasProtection() || rng.Float64() > 0.2 {
			continue
		}

		items := make(map[string]domain.ClaimItem)
		li := o.LineItems[0]
		items[fmt.Sprintf("%s-1", o.ID)] = domain.ClaimItem{
			Quantity:        1,
			Reasons:         []string{claimReasons[rng.Intn(len(claimReasons))]},
			SettlementValue: li.UnitPrice,
		}

		// Status distribution: 40% pending, 25% approved, 15% rejected,
		// 20% settled. Expiry is derived at query time, never seeded.
		var status domain.ClaimStatus
		switch roll := rng.Float64(); {
		case roll < 0.40:
			status = domain.ClaimPending
		case roll < 0.65:
			status = domain.ClaimApproved
		case roll < 0.80:
			status = domain.ClaimRejected
		default:
			status = domain.ClaimSettled
		}

		method := domain.ResolutionRefund
		if rng.Float64() < 0.3 {
			method = domain.ResolutionReorder
		}

		claims = append(claims, domain.Claim{
			ID:        fmt.Sprintf("CLM-%04d", claimSeq),
			Shop:      shop,
			OrderID:   o.ID,
			Status:    status,
			Method:    method,
			Currency:  "USD",
			CreatedAt: o.CreatedAt.Add(time.Duration(rng.Intn(10*24)) * time.Hour),
			Items:     items,
		})
		claimSeq++
	}

	writeJSONFile(filepath.Join(baseDir, "claims.json"), claims)
	fmt.Printf("Generated %d claims -> claims.json\n", len(claims))

	fmt.Println("Test data generation complete.")
}

func roundCents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(math.Round(v*100) / 100)
}

func writeJSONFile(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal %s: %v\n", path, err)
		os.Exit(1)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
		os.Exit(1)
	}
}

func findTestdataDir() string {
	candidates := []string{"testdata", filepath.Join("..", "..", "testdata"), "."}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			if _, err := os.Stat(filepath.Join(c, "generate")); err == nil {
				return c
			}
		}
	}
	return "."
}
