package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/shipmatic/dashboard/internal/api"
	"github.com/shipmatic/dashboard/internal/claims"
	"github.com/shipmatic/dashboard/internal/domain"
	"github.com/shipmatic/dashboard/internal/repository"
)

// SeedShop is the demo shop the bundled testdata belongs to.
const SeedShop = "demo-shop.myshopify.com"

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "shipmatic.db"
	}

	expiryDays := domain.DefaultClaimExpiryDays
	if v := os.Getenv("CLAIM_EXPIRY_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			log.Fatalf("Invalid CLAIM_EXPIRY_DAYS %q", v)
		}
		expiryDays = n
	}

	log.Printf("Initializing database at %s", dbPath)
	db, err := repository.InitDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	// Create repositories.
	orderRepo := repository.NewOrderRepo(db)
	claimRepo := repository.NewClaimRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)

	// Create services.
	claimSvc := claims.NewService(claimRepo, orderRepo, settingsRepo)

	// Seed snapshots if DB is empty.
	count, err := orderRepo.Count()
	if err != nil {
		log.Fatalf("Failed to count orders: %v", err)
	}
	if count == 0 {
		log.Println("Database is empty, seeding from testdata...")
		if err := seed(orderRepo, claimRepo, settingsRepo, expiryDays); err != nil {
			log.Printf("WARNING: Failed to seed: %v", err)
		}
	} else {
		log.Printf("Database already has %d orders, skipping seed", count)
	}

	// Create router.
	router := api.NewRouter(orderRepo, settingsRepo, claimSvc)

	log.Printf("Shipmatic Protection Admin API")
	log.Printf("Listening on http://localhost:%s", port)
	log.Printf("API base: http://localhost:%s/api/v1", port)
	log.Printf("")
	log.Printf("Endpoints:")
	log.Printf("  GET    /api/v1/orders")
	log.Printf("  GET    /api/v1/orders/timeseries")
	log.Printf("  GET    /api/v1/orders/summary")
	log.Printf("  GET    /api/v1/claims")
	log.Printf("  POST   /api/v1/claims")
	log.Printf("  GET    /api/v1/claims/{id}")
	log.Printf("  PATCH  /api/v1/claims/{id}/status")
	log.Printf("  GET    /api/v1/claims/timeseries")
	log.Printf("  GET    /api/v1/claims/summary")
	log.Printf("  GET    /api/v1/dashboard")
	log.Printf("  GET    /api/v1/settings/widget")
	log.Printf("  PUT    /api/v1/settings/widget")
	log.Printf("  GET    /api/v1/settings/claim-portal")
	log.Printf("  PUT    /api/v1/settings/claim-portal")
	log.Printf("  GET    /api/v1/widget")
	log.Printf("  POST   /api/v1/quote")

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func seed(orderRepo *repository.OrderRepo, claimRepo *repository.ClaimRepo, settingsRepo *repository.SettingsRepo, expiryDays int) error {
	var orders []domain.Order
	if err := loadSeedFile("orders.json", &orders); err != nil {
		return err
	}
	inserted, err := orderRepo.BulkInsert(orders)
	if err != nil {
		return fmt.Errorf("insert orders: %w", err)
	}
	log.Printf("[seed] %d orders (out of %d in file)", inserted, len(orders))

	var claimList []domain.Claim
	if err := loadSeedFile("claims.json", &claimList); err != nil {
		return err
	}
	inserted, err = claimRepo.BulkInsert(claimList)
	if err != nil {
		return fmt.Errorf("insert claims: %w", err)
	}
	log.Printf("[seed] %d claims (out of %d in file)", inserted, len(claimList))

	// Give the demo shop a working widget so quote/widget endpoints respond
	// out of the box. Matches the admin UI's starting values.
	if _, err := settingsRepo.GetWidget(SeedShop); err == sql.ErrNoRows {
		ws := &domain.WidgetSettings{
			Shop:                SeedShop,
			AddonTitle:          "Shipping protection",
			EnabledDescription:  "100% guarantee & protect your order from damage, loss, or theft.",
			DisabledDescription: "By deselecting shipping protection, we are not liable for lost, damaged, or stolen products.",
			Published:           true,
			Pricing: domain.PricingConfig{
				Mode: domain.PricingPercentage,
				Rate: decimal.RequireFromString("0.5"),
			},
			MinimumCharge:   domain.ZeroMoney("USD"),
			IncrementAmount: domain.ZeroMoney("USD"),
		}
		if err := settingsRepo.UpsertWidget(ws); err != nil {
			return fmt.Errorf("seed widget settings: %w", err)
		}
		log.Printf("[seed] widget settings for %s", SeedShop)
	}

	cps := domain.DefaultClaimPortalSettings(SeedShop)
	cps.Days = expiryDays
	if err := settingsRepo.UpsertClaimPortal(cps); err != nil {
		return fmt.Errorf("seed claim portal settings: %w", err)
	}
	log.Printf("[seed] claim portal settings for %s (window=%dd)", SeedShop, cps.Days)

	return nil
}

func loadSeedFile(name string, v any) error {
	// Try multiple possible locations for testdata.
	candidates := []string{
		filepath.Join("testdata", name),
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(dir, "testdata", name),
			filepath.Join(dir, "..", "..", "testdata", name),
		)
	}

	var data []byte
	var loadErr error
	for _, path := range candidates {
		data, loadErr = os.ReadFile(path)
		if loadErr == nil {
			log.Printf("Loaded %s from %s", name, path)
			break
		}
	}
	if loadErr != nil {
		return fmt.Errorf("could not find %s in any candidate path: %w", name, loadErr)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return nil
}
