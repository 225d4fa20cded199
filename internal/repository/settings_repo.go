package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shipmatic/dashboard/internal/domain"
)

// SettingsRepo persists per-shop configuration. The pricing blob and the
// appearance blob are stored as JSON-encoded text; the pricing side is
// decoded and validated into the typed union on every load so malformed rows
// surface at the boundary instead of inside fee computation.
type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// GetWidget loads a shop's widget settings. Returns sql.ErrNoRows when the
// shop has never saved any.
func (r *SettingsRepo) GetWidget(shop string) (*domain.WidgetSettings, error) {
	row := r.db.QueryRow(
		`SELECT shop, addon_title, enabled_description, disabled_description,
			published, pricing, minimum_charge, increment_amount, currency,
			appearance
		FROM widget_settings WHERE shop = ?`, shop,
	)

	var ws domain.WidgetSettings
	var published int
	var pricing, minimumCharge, incrementAmount, currency string
	var appearance sql.NullString

	err := row.Scan(
		&ws.Shop, &ws.AddonTitle, &ws.EnabledDescription, &ws.DisabledDescription,
		&published, &pricing, &minimumCharge, &incrementAmount, &currency,
		&appearance,
	)
	if err != nil {
		return nil, err
	}

	ws.Published = published != 0

	cfg, err := domain.DecodePricingConfig([]byte(pricing))
	if err != nil {
		return nil, fmt.Errorf("shop %s: %w", shop, err)
	}
	ws.Pricing = cfg

	if ws.MinimumCharge, err = domain.MoneyFromString(minimumCharge, currency); err != nil {
		return nil, fmt.Errorf("minimum charge: %w", err)
	}
	if ws.IncrementAmount, err = domain.MoneyFromString(incrementAmount, currency); err != nil {
		return nil, fmt.Errorf("increment amount: %w", err)
	}
	if appearance.Valid {
		ws.Appearance = json.RawMessage(appearance.String)
	}

	return &ws, nil
}

// UpsertWidget validates and saves widget settings for a shop.
func (r *SettingsRepo) UpsertWidget(ws *domain.WidgetSettings) error {
	if err := ws.Pricing.Validate(); err != nil {
		return err
	}

	pricing, err := json.Marshal(ws.Pricing)
	if err != nil {
		return fmt.Errorf("marshal pricing: %w", err)
	}

	published := 0
	if ws.Published {
		published = 1
	}
	var appearance any
	if len(ws.Appearance) > 0 {
		appearance = string(ws.Appearance)
	}

	_, err = r.db.Exec(
		`INSERT INTO widget_settings
		(shop, addon_title, enabled_description, disabled_description,
		 published, pricing, minimum_charge, increment_amount, currency,
		 appearance, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(shop) DO UPDATE SET
			addon_title=excluded.addon_title,
			enabled_description=excluded.enabled_description,
			disabled_description=excluded.disabled_description,
			published=excluded.published,
			pricing=excluded.pricing,
			minimum_charge=excluded.minimum_charge,
			increment_amount=excluded.increment_amount,
			currency=excluded.currency,
			appearance=excluded.appearance,
			updated_at=excluded.updated_at`,
		ws.Shop, ws.AddonTitle, ws.EnabledDescription, ws.DisabledDescription,
		published, string(pricing), ws.MinimumCharge.Amount.String(),
		ws.IncrementAmount.Amount.String(), ws.MinimumCharge.Currency,
		appearance, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert widget settings: %w", err)
	}
	return nil
}

// GetClaimPortal loads a shop's claim-portal settings, falling back to the
// defaults when none were ever saved.
func (r *SettingsRepo) GetClaimPortal(shop string) (domain.ClaimPortalSettings, error) {
	row := r.db.QueryRow(
		"SELECT shop, resolution, days FROM claim_portal_settings WHERE shop = ?", shop,
	)

	var cps domain.ClaimPortalSettings
	var resolution string
	err := row.Scan(&cps.Shop, &resolution, &cps.Days)
	if err == sql.ErrNoRows {
		return domain.DefaultClaimPortalSettings(shop), nil
	}
	if err != nil {
		return domain.ClaimPortalSettings{}, err
	}

	cps.Resolution = domain.ResolutionMethod(resolution)
	return cps, nil
}

// UpsertClaimPortal saves claim-portal settings for a shop.
func (r *SettingsRepo) UpsertClaimPortal(cps domain.ClaimPortalSettings) error {
	if cps.Days <= 0 {
		return fmt.Errorf("days must be positive, got %d", cps.Days)
	}
	if cps.Resolution != domain.ResolutionRefund && cps.Resolution != domain.ResolutionReorder {
		return fmt.Errorf("unknown resolution %q", cps.Resolution)
	}

	_, err := r.db.Exec(
		`INSERT INTO claim_portal_settings (shop, resolution, days, updated_at)
		VALUES (?,?,?,?)
		ON CONFLICT(shop) DO UPDATE SET
			resolution=excluded.resolution,
			days=excluded.days,
			updated_at=excluded.updated_at`,
		cps.Shop, string(cps.Resolution), cps.Days,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert claim portal settings: %w", err)
	}
	return nil
}
