package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shipmatic/dashboard/internal/claims"
	"github.com/shipmatic/dashboard/internal/repository"
)

// NewRouter creates the Chi router with all API routes mounted. The quote
// and widget routes are called from storefronts through the app proxy, so
// they get permissive CORS; everything else is admin-only and does not.
func NewRouter(
	orderRepo *repository.OrderRepo,
	settingsRepo *repository.SettingsRepo,
	claimSvc *claims.Service,
) http.Handler {
	h := &Handlers{
		orderRepo:    orderRepo,
		settingsRepo: settingsRepo,
		claimSvc:     claimSvc,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		// Orders.
		r.Get("/orders", h.ListOrders)
		r.Get("/orders/timeseries", h.OrdersTimeseries)
		r.Get("/orders/summary", h.OrdersSummary)

		// Claims.
		r.Get("/claims", h.ListClaims)
		r.Post("/claims", h.SubmitClaim)
		r.Get("/claims/{id}", h.GetClaim)
		r.Patch("/claims/{id}/status", h.UpdateClaimStatus)
		r.Get("/claims/timeseries", h.ClaimsTimeseries)
		r.Get("/claims/summary", h.ClaimsSummary)

		// Dashboard.
		r.Get("/dashboard", h.GetDashboard)

		// Settings.
		r.Get("/settings/widget", h.GetWidgetSettings)
		r.Put("/settings/widget", h.PutWidgetSettings)
		r.Get("/settings/claim-portal", h.GetClaimPortalSettings)
		r.Put("/settings/claim-portal", h.PutClaimPortalSettings)

		// Storefront-facing.
		r.Group(func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type"},
			}))
			r.Get("/widget", h.GetPublicWidget)
			r.Post("/quote", h.QuoteFee)
		})
	})

	return r
}
