package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shipmatic/dashboard/internal/aggregation"
	"github.com/shipmatic/dashboard/internal/claims"
	"github.com/shipmatic/dashboard/internal/domain"
	"github.com/shipmatic/dashboard/internal/pricing"
	"github.com/shipmatic/dashboard/internal/repository"
)

const defaultPageSize = 10

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	orderRepo    *repository.OrderRepo
	settingsRepo *repository.SettingsRepo
	claimSvc     *claims.Service
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

func parseDay(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// parseDateRange handles the startDate/endDate pair. Both must be present,
// matching the dashboard's date picker; the SQL upper bound is stretched to
// the end of the end day so a date-only param stays inclusive.
func parseDateRange(q url.Values) (from, to *time.Time, rng *aggregation.DateRange) {
	start := parseDay(q.Get("startDate"))
	end := parseDay(q.Get("endDate"))
	if start == nil || end == nil {
		return nil, nil, nil
	}
	endOfDay := end.Add(24*time.Hour - time.Second)
	return start, &endOfDay, &aggregation.DateRange{Start: *start, End: *end}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDirection(s string) aggregation.SortDirection {
	if s == string(aggregation.Ascending) {
		return aggregation.Ascending
	}
	return aggregation.Descending
}

func orderQueryFrom(q url.Values) aggregation.OrderQuery {
	var fulfillment []domain.FulfillmentStatus
	for _, s := range splitList(q.Get("fulfillment")) {
		fulfillment = append(fulfillment, domain.FulfillmentStatus(s))
	}

	sortKey := aggregation.OrderSortKey(q.Get("sort"))
	if sortKey == "" {
		sortKey = aggregation.OrderSortCreatedAt
	}

	return aggregation.OrderQuery{
		Search:      q.Get("search"),
		Fulfillment: fulfillment,
		SortKey:     sortKey,
		SortDir:     parseDirection(q.Get("direction")),
		Page:        parseIntDefault(q.Get("page"), 1),
		PageSize:    parseIntDefault(q.Get("limit"), defaultPageSize),
	}
}

func claimQueryFrom(q url.Values) aggregation.ClaimQuery {
	var statuses []domain.ClaimStatus
	for _, s := range splitList(q.Get("status")) {
		statuses = append(statuses, domain.ClaimStatus(s))
	}
	var methods []domain.ResolutionMethod
	for _, s := range splitList(q.Get("method")) {
		methods = append(methods, domain.ResolutionMethod(s))
	}

	sortKey := aggregation.ClaimSortKey(q.Get("sort"))
	if sortKey == "" {
		sortKey = aggregation.ClaimSortCreatedAt
	}

	return aggregation.ClaimQuery{
		Search:   q.Get("search"),
		Statuses: statuses,
		Methods:  methods,
		SortKey:  sortKey,
		SortDir:  parseDirection(q.Get("direction")),
		Page:     parseIntDefault(q.Get("page"), 1),
		PageSize: parseIntDefault(q.Get("limit"), defaultPageSize),
	}
}

// shopCurrency resolves the currency used for aggregates: the shop's widget
// settings win, then the fallback from the record set, then USD.
func (h *Handlers) shopCurrency(shop, fallback string) string {
	if ws, err := h.settingsRepo.GetWidget(shop); err == nil && ws.MinimumCharge.Currency != "" {
		return ws.MinimumCharge.Currency
	}
	if fallback != "" {
		return fallback
	}
	return "USD"
}

func rollupResponse(r aggregation.Rollup) map[string]any {
	avg := any("N/A")
	if r.Average != nil {
		avg = *r.Average
	}
	return map[string]any{
		"count":   r.Count,
		"total":   r.Total,
		"average": avg,
	}
}

func uniqueOrderIDs(claimList []domain.Claim) []string {
	seen := make(map[string]bool, len(claimList))
	var ids []string
	for _, c := range claimList {
		if !seen[c.OrderID] {
			seen[c.OrderID] = true
			ids = append(ids, c.OrderID)
		}
	}
	return ids
}

// --- Orders ---

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	shop := q.Get("shop")
	if shop == "" {
		writeError(w, http.StatusBadRequest, "shop is required")
		return
	}

	from, to, _ := parseDateRange(q)
	orders, err := h.orderRepo.ListByShop(shop, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	query := orderQueryFrom(q)
	page, filtered := aggregation.OrdersView(orders, query)

	writeJSON(w, http.StatusOK, map[string]any{
		"orders":             page,
		"total":              len(filtered),
		"page":               query.Page,
		"limit":              query.PageSize,
		"fulfillment_counts": aggregation.FulfillmentCounts(filtered),
	})
}

func (h *Handlers) OrdersTimeseries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	shop := q.Get("shop")
	if shop == "" {
		writeError(w, http.StatusBadRequest, "shop is required")
		return
	}

	from, to, rng := parseDateRange(q)
	orders, err := h.orderRepo.ListByShop(shop, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Filters narrow the set before gap filling, so zero days in the output
	// mean "no matching activity", not "filtered out".
	filtered := aggregation.FilterOrders(orders, orderQueryFrom(q))

	currency := "USD"
	if len(orders) > 0 {
		currency = orders[0].Currency
	}
	buckets, err := aggregation.BucketOrdersByDay(filtered, rng, time.Now(), h.shopCurrency(shop, currency))
	if errors.Is(err, aggregation.ErrInvalidRange) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"buckets": buckets})
}

func (h *Handlers) OrdersSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	shop := q.Get("shop")
	if shop == "" {
		writeError(w, http.StatusBadRequest, "shop is required")
		return
	}

	from, to, _ := parseDateRange(q)
	orders, err := h.orderRepo.ListByShop(shop, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filtered := aggregation.FilterOrders(orders, orderQueryFrom(q))

	currency := "USD"
	if len(orders) > 0 {
		currency = orders[0].Currency
	}
	rollup := aggregation.RollupOrders(filtered, h.shopCurrency(shop, currency))

	writeJSON(w, http.StatusOK, rollupResponse(rollup))
}

// --- Claims ---

func (h *Handlers) ListClaims(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	shop := q.Get("shop")
	if shop == "" {
		writeError(w, http.StatusBadRequest, "shop is required")
		return
	}

	from, to, _ := parseDateRange(q)
	claimList, err := h.claimSvc.ListForShop(shop, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ordersMap, err := h.orderRepo.GetByIDs(uniqueOrderIDs(claimList))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	query := claimQueryFrom(q)
	page, filtered := aggregation.ClaimsView(claimList, ordersMap, query)

	writeJSON(w, http.StatusOK, map[string]any{
		"claims":        page,
		"orders":        ordersMap,
		"total":         len(filtered),
		"page":          query.Page,
		"limit":         query.PageSize,
		"status_counts": aggregation.StatusCounts(filtered),
		"method_counts": aggregation.MethodCounts(filtered),
	})
}

func (h *Handlers) GetClaim(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claim, err := h.claimSvc.Get(id)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "claim not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]any{"claim": claim}
	if order, err := h.orderRepo.GetByID(claim.OrderID); err == nil {
		resp["order"] = order
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) UpdateClaimStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Status domain.ClaimStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	claim, err := h.claimSvc.UpdateStatus(id, body.Status)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "claim not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"claim": claim})
}

func (h *Handlers) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Shop    string                      `json:"shop"`
		OrderID string                      `json:"order_id"`
		Method  domain.ResolutionMethod     `json:"method"`
		Items   map[string]domain.ClaimItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	if body.Shop == "" || body.OrderID == "" {
		writeError(w, http.StatusBadRequest, "shop and order_id are required")
		return
	}

	claim, err := h.claimSvc.Submit(body.Shop, body.OrderID, body.Method, body.Items)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"claim": claim})
}

func (h *Handlers) ClaimsTimeseries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	shop := q.Get("shop")
	if shop == "" {
		writeError(w, http.StatusBadRequest, "shop is required")
		return
	}

	from, to, rng := parseDateRange(q)
	claimList, err := h.claimSvc.ListForShop(shop, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ordersMap, err := h.orderRepo.GetByIDs(uniqueOrderIDs(claimList))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filtered := aggregation.FilterClaims(claimList, ordersMap, claimQueryFrom(q))

	currency := "USD"
	if len(claimList) > 0 {
		currency = claimList[0].Currency
	}
	buckets, err := aggregation.BucketClaimsByDay(filtered, rng, time.Now(), h.shopCurrency(shop, currency))
	if errors.Is(err, aggregation.ErrInvalidRange) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"buckets": buckets})
}

func (h *Handlers) ClaimsSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	shop := q.Get("shop")
	if shop == "" {
		writeError(w, http.StatusBadRequest, "shop is required")
		return
	}

	from, to, _ := parseDateRange(q)
	claimList, err := h.claimSvc.ListForShop(shop, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ordersMap, err := h.orderRepo.GetByIDs(uniqueOrderIDs(claimList))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filtered := aggregation.FilterClaims(claimList, ordersMap, claimQueryFrom(q))

	currency := "USD"
	if len(claimList) > 0 {
		currency = claimList[0].Currency
	}
	rollup := aggregation.RollupClaims(filtered, h.shopCurrency(shop, currency))

	writeJSON(w, http.StatusOK, rollupResponse(rollup))
}

// --- Dashboard ---

func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	shop := q.Get("shop")
	if shop == "" {
		writeError(w, http.StatusBadRequest, "shop is required")
		return
	}

	from, to, rng := parseDateRange(q)

	orders, err := h.orderRepo.ListByShop(shop, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	claimList, err := h.claimSvc.ListForShop(shop, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	currency := "USD"
	if len(orders) > 0 {
		currency = orders[0].Currency
	}
	currency = h.shopCurrency(shop, currency)

	now := time.Now()
	orderBuckets, err := aggregation.BucketOrdersByDay(orders, rng, now, currency)
	if errors.Is(err, aggregation.ErrInvalidRange) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	claimBuckets, err := aggregation.BucketClaimsByDay(claimList, rng, now, currency)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"orders": map[string]any{
			"summary":   rollupResponse(aggregation.RollupOrders(orders, currency)),
			"buckets":   orderBuckets,
			"by_status": aggregation.FulfillmentCounts(orders),
		},
		"claims": map[string]any{
			"summary":   rollupResponse(aggregation.RollupClaims(claimList, currency)),
			"buckets":   claimBuckets,
			"by_status": aggregation.StatusCounts(claimList),
			"by_method": aggregation.MethodCounts(claimList),
		},
	})
}

// --- Settings ---

func (h *Handlers) GetWidgetSettings(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		writeError(w, http.StatusBadRequest, "shop is required")
		return
	}

	ws, err := h.settingsRepo.GetWidget(shop)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "no widget settings for shop")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ws)
}

func (h *Handlers) PutWidgetSettings(w http.ResponseWriter, r *http.Request) {
	var ws domain.WidgetSettings
	if err := json.NewDecoder(r.Body).Decode(&ws); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	if ws.Shop == "" {
		writeError(w, http.StatusBadRequest, "shop is required")
		return
	}

	if err := h.settingsRepo.UpsertWidget(&ws); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ws)
}

func (h *Handlers) GetClaimPortalSettings(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		writeError(w, http.StatusBadRequest, "shop is required")
		return
	}

	cps, err := h.settingsRepo.GetClaimPortal(shop)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, cps)
}

func (h *Handlers) PutClaimPortalSettings(w http.ResponseWriter, r *http.Request) {
	var cps domain.ClaimPortalSettings
	if err := json.NewDecoder(r.Body).Decode(&cps); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	if cps.Shop == "" {
		writeError(w, http.StatusBadRequest, "shop is required")
		return
	}

	if err := h.settingsRepo.UpsertClaimPortal(cps); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, cps)
}

// --- Storefront ---

// GetPublicWidget serves the widget configuration the storefront script
// renders from. Shape mirrors what the admin saved; the appearance blob
// passes through untouched.
func (h *Handlers) GetPublicWidget(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		writeError(w, http.StatusBadRequest, "shop is required")
		return
	}

	ws, err := h.settingsRepo.GetWidget(shop)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "no widget configuration for shop")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"widget": ws})
}

// QuoteFee resolves the protection fee for a cart total at checkout or
// widget-preview time.
func (h *Handlers) QuoteFee(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Shop      string `json:"shop"`
		CartTotal string `json:"cart_total"`
		Currency  string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	if body.Shop == "" || body.CartTotal == "" || body.Currency == "" {
		writeError(w, http.StatusBadRequest, "shop, cart_total and currency are required")
		return
	}

	ws, err := h.settingsRepo.GetWidget(body.Shop)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "no widget settings for shop")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	cartTotal, err := domain.MoneyFromString(body.CartTotal, body.Currency)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := pricing.Resolve(ws.Pricing, cartTotal)
	if errors.Is(err, domain.ErrCurrencyMismatch) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if result.NoMatchingTier {
		log.Printf("[api] no matching tier for %s cart %s", body.Shop, cartTotal)
	}

	writeJSON(w, http.StatusOK, result)
}
