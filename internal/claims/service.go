// Package claims owns the claim lifecycle on the admin side: listing with
// the time-based expiry sweep, intake from the customer portal, and admin
// status transitions.
package claims

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/shipmatic/dashboard/internal/domain"
	"github.com/shipmatic/dashboard/internal/repository"
)

// Service coordinates claim reads and transitions against the repositories.
type Service struct {
	claimRepo    *repository.ClaimRepo
	orderRepo    *repository.OrderRepo
	settingsRepo *repository.SettingsRepo
}

func NewService(
	claimRepo *repository.ClaimRepo,
	orderRepo *repository.OrderRepo,
	settingsRepo *repository.SettingsRepo,
) *Service {
	return &Service{
		claimRepo:    claimRepo,
		orderRepo:    orderRepo,
		settingsRepo: settingsRepo,
	}
}

// ListForShop returns a shop's claims with the expiry rule applied first:
// claims older than the portal's window are flipped to expired and persisted
// before the list is returned. Expiry is evaluated here at query time; there
// is no background job.
func (s *Service) ListForShop(shop string, from, to *time.Time) ([]domain.Claim, error) {
	portal, err := s.settingsRepo.GetClaimPortal(shop)
	if err != nil {
		return nil, fmt.Errorf("load portal settings: %w", err)
	}

	claims, err := s.claimRepo.ListByShop(shop, from, to)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	now := time.Now()
	var expiredIDs []string
	for i := range claims {
		if claims[i].ExpiredBy(now, portal.Days) {
			expiredIDs = append(expiredIDs, claims[i].ID)
			claims[i].Status = domain.ClaimExpired
		}
	}

	if len(expiredIDs) > 0 {
		if err := s.claimRepo.ExpireMany(expiredIDs); err != nil {
			return nil, fmt.Errorf("expire claims: %w", err)
		}
		log.Printf("[claims] expired %d claims for %s (window=%dd)",
			len(expiredIDs), shop, portal.Days)
	}

	return claims, nil
}

func (s *Service) Get(id string) (*domain.Claim, error) {
	return s.claimRepo.GetByID(id)
}

// UpdateStatus applies an admin status transition and returns the updated
// claim.
func (s *Service) UpdateStatus(id string, status domain.ClaimStatus) (*domain.Claim, error) {
	if !domain.ValidClaimStatus(status) {
		return nil, fmt.Errorf("unknown claim status %q", status)
	}
	if err := s.claimRepo.UpdateStatus(id, status); err != nil {
		return nil, err
	}
	return s.claimRepo.GetByID(id)
}

// Submit creates a claim from the customer portal. The order must exist; the
// resolution method falls back to the shop's configured default when the
// customer did not choose one.
func (s *Service) Submit(shop, orderID string, method domain.ResolutionMethod, items map[string]domain.ClaimItem) (*domain.Claim, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("claim requires at least one item")
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %s not found", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}

	if method == domain.ResolutionNone {
		portal, err := s.settingsRepo.GetClaimPortal(shop)
		if err != nil {
			return nil, fmt.Errorf("load portal settings: %w", err)
		}
		method = portal.Resolution
	}

	claim := &domain.Claim{
		ID:        "CLM-" + uuid.NewString(),
		Shop:      shop,
		OrderID:   orderID,
		Status:    domain.ClaimPending,
		Method:    method,
		Currency:  order.Currency,
		CreatedAt: time.Now().UTC(),
		Items:     items,
	}

	if err := s.claimRepo.Insert(claim); err != nil {
		return nil, err
	}

	log.Printf("[claims] submitted %s for order %s (%s)", claim.ID, orderID, method)
	return claim, nil
}
