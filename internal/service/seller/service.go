package seller

import (
	"context"
	"fmt"

	"marketplace-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type sellerRepo interface {
	Create(ctx context.Context, s *domain.Seller) error
	GetByID(ctx context.Context, id string) (*domain.Seller, error)
	GetMarketplace(ctx context.Context, id string) (*domain.Marketplace, error)
	SaveStatus(ctx context.Context, s *domain.Seller) error
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
}

type Service struct {
	sellers sellerRepo
	clock   domain.Clock
}

func New(sellers sellerRepo, clock domain.Clock) *Service {
	return &Service{sellers: sellers, clock: clock}
}

type CreateInput struct {
	MarketplaceID  string  `json:"marketplaceId"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	CommissionRate *string `json:"commissionRate,omitempty"`
}

// Create registers a pending seller on a marketplace; balances start at zero
// in the marketplace currency.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Seller, error) {
	marketplace, err := s.sellers.GetMarketplace(ctx, in.MarketplaceID)
	if err != nil {
		return nil, err
	}
	seller := &domain.Seller{
		ID:             uuid.NewString(),
		MarketplaceID:  marketplace.ID,
		Name:           in.Name,
		Email:          in.Email,
		Status:         domain.SellerPending,
		Balance:        domain.Zero(marketplace.Currency),
		PendingBalance: domain.Zero(marketplace.Currency),
		CreatedAt:      s.clock.Now(),
	}
	if in.CommissionRate != nil {
		rate, err := decimal.NewFromString(*in.CommissionRate)
		if err != nil || rate.IsNegative() {
			return nil, fmt.Errorf("commission rate %q: %w", *in.CommissionRate, domain.ErrInvalidAmount)
		}
		seller.CommissionRate = &rate
	}
	if err := s.sellers.Create(ctx, seller); err != nil {
		return nil, err
	}
	return seller, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Seller, error) {
	return s.sellers.GetByID(ctx, id)
}

func (s *Service) Approve(ctx context.Context, id string) (*domain.Seller, error) {
	return s.transition(ctx, id, func(seller *domain.Seller) error {
		return seller.Approve(s.clock.Now())
	})
}

func (s *Service) Reject(ctx context.Context, id string) (*domain.Seller, error) {
	return s.transition(ctx, id, (*domain.Seller).Reject)
}

func (s *Service) Suspend(ctx context.Context, id string) (*domain.Seller, error) {
	return s.transition(ctx, id, func(seller *domain.Seller) error {
		return seller.Suspend(s.clock.Now())
	})
}

func (s *Service) Reactivate(ctx context.Context, id string) (*domain.Seller, error) {
	return s.transition(ctx, id, (*domain.Seller).Reactivate)
}

func (s *Service) Deactivate(ctx context.Context, id string) (*domain.Seller, error) {
	return s.transition(ctx, id, (*domain.Seller).Deactivate)
}

// SetVacationMode toggles the listing pause without touching verification
// status.
func (s *Service) SetVacationMode(ctx context.Context, id string, on bool) (*domain.Seller, error) {
	return s.transition(ctx, id, func(seller *domain.Seller) error {
		seller.VacationMode = on
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.sellers.SoftDelete(ctx, id)
}

func (s *Service) Restore(ctx context.Context, id string) error {
	return s.sellers.Restore(ctx, id)
}

func (s *Service) transition(ctx context.Context, id string, apply func(*domain.Seller) error) (*domain.Seller, error) {
	seller, err := s.sellers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(seller); err != nil {
		return nil, fmt.Errorf("seller %s: %w", id, err)
	}
	if err := s.sellers.SaveStatus(ctx, seller); err != nil {
		return nil, err
	}
	return seller, nil
}
