package commission

import (
	"context"

	"marketplace-backend/internal/domain"
)

type commissionRepo interface {
	GetByID(ctx context.Context, id string) (*domain.MarketplaceCommission, error)
	GetByOrder(ctx context.Context, orderID string) (*domain.MarketplaceCommission, error)
	Save(ctx context.Context, c *domain.MarketplaceCommission) error
}

type sellerRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Seller, error)
	SaveBalances(ctx context.Context, s *domain.Seller) error
}

type Service struct {
	commissions commissionRepo
	sellers     sellerRepo
	clock       domain.Clock
}

func New(commissions commissionRepo, sellers sellerRepo, clock domain.Clock) *Service {
	return &Service{commissions: commissions, sellers: sellers, clock: clock}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.MarketplaceCommission, error) {
	return s.commissions.GetByID(ctx, id)
}

func (s *Service) GetByOrder(ctx context.Context, orderID string) (*domain.MarketplaceCommission, error) {
	return s.commissions.GetByOrder(ctx, orderID)
}

// SetTransactionFee records the processor fee and re-derives the net split.
func (s *Service) SetTransactionFee(ctx context.Context, id string, fee domain.Money) (*domain.MarketplaceCommission, error) {
	c, err := s.commissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.SetTransactionFee(fee)
	if err := s.commissions.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Collect marks the commission collected and credits the seller's pending
// balance with their share of the order.
func (s *Service) Collect(ctx context.Context, id string) (*domain.MarketplaceCommission, error) {
	c, err := s.commissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	collected := c.Status == domain.CommissionCollected
	if err := c.Collect(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.commissions.Save(ctx, c); err != nil {
		return nil, err
	}
	if collected {
		return c, nil
	}
	seller, err := s.sellers.GetByID(ctx, c.SellerID)
	if err != nil {
		return nil, err
	}
	seller.PendingBalance = seller.PendingBalance.Add(c.SellerAmount)
	if err := s.sellers.SaveBalances(ctx, seller); err != nil {
		return nil, err
	}
	return c, nil
}

// Dispute flags the commission; any state can be disputed.
func (s *Service) Dispute(ctx context.Context, id string) (*domain.MarketplaceCommission, error) {
	c, err := s.commissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Dispute(s.clock.Now())
	if err := s.commissions.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
