package commission

import (
	"context"

	"marketplace-backend/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, c *domain.MarketplaceCommission) error
	GetByID(ctx context.Context, id string) (*domain.MarketplaceCommission, error)
	GetByOrder(ctx context.Context, orderID string) (*domain.MarketplaceCommission, error)
	Save(ctx context.Context, c *domain.MarketplaceCommission) error
	// ListCollectedBySeller returns collected commissions not yet swept into a
	// payout, oldest first.
	ListCollectedBySeller(ctx context.Context, sellerID string) ([]domain.MarketplaceCommission, error)
}
