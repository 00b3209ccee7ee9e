package seller

import (
	"context"

	"marketplace-backend/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, s *domain.Seller) error
	GetByID(ctx context.Context, id string) (*domain.Seller, error)
	GetMarketplace(ctx context.Context, id string) (*domain.Marketplace, error)
	// SaveStatus persists the verification state and timestamps.
	SaveStatus(ctx context.Context, s *domain.Seller) error
	// SaveBalances persists balance and pending balance.
	SaveBalances(ctx context.Context, s *domain.Seller) error
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
}
