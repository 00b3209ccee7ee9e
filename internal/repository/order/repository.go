package order

import (
	"context"

	"marketplace-backend/internal/domain"
)

// Orders are inserted by the checkout repository as part of the checkout
// transaction; this repository covers reads and lifecycle updates.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error)
	ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]domain.Order, error)
	// SaveStatus persists the mutable portion of an order after a transition.
	SaveStatus(ctx context.Context, o *domain.Order) error
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
}
