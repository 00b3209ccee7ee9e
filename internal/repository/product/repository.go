package product

import (
	"context"

	"marketplace-backend/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetVariant(ctx context.Context, productID, variantID string) (*domain.Variant, error)
	Create(ctx context.Context, p *domain.Product) error
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	ListDeleted(ctx context.Context) ([]domain.Product, error)
}
