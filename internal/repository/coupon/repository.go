package coupon

import (
	"context"

	"marketplace-backend/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, c *domain.CouponCode) error
	GetByCode(ctx context.Context, code string) (*domain.CouponCode, error)
	Update(ctx context.Context, c *domain.CouponCode) error
	SoftDelete(ctx context.Context, code string) error
	Restore(ctx context.Context, code string) error
	// CountUsagesByUser backs once-per-customer enforcement.
	CountUsagesByUser(ctx context.Context, couponID, userID string) (int, error)
	ListUsages(ctx context.Context, couponID string) ([]domain.CouponUsage, error)
}
