package cart

import (
	"context"
	"time"

	"marketplace-backend/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, cart *domain.Cart) error
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
	// Save persists the whole aggregate: cart row, lines and coupon records.
	Save(ctx context.Context, cart *domain.Cart) error
	SoftDelete(ctx context.Context, id string, now time.Time) error
	// PurgeExpired soft-deletes carts inactive longer than window and reports
	// how many were purged.
	PurgeExpired(ctx context.Context, now time.Time, window time.Duration) (int64, error)
}
