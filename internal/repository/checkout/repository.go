package checkout

import (
	"context"
	"errors"

	"marketplace-backend/internal/domain"
)

// ErrDuplicateNumber reports an order number collision inside the checkout
// transaction; the caller regenerates numbers and retries the whole checkout.
var ErrDuplicateNumber = errors.New("duplicate order number")

// ErrStockConflict reports that another checkout consumed the stock first.
var ErrStockConflict = errors.New("stock conflict")

// StockDecrement is one product/variant stock reservation to apply at commit.
type StockDecrement struct {
	ProductID string
	VariantID *string
	Quantity  int
}

// Input is everything a checkout persists atomically: the per-seller orders
// with their commission rows, the stock decrements, the coupon usage audit
// records, and the cart to clear.
type Input struct {
	CartID      string
	Orders      []*domain.Order
	Commissions []*domain.MarketplaceCommission
	Stock       []StockDecrement
	Usages      []domain.CouponUsage
}

type Repository interface {
	// Persist commits the whole checkout in one transaction.
	Persist(ctx context.Context, in Input) error
}
