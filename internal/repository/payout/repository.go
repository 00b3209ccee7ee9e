package payout

import (
	"context"
	"errors"

	"marketplace-backend/internal/domain"
)

// ErrDuplicateNumber reports a payout number collision; callers regenerate the
// number and retry.
var ErrDuplicateNumber = errors.New("duplicate payout number")

type Repository interface {
	// Create persists the payout and marks the swept commission rows so they
	// are not paid out twice, in one transaction.
	Create(ctx context.Context, p *domain.SellerPayout, commissionIDs []string) error
	GetByID(ctx context.Context, id string) (*domain.SellerPayout, error)
	ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]domain.SellerPayout, error)
	Save(ctx context.Context, p *domain.SellerPayout) error
	// ReleaseCommissions unmarks the commission rows swept into a payout so a
	// later sweep can pick them up again.
	ReleaseCommissions(ctx context.Context, payoutID string) error
}
