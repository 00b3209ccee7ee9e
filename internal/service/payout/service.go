package payout

import (
	"context"
	"errors"
	"fmt"

	"marketplace-backend/internal/domain"
	payoutrepo "marketplace-backend/internal/repository/payout"

	"github.com/google/uuid"
)

// createAttempts bounds the retry loop around payout number collisions.
const createAttempts = 3

type payoutRepo interface {
	Create(ctx context.Context, p *domain.SellerPayout, commissionIDs []string) error
	GetByID(ctx context.Context, id string) (*domain.SellerPayout, error)
	ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]domain.SellerPayout, error)
	Save(ctx context.Context, p *domain.SellerPayout) error
	ReleaseCommissions(ctx context.Context, payoutID string) error
}

type commissionRepo interface {
	ListCollectedBySeller(ctx context.Context, sellerID string) ([]domain.MarketplaceCommission, error)
}

type sellerRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Seller, error)
	SaveBalances(ctx context.Context, s *domain.Seller) error
}

type Service struct {
	payouts     payoutRepo
	commissions commissionRepo
	sellers     sellerRepo
	clock       domain.Clock
}

func New(payouts payoutRepo, commissions commissionRepo, sellers sellerRepo, clock domain.Clock) *Service {
	return &Service{payouts: payouts, commissions: commissions, sellers: sellers, clock: clock}
}

type CreateInput struct {
	SellerID      string  `json:"sellerId"`
	PaymentMethod string  `json:"paymentMethod"`
	Fees          *string `json:"fees,omitempty"`
}

// CreateForSeller sweeps the seller's collected commissions into one pending
// payout. The gross amount is the sum of the seller shares; swept rows are
// marked so a second sweep starts empty.
func (s *Service) CreateForSeller(ctx context.Context, in CreateInput) (*domain.SellerPayout, error) {
	seller, err := s.sellers.GetByID(ctx, in.SellerID)
	if err != nil {
		return nil, err
	}
	collected, err := s.commissions.ListCollectedBySeller(ctx, in.SellerID)
	if err != nil {
		return nil, err
	}
	if len(collected) == 0 {
		return nil, fmt.Errorf("seller %s has no collected commissions: %w", in.SellerID, domain.ErrNotFound)
	}

	amount := domain.Zero(seller.Balance.Currency())
	commissionIDs := make([]string, 0, len(collected))
	for _, c := range collected {
		amount = amount.Add(c.SellerAmount)
		commissionIDs = append(commissionIDs, c.ID)
	}
	fees := domain.Zero(amount.Currency())
	if in.Fees != nil {
		if fees, err = domain.NewMoney(*in.Fees, amount.Currency()); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		p := domain.NewSellerPayout(uuid.NewString(), domain.NewPayoutNumber(now), in.SellerID, in.PaymentMethod, amount, fees, now)
		err := s.payouts.Create(ctx, p, commissionIDs)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, payoutrepo.ErrDuplicateNumber) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("create payout for seller %s: %w", in.SellerID, lastErr)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.SellerPayout, error) {
	return s.payouts.GetByID(ctx, id)
}

func (s *Service) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]domain.SellerPayout, error) {
	return s.payouts.ListBySeller(ctx, sellerID, limit, offset)
}

func (s *Service) Process(ctx context.Context, id string) (*domain.SellerPayout, error) {
	return s.transition(ctx, id, func(p *domain.SellerPayout) error {
		return p.Process(s.clock.Now())
	})
}

// Complete finishes the payout and settles the seller's balances: the net
// amount moves from pending into available.
func (s *Service) Complete(ctx context.Context, id string, transactionID *string) (*domain.SellerPayout, error) {
	p, err := s.payouts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	completed := p.Status == domain.PayoutCompleted
	if err := p.Complete(transactionID, s.clock.Now()); err != nil {
		return nil, fmt.Errorf("payout %s: %w", id, err)
	}
	if err := s.payouts.Save(ctx, p); err != nil {
		return nil, err
	}
	if completed {
		return p, nil
	}
	seller, err := s.sellers.GetByID(ctx, p.SellerID)
	if err != nil {
		return nil, err
	}
	seller.PendingBalance = seller.PendingBalance.Sub(p.Amount)
	seller.Balance = seller.Balance.Add(p.NetAmount)
	if err := s.sellers.SaveBalances(ctx, seller); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Fail(ctx context.Context, id, reason string) (*domain.SellerPayout, error) {
	return s.transition(ctx, id, func(p *domain.SellerPayout) error {
		return p.Fail(reason, s.clock.Now())
	})
}

// Cancel aborts a pending or processing payout and releases its swept
// commissions so a later sweep can include them.
func (s *Service) Cancel(ctx context.Context, id string) (*domain.SellerPayout, error) {
	p, err := s.transition(ctx, id, func(p *domain.SellerPayout) error {
		return p.Cancel(s.clock.Now())
	})
	if err != nil {
		return nil, err
	}
	if err := s.payouts.ReleaseCommissions(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) transition(ctx context.Context, id string, apply func(*domain.SellerPayout) error) (*domain.SellerPayout, error) {
	p, err := s.payouts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(p); err != nil {
		return nil, fmt.Errorf("payout %s: %w", id, err)
	}
	if err := s.payouts.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
