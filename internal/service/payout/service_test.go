package payout

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace-backend/internal/domain"
	payoutrepo "marketplace-backend/internal/repository/payout"

	"github.com/shopspring/decimal"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type stubPayoutRepo struct {
	payouts     map[string]*domain.SellerPayout
	sweeps      [][]string
	released    []string
	failCreates int
}

func newStubPayoutRepo() *stubPayoutRepo {
	return &stubPayoutRepo{payouts: map[string]*domain.SellerPayout{}}
}

func (r *stubPayoutRepo) Create(_ context.Context, p *domain.SellerPayout, commissionIDs []string) error {
	if r.failCreates > 0 {
		r.failCreates--
		return payoutrepo.ErrDuplicateNumber
	}
	r.payouts[p.ID] = p
	r.sweeps = append(r.sweeps, commissionIDs)
	return nil
}

func (r *stubPayoutRepo) GetByID(_ context.Context, id string) (*domain.SellerPayout, error) {
	p, ok := r.payouts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *stubPayoutRepo) ListBySeller(_ context.Context, _ string, _, _ int) ([]domain.SellerPayout, error) {
	return nil, nil
}

func (r *stubPayoutRepo) Save(_ context.Context, p *domain.SellerPayout) error {
	if _, ok := r.payouts[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.payouts[p.ID] = p
	return nil
}

func (r *stubPayoutRepo) ReleaseCommissions(_ context.Context, payoutID string) error {
	r.released = append(r.released, payoutID)
	return nil
}

type stubCommissionRepo struct {
	collected []domain.MarketplaceCommission
}

func (r *stubCommissionRepo) ListCollectedBySeller(_ context.Context, _ string) ([]domain.MarketplaceCommission, error) {
	return r.collected, nil
}

type stubSellerRepo struct {
	seller *domain.Seller
	saves  int
}

func (r *stubSellerRepo) GetByID(_ context.Context, id string) (*domain.Seller, error) {
	if r.seller == nil || r.seller.ID != id {
		return nil, domain.ErrNotFound
	}
	return r.seller, nil
}

func (r *stubSellerRepo) SaveBalances(_ context.Context, s *domain.Seller) error {
	r.saves++
	r.seller = s
	return nil
}

func usd(t *testing.T, s string) domain.Money {
	t.Helper()
	m, err := domain.NewMoney(s, "USD")
	if err != nil {
		t.Fatalf("money %q: %v", s, err)
	}
	return m
}

func collectedCommission(t *testing.T, id, orderAmount, commissionAmount string) domain.MarketplaceCommission {
	t.Helper()
	return domain.MarketplaceCommission{
		ID:               id,
		SellerID:         "seller-1",
		Currency:         "USD",
		OrderAmount:      usd(t, orderAmount),
		CommissionRate:   decimal.NewFromInt(10),
		CommissionAmount: usd(t, commissionAmount),
		SellerAmount:     usd(t, orderAmount).Sub(usd(t, commissionAmount)),
		Status:           domain.CommissionCollected,
	}
}

func testSeller() *domain.Seller {
	return &domain.Seller{
		ID:             "seller-1",
		Status:         domain.SellerApproved,
		Balance:        domain.Zero("USD"),
		PendingBalance: domain.Zero("USD"),
	}
}

func TestCreateForSellerSweepsCollectedCommissions(t *testing.T) {
	payouts := newStubPayoutRepo()
	commissions := &stubCommissionRepo{collected: []domain.MarketplaceCommission{
		collectedCommission(t, "comm-1", "200.00", "20.00"),
		collectedCommission(t, "comm-2", "100.00", "10.00"),
	}}
	svc := New(payouts, commissions, &stubSellerRepo{seller: testSeller()}, fixedClock{testNow})

	p, err := svc.CreateForSeller(context.Background(), CreateInput{SellerID: "seller-1", PaymentMethod: "bank_transfer"})
	if err != nil {
		t.Fatalf("CreateForSeller: %v", err)
	}
	if p.Amount.StringFixed() != "270.00" {
		t.Fatalf("amount = %s, want 270.00", p.Amount.StringFixed())
	}
	if p.NetAmount.StringFixed() != "270.00" {
		t.Fatalf("net = %s, want 270.00 with zero fees", p.NetAmount.StringFixed())
	}
	if p.Status != domain.PayoutPending {
		t.Fatalf("status = %s, want pending", p.Status)
	}
	if len(payouts.sweeps) != 1 || len(payouts.sweeps[0]) != 2 {
		t.Fatalf("expected one sweep of 2 commissions, got %v", payouts.sweeps)
	}
}

func TestCreateForSellerWithFees(t *testing.T) {
	payouts := newStubPayoutRepo()
	commissions := &stubCommissionRepo{collected: []domain.MarketplaceCommission{
		collectedCommission(t, "comm-1", "500.00", "50.00"),
	}}
	svc := New(payouts, commissions, &stubSellerRepo{seller: testSeller()}, fixedClock{testNow})

	fees := "12.50"
	p, err := svc.CreateForSeller(context.Background(), CreateInput{SellerID: "seller-1", PaymentMethod: "bank_transfer", Fees: &fees})
	if err != nil {
		t.Fatalf("CreateForSeller: %v", err)
	}
	if p.NetAmount.StringFixed() != "437.50" {
		t.Fatalf("net = %s, want 437.50", p.NetAmount.StringFixed())
	}
}

func TestCreateForSellerNothingToSweep(t *testing.T) {
	svc := New(newStubPayoutRepo(), &stubCommissionRepo{}, &stubSellerRepo{seller: testSeller()}, fixedClock{testNow})

	_, err := svc.CreateForSeller(context.Background(), CreateInput{SellerID: "seller-1", PaymentMethod: "bank_transfer"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateForSellerRetriesDuplicateNumber(t *testing.T) {
	payouts := newStubPayoutRepo()
	payouts.failCreates = 1
	commissions := &stubCommissionRepo{collected: []domain.MarketplaceCommission{
		collectedCommission(t, "comm-1", "100.00", "10.00"),
	}}
	svc := New(payouts, commissions, &stubSellerRepo{seller: testSeller()}, fixedClock{testNow})

	p, err := svc.CreateForSeller(context.Background(), CreateInput{SellerID: "seller-1", PaymentMethod: "bank_transfer"})
	if err != nil {
		t.Fatalf("CreateForSeller after retry: %v", err)
	}
	if p == nil || p.Status != domain.PayoutPending {
		t.Fatalf("unexpected payout after retry: %+v", p)
	}
}

func TestCompleteSettlesSellerBalances(t *testing.T) {
	payouts := newStubPayoutRepo()
	seller := testSeller()
	seller.PendingBalance = usd(t, "270.00")
	sellers := &stubSellerRepo{seller: seller}
	p := domain.NewSellerPayout("pay-1", "PAY-2026-000001", "seller-1", "bank_transfer", usd(t, "270.00"), usd(t, "10.00"), testNow)
	payouts.payouts[p.ID] = p
	svc := New(payouts, &stubCommissionRepo{}, sellers, fixedClock{testNow})

	txn := "txn-99"
	got, err := svc.Complete(context.Background(), "pay-1", &txn)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Status != domain.PayoutCompleted {
		t.Fatalf("status = %s, want completed", got.Status)
	}
	if sellers.seller.PendingBalance.StringFixed() != "0.00" {
		t.Fatalf("pending = %s, want 0.00", sellers.seller.PendingBalance.StringFixed())
	}
	if sellers.seller.Balance.StringFixed() != "260.00" {
		t.Fatalf("balance = %s, want 260.00 net of fees", sellers.seller.Balance.StringFixed())
	}
}

func TestCompleteTwiceDoesNotDoubleSettle(t *testing.T) {
	payouts := newStubPayoutRepo()
	seller := testSeller()
	seller.PendingBalance = usd(t, "100.00")
	sellers := &stubSellerRepo{seller: seller}
	p := domain.NewSellerPayout("pay-1", "PAY-2026-000001", "seller-1", "bank_transfer", usd(t, "100.00"), domain.Zero("USD"), testNow)
	payouts.payouts[p.ID] = p
	svc := New(payouts, &stubCommissionRepo{}, sellers, fixedClock{testNow})

	if _, err := svc.Complete(context.Background(), "pay-1", nil); err != nil {
		t.Fatalf("first Complete: %v", err)
	}
	if _, err := svc.Complete(context.Background(), "pay-1", nil); err != nil {
		t.Fatalf("second Complete: %v", err)
	}
	if sellers.saves != 1 {
		t.Fatalf("expected one balance save, got %d", sellers.saves)
	}
	if sellers.seller.Balance.StringFixed() != "100.00" {
		t.Fatalf("balance = %s, want 100.00", sellers.seller.Balance.StringFixed())
	}
}

func TestCancelReleasesCommissions(t *testing.T) {
	payouts := newStubPayoutRepo()
	p := domain.NewSellerPayout("pay-1", "PAY-2026-000001", "seller-1", "bank_transfer", usd(t, "50.00"), domain.Zero("USD"), testNow)
	payouts.payouts[p.ID] = p
	svc := New(payouts, &stubCommissionRepo{}, &stubSellerRepo{seller: testSeller()}, fixedClock{testNow})

	got, err := svc.Cancel(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got.Status != domain.PayoutCancelled {
		t.Fatalf("status = %s, want cancelled", got.Status)
	}
	if len(payouts.released) != 1 || payouts.released[0] != "pay-1" {
		t.Fatalf("expected commissions released for pay-1, got %v", payouts.released)
	}
}

func TestCancelCompletedPayoutRejected(t *testing.T) {
	payouts := newStubPayoutRepo()
	p := domain.NewSellerPayout("pay-1", "PAY-2026-000001", "seller-1", "bank_transfer", usd(t, "50.00"), domain.Zero("USD"), testNow)
	if err := p.Complete(nil, testNow); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	payouts.payouts[p.ID] = p
	svc := New(payouts, &stubCommissionRepo{}, &stubSellerRepo{seller: testSeller()}, fixedClock{testNow})

	_, err := svc.Cancel(context.Background(), "pay-1")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if len(payouts.released) != 0 {
		t.Fatalf("commissions released for a rejected cancel: %v", payouts.released)
	}
}
