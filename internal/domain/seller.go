package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Marketplace struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	Currency              string          `json:"currency"`
	DefaultCommissionRate decimal.Decimal `json:"defaultCommissionRate"`
	CreatedAt             time.Time       `json:"createdAt"`
}

type SellerStatus string

const (
	SellerPending   SellerStatus = "pending"
	SellerApproved  SellerStatus = "approved"
	SellerRejected  SellerStatus = "rejected"
	SellerSuspended SellerStatus = "suspended"
	SellerInactive  SellerStatus = "inactive"
)

type Seller struct {
	ID             string           `json:"id"`
	MarketplaceID  string           `json:"marketplaceId"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Status         SellerStatus     `json:"status"`
	CommissionRate *decimal.Decimal `json:"commissionRate,omitempty"` // nil falls back to marketplace default
	Balance        Money            `json:"balance"`
	PendingBalance Money            `json:"pendingBalance"`
	VacationMode   bool             `json:"vacationMode"`
	ApprovedAt     *time.Time       `json:"approvedAt,omitempty"`
	SuspendedAt    *time.Time       `json:"suspendedAt,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	SoftDelete
}

// EffectiveCommissionRate is the seller's own rate when set, otherwise the
// marketplace default.
func (s *Seller) EffectiveCommissionRate(m Marketplace) decimal.Decimal {
	if s.CommissionRate != nil {
		return *s.CommissionRate
	}
	return m.DefaultCommissionRate
}

// CanSell reports whether the seller may list and fulfil orders: approved,
// not suspended or inactive, not deleted, and not on vacation.
func (s *Seller) CanSell() bool {
	return s.Status == SellerApproved && !s.VacationMode && !s.IsDeleted()
}

// Approve moves a pending seller to approved, stamping approval time once.
func (s *Seller) Approve(now time.Time) error {
	if s.Status != SellerPending {
		return ErrInvalidTransition
	}
	s.Status = SellerApproved
	if s.ApprovedAt == nil {
		t := now
		s.ApprovedAt = &t
	}
	return nil
}

// Reject moves a pending seller to rejected.
func (s *Seller) Reject() error {
	if s.Status != SellerPending {
		return ErrInvalidTransition
	}
	s.Status = SellerRejected
	return nil
}

// Suspend overrides an approved seller's status.
func (s *Seller) Suspend(now time.Time) error {
	if s.Status != SellerApproved {
		return ErrInvalidTransition
	}
	s.Status = SellerSuspended
	t := now
	s.SuspendedAt = &t
	return nil
}

// Reactivate lifts a suspension or inactive override back to approved.
func (s *Seller) Reactivate() error {
	if s.Status != SellerSuspended && s.Status != SellerInactive {
		return ErrInvalidTransition
	}
	s.Status = SellerApproved
	s.SuspendedAt = nil
	return nil
}

// Deactivate marks an approved seller inactive.
func (s *Seller) Deactivate() error {
	if s.Status != SellerApproved {
		return ErrInvalidTransition
	}
	s.Status = SellerInactive
	return nil
}
