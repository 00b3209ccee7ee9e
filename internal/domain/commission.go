package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CommissionStatus string

const (
	CommissionPending    CommissionStatus = "pending"
	CommissionCalculated CommissionStatus = "calculated"
	CommissionCollected  CommissionStatus = "collected"
	CommissionDisputed   CommissionStatus = "disputed"
)

// MarketplaceCommission is one row per (order, seller) pair capturing the
// marketplace's cut. The rate is snapshotted from the seller at order time.
type MarketplaceCommission struct {
	ID            string `json:"id"`
	OrderID       string `json:"orderId"`
	OrderNumber   string `json:"orderNumber"`
	SellerID      string `json:"sellerId"`
	MarketplaceID string `json:"marketplaceId"`

	Currency         string          `json:"currency"`
	OrderAmount      Money           `json:"orderAmount"`
	CommissionRate   decimal.Decimal `json:"commissionRate"`
	CommissionAmount Money           `json:"commissionAmount"`
	TransactionFee   Money           `json:"transactionFee"`
	NetCommission    Money           `json:"netCommission"`
	SellerAmount     Money           `json:"sellerAmount"`

	Status       CommissionStatus `json:"status"`
	CalculatedAt *time.Time       `json:"calculatedAt,omitempty"`
	CollectedAt  *time.Time       `json:"collectedAt,omitempty"`
	DisputedAt   *time.Time       `json:"disputedAt,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// CommissionForOrder builds the commission row for an order. The order amount
// is the order subtotal; the rate is the seller's effective rate. Returns
// ErrMissingAssociation when seller or marketplace is absent rather than
// silently skipping.
func CommissionForOrder(id string, order *Order, seller *Seller, marketplace *Marketplace, now time.Time) (*MarketplaceCommission, error) {
	if order == nil || seller == nil || marketplace == nil {
		return nil, ErrMissingAssociation
	}
	c := &MarketplaceCommission{
		ID:             id,
		OrderID:        order.ID,
		OrderNumber:    order.Number,
		SellerID:       seller.ID,
		MarketplaceID:  marketplace.ID,
		Currency:       order.Currency,
		OrderAmount:    order.Subtotal,
		CommissionRate: seller.EffectiveCommissionRate(*marketplace),
		TransactionFee: Zero(order.Currency),
		Status:         CommissionPending,
		CreatedAt:      now,
	}
	c.SetCommissionAmount(c.OrderAmount.Percent(c.CommissionRate))
	return c, nil
}

// SetCommissionAmount stores a new commission amount and recomputes the
// derived net commission and seller amount together.
func (c *MarketplaceCommission) SetCommissionAmount(amount Money) {
	c.CommissionAmount = amount
	c.recompute()
}

// SetTransactionFee stores a new fee and recomputes the derived amounts.
func (c *MarketplaceCommission) SetTransactionFee(fee Money) {
	c.TransactionFee = fee
	c.recompute()
}

// net commission and seller amount always move in lockstep with the
// commission amount and fee.
func (c *MarketplaceCommission) recompute() {
	c.NetCommission = c.CommissionAmount.Sub(c.TransactionFee)
	c.SellerAmount = c.OrderAmount.Sub(c.CommissionAmount)
}

// Calculate transitions pending -> calculated, stamping the time once.
func (c *MarketplaceCommission) Calculate(now time.Time) error {
	if c.Status == CommissionCalculated {
		return nil
	}
	if c.Status != CommissionPending {
		return ErrInvalidTransition
	}
	c.Status = CommissionCalculated
	setOnce(&c.CalculatedAt, now)
	return nil
}

// Collect transitions calculated -> collected, stamping the time once.
func (c *MarketplaceCommission) Collect(now time.Time) error {
	if c.Status == CommissionCollected {
		return nil
	}
	if c.Status != CommissionCalculated {
		return ErrInvalidTransition
	}
	c.Status = CommissionCollected
	setOnce(&c.CollectedAt, now)
	return nil
}

// Dispute moves to disputed from any state.
func (c *MarketplaceCommission) Dispute(now time.Time) {
	c.Status = CommissionDisputed
	setOnce(&c.DisputedAt, now)
}
