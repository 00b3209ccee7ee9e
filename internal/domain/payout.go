package domain

import (
	"strings"
	"time"
)

type PayoutStatus string

const (
	PayoutPending    PayoutStatus = "pending"
	PayoutProcessing PayoutStatus = "processing"
	PayoutCompleted  PayoutStatus = "completed"
	PayoutFailed     PayoutStatus = "failed"
	PayoutCancelled  PayoutStatus = "cancelled"
)

// SellerPayout is one batch payment of collected, commission-adjusted
// earnings to a seller.
type SellerPayout struct {
	ID       string `json:"id"`
	Number   string `json:"number"`
	SellerID string `json:"sellerId"`

	Currency  string `json:"currency"`
	Amount    Money  `json:"amount"`
	Fees      Money  `json:"fees"`
	NetAmount Money  `json:"netAmount"`

	Status        PayoutStatus `json:"status"`
	PaymentMethod string       `json:"paymentMethod"`
	TransactionID *string      `json:"transactionId,omitempty"`
	FailureReason *string      `json:"failureReason,omitempty"`

	ProcessedAt *time.Time `json:"processedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	FailedAt    *time.Time `json:"failedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// NewSellerPayout builds a pending payout. NetAmount derives from amount and
// fees and follows every later change to either.
func NewSellerPayout(id, number, sellerID, paymentMethod string, amount, fees Money, now time.Time) *SellerPayout {
	p := &SellerPayout{
		ID:            id,
		Number:        number,
		SellerID:      sellerID,
		Currency:      amount.Currency(),
		Amount:        amount,
		Fees:          fees,
		Status:        PayoutPending,
		PaymentMethod: paymentMethod,
		CreatedAt:     now,
	}
	p.recompute()
	return p
}

// SetAmount updates the gross amount and re-derives the net amount.
func (p *SellerPayout) SetAmount(amount Money) {
	p.Amount = amount
	p.recompute()
}

// SetFees updates the fees and re-derives the net amount.
func (p *SellerPayout) SetFees(fees Money) {
	p.Fees = fees
	p.recompute()
}

func (p *SellerPayout) recompute() {
	p.NetAmount = p.Amount.Sub(p.Fees)
}

// Process transitions pending -> processing, stamping the time once.
func (p *SellerPayout) Process(now time.Time) error {
	if p.Status == PayoutProcessing {
		return nil
	}
	if p.Status != PayoutPending {
		return ErrInvalidTransition
	}
	p.Status = PayoutProcessing
	setOnce(&p.ProcessedAt, now)
	return nil
}

// Complete transitions to completed. If Process was skipped the processed
// stamp is chained in so the timestamps stay ordered.
func (p *SellerPayout) Complete(transactionID *string, now time.Time) error {
	if p.Status == PayoutCompleted {
		return nil
	}
	if p.Status != PayoutPending && p.Status != PayoutProcessing {
		return ErrInvalidTransition
	}
	p.Status = PayoutCompleted
	p.TransactionID = transactionID
	setOnce(&p.ProcessedAt, now)
	setOnce(&p.CompletedAt, now)
	return nil
}

// Fail transitions to failed with a required reason.
func (p *SellerPayout) Fail(reason string, now time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return ErrEmptyReason
	}
	if p.Status != PayoutPending && p.Status != PayoutProcessing {
		return ErrInvalidTransition
	}
	p.Status = PayoutFailed
	p.FailureReason = &reason
	setOnce(&p.FailedAt, now)
	return nil
}

// Cancel is reachable only while pending or processing.
func (p *SellerPayout) Cancel(now time.Time) error {
	if !p.CanBeCancelled() {
		return ErrInvalidTransition
	}
	p.Status = PayoutCancelled
	setOnce(&p.CancelledAt, now)
	return nil
}

// CanBeCancelled reports whether the payout is still pending or processing.
func (p *SellerPayout) CanBeCancelled() bool {
	return p.Status == PayoutPending || p.Status == PayoutProcessing
}

// CanBeRetried reports whether the payout can be re-attempted, only from
// failed.
func (p *SellerPayout) CanBeRetried() bool {
	return p.Status == PayoutFailed
}
