package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage   DiscountType = "percentage"
	DiscountFixedAmount  DiscountType = "fixed_amount"
	DiscountFreeShipping DiscountType = "free_shipping"
)

type UsageType string

const (
	UsageUnlimited       UsageType = "unlimited"
	UsageLimited         UsageType = "limited"
	UsageOncePerCustomer UsageType = "once_per_customer"
)

type CouponCode struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"` // unique, uppercase
	DiscountType  DiscountType    `json:"discountType"`
	DiscountValue decimal.Decimal `json:"discountValue"`

	MinimumOrderAmount    *Money `json:"minimumOrderAmount,omitempty"`
	MaximumDiscountAmount *Money `json:"maximumDiscountAmount,omitempty"`

	UsageType  UsageType `json:"usageType"`
	UsageLimit int       `json:"usageLimit,omitempty"`
	UsageCount int       `json:"usageCount"`

	StartsAt  *time.Time `json:"startsAt,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Active    bool       `json:"active"`

	IncludedProductIDs  []string `json:"includedProductIds,omitempty"`
	ExcludedProductIDs  []string `json:"excludedProductIds,omitempty"`
	IncludedCategoryIDs []string `json:"includedCategoryIds,omitempty"`
	ExcludedCategoryIDs []string `json:"excludedCategoryIds,omitempty"`
	IncludedSellerIDs   []string `json:"includedSellerIds,omitempty"`
	ExcludedSellerIDs   []string `json:"excludedSellerIds,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	SoftDelete
}

// CouponUsage is the immutable audit record written each time a coupon is
// applied to a completed order. Once-per-customer enforcement counts these.
type CouponUsage struct {
	ID             string    `json:"id"`
	CouponID       string    `json:"couponId"`
	UserID         string    `json:"userId"`
	OrderID        string    `json:"orderId"`
	OrderAmount    Money     `json:"orderAmount"`
	DiscountAmount Money     `json:"discountAmount"`
	UsedAt         time.Time `json:"usedAt"`
}

// IsValid reports whether the coupon can be applied at all right now: active,
// inside its date window, and not usage-exhausted.
func (c *CouponCode) IsValid(now time.Time) bool {
	if !c.Active || c.IsDeleted() {
		return false
	}
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return false
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return false
	}
	if c.UsageType == UsageLimited && c.UsageCount >= c.UsageLimit {
		return false
	}
	return true
}

// CanBeUsedBy layers per-customer eligibility on IsValid. priorUses is the
// caller-supplied count of this user's CouponUsage records for this coupon.
func (c *CouponCode) CanBeUsedBy(now time.Time, priorUses int) bool {
	if !c.IsValid(now) {
		return false
	}
	if c.UsageType == UsageOncePerCustomer && priorUses > 0 {
		return false
	}
	return true
}

// IsApplicableToProduct evaluates the coupon's scoping lists against a
// product. Exclusions take precedence over inclusions; when every inclusion
// list is empty the coupon applies universally.
func (c *CouponCode) IsApplicableToProduct(p Product) bool {
	if contains(c.ExcludedProductIDs, p.ID) ||
		contains(c.ExcludedCategoryIDs, p.CategoryID) ||
		contains(c.ExcludedSellerIDs, p.SellerID) {
		return false
	}
	if len(c.IncludedProductIDs) == 0 && len(c.IncludedCategoryIDs) == 0 && len(c.IncludedSellerIDs) == 0 {
		return true
	}
	return contains(c.IncludedProductIDs, p.ID) ||
		contains(c.IncludedCategoryIDs, p.CategoryID) ||
		contains(c.IncludedSellerIDs, p.SellerID)
}

// DiscountAmount computes the monetary discount for an order amount.
// Free-shipping coupons yield zero here; waiving the shipping charge is the
// caller's side of the contract. The result is capped at the coupon's maximum
// discount and never exceeds the order amount.
func (c *CouponCode) DiscountAmount(orderAmount Money) Money {
	var discount Money
	switch c.DiscountType {
	case DiscountPercentage:
		discount = orderAmount.Percent(c.DiscountValue)
	case DiscountFixedAmount:
		discount = Money{amount: c.DiscountValue.Round(2), currency: orderAmount.Currency()}
	case DiscountFreeShipping:
		return Zero(orderAmount.Currency())
	default:
		return Zero(orderAmount.Currency())
	}
	if c.MaximumDiscountAmount != nil {
		discount = discount.Min(*c.MaximumDiscountAmount)
	}
	return discount.Min(orderAmount)
}

// RecordUse bumps the usage counter for limited-usage coupons.
func (c *CouponCode) RecordUse() {
	c.UsageCount++
}

func contains(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
