package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type couponRepo interface {
	Create(ctx context.Context, c *domain.CouponCode) error
	GetByCode(ctx context.Context, code string) (*domain.CouponCode, error)
	Update(ctx context.Context, c *domain.CouponCode) error
	SoftDelete(ctx context.Context, code string) error
	Restore(ctx context.Context, code string) error
	CountUsagesByUser(ctx context.Context, couponID, userID string) (int, error)
	ListUsages(ctx context.Context, couponID string) ([]domain.CouponUsage, error)
}

type Service struct {
	coupons  couponRepo
	clock    domain.Clock
	currency string
}

func New(coupons couponRepo, clock domain.Clock, currency string) *Service {
	return &Service{coupons: coupons, clock: clock, currency: currency}
}

type CreateInput struct {
	Code          string              `json:"code"`
	DiscountType  domain.DiscountType `json:"discountType"`
	DiscountValue string              `json:"discountValue"`

	MinimumOrderAmount    *string `json:"minimumOrderAmount,omitempty"`
	MaximumDiscountAmount *string `json:"maximumDiscountAmount,omitempty"`

	UsageType  domain.UsageType `json:"usageType"`
	UsageLimit int              `json:"usageLimit,omitempty"`

	StartsAt  *time.Time `json:"startsAt,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`

	IncludedProductIDs  []string `json:"includedProductIds,omitempty"`
	ExcludedProductIDs  []string `json:"excludedProductIds,omitempty"`
	IncludedCategoryIDs []string `json:"includedCategoryIds,omitempty"`
	ExcludedCategoryIDs []string `json:"excludedCategoryIds,omitempty"`
	IncludedSellerIDs   []string `json:"includedSellerIds,omitempty"`
	ExcludedSellerIDs   []string `json:"excludedSellerIds,omitempty"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.CouponCode, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return nil, fmt.Errorf("empty coupon code: %w", domain.ErrInvalidAmount)
	}
	switch in.DiscountType {
	case domain.DiscountPercentage, domain.DiscountFixedAmount, domain.DiscountFreeShipping:
	default:
		return nil, fmt.Errorf("unknown discount type %q: %w", in.DiscountType, domain.ErrInvalidAmount)
	}
	value, err := decimal.NewFromString(in.DiscountValue)
	if err != nil {
		return nil, fmt.Errorf("discount value %q: %w", in.DiscountValue, domain.ErrInvalidAmount)
	}
	if value.IsNegative() {
		return nil, fmt.Errorf("negative discount value: %w", domain.ErrInvalidAmount)
	}

	c := &domain.CouponCode{
		ID:            uuid.NewString(),
		Code:          code,
		DiscountType:  in.DiscountType,
		DiscountValue: value,
		UsageType:     in.UsageType,
		UsageLimit:    in.UsageLimit,
		StartsAt:      in.StartsAt,
		ExpiresAt:     in.ExpiresAt,
		Active:        true,

		IncludedProductIDs:  in.IncludedProductIDs,
		ExcludedProductIDs:  in.ExcludedProductIDs,
		IncludedCategoryIDs: in.IncludedCategoryIDs,
		ExcludedCategoryIDs: in.ExcludedCategoryIDs,
		IncludedSellerIDs:   in.IncludedSellerIDs,
		ExcludedSellerIDs:   in.ExcludedSellerIDs,

		CreatedAt: s.clock.Now(),
	}
	if c.UsageType == "" {
		c.UsageType = domain.UsageUnlimited
	}
	if c.MinimumOrderAmount, err = s.moneyBound(in.MinimumOrderAmount); err != nil {
		return nil, err
	}
	if c.MaximumDiscountAmount, err = s.moneyBound(in.MaximumDiscountAmount); err != nil {
		return nil, err
	}
	if err := s.coupons.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (*domain.CouponCode, error) {
	return s.coupons.GetByCode(ctx, strings.ToUpper(code))
}

// Deactivate turns the coupon off without deleting it so its usage history
// stays queryable.
func (s *Service) Deactivate(ctx context.Context, code string) (*domain.CouponCode, error) {
	c, err := s.coupons.GetByCode(ctx, strings.ToUpper(code))
	if err != nil {
		return nil, err
	}
	c.Active = false
	if err := s.coupons.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, code string) error {
	return s.coupons.SoftDelete(ctx, strings.ToUpper(code))
}

func (s *Service) Restore(ctx context.Context, code string) error {
	return s.coupons.Restore(ctx, strings.ToUpper(code))
}

func (s *Service) ListUsages(ctx context.Context, couponID string) ([]domain.CouponUsage, error) {
	return s.coupons.ListUsages(ctx, couponID)
}

type ValidationResult struct {
	Valid    bool         `json:"valid"`
	Discount domain.Money `json:"discount"`
}

// Validate previews what a coupon would yield for a user and order amount
// without applying it.
func (s *Service) Validate(ctx context.Context, code, userID string, orderAmount domain.Money) (ValidationResult, error) {
	c, err := s.coupons.GetByCode(ctx, strings.ToUpper(code))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ValidationResult{Discount: domain.Zero(orderAmount.Currency())}, nil
		}
		return ValidationResult{}, err
	}
	priorUses, err := s.coupons.CountUsagesByUser(ctx, c.ID, userID)
	if err != nil {
		return ValidationResult{}, err
	}
	now := s.clock.Now()
	if !c.CanBeUsedBy(now, priorUses) {
		return ValidationResult{Discount: domain.Zero(orderAmount.Currency())}, nil
	}
	if c.MinimumOrderAmount != nil && orderAmount.LessThan(*c.MinimumOrderAmount) {
		return ValidationResult{Discount: domain.Zero(orderAmount.Currency())}, nil
	}
	return ValidationResult{Valid: true, Discount: c.DiscountAmount(orderAmount)}, nil
}

func (s *Service) moneyBound(v *string) (*domain.Money, error) {
	if v == nil {
		return nil, nil
	}
	m, err := domain.NewMoney(*v, s.currency)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
