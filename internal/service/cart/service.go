package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace-backend/internal/domain"
	checkoutrepo "marketplace-backend/internal/repository/checkout"

	"github.com/google/uuid"
)

// checkoutAttempts bounds the retry loop around order number collisions.
const checkoutAttempts = 3

type cartRepo interface {
	Create(ctx context.Context, cart *domain.Cart) error
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	SoftDelete(ctx context.Context, id string, now time.Time) error
	PurgeExpired(ctx context.Context, now time.Time, window time.Duration) (int64, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetVariant(ctx context.Context, productID, variantID string) (*domain.Variant, error)
}

type couponRepo interface {
	GetByCode(ctx context.Context, code string) (*domain.CouponCode, error)
	CountUsagesByUser(ctx context.Context, couponID, userID string) (int, error)
}

type sellerRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Seller, error)
	GetMarketplace(ctx context.Context, id string) (*domain.Marketplace, error)
}

type checkoutRepo interface {
	Persist(ctx context.Context, in checkoutrepo.Input) error
}

type Service struct {
	carts    cartRepo
	products productRepo
	coupons  couponRepo
	sellers  sellerRepo
	checkout checkoutRepo
	clock    domain.Clock
	expiry   time.Duration
}

func New(carts cartRepo, products productRepo, coupons couponRepo, sellers sellerRepo, checkout checkoutRepo, clock domain.Clock, expiry time.Duration) *Service {
	return &Service{
		carts:    carts,
		products: products,
		coupons:  coupons,
		sellers:  sellers,
		checkout: checkout,
		clock:    clock,
		expiry:   expiry,
	}
}

// GetOrCreate returns the user's active cart, replacing an expired one.
func (s *Service) GetOrCreate(ctx context.Context, userID, currency string) (*domain.Cart, error) {
	now := s.clock.Now()
	cart, err := s.carts.GetActiveByUser(ctx, userID)
	switch {
	case err == nil:
		if !cart.IsExpired(now, s.expiry) {
			return cart, nil
		}
		if err := s.carts.SoftDelete(ctx, cart.ID, now); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	fresh := domain.NewCart(uuid.NewString(), currency, now)
	fresh.UserID = &userID
	if err := s.carts.Create(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Cart, error) {
	return s.carts.GetByID(ctx, id)
}

type AddItemInput struct {
	ProductID string  `json:"productId"`
	VariantID *string `json:"variantId,omitempty"`
	Quantity  int     `json:"quantity"`
}

func (s *Service) AddItem(ctx context.Context, cartID string, in AddItemInput) (*domain.Cart, error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", in.ProductID, domain.ErrNotFound)
		}
		return nil, err
	}
	var variant *domain.Variant
	if in.VariantID != nil {
		variant, err = s.products.GetVariant(ctx, in.ProductID, *in.VariantID)
		if err != nil {
			return nil, err
		}
	}
	now := s.clock.Now()
	if _, err := cart.AddItem(uuid.NewString(), *product, variant, in.Quantity, now); err != nil {
		return nil, err
	}
	cart.Recalculate()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, cartID, itemID string, quantity int) (*domain.Cart, error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	item := itemIn(cart, itemID)
	if item == nil {
		return nil, domain.ErrNotFound
	}
	product, err := s.products.GetByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	var variant *domain.Variant
	if item.VariantID != nil {
		variant, err = s.products.GetVariant(ctx, item.ProductID, *item.VariantID)
		if err != nil {
			return nil, err
		}
	}
	if err := cart.UpdateQuantity(itemID, *product, variant, quantity, s.clock.Now()); err != nil {
		return nil, err
	}
	cart.Recalculate()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) RemoveItem(ctx context.Context, cartID, itemID string) (*domain.Cart, error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := cart.RemoveItem(itemID, s.clock.Now()); err != nil {
		return nil, err
	}
	cart.Recalculate()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) Clear(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cart.Clear(s.clock.Now())
	cart.Recalculate()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ApplyCoupon validates and applies a coupon code. Eligibility failures come
// back as ErrCouponNotApplicable so handlers can show a retryable message
// rather than a hard failure.
func (s *Service) ApplyCoupon(ctx context.Context, cartID, code, userID string) (*domain.Cart, error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	coupon, err := s.coupons.GetByCode(ctx, strings.ToUpper(code))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCouponNotApplicable
		}
		return nil, err
	}
	now := s.clock.Now()
	priorUses, err := s.coupons.CountUsagesByUser(ctx, coupon.ID, userID)
	if err != nil {
		return nil, err
	}
	if !coupon.CanBeUsedBy(now, priorUses) {
		return nil, domain.ErrCouponNotApplicable
	}
	applicable, err := s.couponCoversCart(ctx, coupon, cart)
	if err != nil {
		return nil, err
	}
	if !applicable {
		return nil, domain.ErrCouponNotApplicable
	}
	if !cart.ApplyCoupon(coupon, now) {
		return nil, domain.ErrCouponNotApplicable
	}
	cart.Recalculate()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) RemoveCoupon(ctx context.Context, cartID, code string) (*domain.Cart, error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cart.RemoveCoupon(strings.ToUpper(code), s.clock.Now())
	cart.Recalculate()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// couponCoversCart reports whether the coupon's scoping rules admit at least
// one product currently in the cart.
func (s *Service) couponCoversCart(ctx context.Context, coupon *domain.CouponCode, cart *domain.Cart) (bool, error) {
	for _, item := range cart.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return false, err
		}
		if coupon.IsApplicableToProduct(*product) {
			return true, nil
		}
	}
	return false, nil
}

type CheckoutInput struct {
	MarketplaceID   string         `json:"marketplaceId"`
	BillingAddress  domain.Address `json:"billingAddress"`
	ShippingAddress domain.Address `json:"shippingAddress"`
}

// Checkout converts the cart into one pending order per seller, creates the
// matching commission rows, records coupon usage, and decrements stock, all
// in one transaction. Cart-level tax, shipping and discount ride on the first
// seller's order; later orders carry only their own subtotals.
func (s *Service) Checkout(ctx context.Context, cartID string, in CheckoutInput) ([]domain.Order, error) {
	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, fmt.Errorf("cart %s is empty: %w", cartID, domain.ErrInvalidQuantity)
	}
	if cart.UserID == nil {
		return nil, fmt.Errorf("cart %s has no user: %w", cartID, domain.ErrMissingAssociation)
	}
	marketplace, err := s.sellers.GetMarketplace(ctx, in.MarketplaceID)
	if err != nil {
		return nil, err
	}

	groups := cart.ItemsBySeller()
	sellersByID := make(map[string]*domain.Seller, len(groups))
	for _, g := range groups {
		seller, err := s.sellers.GetByID(ctx, g.SellerID)
		if err != nil {
			return nil, err
		}
		if !seller.CanSell() {
			return nil, fmt.Errorf("seller %s: %w", seller.ID, domain.ErrSellerUnavailable)
		}
		sellersByID[g.SellerID] = seller
	}

	var lastErr error
	for attempt := 0; attempt < checkoutAttempts; attempt++ {
		input, err := s.buildCheckout(cart, groups, sellersByID, marketplace, in)
		if err != nil {
			return nil, err
		}
		err = s.checkout.Persist(ctx, input)
		if err == nil {
			// Persist assigns the stored ids back onto the order rows.
			orders := make([]domain.Order, 0, len(input.Orders))
			for _, o := range input.Orders {
				orders = append(orders, *o)
			}
			return orders, nil
		}
		if errors.Is(err, checkoutrepo.ErrStockConflict) {
			// Lost a stock race to a concurrent checkout.
			return nil, fmt.Errorf("checkout cart %s: %w", cartID, domain.ErrInsufficientStock)
		}
		if !errors.Is(err, checkoutrepo.ErrDuplicateNumber) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("checkout cart %s: %w", cartID, lastErr)
}

func (s *Service) buildCheckout(cart *domain.Cart, groups []domain.SellerGroup, sellersByID map[string]*domain.Seller, marketplace *domain.Marketplace, in CheckoutInput) (checkoutrepo.Input, error) {
	now := s.clock.Now()
	input := checkoutrepo.Input{CartID: cart.ID}

	for i, g := range groups {
		seller := sellersByID[g.SellerID]
		order := domain.NewOrder(uuid.NewString(), domain.NewOrderNumber(now), *cart.UserID, cart.Currency, now)
		sellerID := seller.ID
		marketplaceID := marketplace.ID
		order.SellerID = &sellerID
		order.MarketplaceID = &marketplaceID
		order.BillingAddress = in.BillingAddress
		order.ShippingAddress = in.ShippingAddress
		for _, item := range g.Items {
			order.Items = append(order.Items, domain.NewOrderItemFromCartItem(uuid.NewString(), order.ID, *item))
		}
		if i == 0 {
			order.Tax = cart.Tax
			order.Shipping = cart.EffectiveShipping()
			order.Discount = cart.Discount
		}
		order.CalculateTotals()
		order.CalculateCommission(seller, marketplace)

		commission, err := domain.CommissionForOrder(uuid.NewString(), order, seller, marketplace, now)
		if err != nil {
			return checkoutrepo.Input{}, err
		}
		if err := commission.Calculate(now); err != nil {
			return checkoutrepo.Input{}, err
		}

		input.Orders = append(input.Orders, order)
		input.Commissions = append(input.Commissions, commission)
	}

	for _, item := range cart.Items {
		input.Stock = append(input.Stock, checkoutrepo.StockDecrement{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}

	// Usage audit rows reference the first order; the checkout repository
	// resolves the order number to its inserted id.
	for _, ac := range cart.AppliedCoupons {
		input.Usages = append(input.Usages, domain.CouponUsage{
			CouponID:       ac.CouponID,
			UserID:         *cart.UserID,
			OrderID:        input.Orders[0].Number,
			OrderAmount:    cart.Subtotal,
			DiscountAmount: ac.Discount,
			UsedAt:         now,
		})
	}

	return input, nil
}

// PurgeExpired soft-deletes carts past the inactivity window.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.carts.PurgeExpired(ctx, s.clock.Now(), s.expiry)
}

func itemIn(cart *domain.Cart, itemID string) *domain.CartItem {
	for _, item := range cart.Items {
		if item.ID == itemID {
			return item
		}
	}
	return nil
}
