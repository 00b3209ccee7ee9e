package httpserver

import (
	"context"

	"marketplace-backend/internal/domain"
	cartsvc "marketplace-backend/internal/service/cart"
	couponsvc "marketplace-backend/internal/service/coupon"
	payoutsvc "marketplace-backend/internal/service/payout"
	sellersvc "marketplace-backend/internal/service/seller"
)

type cartService interface {
	GetOrCreate(ctx context.Context, userID, currency string) (*domain.Cart, error)
	Get(ctx context.Context, id string) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID string, in cartsvc.AddItemInput) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, cartID, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, cartID, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, cartID string) (*domain.Cart, error)
	ApplyCoupon(ctx context.Context, cartID, code, userID string) (*domain.Cart, error)
	RemoveCoupon(ctx context.Context, cartID, code string) (*domain.Cart, error)
	Checkout(ctx context.Context, cartID string, in cartsvc.CheckoutInput) ([]domain.Order, error)
}

type orderService interface {
	Get(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error)
	ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Order, error)
	Cancel(ctx context.Context, id string) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
}

type commissionService interface {
	Get(ctx context.Context, id string) (*domain.MarketplaceCommission, error)
	GetByOrder(ctx context.Context, orderID string) (*domain.MarketplaceCommission, error)
	SetTransactionFee(ctx context.Context, id string, fee domain.Money) (*domain.MarketplaceCommission, error)
	Collect(ctx context.Context, id string) (*domain.MarketplaceCommission, error)
	Dispute(ctx context.Context, id string) (*domain.MarketplaceCommission, error)
}

type couponService interface {
	Create(ctx context.Context, in couponsvc.CreateInput) (*domain.CouponCode, error)
	GetByCode(ctx context.Context, code string) (*domain.CouponCode, error)
	Deactivate(ctx context.Context, code string) (*domain.CouponCode, error)
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	ListUsages(ctx context.Context, couponID string) ([]domain.CouponUsage, error)
	Validate(ctx context.Context, code, userID string, orderAmount domain.Money) (couponsvc.ValidationResult, error)
}

type sellerService interface {
	Create(ctx context.Context, in sellersvc.CreateInput) (*domain.Seller, error)
	Get(ctx context.Context, id string) (*domain.Seller, error)
	Approve(ctx context.Context, id string) (*domain.Seller, error)
	Reject(ctx context.Context, id string) (*domain.Seller, error)
	Suspend(ctx context.Context, id string) (*domain.Seller, error)
	Reactivate(ctx context.Context, id string) (*domain.Seller, error)
	Deactivate(ctx context.Context, id string) (*domain.Seller, error)
	SetVacationMode(ctx context.Context, id string, on bool) (*domain.Seller, error)
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
}

type payoutService interface {
	CreateForSeller(ctx context.Context, in payoutsvc.CreateInput) (*domain.SellerPayout, error)
	Get(ctx context.Context, id string) (*domain.SellerPayout, error)
	ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]domain.SellerPayout, error)
	Process(ctx context.Context, id string) (*domain.SellerPayout, error)
	Complete(ctx context.Context, id string, transactionID *string) (*domain.SellerPayout, error)
	Fail(ctx context.Context, id, reason string) (*domain.SellerPayout, error)
	Cancel(ctx context.Context, id string) (*domain.SellerPayout, error)
}

// Deps carries the services the router dispatches to.
type Deps struct {
	CartSvc       cartService
	OrderSvc      orderService
	CommissionSvc commissionService
	CouponSvc     couponService
	SellerSvc     sellerService
	PayoutSvc     payoutService

	// DefaultCurrency denominates carts and coupon bounds.
	DefaultCurrency string
}
