package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketplace-backend/internal/domain"
	cartsvc "marketplace-backend/internal/service/cart"
	couponsvc "marketplace-backend/internal/service/coupon"
	payoutsvc "marketplace-backend/internal/service/payout"
	sellersvc "marketplace-backend/internal/service/seller"

	"github.com/gin-gonic/gin"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type stubCartService struct {
	cart   *domain.Cart
	orders []domain.Order
	err    error
}

func (s *stubCartService) GetOrCreate(_ context.Context, _, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) Get(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) AddItem(_ context.Context, _ string, _ cartsvc.AddItemInput) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) UpdateQuantity(_ context.Context, _, _ string, _ int) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, _, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) Clear(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) ApplyCoupon(_ context.Context, _, _, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) RemoveCoupon(_ context.Context, _, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) Checkout(_ context.Context, _ string, _ cartsvc.CheckoutInput) ([]domain.Order, error) {
	return s.orders, s.err
}

type stubOrderService struct {
	order *domain.Order
	err   error
}

func (s *stubOrderService) Get(_ context.Context, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) ListByUser(_ context.Context, _ string, _, _ int) ([]domain.Order, error) {
	if s.order == nil {
		return nil, s.err
	}
	return []domain.Order{*s.order}, s.err
}

func (s *stubOrderService) ListBySeller(_ context.Context, _ string, _, _ int) ([]domain.Order, error) {
	return nil, s.err
}

func (s *stubOrderService) UpdateStatus(_ context.Context, _ string, _ domain.OrderStatus) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) UpdatePaymentStatus(_ context.Context, _ string, _ domain.PaymentStatus) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) Cancel(_ context.Context, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) Delete(_ context.Context, _ string) error  { return s.err }
func (s *stubOrderService) Restore(_ context.Context, _ string) error { return s.err }

type stubCommissionService struct {
	commission *domain.MarketplaceCommission
	err        error
}

func (s *stubCommissionService) Get(_ context.Context, _ string) (*domain.MarketplaceCommission, error) {
	return s.commission, s.err
}

func (s *stubCommissionService) GetByOrder(_ context.Context, _ string) (*domain.MarketplaceCommission, error) {
	return s.commission, s.err
}

func (s *stubCommissionService) SetTransactionFee(_ context.Context, _ string, _ domain.Money) (*domain.MarketplaceCommission, error) {
	return s.commission, s.err
}

func (s *stubCommissionService) Collect(_ context.Context, _ string) (*domain.MarketplaceCommission, error) {
	return s.commission, s.err
}

func (s *stubCommissionService) Dispute(_ context.Context, _ string) (*domain.MarketplaceCommission, error) {
	return s.commission, s.err
}

type stubCouponService struct {
	coupon *domain.CouponCode
	result couponsvc.ValidationResult
	err    error
}

func (s *stubCouponService) Create(_ context.Context, _ couponsvc.CreateInput) (*domain.CouponCode, error) {
	return s.coupon, s.err
}

func (s *stubCouponService) GetByCode(_ context.Context, _ string) (*domain.CouponCode, error) {
	return s.coupon, s.err
}

func (s *stubCouponService) Deactivate(_ context.Context, _ string) (*domain.CouponCode, error) {
	return s.coupon, s.err
}

func (s *stubCouponService) Delete(_ context.Context, _ string) error  { return s.err }
func (s *stubCouponService) Restore(_ context.Context, _ string) error { return s.err }

func (s *stubCouponService) ListUsages(_ context.Context, _ string) ([]domain.CouponUsage, error) {
	return nil, s.err
}

func (s *stubCouponService) Validate(_ context.Context, _, _ string, _ domain.Money) (couponsvc.ValidationResult, error) {
	return s.result, s.err
}

type stubSellerService struct {
	seller *domain.Seller
	err    error
}

func (s *stubSellerService) Create(_ context.Context, _ sellersvc.CreateInput) (*domain.Seller, error) {
	return s.seller, s.err
}

func (s *stubSellerService) Get(_ context.Context, _ string) (*domain.Seller, error) {
	return s.seller, s.err
}

func (s *stubSellerService) Approve(_ context.Context, _ string) (*domain.Seller, error) {
	return s.seller, s.err
}

func (s *stubSellerService) Reject(_ context.Context, _ string) (*domain.Seller, error) {
	return s.seller, s.err
}

func (s *stubSellerService) Suspend(_ context.Context, _ string) (*domain.Seller, error) {
	return s.seller, s.err
}

func (s *stubSellerService) Reactivate(_ context.Context, _ string) (*domain.Seller, error) {
	return s.seller, s.err
}

func (s *stubSellerService) Deactivate(_ context.Context, _ string) (*domain.Seller, error) {
	return s.seller, s.err
}

func (s *stubSellerService) SetVacationMode(_ context.Context, _ string, _ bool) (*domain.Seller, error) {
	return s.seller, s.err
}

func (s *stubSellerService) Delete(_ context.Context, _ string) error  { return s.err }
func (s *stubSellerService) Restore(_ context.Context, _ string) error { return s.err }

type stubPayoutService struct {
	payout *domain.SellerPayout
	err    error
}

func (s *stubPayoutService) CreateForSeller(_ context.Context, _ payoutsvc.CreateInput) (*domain.SellerPayout, error) {
	return s.payout, s.err
}

func (s *stubPayoutService) Get(_ context.Context, _ string) (*domain.SellerPayout, error) {
	return s.payout, s.err
}

func (s *stubPayoutService) ListBySeller(_ context.Context, _ string, _, _ int) ([]domain.SellerPayout, error) {
	return nil, s.err
}

func (s *stubPayoutService) Process(_ context.Context, _ string) (*domain.SellerPayout, error) {
	return s.payout, s.err
}

func (s *stubPayoutService) Complete(_ context.Context, _ string, _ *string) (*domain.SellerPayout, error) {
	return s.payout, s.err
}

func (s *stubPayoutService) Fail(_ context.Context, _, _ string) (*domain.SellerPayout, error) {
	return s.payout, s.err
}

func (s *stubPayoutService) Cancel(_ context.Context, _ string) (*domain.SellerPayout, error) {
	return s.payout, s.err
}

func testDeps() Deps {
	return Deps{
		CartSvc:         &stubCartService{},
		OrderSvc:        &stubOrderService{},
		CommissionSvc:   &stubCommissionService{},
		CouponSvc:       &stubCouponService{},
		SellerSvc:       &stubSellerService{},
		PayoutSvc:       &stubPayoutService{},
		DefaultCurrency: "USD",
	}
}

func serve(t *testing.T, deps Deps, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := serve(t, testDeps(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadyzWithoutDB(t *testing.T) {
	rec := serve(t, testDeps(), http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a pool, got %d", rec.Code)
	}
}

func TestBuildRouterMissingService(t *testing.T) {
	deps := testDeps()
	deps.CartSvc = nil
	gin.SetMode(gin.TestMode)
	if _, err := buildRouter(logDiscard(), nil, deps); err == nil {
		t.Fatal("expected error for missing service")
	}
}

func TestCreateCartReturnsCreated(t *testing.T) {
	deps := testDeps()
	cart := domain.NewCart("cart-1", "USD", testNow)
	deps.CartSvc = &stubCartService{cart: cart}

	rec := serve(t, deps, http.MethodPost, "/api/v1/carts", `{"userId":"user-1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"id":"cart-1"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCreateCartMissingUser(t *testing.T) {
	rec := serve(t, testDeps(), http.MethodPost, "/api/v1/carts", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetCartNotFound(t *testing.T) {
	deps := testDeps()
	deps.CartSvc = &stubCartService{err: domain.ErrNotFound}

	rec := serve(t, deps, http.MethodGet, "/api/v1/carts/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAddItemInsufficientStock(t *testing.T) {
	deps := testDeps()
	deps.CartSvc = &stubCartService{err: domain.ErrInsufficientStock}

	rec := serve(t, deps, http.MethodPost, "/api/v1/carts/cart-1/items", `{"productId":"p1","quantity":5}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestApplyCouponNotApplicable(t *testing.T) {
	deps := testDeps()
	deps.CartSvc = &stubCartService{err: domain.ErrCouponNotApplicable}

	rec := serve(t, deps, http.MethodPost, "/api/v1/carts/cart-1/coupons", `{"code":"NOPE","userId":"user-1"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestCheckoutReturnsOrders(t *testing.T) {
	deps := testDeps()
	order := domain.NewOrder("ord-1", "ORD-2026-000001", "user-1", "USD", testNow)
	deps.CartSvc = &stubCartService{orders: []domain.Order{*order}}

	body := `{"marketplaceId":"mp-1","billingAddress":{"line1":"1 Main St"},"shippingAddress":{"line1":"1 Main St"}}`
	rec := serve(t, deps, http.MethodPost, "/api/v1/carts/cart-1/checkout", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"number":"ORD-2026-000001"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestUpdateOrderStatusConflict(t *testing.T) {
	deps := testDeps()
	deps.OrderSvc = &stubOrderService{err: domain.ErrInvalidTransition}

	rec := serve(t, deps, http.MethodPut, "/api/v1/orders/ord-1/status", `{"status":"delivered"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestListOrdersRequiresFilter(t *testing.T) {
	rec := serve(t, testDeps(), http.MethodGet, "/api/v1/orders", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestValidateCoupon(t *testing.T) {
	deps := testDeps()
	discount, err := domain.NewMoney("8.00", "USD")
	if err != nil {
		t.Fatalf("money: %v", err)
	}
	deps.CouponSvc = &stubCouponService{result: couponsvc.ValidationResult{Valid: true, Discount: discount}}

	rec := serve(t, deps, http.MethodPost, "/api/v1/coupons/validate", `{"code":"SAVE10","userId":"user-1","orderAmount":"80.00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"valid":true`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestSellerVacationRequiresFlag(t *testing.T) {
	rec := serve(t, testDeps(), http.MethodPut, "/api/v1/sellers/s1/vacation", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreatePayout(t *testing.T) {
	deps := testDeps()
	amount, err := domain.NewMoney("270.00", "USD")
	if err != nil {
		t.Fatalf("money: %v", err)
	}
	p := domain.NewSellerPayout("pay-1", "PAY-2026-000001", "seller-1", "bank_transfer", amount, domain.Zero("USD"), testNow)
	deps.PayoutSvc = &stubPayoutService{payout: p}

	rec := serve(t, deps, http.MethodPost, "/api/v1/payouts", `{"sellerId":"seller-1","paymentMethod":"bank_transfer"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"number":"PAY-2026-000001"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestFailPayoutRequiresReason(t *testing.T) {
	rec := serve(t, testDeps(), http.MethodPost, "/api/v1/payouts/pay-1/fail", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
