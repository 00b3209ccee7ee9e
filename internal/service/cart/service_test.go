package cart

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"marketplace-backend/internal/domain"
	checkoutrepo "marketplace-backend/internal/repository/checkout"

	"github.com/shopspring/decimal"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type stubCartRepo struct {
	carts   map[string]*domain.Cart
	created []*domain.Cart
	saved   int
	deleted []string
}

func newStubCartRepo(carts ...*domain.Cart) *stubCartRepo {
	m := make(map[string]*domain.Cart)
	for _, c := range carts {
		m[c.ID] = c
	}
	return &stubCartRepo{carts: m}
}

func (r *stubCartRepo) Create(_ context.Context, cart *domain.Cart) error {
	r.created = append(r.created, cart)
	r.carts[cart.ID] = cart
	return nil
}

func (r *stubCartRepo) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	c, ok := r.carts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (r *stubCartRepo) GetActiveByUser(_ context.Context, userID string) (*domain.Cart, error) {
	for _, c := range r.carts {
		if c.UserID != nil && *c.UserID == userID && !c.IsDeleted() {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubCartRepo) Save(_ context.Context, cart *domain.Cart) error {
	r.saved++
	r.carts[cart.ID] = cart
	return nil
}

func (r *stubCartRepo) SoftDelete(_ context.Context, id string, now time.Time) error {
	c, ok := r.carts[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.MarkDeleted(now)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubCartRepo) PurgeExpired(_ context.Context, _ time.Time, _ time.Duration) (int64, error) {
	return 0, nil
}

type stubProductRepo struct {
	products map[string]*domain.Product
	variants map[string]*domain.Variant
}

func (r *stubProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *stubProductRepo) GetVariant(_ context.Context, _, variantID string) (*domain.Variant, error) {
	v, ok := r.variants[variantID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

type stubCouponRepo struct {
	coupon    *domain.CouponCode
	userUses  int
	usagesErr error
}

func (r *stubCouponRepo) GetByCode(_ context.Context, code string) (*domain.CouponCode, error) {
	if r.coupon == nil || r.coupon.Code != code {
		return nil, domain.ErrNotFound
	}
	return r.coupon, nil
}

func (r *stubCouponRepo) CountUsagesByUser(_ context.Context, _, _ string) (int, error) {
	return r.userUses, r.usagesErr
}

type stubSellerRepo struct {
	sellers     map[string]*domain.Seller
	marketplace *domain.Marketplace
}

func (r *stubSellerRepo) GetByID(_ context.Context, id string) (*domain.Seller, error) {
	s, ok := r.sellers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (r *stubSellerRepo) GetMarketplace(_ context.Context, id string) (*domain.Marketplace, error) {
	if r.marketplace == nil || r.marketplace.ID != id {
		return nil, domain.ErrNotFound
	}
	return r.marketplace, nil
}

type stubCheckoutRepo struct {
	inputs   []checkoutrepo.Input
	failWith []error
}

func (r *stubCheckoutRepo) Persist(_ context.Context, in checkoutrepo.Input) error {
	r.inputs = append(r.inputs, in)
	if len(r.failWith) > 0 {
		err := r.failWith[0]
		r.failWith = r.failWith[1:]
		return err
	}
	return nil
}

func money(t *testing.T, s string) domain.Money {
	t.Helper()
	m, err := domain.NewMoney(s, "USD")
	if err != nil {
		t.Fatalf("money %q: %v", s, err)
	}
	return m
}

func seedProduct(t *testing.T, id, sellerID, price string, stock int) *domain.Product {
	t.Helper()
	return &domain.Product{
		ID:       id,
		SellerID: sellerID,
		SKU:      "SKU-" + strings.ToUpper(id),
		Name:     "Product " + id,
		Price:    money(t, price),
		Stock:    stock,
		Active:   true,
	}
}

func approvedSeller(id, marketplaceID string) *domain.Seller {
	return &domain.Seller{
		ID:             id,
		MarketplaceID:  marketplaceID,
		Status:         domain.SellerApproved,
		Balance:        domain.Zero("USD"),
		PendingBalance: domain.Zero("USD"),
	}
}

func newTestService(carts *stubCartRepo, products *stubProductRepo, coupons *stubCouponRepo, sellers *stubSellerRepo, checkout *stubCheckoutRepo) *Service {
	if products == nil {
		products = &stubProductRepo{products: map[string]*domain.Product{}}
	}
	if coupons == nil {
		coupons = &stubCouponRepo{}
	}
	if sellers == nil {
		sellers = &stubSellerRepo{sellers: map[string]*domain.Seller{}}
	}
	if checkout == nil {
		checkout = &stubCheckoutRepo{}
	}
	return New(carts, products, coupons, sellers, checkout, fixedClock{testNow}, 24*time.Hour)
}

func TestGetOrCreateReturnsActiveCart(t *testing.T) {
	userID := "user-1"
	existing := domain.NewCart("cart-1", "USD", testNow.Add(-time.Hour))
	existing.UserID = &userID
	existing.UpdatedAt = testNow.Add(-time.Hour)
	repo := newStubCartRepo(existing)
	svc := newTestService(repo, nil, nil, nil, nil)

	got, err := svc.GetOrCreate(context.Background(), userID, "USD")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if got.ID != "cart-1" {
		t.Fatalf("expected existing cart, got %s", got.ID)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no new cart, created %d", len(repo.created))
	}
}

func TestGetOrCreateReplacesExpiredCart(t *testing.T) {
	userID := "user-1"
	stale := domain.NewCart("cart-old", "USD", testNow.Add(-48*time.Hour))
	stale.UserID = &userID
	stale.UpdatedAt = testNow.Add(-48 * time.Hour)
	repo := newStubCartRepo(stale)
	svc := newTestService(repo, nil, nil, nil, nil)

	got, err := svc.GetOrCreate(context.Background(), userID, "USD")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if got.ID == "cart-old" {
		t.Fatal("expected a fresh cart to replace the expired one")
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "cart-old" {
		t.Fatalf("expected expired cart soft-deleted, got %v", repo.deleted)
	}
	if got.UserID == nil || *got.UserID != userID {
		t.Fatalf("fresh cart not bound to user: %v", got.UserID)
	}
}

func TestAddItemSavesRecalculatedCart(t *testing.T) {
	cart := domain.NewCart("cart-1", "USD", testNow)
	repo := newStubCartRepo(cart)
	products := &stubProductRepo{products: map[string]*domain.Product{
		"p1": seedProduct(t, "p1", "s1", "19.99", 10),
	}}
	svc := newTestService(repo, products, nil, nil, nil)

	got, err := svc.AddItem(context.Background(), "cart-1", AddItemInput{ProductID: "p1", Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if repo.saved != 1 {
		t.Fatalf("expected one save, got %d", repo.saved)
	}
	if got.Subtotal.StringFixed() != "39.98" {
		t.Fatalf("subtotal = %s, want 39.98", got.Subtotal.StringFixed())
	}
	if got.Total.StringFixed() != "39.98" {
		t.Fatalf("total = %s, want 39.98", got.Total.StringFixed())
	}
}

func TestAddItemInsufficientStockDoesNotSave(t *testing.T) {
	cart := domain.NewCart("cart-1", "USD", testNow)
	repo := newStubCartRepo(cart)
	products := &stubProductRepo{products: map[string]*domain.Product{
		"p1": seedProduct(t, "p1", "s1", "5.00", 1),
	}}
	svc := newTestService(repo, products, nil, nil, nil)

	_, err := svc.AddItem(context.Background(), "cart-1", AddItemInput{ProductID: "p1", Quantity: 3})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if repo.saved != 0 {
		t.Fatalf("cart saved despite error")
	}
}

func TestApplyCouponScopedToCartProducts(t *testing.T) {
	cart := domain.NewCart("cart-1", "USD", testNow)
	products := &stubProductRepo{products: map[string]*domain.Product{
		"p1": seedProduct(t, "p1", "s1", "50.00", 10),
	}}
	repo := newStubCartRepo(cart)
	svc := newTestService(repo, products, &stubCouponRepo{coupon: &domain.CouponCode{
		ID:                 "c1",
		Code:               "SAVE10",
		DiscountType:       domain.DiscountPercentage,
		DiscountValue:      decimal.NewFromInt(10),
		UsageType:          domain.UsageUnlimited,
		Active:             true,
		IncludedProductIDs: []string{"p2"},
	}}, nil, nil)

	if _, err := svc.AddItem(context.Background(), "cart-1", AddItemInput{ProductID: "p1", Quantity: 1}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	_, err := svc.ApplyCoupon(context.Background(), "cart-1", "save10", "user-1")
	if !errors.Is(err, domain.ErrCouponNotApplicable) {
		t.Fatalf("expected ErrCouponNotApplicable for out-of-scope coupon, got %v", err)
	}
}

func TestApplyCouponDiscountsTotal(t *testing.T) {
	cart := domain.NewCart("cart-1", "USD", testNow)
	products := &stubProductRepo{products: map[string]*domain.Product{
		"p1": seedProduct(t, "p1", "s1", "50.00", 10),
	}}
	repo := newStubCartRepo(cart)
	svc := newTestService(repo, products, &stubCouponRepo{coupon: &domain.CouponCode{
		ID:            "c1",
		Code:          "SAVE10",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		UsageType:     domain.UsageUnlimited,
		Active:        true,
	}}, nil, nil)

	if _, err := svc.AddItem(context.Background(), "cart-1", AddItemInput{ProductID: "p1", Quantity: 2}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	got, err := svc.ApplyCoupon(context.Background(), "cart-1", "save10", "user-1")
	if err != nil {
		t.Fatalf("ApplyCoupon: %v", err)
	}
	if got.Discount.StringFixed() != "10.00" {
		t.Fatalf("discount = %s, want 10.00", got.Discount.StringFixed())
	}
	if got.Total.StringFixed() != "90.00" {
		t.Fatalf("total = %s, want 90.00", got.Total.StringFixed())
	}
}

func TestApplyCouponOncePerCustomerExhausted(t *testing.T) {
	cart := domain.NewCart("cart-1", "USD", testNow)
	products := &stubProductRepo{products: map[string]*domain.Product{
		"p1": seedProduct(t, "p1", "s1", "50.00", 10),
	}}
	repo := newStubCartRepo(cart)
	svc := newTestService(repo, products, &stubCouponRepo{
		coupon: &domain.CouponCode{
			ID:            "c1",
			Code:          "ONCE",
			DiscountType:  domain.DiscountPercentage,
			DiscountValue: decimal.NewFromInt(10),
			UsageType:     domain.UsageOncePerCustomer,
			Active:        true,
		},
		userUses: 1,
	}, nil, nil)

	if _, err := svc.AddItem(context.Background(), "cart-1", AddItemInput{ProductID: "p1", Quantity: 1}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	_, err := svc.ApplyCoupon(context.Background(), "cart-1", "ONCE", "user-1")
	if !errors.Is(err, domain.ErrCouponNotApplicable) {
		t.Fatalf("expected ErrCouponNotApplicable, got %v", err)
	}
}

func checkoutFixture(t *testing.T) (*Service, *stubCartRepo, *stubCheckoutRepo) {
	t.Helper()
	userID := "user-1"
	cart := domain.NewCart("cart-1", "USD", testNow)
	cart.UserID = &userID
	repo := newStubCartRepo(cart)
	products := &stubProductRepo{products: map[string]*domain.Product{
		"p1": seedProduct(t, "p1", "seller-a", "100.00", 10),
		"p2": seedProduct(t, "p2", "seller-b", "40.00", 10),
	}}
	rate := decimal.NewFromFloat(7.5)
	sellers := &stubSellerRepo{
		sellers: map[string]*domain.Seller{
			"seller-a": approvedSeller("seller-a", "mp-1"),
			"seller-b": approvedSeller("seller-b", "mp-1"),
		},
		marketplace: &domain.Marketplace{ID: "mp-1", Currency: "USD", DefaultCommissionRate: decimal.NewFromInt(10)},
	}
	sellers.sellers["seller-a"].CommissionRate = &rate
	checkout := &stubCheckoutRepo{}
	svc := newTestService(repo, products, nil, sellers, checkout)

	ctx := context.Background()
	if _, err := svc.AddItem(ctx, "cart-1", AddItemInput{ProductID: "p1", Quantity: 2}); err != nil {
		t.Fatalf("AddItem p1: %v", err)
	}
	if _, err := svc.AddItem(ctx, "cart-1", AddItemInput{ProductID: "p2", Quantity: 1}); err != nil {
		t.Fatalf("AddItem p2: %v", err)
	}
	return svc, repo, checkout
}

func TestCheckoutSplitsCartBySeller(t *testing.T) {
	svc, _, checkout := checkoutFixture(t)

	orders, err := svc.Checkout(context.Background(), "cart-1", CheckoutInput{MarketplaceID: "mp-1"})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].Subtotal.StringFixed() != "200.00" {
		t.Fatalf("first order subtotal = %s, want 200.00", orders[0].Subtotal.StringFixed())
	}
	if orders[1].Subtotal.StringFixed() != "40.00" {
		t.Fatalf("second order subtotal = %s, want 40.00", orders[1].Subtotal.StringFixed())
	}
	// seller-a carries a custom 7.5% rate; seller-b falls back to the 10% default
	if orders[0].Commission.StringFixed() != "15.00" {
		t.Fatalf("first order commission = %s, want 15.00", orders[0].Commission.StringFixed())
	}
	if orders[1].Commission.StringFixed() != "4.00" {
		t.Fatalf("second order commission = %s, want 4.00", orders[1].Commission.StringFixed())
	}

	if len(checkout.inputs) != 1 {
		t.Fatalf("expected one persist call, got %d", len(checkout.inputs))
	}
	in := checkout.inputs[0]
	if len(in.Commissions) != 2 {
		t.Fatalf("expected 2 commission rows, got %d", len(in.Commissions))
	}
	for _, c := range in.Commissions {
		if c.Status != domain.CommissionCalculated {
			t.Fatalf("commission status = %s, want calculated", c.Status)
		}
	}
	if len(in.Stock) != 2 {
		t.Fatalf("expected 2 stock decrements, got %d", len(in.Stock))
	}
}

func TestCheckoutRetriesOnDuplicateNumber(t *testing.T) {
	svc, _, checkout := checkoutFixture(t)
	checkout.failWith = []error{checkoutrepo.ErrDuplicateNumber}

	orders, err := svc.Checkout(context.Background(), "cart-1", CheckoutInput{MarketplaceID: "mp-1"})
	if err != nil {
		t.Fatalf("Checkout after retry: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if len(checkout.inputs) != 2 {
		t.Fatalf("expected 2 persist attempts, got %d", len(checkout.inputs))
	}
	first := checkout.inputs[0].Orders[0].Number
	second := checkout.inputs[1].Orders[0].Number
	if first == second {
		t.Fatalf("expected a regenerated number, both were %s", first)
	}
}

func TestCheckoutStockRaceSurfacesInsufficientStock(t *testing.T) {
	svc, _, checkout := checkoutFixture(t)
	checkout.failWith = []error{checkoutrepo.ErrStockConflict}

	_, err := svc.Checkout(context.Background(), "cart-1", CheckoutInput{MarketplaceID: "mp-1"})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock when the decrement guard loses, got %v", err)
	}
	if len(checkout.inputs) != 1 {
		t.Fatalf("stock conflicts should not be retried, got %d attempts", len(checkout.inputs))
	}
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	userID := "user-1"
	cart := domain.NewCart("cart-1", "USD", testNow)
	cart.UserID = &userID
	repo := newStubCartRepo(cart)
	svc := newTestService(repo, nil, nil, nil, nil)

	_, err := svc.Checkout(context.Background(), "cart-1", CheckoutInput{MarketplaceID: "mp-1"})
	if !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity for empty cart, got %v", err)
	}
}

func TestCheckoutSuspendedSellerRejected(t *testing.T) {
	svc, _, _ := checkoutFixture(t)
	sellers := svc.sellers.(*stubSellerRepo)
	sellers.sellers["seller-b"].Status = domain.SellerSuspended

	_, err := svc.Checkout(context.Background(), "cart-1", CheckoutInput{MarketplaceID: "mp-1"})
	if !errors.Is(err, domain.ErrSellerUnavailable) {
		t.Fatalf("expected ErrSellerUnavailable, got %v", err)
	}
}
