package seed

import (
	"context"
	"fmt"

	"marketplace-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type sellerSeed struct {
	Name           string
	Email          string
	CommissionRate *float64
}

type productSeed struct {
	SellerEmail string
	SKU         string
	Name        string
	Description string
	Price       string
	Currency    string
	Stock       int
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	marketplaceID, err := ensureMarketplace(ctx, pool, "Demo Marketplace", "USD", "10.00")
	if err != nil {
		return fmt.Errorf("ensure marketplace: %w", err)
	}

	if err := upsertUser(ctx, pool, domain.User{Email: "demo@example.com", Name: "Demo Shopper"}); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	categoryID, err := upsertCategory(ctx, pool, domain.Category{Name: "Apparel", Slug: "apparel"})
	if err != nil {
		return fmt.Errorf("upsert category: %w", err)
	}

	customRate := 7.5
	sellers := []sellerSeed{
		{Name: "Acme Outfitters", Email: "acme@example.com", CommissionRate: &customRate},
		{Name: "North Shore Goods", Email: "northshore@example.com"},
	}
	sellerIDs := make(map[string]string, len(sellers))
	for _, s := range sellers {
		id, err := upsertSeller(ctx, pool, marketplaceID, s)
		if err != nil {
			return fmt.Errorf("upsert seller %s: %w", s.Email, err)
		}
		sellerIDs[s.Email] = id
	}

	products := []productSeed{
		{
			SellerEmail: "acme@example.com",
			SKU:         "SKU-DEMO-TSHIRT",
			Name:        "Demo T-Shirt",
			Description: "Soft cotton tee for demo purposes",
			Price:       "19.99",
			Currency:    "USD",
			Stock:       100,
		},
		{
			SellerEmail: "acme@example.com",
			SKU:         "SKU-DEMO-MUG",
			Name:        "Demo Mug",
			Description: "Ceramic mug with demo logo",
			Price:       "12.99",
			Currency:    "USD",
			Stock:       50,
		},
		{
			SellerEmail: "northshore@example.com",
			SKU:         "SKU-DEMO-BEANIE",
			Name:        "Demo Beanie",
			Description: "Warm knit beanie",
			Price:       "15.00",
			Currency:    "USD",
			Stock:       40,
		},
	}
	for _, p := range products {
		if err := upsertProduct(ctx, pool, sellerIDs[p.SellerEmail], categoryID, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	if err := upsertCoupon(ctx, pool, "WELCOME10", "percentage", "10", "25.00"); err != nil {
		return fmt.Errorf("upsert coupon WELCOME10: %w", err)
	}

	return nil
}

func ensureMarketplace(ctx context.Context, pool *pgxpool.Pool, name, currency, rate string) (string, error) {
	const q = `
INSERT INTO marketplaces (name, currency, default_commission_rate)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET currency = EXCLUDED.currency
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, name, currency, rate).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertSeller(ctx context.Context, pool *pgxpool.Pool, marketplaceID string, s sellerSeed) (string, error) {
	const q = `
INSERT INTO sellers (marketplace_id, name, email, status, commission_rate, approved_at)
VALUES ($1, $2, $3, 'approved', $4, now())
ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, marketplaceID, s.Name, s.Email, s.CommissionRate).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertUser(ctx context.Context, pool *pgxpool.Pool, u domain.User) error {
	const q = `
INSERT INTO users (email, name)
VALUES ($1, $2)
ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
`
	_, err := pool.Exec(ctx, q, u.Email, u.Name)
	return err
}

func upsertCategory(ctx context.Context, pool *pgxpool.Pool, c domain.Category) (string, error) {
	const q = `
INSERT INTO categories (name, slug, parent_id)
VALUES ($1, $2, $3)
ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, c.Name, c.Slug, c.ParentID).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, sellerID, categoryID string, p productSeed) error {
	const q = `
INSERT INTO products (seller_id, category_id, sku, name, description, price, currency, stock)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (sku) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    currency = EXCLUDED.currency,
    stock = EXCLUDED.stock
`
	_, err := pool.Exec(ctx, q, sellerID, categoryID, p.SKU, p.Name, p.Description, p.Price, p.Currency, p.Stock)
	return err
}

func upsertCoupon(ctx context.Context, pool *pgxpool.Pool, code, discountType, value, minimum string) error {
	const q = `
INSERT INTO coupons (code, discount_type, discount_value, minimum_order_amount, usage_type, active)
VALUES ($1, $2, $3, $4, 'unlimited', TRUE)
ON CONFLICT (code) DO UPDATE
SET discount_type = EXCLUDED.discount_type,
    discount_value = EXCLUDED.discount_value,
    minimum_order_amount = EXCLUDED.minimum_order_amount
`
	_, err := pool.Exec(ctx, q, code, discountType, value, minimum)
	return err
}
