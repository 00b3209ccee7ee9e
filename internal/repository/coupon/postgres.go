package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type postgresRepo struct {
	pool     *pgxpool.Pool
	currency string
}

// NewPostgres builds the coupon repository. Monetary coupon bounds are stored
// without a currency column and interpreted in the marketplace currency.
func NewPostgres(pool *pgxpool.Pool, currency string) Repository {
	return &postgresRepo{pool: pool, currency: currency}
}

func (r *postgresRepo) Create(ctx context.Context, c *domain.CouponCode) error {
	const q = `
INSERT INTO coupons (code, discount_type, discount_value, minimum_order_amount, maximum_discount_amount,
                     usage_type, usage_limit, usage_count, starts_at, expires_at, active,
                     included_product_ids, excluded_product_ids, included_category_ids,
                     excluded_category_ids, included_seller_ids, excluded_seller_ids)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
RETURNING id::text, created_at
`
	return r.pool.QueryRow(ctx, q,
		strings.ToUpper(c.Code), string(c.DiscountType), c.DiscountValue.StringFixed(2),
		moneyText(c.MinimumOrderAmount), moneyText(c.MaximumDiscountAmount),
		string(c.UsageType), c.UsageLimit, c.UsageCount, c.StartsAt, c.ExpiresAt, c.Active,
		c.IncludedProductIDs, c.ExcludedProductIDs, c.IncludedCategoryIDs,
		c.ExcludedCategoryIDs, c.IncludedSellerIDs, c.ExcludedSellerIDs,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *postgresRepo) GetByCode(ctx context.Context, code string) (*domain.CouponCode, error) {
	const q = `
SELECT id::text, code, discount_type, discount_value::text,
       minimum_order_amount::text, maximum_discount_amount::text,
       usage_type, usage_limit, usage_count, starts_at, expires_at, active,
       included_product_ids, excluded_product_ids, included_category_ids,
       excluded_category_ids, included_seller_ids, excluded_seller_ids,
       created_at, deleted_at
FROM coupons
WHERE code = $1 AND deleted_at IS NULL
`
	var c domain.CouponCode
	var dtype, utype, value string
	var minAmount, maxAmount *string
	err := r.pool.QueryRow(ctx, q, strings.ToUpper(code)).Scan(
		&c.ID, &c.Code, &dtype, &value, &minAmount, &maxAmount,
		&utype, &c.UsageLimit, &c.UsageCount, &c.StartsAt, &c.ExpiresAt, &c.Active,
		&c.IncludedProductIDs, &c.ExcludedProductIDs, &c.IncludedCategoryIDs,
		&c.ExcludedCategoryIDs, &c.IncludedSellerIDs, &c.ExcludedSellerIDs,
		&c.CreatedAt, &c.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.DiscountType = domain.DiscountType(dtype)
	c.UsageType = domain.UsageType(utype)
	if c.DiscountValue, err = decimal.NewFromString(value); err != nil {
		return nil, fmt.Errorf("coupon %s discount value: %w", c.Code, err)
	}
	if c.MinimumOrderAmount, err = r.moneyPtr(minAmount); err != nil {
		return nil, fmt.Errorf("coupon %s minimum: %w", c.Code, err)
	}
	if c.MaximumDiscountAmount, err = r.moneyPtr(maxAmount); err != nil {
		return nil, fmt.Errorf("coupon %s maximum: %w", c.Code, err)
	}
	return &c, nil
}

func (r *postgresRepo) Update(ctx context.Context, c *domain.CouponCode) error {
	const q = `
UPDATE coupons
SET discount_type = $1, discount_value = $2, minimum_order_amount = $3, maximum_discount_amount = $4,
    usage_type = $5, usage_limit = $6, usage_count = $7, starts_at = $8, expires_at = $9, active = $10,
    included_product_ids = $11, excluded_product_ids = $12, included_category_ids = $13,
    excluded_category_ids = $14, included_seller_ids = $15, excluded_seller_ids = $16
WHERE id = $17 AND deleted_at IS NULL
`
	cmd, err := r.pool.Exec(ctx, q,
		string(c.DiscountType), c.DiscountValue.StringFixed(2),
		moneyText(c.MinimumOrderAmount), moneyText(c.MaximumDiscountAmount),
		string(c.UsageType), c.UsageLimit, c.UsageCount, c.StartsAt, c.ExpiresAt, c.Active,
		c.IncludedProductIDs, c.ExcludedProductIDs, c.IncludedCategoryIDs,
		c.ExcludedCategoryIDs, c.IncludedSellerIDs, c.ExcludedSellerIDs, c.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SoftDelete(ctx context.Context, code string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE coupons SET deleted_at = now() WHERE code = $1 AND deleted_at IS NULL`, code)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Restore(ctx context.Context, code string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE coupons SET deleted_at = NULL WHERE code = $1 AND deleted_at IS NOT NULL`, code)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) CountUsagesByUser(ctx context.Context, couponID, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2`,
		couponID, userID,
	).Scan(&n)
	return n, err
}

func (r *postgresRepo) ListUsages(ctx context.Context, couponID string) ([]domain.CouponUsage, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id::text, coupon_id::text, user_id::text, order_id::text,
       order_amount::text, discount_amount::text, used_at
FROM coupon_usages
WHERE coupon_id = $1
ORDER BY used_at DESC
`, couponID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CouponUsage
	for rows.Next() {
		var u domain.CouponUsage
		var orderAmount, discountAmount string
		if err := rows.Scan(&u.ID, &u.CouponID, &u.UserID, &u.OrderID, &orderAmount, &discountAmount, &u.UsedAt); err != nil {
			return nil, err
		}
		if u.OrderAmount, err = domain.NewMoney(orderAmount, r.currency); err != nil {
			return nil, fmt.Errorf("usage %s order amount: %w", u.ID, err)
		}
		if u.DiscountAmount, err = domain.NewMoney(discountAmount, r.currency); err != nil {
			return nil, fmt.Errorf("usage %s discount amount: %w", u.ID, err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *postgresRepo) moneyPtr(s *string) (*domain.Money, error) {
	if s == nil {
		return nil, nil
	}
	m, err := domain.NewMoney(*s, r.currency)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func moneyText(m *domain.Money) *string {
	if m == nil {
		return nil
	}
	s := m.StringFixed()
	return &s
}
