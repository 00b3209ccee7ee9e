package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, cart *domain.Cart) error {
	const q = `
INSERT INTO carts (user_id, session_id, currency, subtotal, tax, shipping, discount, total, created_at, updated_at)
VALUES (NULLIF($1, '')::uuid, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $9)
RETURNING id::text
`
	var userID, sessionID string
	if cart.UserID != nil {
		userID = *cart.UserID
	}
	if cart.SessionID != nil {
		sessionID = *cart.SessionID
	}
	return r.pool.QueryRow(ctx, q,
		userID, sessionID, cart.Currency,
		cart.Subtotal.StringFixed(), cart.Tax.StringFixed(), cart.Shipping.StringFixed(),
		cart.Discount.StringFixed(), cart.Total.StringFixed(), cart.CreatedAt,
	).Scan(&cart.ID)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	const q = `
SELECT id::text, user_id::text, session_id, currency,
       subtotal::text, tax::text, shipping::text, discount::text, total::text,
       created_at, updated_at, deleted_at
FROM carts
WHERE id = $1 AND deleted_at IS NULL
`
	return r.fetchCart(ctx, q, id)
}

func (r *postgresRepo) GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	const q = `
SELECT id::text, user_id::text, session_id, currency,
       subtotal::text, tax::text, shipping::text, discount::text, total::text,
       created_at, updated_at, deleted_at
FROM carts
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY updated_at DESC
LIMIT 1
`
	return r.fetchCart(ctx, q, userID)
}

// Save rewrites the aggregate: the cart row is updated and the line/coupon
// child rows are replaced wholesale inside one transaction.
func (r *postgresRepo) Save(ctx context.Context, cart *domain.Cart) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE carts
SET subtotal = $1, tax = $2, shipping = $3, discount = $4, total = $5, updated_at = $6
WHERE id = $7 AND deleted_at IS NULL
`,
		cart.Subtotal.StringFixed(), cart.Tax.StringFixed(), cart.Shipping.StringFixed(),
		cart.Discount.StringFixed(), cart.Total.StringFixed(), cart.UpdatedAt, cart.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cart.ID); err != nil {
		return err
	}
	for _, item := range cart.Items {
		var variantID string
		if item.VariantID != nil {
			variantID = *item.VariantID
		}
		err := tx.QueryRow(ctx, `
INSERT INTO cart_items (cart_id, product_id, variant_id, seller_id, product_name, sku, quantity, unit_price, created_at)
VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, $9)
RETURNING id::text
`,
			cart.ID, item.ProductID, variantID, item.SellerID,
			item.ProductName, item.SKU, item.Quantity, item.UnitPrice.StringFixed(), item.CreatedAt,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_coupons WHERE cart_id = $1`, cart.ID); err != nil {
		return err
	}
	for _, ac := range cart.AppliedCoupons {
		if _, err := tx.Exec(ctx, `
INSERT INTO cart_coupons (cart_id, coupon_id, code, discount_type, discount_value, discount, applied_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`,
			cart.ID, ac.CouponID, ac.Code, string(ac.Type), ac.Value, ac.Discount.StringFixed(), ac.AppliedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) SoftDelete(ctx context.Context, id string, now time.Time) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE carts SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`, now, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) PurgeExpired(ctx context.Context, now time.Time, window time.Duration) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE carts SET deleted_at = $1
WHERE deleted_at IS NULL AND updated_at < $2
`, now, now.Add(-window))
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *postgresRepo) fetchCart(ctx context.Context, q string, args ...interface{}) (*domain.Cart, error) {
	var cart domain.Cart
	var subtotal, tax, shipping, discount, total string
	err := r.pool.QueryRow(ctx, q, args...).Scan(
		&cart.ID, &cart.UserID, &cart.SessionID, &cart.Currency,
		&subtotal, &tax, &shipping, &discount, &total,
		&cart.CreatedAt, &cart.UpdatedAt, &cart.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if cart.Subtotal, err = domain.NewMoney(subtotal, cart.Currency); err != nil {
		return nil, fmt.Errorf("cart %s subtotal: %w", cart.ID, err)
	}
	if cart.Tax, err = domain.NewMoney(tax, cart.Currency); err != nil {
		return nil, fmt.Errorf("cart %s tax: %w", cart.ID, err)
	}
	if cart.Shipping, err = domain.NewMoney(shipping, cart.Currency); err != nil {
		return nil, fmt.Errorf("cart %s shipping: %w", cart.ID, err)
	}
	if cart.Discount, err = domain.NewMoney(discount, cart.Currency); err != nil {
		return nil, fmt.Errorf("cart %s discount: %w", cart.ID, err)
	}
	if cart.Total, err = domain.NewMoney(total, cart.Currency); err != nil {
		return nil, fmt.Errorf("cart %s total: %w", cart.ID, err)
	}

	rows, err := r.pool.Query(ctx, `
SELECT id::text, cart_id::text, product_id::text, variant_id::text, seller_id::text,
       product_name, sku, quantity, unit_price::text, created_at
FROM cart_items
WHERE cart_id = $1
ORDER BY created_at ASC
`, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.CartItem
		var unitPrice string
		if err := rows.Scan(
			&item.ID, &item.CartID, &item.ProductID, &item.VariantID, &item.SellerID,
			&item.ProductName, &item.SKU, &item.Quantity, &unitPrice, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		if item.UnitPrice, err = domain.NewMoney(unitPrice, cart.Currency); err != nil {
			return nil, fmt.Errorf("cart item %s unit price: %w", item.ID, err)
		}
		cart.Items = append(cart.Items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	crows, err := r.pool.Query(ctx, `
SELECT coupon_id::text, code, discount_type, discount_value, discount::text, applied_at
FROM cart_coupons
WHERE cart_id = $1
ORDER BY applied_at ASC
`, cart.ID)
	if err != nil {
		return nil, err
	}
	defer crows.Close()
	for crows.Next() {
		var ac domain.AppliedCoupon
		var dtype, amount string
		if err := crows.Scan(&ac.CouponID, &ac.Code, &dtype, &ac.Value, &amount, &ac.AppliedAt); err != nil {
			return nil, err
		}
		ac.Type = domain.DiscountType(dtype)
		if _, err := decimal.NewFromString(ac.Value); err != nil {
			return nil, fmt.Errorf("cart coupon %s value: %w", ac.Code, err)
		}
		if ac.Discount, err = domain.NewMoney(amount, cart.Currency); err != nil {
			return nil, fmt.Errorf("cart coupon %s discount: %w", ac.Code, err)
		}
		cart.AppliedCoupons = append(cart.AppliedCoupons, ac)
	}
	if err := crows.Err(); err != nil {
		return nil, err
	}

	return &cart, nil
}
