package checkout

import (
	"context"
	"encoding/json"
	"errors"

	"marketplace-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Persist(ctx context.Context, in Input) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Guarded decrements first: losing a stock race aborts before anything
	// else is written.
	for _, dec := range in.Stock {
		if err := decrementStock(ctx, tx, dec); err != nil {
			return err
		}
	}

	for _, o := range in.Orders {
		if err := insertOrder(ctx, tx, o); err != nil {
			return err
		}
	}

	for _, c := range in.Commissions {
		// Order IDs are assigned during insert above.
		for _, o := range in.Orders {
			if o.Number == c.OrderNumber {
				c.OrderID = o.ID
			}
		}
		if err := insertCommission(ctx, tx, c); err != nil {
			return err
		}
	}

	for _, u := range in.Usages {
		for _, o := range in.Orders {
			if u.OrderID == o.Number {
				u.OrderID = o.ID
			}
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO coupon_usages (coupon_id, user_id, order_id, order_amount, discount_amount, used_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, u.CouponID, u.UserID, u.OrderID, u.OrderAmount.StringFixed(), u.DiscountAmount.StringFixed(), u.UsedAt); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE coupons SET usage_count = usage_count + 1 WHERE id = $1`, u.CouponID,
		); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, in.CartID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_coupons WHERE cart_id = $1`, in.CartID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
UPDATE carts SET subtotal = 0, discount = 0, total = tax + shipping, updated_at = now()
WHERE id = $1
`, in.CartID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func decrementStock(ctx context.Context, tx pgx.Tx, dec StockDecrement) error {
	if dec.VariantID != nil {
		cmd, err := tx.Exec(ctx, `
UPDATE product_variants SET stock = stock - $1
WHERE id = $2 AND stock >= $1
`, dec.Quantity, *dec.VariantID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrStockConflict
		}
		return nil
	}
	cmd, err := tx.Exec(ctx, `
UPDATE products SET stock = stock - $1
WHERE id = $2 AND stock >= $1
`, dec.Quantity, dec.ProductID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStockConflict
	}
	return nil
}

func insertOrder(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	billing, err := json.Marshal(o.BillingAddress)
	if err != nil {
		return err
	}
	shipping, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, `
INSERT INTO orders (number, user_id, seller_id, marketplace_id, status, payment_status, currency,
                    subtotal, tax, shipping, discount, commission, total,
                    billing_address, shipping_address, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
RETURNING id::text
`,
		o.Number, o.UserID, o.SellerID, o.MarketplaceID,
		string(o.Status), string(o.PaymentStatus), o.Currency,
		o.Subtotal.StringFixed(), o.Tax.StringFixed(), o.Shipping.StringFixed(),
		o.Discount.StringFixed(), o.Commission.StringFixed(), o.Total.StringFixed(),
		billing, shipping, o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateNumber
		}
		return err
	}
	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		if err := tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, product_id, variant_id, product_name, sku, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id::text
`,
			o.ID, item.ProductID, item.VariantID, item.ProductName, item.SKU,
			item.Quantity, item.UnitPrice.StringFixed(),
		).Scan(&item.ID); err != nil {
			return err
		}
	}
	return nil
}

func insertCommission(ctx context.Context, tx pgx.Tx, c *domain.MarketplaceCommission) error {
	return tx.QueryRow(ctx, `
INSERT INTO marketplace_commissions (order_id, order_number, seller_id, marketplace_id, currency,
                                     order_amount, commission_rate, commission_amount,
                                     transaction_fee, net_commission, seller_amount,
                                     status, calculated_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING id::text
`,
		c.OrderID, c.OrderNumber, c.SellerID, c.MarketplaceID, c.Currency,
		c.OrderAmount.StringFixed(), c.CommissionRate.StringFixed(2), c.CommissionAmount.StringFixed(),
		c.TransactionFee.StringFixed(), c.NetCommission.StringFixed(), c.SellerAmount.StringFixed(),
		string(c.Status), c.CalculatedAt, c.CreatedAt,
	).Scan(&c.ID)
}
