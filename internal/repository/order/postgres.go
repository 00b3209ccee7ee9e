package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"marketplace-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const orderColumns = `
id::text, number, user_id::text, seller_id::text, marketplace_id::text,
status, payment_status, currency,
subtotal::text, tax::text, shipping::text, discount::text, commission::text, total::text,
billing_address, shipping_address,
confirmed_at, shipped_at, delivered_at, cancelled_at, created_at, updated_at, deleted_at`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND deleted_at IS NULL`
	o, err := r.scanOrder(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + `
FROM orders WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, q, userID, clampLimit(limit), clampOffset(offset))
}

func (r *postgresRepo) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + `
FROM orders WHERE seller_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, q, sellerID, clampLimit(limit), clampOffset(offset))
}

func (r *postgresRepo) SaveStatus(ctx context.Context, o *domain.Order) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET status = $1, payment_status = $2,
    confirmed_at = $3, shipped_at = $4, delivered_at = $5, cancelled_at = $6,
    updated_at = $7
WHERE id = $8 AND deleted_at IS NULL
`,
		string(o.Status), string(o.PaymentStatus),
		o.ConfirmedAt, o.ShippedAt, o.DeliveredAt, o.CancelledAt,
		o.UpdatedAt, o.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SoftDelete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Restore(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *postgresRepo) scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var status, paymentStatus string
	var subtotal, tax, shipping, discount, commission, total string
	var billing, shippingAddr []byte
	err := row.Scan(
		&o.ID, &o.Number, &o.UserID, &o.SellerID, &o.MarketplaceID,
		&status, &paymentStatus, &o.Currency,
		&subtotal, &tax, &shipping, &discount, &commission, &total,
		&billing, &shippingAddr,
		&o.ConfirmedAt, &o.ShippedAt, &o.DeliveredAt, &o.CancelledAt,
		&o.CreatedAt, &o.UpdatedAt, &o.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	o.PaymentStatus = domain.PaymentStatus(paymentStatus)
	if err := json.Unmarshal(billing, &o.BillingAddress); err != nil {
		return nil, fmt.Errorf("order %s billing address: %w", o.ID, err)
	}
	if err := json.Unmarshal(shippingAddr, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("order %s shipping address: %w", o.ID, err)
	}
	for name, raw := range map[string]struct {
		dst *domain.Money
		val string
	}{
		"subtotal":   {&o.Subtotal, subtotal},
		"tax":        {&o.Tax, tax},
		"shipping":   {&o.Shipping, shipping},
		"discount":   {&o.Discount, discount},
		"commission": {&o.Commission, commission},
		"total":      {&o.Total, total},
	} {
		m, err := domain.NewMoney(raw.val, o.Currency)
		if err != nil {
			return nil, fmt.Errorf("order %s %s: %w", o.ID, name, err)
		}
		*raw.dst = m
	}
	return &o, nil
}

func (r *postgresRepo) loadItems(ctx context.Context, o *domain.Order) error {
	rows, err := r.pool.Query(ctx, `
SELECT id::text, order_id::text, product_id::text, variant_id::text,
       product_name, sku, quantity, unit_price::text
FROM order_items
WHERE order_id = $1
`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.OrderItem
		var unitPrice string
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.VariantID,
			&item.ProductName, &item.SKU, &item.Quantity, &unitPrice,
		); err != nil {
			return err
		}
		if item.UnitPrice, err = domain.NewMoney(unitPrice, o.Currency); err != nil {
			return fmt.Errorf("order item %s unit price: %w", item.ID, err)
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
