package product

import (
	"context"
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

const productColumns = `id::text, seller_id::text, COALESCE(category_id::text, ''), sku, name, description, price::text, currency, stock, active, created_at, deleted_at`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND deleted_at IS NULL`
	return r.scanProduct(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) GetVariant(ctx context.Context, productID, variantID string) (*domain.Variant, error) {
	const q = `
SELECT id::text, product_id::text, sku, name, price_adjustment::text, stock,
       (SELECT currency FROM products WHERE id = $1)
FROM product_variants
WHERE id = $2 AND product_id = $1
`
	var v domain.Variant
	var adjustment, currency string
	err := r.pool.QueryRow(ctx, q, productID, variantID).Scan(
		&v.ID, &v.ProductID, &v.SKU, &v.Name, &adjustment, &v.Stock, &currency,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	v.PriceAdjustment, err = domain.NewMoney(adjustment, currency)
	if err != nil {
		return nil, fmt.Errorf("variant %s price adjustment: %w", v.ID, err)
	}
	return &v, nil
}

func (r *postgresRepo) Create(ctx context.Context, p *domain.Product) error {
	const q = `
INSERT INTO products (seller_id, category_id, sku, name, description, price, currency, stock, active)
VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, $8, $9)
RETURNING id::text, created_at
`
	return r.pool.QueryRow(ctx, q,
		p.SellerID, p.CategoryID, p.SKU, p.Name, p.Description,
		p.Price.StringFixed(), p.Price.Currency(), p.Stock, p.Active,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *postgresRepo) SoftDelete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE products SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Restore(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE products SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ListDeleted(ctx context.Context) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE deleted_at IS NOT NULL ORDER BY deleted_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := r.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *postgresRepo) scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var price, currency string
	err := row.Scan(
		&p.ID, &p.SellerID, &p.CategoryID, &p.SKU, &p.Name, &p.Description,
		&price, &currency, &p.Stock, &p.Active, &p.CreatedAt, &p.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Price, err = domain.NewMoney(price, currency)
	if err != nil {
		return nil, fmt.Errorf("product %s price: %w", p.ID, err)
	}
	return &p, nil
}
