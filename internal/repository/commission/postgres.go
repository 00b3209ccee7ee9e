package commission

import (
	"context"
	"errors"
	"fmt"

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

func (r *postgresRepo) Create(ctx context.Context, c *domain.MarketplaceCommission) error {
	const q = `
INSERT INTO marketplace_commissions (order_id, order_number, seller_id, marketplace_id, currency,
                                     order_amount, commission_rate, commission_amount,
                                     transaction_fee, net_commission, seller_amount,
                                     status, calculated_at, collected_at, disputed_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING id::text
`
	return r.pool.QueryRow(ctx, q,
		c.OrderID, c.OrderNumber, c.SellerID, c.MarketplaceID, c.Currency,
		c.OrderAmount.StringFixed(), c.CommissionRate.StringFixed(2), c.CommissionAmount.StringFixed(),
		c.TransactionFee.StringFixed(), c.NetCommission.StringFixed(), c.SellerAmount.StringFixed(),
		string(c.Status), c.CalculatedAt, c.CollectedAt, c.DisputedAt, c.CreatedAt,
	).Scan(&c.ID)
}

const columns = `
id::text, order_id::text, order_number, seller_id::text, marketplace_id::text, currency,
order_amount::text, commission_rate::text, commission_amount::text,
transaction_fee::text, net_commission::text, seller_amount::text,
status, calculated_at, collected_at, disputed_at, created_at`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.MarketplaceCommission, error) {
	q := `SELECT ` + columns + ` FROM marketplace_commissions WHERE id = $1`
	return scan(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) GetByOrder(ctx context.Context, orderID string) (*domain.MarketplaceCommission, error) {
	q := `SELECT ` + columns + ` FROM marketplace_commissions WHERE order_id = $1`
	return scan(r.pool.QueryRow(ctx, q, orderID))
}

func (r *postgresRepo) Save(ctx context.Context, c *domain.MarketplaceCommission) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE marketplace_commissions
SET commission_amount = $1, transaction_fee = $2, net_commission = $3, seller_amount = $4,
    status = $5, calculated_at = $6, collected_at = $7, disputed_at = $8
WHERE id = $9
`,
		c.CommissionAmount.StringFixed(), c.TransactionFee.StringFixed(),
		c.NetCommission.StringFixed(), c.SellerAmount.StringFixed(),
		string(c.Status), c.CalculatedAt, c.CollectedAt, c.DisputedAt, c.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ListCollectedBySeller(ctx context.Context, sellerID string) ([]domain.MarketplaceCommission, error) {
	q := `SELECT ` + columns + `
FROM marketplace_commissions
WHERE seller_id = $1 AND status = 'collected' AND payout_id IS NULL
ORDER BY collected_at ASC`
	rows, err := r.pool.Query(ctx, q, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MarketplaceCommission
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scan(row pgx.Row) (*domain.MarketplaceCommission, error) {
	var c domain.MarketplaceCommission
	var status, rate string
	var orderAmount, commissionAmount, fee, net, sellerAmount string
	err := row.Scan(
		&c.ID, &c.OrderID, &c.OrderNumber, &c.SellerID, &c.MarketplaceID, &c.Currency,
		&orderAmount, &rate, &commissionAmount, &fee, &net, &sellerAmount,
		&status, &c.CalculatedAt, &c.CollectedAt, &c.DisputedAt, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.Status = domain.CommissionStatus(status)
	if c.CommissionRate, err = decimal.NewFromString(rate); err != nil {
		return nil, fmt.Errorf("commission %s rate: %w", c.ID, err)
	}
	for name, raw := range map[string]struct {
		dst *domain.Money
		val string
	}{
		"order amount":      {&c.OrderAmount, orderAmount},
		"commission amount": {&c.CommissionAmount, commissionAmount},
		"transaction fee":   {&c.TransactionFee, fee},
		"net commission":    {&c.NetCommission, net},
		"seller amount":     {&c.SellerAmount, sellerAmount},
	} {
		m, err := domain.NewMoney(raw.val, c.Currency)
		if err != nil {
			return nil, fmt.Errorf("commission %s %s: %w", c.ID, name, err)
		}
		*raw.dst = m
	}
	return &c, nil
}
