package payout

import (
	"context"
	"errors"
	"fmt"

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

func (r *postgresRepo) Create(ctx context.Context, p *domain.SellerPayout, commissionIDs []string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
INSERT INTO seller_payouts (number, seller_id, currency, amount, fees, net_amount, status, payment_method, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id::text
`,
		p.Number, p.SellerID, p.Currency,
		p.Amount.StringFixed(), p.Fees.StringFixed(), p.NetAmount.StringFixed(),
		string(p.Status), p.PaymentMethod, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateNumber
		}
		return err
	}

	if len(commissionIDs) > 0 {
		cmd, err := tx.Exec(ctx, `
UPDATE marketplace_commissions
SET payout_id = $1
WHERE id = ANY($2) AND payout_id IS NULL
`, p.ID, commissionIDs)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() != int64(len(commissionIDs)) {
			return fmt.Errorf("payout %s: swept %d of %d commissions", p.Number, cmd.RowsAffected(), len(commissionIDs))
		}
	}

	return tx.Commit(ctx)
}

const columns = `
id::text, number, seller_id::text, currency,
amount::text, fees::text, net_amount::text,
status, payment_method, transaction_id, failure_reason,
processed_at, completed_at, failed_at, cancelled_at, created_at`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.SellerPayout, error) {
	q := `SELECT ` + columns + ` FROM seller_payouts WHERE id = $1`
	return scan(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]domain.SellerPayout, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	q := `SELECT ` + columns + `
FROM seller_payouts WHERE seller_id = $1
ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, q, sellerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SellerPayout
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Save(ctx context.Context, p *domain.SellerPayout) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE seller_payouts
SET amount = $1, fees = $2, net_amount = $3, status = $4,
    transaction_id = $5, failure_reason = $6,
    processed_at = $7, completed_at = $8, failed_at = $9, cancelled_at = $10
WHERE id = $11
`,
		p.Amount.StringFixed(), p.Fees.StringFixed(), p.NetAmount.StringFixed(), string(p.Status),
		p.TransactionID, p.FailureReason,
		p.ProcessedAt, p.CompletedAt, p.FailedAt, p.CancelledAt, p.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ReleaseCommissions(ctx context.Context, payoutID string) error {
	_, err := r.pool.Exec(ctx, `
UPDATE marketplace_commissions SET payout_id = NULL WHERE payout_id = $1
`, payoutID)
	return err
}

func scan(row pgx.Row) (*domain.SellerPayout, error) {
	var p domain.SellerPayout
	var status string
	var amount, fees, net string
	err := row.Scan(
		&p.ID, &p.Number, &p.SellerID, &p.Currency,
		&amount, &fees, &net,
		&status, &p.PaymentMethod, &p.TransactionID, &p.FailureReason,
		&p.ProcessedAt, &p.CompletedAt, &p.FailedAt, &p.CancelledAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Status = domain.PayoutStatus(status)
	if p.Amount, err = domain.NewMoney(amount, p.Currency); err != nil {
		return nil, fmt.Errorf("payout %s amount: %w", p.ID, err)
	}
	if p.Fees, err = domain.NewMoney(fees, p.Currency); err != nil {
		return nil, fmt.Errorf("payout %s fees: %w", p.ID, err)
	}
	if p.NetAmount, err = domain.NewMoney(net, p.Currency); err != nil {
		return nil, fmt.Errorf("payout %s net amount: %w", p.ID, err)
	}
	return &p, nil
}
