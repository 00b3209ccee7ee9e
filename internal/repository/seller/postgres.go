package seller

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

func (r *postgresRepo) Create(ctx context.Context, s *domain.Seller) error {
	const q = `
INSERT INTO sellers (marketplace_id, name, email, status, commission_rate, balance, pending_balance, vacation_mode)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id::text, created_at
`
	var rate *string
	if s.CommissionRate != nil {
		v := s.CommissionRate.StringFixed(2)
		rate = &v
	}
	return r.pool.QueryRow(ctx, q,
		s.MarketplaceID, s.Name, s.Email, string(s.Status), rate,
		s.Balance.StringFixed(), s.PendingBalance.StringFixed(), s.VacationMode,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Seller, error) {
	const q = `
SELECT s.id::text, s.marketplace_id::text, s.name, s.email, s.status,
       s.commission_rate::text, s.balance::text, s.pending_balance::text,
       s.vacation_mode, s.approved_at, s.suspended_at, s.created_at, s.deleted_at,
       m.currency
FROM sellers s
JOIN marketplaces m ON m.id = s.marketplace_id
WHERE s.id = $1 AND s.deleted_at IS NULL
`
	var s domain.Seller
	var status, currency string
	var rate, balance, pending *string
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&s.ID, &s.MarketplaceID, &s.Name, &s.Email, &status,
		&rate, &balance, &pending,
		&s.VacationMode, &s.ApprovedAt, &s.SuspendedAt, &s.CreatedAt, &s.DeletedAt,
		&currency,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	s.Status = domain.SellerStatus(status)
	if rate != nil {
		d, err := decimal.NewFromString(*rate)
		if err != nil {
			return nil, fmt.Errorf("seller %s commission rate: %w", s.ID, err)
		}
		s.CommissionRate = &d
	}
	if s.Balance, err = scanMoney(balance, currency); err != nil {
		return nil, fmt.Errorf("seller %s balance: %w", s.ID, err)
	}
	if s.PendingBalance, err = scanMoney(pending, currency); err != nil {
		return nil, fmt.Errorf("seller %s pending balance: %w", s.ID, err)
	}
	return &s, nil
}

func (r *postgresRepo) GetMarketplace(ctx context.Context, id string) (*domain.Marketplace, error) {
	const q = `
SELECT id::text, name, currency, default_commission_rate::text, created_at
FROM marketplaces
WHERE id = $1
`
	var m domain.Marketplace
	var rate string
	err := r.pool.QueryRow(ctx, q, id).Scan(&m.ID, &m.Name, &m.Currency, &rate, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if m.DefaultCommissionRate, err = decimal.NewFromString(rate); err != nil {
		return nil, fmt.Errorf("marketplace %s default rate: %w", m.ID, err)
	}
	return &m, nil
}

func (r *postgresRepo) SaveStatus(ctx context.Context, s *domain.Seller) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE sellers
SET status = $1, vacation_mode = $2, approved_at = $3, suspended_at = $4
WHERE id = $5 AND deleted_at IS NULL
`, string(s.Status), s.VacationMode, s.ApprovedAt, s.SuspendedAt, s.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SaveBalances(ctx context.Context, s *domain.Seller) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE sellers
SET balance = $1, pending_balance = $2
WHERE id = $3 AND deleted_at IS NULL
`, s.Balance.StringFixed(), s.PendingBalance.StringFixed(), s.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SoftDelete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE sellers SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Restore(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE sellers SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanMoney(s *string, currency string) (domain.Money, error) {
	if s == nil {
		return domain.Zero(currency), nil
	}
	return domain.NewMoney(*s, currency)
}
