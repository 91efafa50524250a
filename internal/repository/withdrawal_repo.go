package repository

import (
	"context"
	"errors"
	"time"

	"earnhub/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const withdrawalColumns = `id, order_id, user_id, amount, fee, net_payout, method, status,
	COALESCE(admin_note, ''), created_at, decided_at, paid_at`

type WithdrawalRepository struct {
	db *pgxpool.Pool
}

func NewWithdrawalRepository(db *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) Create(ctx context.Context, w *domain.Withdrawal) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO withdrawals (order_id, user_id, amount, fee, net_payout, method, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING id, created_at`,
		w.OrderID, w.UserID, w.Amount, w.Fee, w.NetPayout, w.Method,
	).Scan(&w.ID, &w.CreatedAt)
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	return scanWithdrawal(r.db.QueryRow(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1`, id))
}

// MarkDecidedTx moves pending -> approved/rejected inside an existing
// transaction. Zero affected rows means the request already left
// pending: the caller holds a stale view and must not retry.
func (r *WithdrawalRepository) MarkDecidedTx(ctx context.Context, tx pgx.Tx, id int64, status domain.WithdrawalStatus, note string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE withdrawals
		SET status = $2, admin_note = $3, decided_at = NOW()
		WHERE id = $1 AND status = 'pending'`,
		id, status, note)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// MarkRejected is the transaction-free variant used when no ledger
// mutation accompanies the decision.
func (r *WithdrawalRepository) MarkRejected(ctx context.Context, id int64, note string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE withdrawals
		SET status = 'rejected', admin_note = $2, decided_at = NOW()
		WHERE id = $1 AND status = 'pending'`,
		id, note)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// MarkPaid records external payout confirmation, approved -> paid.
func (r *WithdrawalRepository) MarkPaid(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE withdrawals SET status = 'paid', paid_at = NOW()
		WHERE id = $1 AND status = 'approved'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// HasSettled reports whether the user has any request in a settled
// state (approved or paid). Queried from durable history because the
// first-withdrawal surcharge is a cross-session condition.
func (r *WithdrawalRepository) HasSettled(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM withdrawals
			WHERE user_id = $1 AND status IN ('approved', 'paid')
		)`, userID).Scan(&exists)
	return exists, err
}

func (r *WithdrawalRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.Withdrawal, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWithdrawals(rows)
}

func (r *WithdrawalRepository) ListPending(ctx context.Context) ([]*domain.Withdrawal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals
		 WHERE status = 'pending' ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWithdrawals(rows)
}

// ListStalePending returns pending requests older than the given number
// of hours, oldest first. Feeds the periodic admin reminder.
func (r *WithdrawalRepository) ListStalePending(ctx context.Context, olderThanHours int) ([]*domain.Withdrawal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals
		 WHERE status = 'pending' AND created_at < NOW() - ($1 * INTERVAL '1 hour')
		 ORDER BY created_at ASC`,
		olderThanHours)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWithdrawals(rows)
}

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	var decidedAt, paidAt *time.Time
	if err := row.Scan(
		&w.ID, &w.OrderID, &w.UserID, &w.Amount, &w.Fee, &w.NetPayout,
		&w.Method, &w.Status, &w.AdminNote, &w.CreatedAt, &decidedAt, &paidAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	w.DecidedAt = decidedAt
	w.PaidAt = paidAt
	return &w, nil
}

func scanWithdrawals(rows pgx.Rows) ([]*domain.Withdrawal, error) {
	var res []*domain.Withdrawal
	for rows.Next() {
		var w domain.Withdrawal
		var decidedAt, paidAt *time.Time
		if err := rows.Scan(
			&w.ID, &w.OrderID, &w.UserID, &w.Amount, &w.Fee, &w.NetPayout,
			&w.Method, &w.Status, &w.AdminNote, &w.CreatedAt, &decidedAt, &paidAt,
		); err != nil {
			return nil, err
		}
		w.DecidedAt = decidedAt
		w.PaidAt = paidAt
		res = append(res, &w)
	}
	return res, rows.Err()
}
