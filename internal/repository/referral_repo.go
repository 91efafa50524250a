package repository

import (
	"context"

	"earnhub/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReferralRepository struct {
	db *pgxpool.Pool
}

func NewReferralRepository(db *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// CreateEventTx claims the one referral slot for the referee inside an
// existing transaction. The unique constraint on referee_id makes the
// first qualifying action win; a duplicate insert reports inserted=false
// and the caller treats the whole apply as a no-op.
func (r *ReferralRepository) CreateEventTx(ctx context.Context, tx pgx.Tx, e *domain.ReferralEvent) (inserted bool, err error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO referral_events (id, referrer_id, referee_id, action, bonus)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (referee_id) DO NOTHING`,
		e.ID, e.ReferrerID, e.RefereeID, e.Action, e.Bonus)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Exists reports whether a referral event was already recorded for the
// referee.
func (r *ReferralRepository) Exists(ctx context.Context, refereeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM referral_events WHERE referee_id = $1)`,
		refereeID).Scan(&exists)
	return exists, err
}

// Stats returns the referrer-side view: how many users they brought in
// and how much bonus those users generated.
func (r *ReferralRepository) Stats(ctx context.Context, referrerID int64) (*domain.ReferralStats, error) {
	stats := &domain.ReferralStats{}
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(bonus), 0)
		FROM referral_events WHERE referrer_id = $1`,
		referrerID).Scan(&stats.TotalReferrals, &stats.TotalEarned)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// CountReferred counts users created with this referrer, credited or
// not yet.
func (r *ReferralRepository) CountReferred(ctx context.Context, referrerID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE referred_by = $1`, referrerID).Scan(&n)
	return n, err
}
