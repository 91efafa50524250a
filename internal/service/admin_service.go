package service

import (
	"context"

	"earnhub/internal/domain"
	"earnhub/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PlatformStats is the aggregate snapshot shown to admins.
type PlatformStats struct {
	TotalUsers         int64
	ActiveUsersToday   int64
	TotalTasks         int64
	ActiveTasks        int64
	PendingSubmissions int64
	ApprovedToday      int64
	TotalMainBalance   int64
	TotalCashBalance   int64
	PendingWithdrawals int64
	PendingPayoutSum   int64
	TotalPaidOut       int64
}

// AdminService backs the admin bot with aggregate queries and user
// management shortcuts that have no place in the public API.
type AdminService struct {
	db    *pgxpool.Pool
	users *repository.UserRepository
}

func NewAdminService(db *pgxpool.Pool) *AdminService {
	return &AdminService{
		db:    db,
		users: repository.NewUserRepository(db),
	}
}

func (s *AdminService) GetStats(ctx context.Context) (*PlatformStats, error) {
	stats := &PlatformStats{}
	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(DISTINCT user_id) FROM transactions WHERE created_at >= CURRENT_DATE),
			(SELECT COUNT(*) FROM tasks),
			(SELECT COUNT(*) FROM tasks WHERE is_active),
			(SELECT COUNT(*) FROM submissions WHERE status = 'submitted'),
			(SELECT COUNT(*) FROM submissions WHERE status = 'approved' AND reviewed_at >= CURRENT_DATE),
			(SELECT COALESCE(SUM(main_wallet), 0) FROM users),
			(SELECT COALESCE(SUM(cash_wallet), 0) FROM users),
			(SELECT COUNT(*) FROM withdrawals WHERE status = 'pending'),
			(SELECT COALESCE(SUM(net_payout), 0) FROM withdrawals WHERE status = 'pending'),
			(SELECT COALESCE(SUM(net_payout), 0) FROM withdrawals WHERE status = 'paid')
	`).Scan(
		&stats.TotalUsers,
		&stats.ActiveUsersToday,
		&stats.TotalTasks,
		&stats.ActiveTasks,
		&stats.PendingSubmissions,
		&stats.ApprovedToday,
		&stats.TotalMainBalance,
		&stats.TotalCashBalance,
		&stats.PendingWithdrawals,
		&stats.PendingPayoutSum,
		&stats.TotalPaidOut,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *AdminService) GetUserByTgID(ctx context.Context, tgID int64) (*domain.User, error) {
	return s.users.GetByTgID(ctx, tgID)
}

func (s *AdminService) SetBannedByTgID(ctx context.Context, tgID int64, banned bool) error {
	u, err := s.users.GetByTgID(ctx, tgID)
	if err != nil {
		return err
	}
	return s.users.SetBanned(ctx, u.ID, banned)
}

// StalePendingWithdrawals returns pending requests older than the given
// interval, for the periodic admin reminder.
func (s *AdminService) StalePendingWithdrawals(ctx context.Context, olderThanHours int) ([]*domain.Withdrawal, error) {
	repo := repository.NewWithdrawalRepository(s.db)
	return repo.ListStalePending(ctx, olderThanHours)
}
