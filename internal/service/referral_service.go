package service

import (
	"context"

	"earnhub/internal/domain"
	"earnhub/internal/logger"
	"earnhub/internal/notify"
	"earnhub/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReferralService credits a referrer exactly once per referee. The
// unique referral_events row is claimed in the same transaction as the
// cash-wallet credit, so a retried apply after a partial failure can
// never double-credit.
type ReferralService struct {
	db        *pgxpool.Pool
	users     *repository.UserRepository
	referrals *repository.ReferralRepository
	ledger    *LedgerService
	notifier  notify.Sink
}

func NewReferralService(db *pgxpool.Pool, ledger *LedgerService, notifier notify.Sink) *ReferralService {
	return &ReferralService{
		db:        db,
		users:     repository.NewUserRepository(db),
		referrals: repository.NewReferralRepository(db),
		ledger:    ledger,
		notifier:  notifier,
	}
}

// Apply records the referee's first qualifying action. A second call
// for the same referee is a no-op regardless of action or bonus.
func (s *ReferralService) Apply(ctx context.Context, refereeID int64, action domain.ReferralAction, bonus int64) error {
	if bonus <= 0 {
		return ErrInvalidAmount
	}

	// Fast path: already credited.
	if exists, err := s.referrals.Exists(ctx, refereeID); err != nil {
		return err
	} else if exists {
		return nil
	}

	referee, err := s.users.GetByID(ctx, refereeID)
	if err != nil {
		return err
	}
	if referee.ReferredBy == nil {
		return nil
	}
	referrerID := *referee.ReferredBy

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	event := &domain.ReferralEvent{
		ID:         uuid.NewString(),
		ReferrerID: referrerID,
		RefereeID:  refereeID,
		Action:     action,
		Bonus:      bonus,
	}
	inserted, err := s.referrals.CreateEventTx(ctx, tx, event)
	if err != nil {
		return err
	}
	if !inserted {
		// Lost the race to a concurrent apply.
		return nil
	}

	if _, err = s.ledger.CreditTx(ctx, tx, referrerID, domain.WalletCash, bonus, "referral_bonus",
		map[string]interface{}{"referee_id": refereeID, "action": string(action)}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}

	logger.Info("referral bonus credited",
		"referrer_id", referrerID, "referee_id", refereeID, "bonus", bonus)

	s.notifier.Notify(notify.Event{
		UserID: referrerID,
		Kind:   notify.KindReferralBonus,
		Amount: bonus,
		Text:   "A user you invited completed their first task. Referral bonus credited to your cash wallet.",
	})
	return nil
}

// Stats returns the referrer-side summary for profile screens.
func (s *ReferralService) Stats(ctx context.Context, referrerID int64) (*domain.ReferralStats, error) {
	stats, err := s.referrals.Stats(ctx, referrerID)
	if err != nil {
		return nil, err
	}
	invited, err := s.referrals.CountReferred(ctx, referrerID)
	if err != nil {
		return nil, err
	}
	stats.Invited = invited
	return stats, nil
}
