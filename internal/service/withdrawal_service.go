package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"earnhub/internal/domain"
	"earnhub/internal/logger"
	"earnhub/internal/notify"
	"earnhub/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WithdrawalConfig is the platform payout policy, injected at
// construction.
type WithdrawalConfig struct {
	MinWithdrawal  int64
	FeeRate        float64 // fraction of the requested amount
	FirstSurcharge int64   // added on the user's first-ever withdrawal
}

// WithdrawalService validates requests against the cash wallet and
// runs the pending -> approved -> paid workflow. The wallet is only
// debited on approval; a pending request strands no funds if rejected.
type WithdrawalService struct {
	db          *pgxpool.Pool
	withdrawals *repository.WithdrawalRepository
	ledger      *LedgerService
	users       *repository.UserRepository
	notifier    notify.Sink
	cfg         WithdrawalConfig
}

func NewWithdrawalService(db *pgxpool.Pool, ledger *LedgerService, notifier notify.Sink, cfg WithdrawalConfig) *WithdrawalService {
	return &WithdrawalService{
		db:          db,
		withdrawals: repository.NewWithdrawalRepository(db),
		ledger:      ledger,
		users:       repository.NewUserRepository(db),
		notifier:    notifier,
		cfg:         cfg,
	}
}

// ComputeFee returns the service fee for a requested amount.
// fee = floor(amount * rate), plus the surcharge on a first withdrawal.
func (s *WithdrawalService) ComputeFee(amount int64, first bool) int64 {
	fee := int64(math.Floor(float64(amount) * s.cfg.FeeRate))
	if first {
		fee += s.cfg.FirstSurcharge
	}
	return fee
}

// FeeEstimate previews the cost of a withdrawal before it is placed.
type FeeEstimate struct {
	Amount    int64 `json:"amount"`
	Fee       int64 `json:"fee"`
	NetPayout int64 `json:"net_payout"`
	First     bool  `json:"first_withdrawal"`
}

// Estimate computes the fee the user would pay for the amount without
// creating a request.
func (s *WithdrawalService) Estimate(ctx context.Context, userID, amount int64) (*FeeEstimate, error) {
	if amount < s.cfg.MinWithdrawal {
		return nil, domain.ErrBelowMinimum
	}
	settled, err := s.withdrawals.HasSettled(ctx, userID)
	if err != nil {
		return nil, err
	}
	fee := s.ComputeFee(amount, !settled)
	return &FeeEstimate{
		Amount:    amount,
		Fee:       fee,
		NetPayout: amount - fee,
		First:     !settled,
	}, nil
}

// Request creates a pending withdrawal. Nothing is debited yet; the
// balance check here keeps obviously-uncovered requests out of the
// admin queue, and is re-run at decision time.
func (s *WithdrawalService) Request(ctx context.Context, userID, amount int64, method string) (*domain.Withdrawal, error) {
	if amount < s.cfg.MinWithdrawal {
		return nil, domain.ErrBelowMinimum
	}

	balance, err := s.users.GetBalance(ctx, userID, domain.WalletCash)
	if err != nil {
		return nil, err
	}
	if balance < amount {
		return nil, domain.ErrInsufficientFunds
	}

	// First-ever means no settled (approved or paid) request in the
	// user's durable history.
	settled, err := s.withdrawals.HasSettled(ctx, userID)
	if err != nil {
		return nil, err
	}

	fee := s.ComputeFee(amount, !settled)
	w := &domain.Withdrawal{
		OrderID:   uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
		Fee:       fee,
		NetPayout: amount - fee,
		Method:    method,
		Status:    domain.WithdrawalPending,
	}
	if err := s.withdrawals.Create(ctx, w); err != nil {
		return nil, err
	}

	logger.Info("withdrawal requested",
		"order_id", w.OrderID, "user_id", userID, "amount", amount, "fee", fee)
	return w, nil
}

// Decide resolves a pending request. On approve the cash wallet is
// debited in the same transaction as the state transition; if the
// balance has dropped since the request, the request is rejected
// instead and InsufficientFunds is reported.
func (s *WithdrawalService) Decide(ctx context.Context, requestID int64, approve bool, note string) (*domain.Withdrawal, error) {
	w, err := s.withdrawals.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if !approve {
		if err := s.withdrawals.MarkRejected(ctx, requestID, note); err != nil {
			return nil, err
		}
		s.notifier.Notify(notify.Event{
			UserID: w.UserID,
			Kind:   notify.KindWithdrawalRejected,
			Amount: w.Amount,
			Text:   fmt.Sprintf("Withdrawal of %d was rejected. %s", w.Amount, note),
		})
		return s.withdrawals.GetByID(ctx, requestID)
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err = s.withdrawals.MarkDecidedTx(ctx, tx, requestID, domain.WithdrawalApproved, note); err != nil {
		return nil, err
	}

	_, err = s.ledger.DebitTx(ctx, tx, w.UserID, domain.WalletCash, w.Amount, "withdrawal",
		map[string]interface{}{"withdrawal_id": w.ID, "order_id": w.OrderID})
	if errors.Is(err, domain.ErrInsufficientFunds) {
		// Balance dropped since the request. Reject instead of approve.
		_ = tx.Rollback(ctx)
		if rejErr := s.withdrawals.MarkRejected(ctx, requestID, "insufficient funds at decision time"); rejErr != nil {
			return nil, rejErr
		}
		s.notifier.Notify(notify.Event{
			UserID: w.UserID,
			Kind:   notify.KindWithdrawalRejected,
			Amount: w.Amount,
			Text:   fmt.Sprintf("Withdrawal of %d was rejected: cash balance no longer covers it.", w.Amount),
		})
		return nil, domain.ErrInsufficientFunds
	}
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	logger.Info("withdrawal approved",
		"order_id", w.OrderID, "user_id", w.UserID, "amount", w.Amount)

	s.notifier.Notify(notify.Event{
		UserID: w.UserID,
		Kind:   notify.KindWithdrawalApproved,
		Amount: w.Amount,
		Text:   fmt.Sprintf("Withdrawal of %d approved. Payout of %d is on the way.", w.Amount, w.NetPayout),
	})
	return s.withdrawals.GetByID(ctx, requestID)
}

// MarkPaid records external payout confirmation.
func (s *WithdrawalService) MarkPaid(ctx context.Context, requestID int64) (*domain.Withdrawal, error) {
	w, err := s.withdrawals.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.withdrawals.MarkPaid(ctx, requestID); err != nil {
		return nil, err
	}

	s.notifier.Notify(notify.Event{
		UserID: w.UserID,
		Kind:   notify.KindWithdrawalPaid,
		Amount: w.NetPayout,
		Text:   fmt.Sprintf("Payout of %d sent via %s.", w.NetPayout, w.Method),
	})
	return s.withdrawals.GetByID(ctx, requestID)
}

func (s *WithdrawalService) History(ctx context.Context, userID int64, limit int) ([]*domain.Withdrawal, error) {
	return s.withdrawals.ListByUser(ctx, userID, limit)
}

func (s *WithdrawalService) ListPending(ctx context.Context) ([]*domain.Withdrawal, error) {
	return s.withdrawals.ListPending(ctx)
}
