package service

import (
	"context"
	"errors"

	"earnhub/internal/domain"
	"earnhub/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")

	ledgerMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_mutations_total",
			Help: "Wallet mutations by operation and wallet",
		},
		[]string{"op", "wallet"},
	)
)

func init() {
	prometheus.MustRegister(ledgerMutations)
}

// LedgerService owns all wallet mutations. Every mutation runs in a
// database transaction with a row lock or a balance-guarded UPDATE, so
// concurrent mutations on the same user serialize and neither wallet
// can go negative.
type LedgerService struct {
	db              *pgxpool.Pool
	transactionRepo *repository.TransactionRepository
}

func NewLedgerService(db *pgxpool.Pool) *LedgerService {
	return &LedgerService{
		db:              db,
		transactionRepo: repository.NewTransactionRepository(db),
	}
}

func walletCol(w domain.Wallet) string {
	if w == domain.WalletCash {
		return "cash_wallet"
	}
	return "main_wallet"
}

// GetBalances reads both wallets. Reads never block a writer beyond
// one mutation's transaction.
func (s *LedgerService) GetBalances(ctx context.Context, userID int64) (main, cash int64, err error) {
	err = s.db.QueryRow(ctx,
		`SELECT main_wallet, cash_wallet FROM users WHERE id = $1`, userID,
	).Scan(&main, &cash)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, domain.ErrNotFound
	}
	return main, cash, err
}

// Credit adds amount to the given wallet and records an audit row.
func (s *LedgerService) Credit(ctx context.Context, userID int64, wallet domain.Wallet, amount int64, txType string, meta map[string]interface{}) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	newBalance, err = s.CreditTx(ctx, tx, userID, wallet, amount, txType, meta)
	if err != nil {
		return 0, err
	}

	return newBalance, tx.Commit(ctx)
}

// Debit removes amount from the given wallet, failing with
// InsufficientFunds when the balance does not cover it.
func (s *LedgerService) Debit(ctx context.Context, userID int64, wallet domain.Wallet, amount int64, txType string, meta map[string]interface{}) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	newBalance, err = s.DebitTx(ctx, tx, userID, wallet, amount, txType, meta)
	if err != nil {
		return 0, err
	}

	return newBalance, tx.Commit(ctx)
}

// CreditTx credits within an existing transaction.
func (s *LedgerService) CreditTx(ctx context.Context, tx pgx.Tx, userID int64, wallet domain.Wallet, amount int64, txType string, meta map[string]interface{}) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	col := walletCol(wallet)

	err = tx.QueryRow(ctx,
		`UPDATE users SET `+col+` = `+col+` + $1 WHERE id = $2 RETURNING `+col,
		amount, userID,
	).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}

	record := &domain.Transaction{
		UserID: userID,
		Wallet: wallet,
		Type:   txType,
		Amount: amount,
		Meta:   meta,
	}
	if err = s.transactionRepo.CreateWithTx(ctx, tx, record); err != nil {
		return 0, err
	}

	ledgerMutations.WithLabelValues("credit", string(wallet)).Inc()
	return newBalance, nil
}

// DebitTx debits within an existing transaction. The balance guard in
// the WHERE clause is what keeps wallets non-negative under concurrency.
func (s *LedgerService) DebitTx(ctx context.Context, tx pgx.Tx, userID int64, wallet domain.Wallet, amount int64, txType string, meta map[string]interface{}) (newBalance int64, err error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	col := walletCol(wallet)

	err = tx.QueryRow(ctx,
		`UPDATE users SET `+col+` = `+col+` - $1 WHERE id = $2 AND `+col+` >= $1 RETURNING `+col,
		amount, userID,
	).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Not found or insufficient funds, check which
			var exists bool
			_ = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
			if !exists {
				return 0, domain.ErrNotFound
			}
			return 0, domain.ErrInsufficientFunds
		}
		return 0, err
	}

	record := &domain.Transaction{
		UserID: userID,
		Wallet: wallet,
		Type:   txType,
		Amount: -amount,
		Meta:   meta,
	}
	if err = s.transactionRepo.CreateWithTx(ctx, tx, record); err != nil {
		return 0, err
	}

	ledgerMutations.WithLabelValues("debit", string(wallet)).Inc()
	return newBalance, nil
}

// Transfer promotes amount from the main wallet into the withdrawable
// cash wallet. Both legs commit together or not at all.
func (s *LedgerService) Transfer(ctx context.Context, userID int64, amount int64, meta map[string]interface{}) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = s.DebitTx(ctx, tx, userID, domain.WalletMain, amount, "promotion_out", meta); err != nil {
		return err
	}
	if _, err = s.CreditTx(ctx, tx, userID, domain.WalletCash, amount, "promotion_in", meta); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// History returns the user's recent ledger audit records.
func (s *LedgerService) History(ctx context.Context, userID int64, limit int) ([]*domain.Transaction, error) {
	return s.transactionRepo.GetByUserID(ctx, userID, limit)
}
