package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"earnhub/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, tg_id, COALESCE(username, ''), COALESCE(first_name, ''),
	main_wallet, cash_wallet, referral_code, referred_by, tasks_completed, is_banned, created_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// GenerateReferralCode returns a random 12-hex-char code.
func GenerateReferralCode() string {
	bytes := make([]byte, 6)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.TgID, &u.Username, &u.FirstName,
		&u.MainWallet, &u.CashWallet, &u.ReferralCode, &u.ReferredBy,
		&u.TasksCompleted, &u.IsBanned, &u.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByTgID(ctx context.Context, tgID int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE tg_id = $1`, tgID))
}

func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE referral_code = $1`, code))
}

// Create inserts a new user. ReferralCode must be set by the caller;
// ReferredBy is fixed at creation and never mutated afterwards.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO users (tg_id, username, first_name, referral_code, referred_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		u.TgID, u.Username, u.FirstName, u.ReferralCode, u.ReferredBy,
	).Scan(&u.ID, &u.CreatedAt)
}

// GetBalance returns the requested wallet without blocking writers.
func (r *UserRepository) GetBalance(ctx context.Context, userID int64, wallet domain.Wallet) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx,
		`SELECT `+walletColumn(wallet)+` FROM users WHERE id = $1`, userID,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	return balance, err
}

func (r *UserRepository) SetBanned(ctx context.Context, userID int64, banned bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET is_banned = $2 WHERE id = $1`, userID, banned)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// walletColumn maps the wallet enum to its column. Only the two known
// values ever reach SQL text.
func walletColumn(w domain.Wallet) string {
	if w == domain.WalletCash {
		return "cash_wallet"
	}
	return "main_wallet"
}
