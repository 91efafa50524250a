package domain

import "time"

// Wallet names one of the two balance buckets every user carries.
type Wallet string

const (
	// WalletMain is credited by approved tasks and cannot be withdrawn.
	WalletMain Wallet = "main"
	// WalletCash is withdrawable. Fed by referral bonuses and promotions.
	WalletCash Wallet = "cash"
)

// Valid reports whether w is one of the known wallets.
func (w Wallet) Valid() bool {
	return w == WalletMain || w == WalletCash
}

type User struct {
	ID             int64     `db:"id" json:"id"`
	TgID           int64     `db:"tg_id" json:"tg_id"`
	Username       string    `db:"username" json:"username"`
	FirstName      string    `db:"first_name" json:"first_name"`
	MainWallet     int64     `db:"main_wallet" json:"main_wallet"`
	CashWallet     int64     `db:"cash_wallet" json:"cash_wallet"`
	ReferralCode   string    `db:"referral_code" json:"referral_code"`
	ReferredBy     *int64    `db:"referred_by" json:"referred_by,omitempty"`
	TasksCompleted int64     `db:"tasks_completed" json:"tasks_completed"`
	IsBanned       bool      `db:"is_banned" json:"is_banned"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// TotalBalance is main + cash. Both components are kept non-negative
// by the ledger, so the total never goes negative either.
func (u *User) TotalBalance() int64 {
	return u.MainWallet + u.CashWallet
}
