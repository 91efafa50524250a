package domain

import "time"

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
	WithdrawalPaid     WithdrawalStatus = "paid"
)

// Settled reports whether the request counts as a completed payout for
// fee purposes. It is the Go form of the predicate that
// repository.WithdrawalRepository.HasSettled runs in SQL to decide the
// first-withdrawal surcharge.
func (s WithdrawalStatus) Settled() bool {
	return s == WithdrawalApproved || s == WithdrawalPaid
}

// Withdrawal is a request to pay out from the cash wallet. The wallet
// is only debited when an admin approves; a pending request reserves
// nothing, so the balance is re-checked at decision time.
type Withdrawal struct {
	ID        int64            `db:"id" json:"id"`
	OrderID   string           `db:"order_id" json:"order_id"`
	UserID    int64            `db:"user_id" json:"user_id"`
	Amount    int64            `db:"amount" json:"amount"`
	Fee       int64            `db:"fee" json:"fee"`
	NetPayout int64            `db:"net_payout" json:"net_payout"`
	Method    string           `db:"method" json:"method"`
	Status    WithdrawalStatus `db:"status" json:"status"`
	AdminNote string           `db:"admin_note" json:"admin_note,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	DecidedAt *time.Time       `db:"decided_at" json:"decided_at,omitempty"`
	PaidAt    *time.Time       `db:"paid_at" json:"paid_at,omitempty"`
}
