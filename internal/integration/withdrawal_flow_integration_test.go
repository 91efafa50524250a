package integration

import (
	"context"
	"errors"
	"testing"

	"earnhub/internal/domain"
	"earnhub/internal/notify"
	"earnhub/internal/service"
)

func TestWithdrawalFlow_RequestAndApprove(t *testing.T) {
	db := connectDB(t)
	ctx := context.Background()

	ledger := service.NewLedgerService(db)
	withdrawals := service.NewWithdrawalService(db, ledger, notify.Discard(), service.WithdrawalConfig{
		MinWithdrawal:  100,
		FeeRate:        0.10,
		FirstSurcharge: 10,
	})

	u := createUser(t, db)
	if _, err := ledger.Credit(ctx, u.ID, domain.WalletCash, 1000, "task_reward", nil); err != nil {
		t.Fatalf("credit: %v", err)
	}

	// below the configured minimum
	if _, err := withdrawals.Request(ctx, u.ID, 99, "card"); !errors.Is(err, domain.ErrBelowMinimum) {
		t.Fatalf("expected ErrBelowMinimum, got %v", err)
	}

	// more than the cash wallet holds
	if _, err := withdrawals.Request(ctx, u.ID, 1001, "card"); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	w, err := withdrawals.Request(ctx, u.ID, 500, "card")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if w.Status != domain.WithdrawalPending {
		t.Fatalf("expected pending, got %s", w.Status)
	}
	// first withdrawal: 10% fee plus the surcharge
	if w.Fee != 60 || w.NetPayout != 440 {
		t.Fatalf("expected fee 60 / payout 440, got %d / %d", w.Fee, w.NetPayout)
	}
	if w.OrderID == "" {
		t.Fatal("order id not assigned")
	}

	// the request itself must not touch the wallet
	_, cash, _ := ledger.GetBalances(ctx, u.ID)
	if cash != 1000 {
		t.Fatalf("request debited wallet: %d", cash)
	}

	w, err = withdrawals.Decide(ctx, w.ID, true, "ok")
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if w.Status != domain.WithdrawalApproved {
		t.Fatalf("expected approved, got %s", w.Status)
	}
	_, cash, _ = ledger.GetBalances(ctx, u.ID)
	if cash != 500 {
		t.Fatalf("expected cash 500 after approval, got %d", cash)
	}

	// a second decision on the same request is refused
	if _, err = withdrawals.Decide(ctx, w.ID, true, "again"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	w, err = withdrawals.MarkPaid(ctx, w.ID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if w.Status != domain.WithdrawalPaid || w.PaidAt == nil {
		t.Fatalf("expected paid with timestamp, got %+v", w)
	}

	// the surcharge applies only once: the next request is fee-only
	w2, err := withdrawals.Request(ctx, u.ID, 500, "card")
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if w2.Fee != 50 || w2.NetPayout != 450 {
		t.Fatalf("expected fee 50 / payout 450, got %d / %d", w2.Fee, w2.NetPayout)
	}
}

func TestWithdrawalFlow_Reject(t *testing.T) {
	db := connectDB(t)
	ctx := context.Background()

	ledger := service.NewLedgerService(db)
	withdrawals := service.NewWithdrawalService(db, ledger, notify.Discard(), service.WithdrawalConfig{
		MinWithdrawal:  100,
		FeeRate:        0.10,
		FirstSurcharge: 10,
	})

	u := createUser(t, db)
	if _, err := ledger.Credit(ctx, u.ID, domain.WalletCash, 300, "task_reward", nil); err != nil {
		t.Fatalf("credit: %v", err)
	}

	w, err := withdrawals.Request(ctx, u.ID, 200, "card")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	w, err = withdrawals.Decide(ctx, w.ID, false, "suspicious activity")
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if w.Status != domain.WithdrawalRejected {
		t.Fatalf("expected rejected, got %s", w.Status)
	}
	if w.AdminNote != "suspicious activity" {
		t.Fatalf("note not recorded: %q", w.AdminNote)
	}

	// rejection never touches the wallet
	_, cash, _ := ledger.GetBalances(ctx, u.ID)
	if cash != 300 {
		t.Fatalf("expected cash 300, got %d", cash)
	}

	// a rejected request does not consume the first-withdrawal surcharge
	w2, err := withdrawals.Request(ctx, u.ID, 200, "card")
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if w2.Fee != 30 {
		t.Fatalf("expected first-withdrawal fee 30, got %d", w2.Fee)
	}
}

// The balance is re-checked at decision time. If it dropped below the
// requested amount, the approval turns into a rejection.
func TestWithdrawalFlow_BalanceDroppedBeforeDecision(t *testing.T) {
	db := connectDB(t)
	ctx := context.Background()

	ledger := service.NewLedgerService(db)
	withdrawals := service.NewWithdrawalService(db, ledger, notify.Discard(), service.WithdrawalConfig{
		MinWithdrawal:  100,
		FeeRate:        0.10,
		FirstSurcharge: 10,
	})

	u := createUser(t, db)
	if _, err := ledger.Credit(ctx, u.ID, domain.WalletCash, 500, "task_reward", nil); err != nil {
		t.Fatalf("credit: %v", err)
	}

	w, err := withdrawals.Request(ctx, u.ID, 400, "card")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	// drain the wallet behind the pending request
	if _, err := ledger.Debit(ctx, u.ID, domain.WalletCash, 450, "adjustment", nil); err != nil {
		t.Fatalf("debit: %v", err)
	}

	if _, err := withdrawals.Decide(ctx, w.ID, true, "ok"); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	got, err := withdrawals.History(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 1 || got[0].Status != domain.WithdrawalRejected {
		t.Fatalf("expected request flipped to rejected, got %+v", got)
	}

	_, cash, _ := ledger.GetBalances(ctx, u.ID)
	if cash != 50 {
		t.Fatalf("expected cash 50, got %d", cash)
	}
}

func TestWithdrawalFlow_MarkPaidRequiresApproved(t *testing.T) {
	db := connectDB(t)
	ctx := context.Background()

	ledger := service.NewLedgerService(db)
	withdrawals := service.NewWithdrawalService(db, ledger, notify.Discard(), service.WithdrawalConfig{
		MinWithdrawal:  100,
		FeeRate:        0.10,
		FirstSurcharge: 10,
	})

	u := createUser(t, db)
	if _, err := ledger.Credit(ctx, u.ID, domain.WalletCash, 300, "task_reward", nil); err != nil {
		t.Fatalf("credit: %v", err)
	}

	w, err := withdrawals.Request(ctx, u.ID, 200, "card")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if _, err := withdrawals.MarkPaid(ctx, w.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for pending request, got %v", err)
	}
}
