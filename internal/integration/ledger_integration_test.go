package integration

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"earnhub/internal/domain"
	"earnhub/internal/notify"
	"earnhub/internal/service"
)

func TestLedger_CreditDebit(t *testing.T) {
	db := connectDB(t)
	ctx := context.Background()

	ledger := service.NewLedgerService(db)
	u := createUser(t, db)

	bal, err := ledger.Credit(ctx, u.ID, domain.WalletMain, 300, "task_reward", nil)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if bal != 300 {
		t.Fatalf("expected balance 300, got %d", bal)
	}

	bal, err = ledger.Debit(ctx, u.ID, domain.WalletMain, 120, "adjustment", nil)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if bal != 180 {
		t.Fatalf("expected balance 180, got %d", bal)
	}

	// overdraft must fail and leave the balance untouched
	if _, err = ledger.Debit(ctx, u.ID, domain.WalletMain, 181, "adjustment", nil); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	main, cash, err := ledger.GetBalances(ctx, u.ID)
	if err != nil {
		t.Fatalf("get balances: %v", err)
	}
	if main != 180 || cash != 0 {
		t.Fatalf("expected 180/0, got %d/%d", main, cash)
	}

	// every mutation leaves an audit row
	history, err := ledger.History(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(history))
	}
}

func TestLedger_DebitUnknownUser(t *testing.T) {
	db := connectDB(t)

	ledger := service.NewLedgerService(db)
	_, err := ledger.Debit(context.Background(), -1, domain.WalletMain, 10, "adjustment", nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLedger_Transfer(t *testing.T) {
	db := connectDB(t)
	ctx := context.Background()

	ledger := service.NewLedgerService(db)
	u := createUser(t, db)

	if _, err := ledger.Credit(ctx, u.ID, domain.WalletMain, 500, "task_reward", nil); err != nil {
		t.Fatalf("credit: %v", err)
	}

	if err := ledger.Transfer(ctx, u.ID, 200, nil); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	main, cash, err := ledger.GetBalances(ctx, u.ID)
	if err != nil {
		t.Fatalf("get balances: %v", err)
	}
	if main != 300 || cash != 200 {
		t.Fatalf("expected 300/200, got %d/%d", main, cash)
	}

	// transfer above the main balance must not move anything
	if err := ledger.Transfer(ctx, u.ID, 301, nil); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	main, cash, _ = ledger.GetBalances(ctx, u.ID)
	if main != 300 || cash != 200 {
		t.Fatalf("balances changed after failed transfer: %d/%d", main, cash)
	}
}

// Concurrent debits against one wallet must never overdraw it.
func TestLedger_ConcurrentDebits(t *testing.T) {
	db := connectDB(t)
	ctx := context.Background()

	ledger := service.NewLedgerService(db)
	u := createUser(t, db)

	if _, err := ledger.Credit(ctx, u.ID, domain.WalletCash, 100, "task_reward", nil); err != nil {
		t.Fatalf("credit: %v", err)
	}

	const workers = 10
	var wg sync.WaitGroup
	var succeeded atomic.Int64

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Debit(ctx, u.ID, domain.WalletCash, 30, "adjustment", nil); err == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	// 100 / 30 leaves room for exactly three successful debits
	if got := succeeded.Load(); got != 3 {
		t.Fatalf("expected 3 successful debits, got %d", got)
	}

	_, cash, err := ledger.GetBalances(ctx, u.ID)
	if err != nil {
		t.Fatalf("get balances: %v", err)
	}
	if cash != 10 {
		t.Fatalf("expected cash 10, got %d", cash)
	}
}

// A task approval crediting the main wallet and a withdrawal decision
// debiting the cash wallet race on the same user row. Whichever order
// they commit in, the outcome must match running them serially.
func TestLedger_ConcurrentApprovalAndWithdrawalDecide(t *testing.T) {
	db := connectDB(t)
	ctx := context.Background()

	ledger := service.NewLedgerService(db)
	referrals := service.NewReferralService(db, ledger, notify.Discard())
	tasks := service.NewTaskService(db, ledger, referrals, notify.Discard(), 50)
	withdrawals := service.NewWithdrawalService(db, ledger, notify.Discard(), service.WithdrawalConfig{
		MinWithdrawal:  100,
		FeeRate:        0.10,
		FirstSurcharge: 10,
	})

	u := createUser(t, db)
	task := createTask(t, db, 150)

	if _, err := ledger.Credit(ctx, u.ID, domain.WalletCash, 200, "referral_bonus", nil); err != nil {
		t.Fatalf("seed cash: %v", err)
	}

	if _, err := tasks.Start(ctx, u.ID, task.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	sub, err := tasks.Submit(ctx, u.ID, task.ID, "proof")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	w, err := withdrawals.Request(ctx, u.ID, 200, "card")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	var reviewErr, decideErr error
	go func() {
		defer wg.Done()
		_, reviewErr = tasks.Review(ctx, sub.ID, true, "")
	}()
	go func() {
		defer wg.Done()
		_, decideErr = withdrawals.Decide(ctx, w.ID, true, "")
	}()
	wg.Wait()

	if reviewErr != nil {
		t.Fatalf("review: %v", reviewErr)
	}
	if decideErr != nil {
		t.Fatalf("decide: %v", decideErr)
	}

	main, cash, err := ledger.GetBalances(ctx, u.ID)
	if err != nil {
		t.Fatalf("get balances: %v", err)
	}
	// Serially: +150 main from the approval, -200 cash from the payout.
	if main != 150 || cash != 0 {
		t.Fatalf("expected 150/0, got %d/%d", main, cash)
	}
}
