package domain

import "testing"

func TestSubmissionStatusTerminal(t *testing.T) {
	cases := []struct {
		status   SubmissionStatus
		terminal bool
	}{
		{SubmissionStarted, false},
		{SubmissionSubmitted, false},
		{SubmissionApproved, true},
		{SubmissionRejected, true},
	}
	for _, c := range cases {
		if got := c.status.Terminal(); got != c.terminal {
			t.Errorf("%s: Terminal() = %v, want %v", c.status, got, c.terminal)
		}
	}
}

func TestWithdrawalStatusSettled(t *testing.T) {
	cases := []struct {
		status  WithdrawalStatus
		settled bool
	}{
		{WithdrawalPending, false},
		{WithdrawalRejected, false},
		{WithdrawalApproved, true},
		{WithdrawalPaid, true},
	}
	for _, c := range cases {
		if got := c.status.Settled(); got != c.settled {
			t.Errorf("%s: Settled() = %v, want %v", c.status, got, c.settled)
		}
	}
}

func TestWalletValid(t *testing.T) {
	if !WalletMain.Valid() || !WalletCash.Valid() {
		t.Error("known wallets must be valid")
	}
	if Wallet("bonus").Valid() {
		t.Error("unknown wallet must be invalid")
	}
}

func TestUserTotalBalance(t *testing.T) {
	u := &User{MainWallet: 300, CashWallet: 120}
	if got := u.TotalBalance(); got != 420 {
		t.Errorf("TotalBalance() = %d, want 420", got)
	}
}
