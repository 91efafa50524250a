package integration

import (
	"context"
	"errors"
	"testing"

	"earnhub/internal/domain"
	"earnhub/internal/notify"
	"earnhub/internal/repository"
	"earnhub/internal/service"
)

func TestTaskFlow_StartSubmitApprove(t *testing.T) {
	db := connectDB(t)
	ctx := context.Background()

	ledger := service.NewLedgerService(db)
	referrals := service.NewReferralService(db, ledger, notify.Discard())
	tasks := service.NewTaskService(db, ledger, referrals, notify.Discard(), 50)

	u := createUser(t, db)
	task := createTask(t, db, 150)

	sub, err := tasks.Start(ctx, u.ID, task.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sub.Status != domain.SubmissionStarted {
		t.Fatalf("expected started, got %s", sub.Status)
	}

	// a second active submission for the same task is refused
	if _, err = tasks.Start(ctx, u.ID, task.ID); !errors.Is(err, domain.ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}

	sub, err = tasks.Submit(ctx, u.ID, task.ID, "proof-file-id")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Status != domain.SubmissionSubmitted {
		t.Fatalf("expected submitted, got %s", sub.Status)
	}
	if sub.ProofRef != "proof-file-id" {
		t.Fatalf("proof not recorded: %q", sub.ProofRef)
	}

	sub, err = tasks.Review(ctx, sub.ID, true, "looks good")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if sub.Status != domain.SubmissionApproved {
		t.Fatalf("expected approved, got %s", sub.Status)
	}

	main, _, err := ledger.GetBalances(ctx, u.ID)
	if err != nil {
		t.Fatalf("get balances: %v", err)
	}
	if main != 150 {
		t.Fatalf("expected reward 150 in main wallet, got %d", main)
	}

	// replaying the approval must hit the status guard, not pay twice
	if _, err = tasks.Review(ctx, sub.ID, true, "again"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	main, _, _ = ledger.GetBalances(ctx, u.ID)
	if main != 150 {
		t.Fatalf("double credit detected: %d", main)
	}

	// approval may be retried for the same task once the previous
	// submission is terminal
	if _, err = tasks.Start(ctx, u.ID, task.ID); err != nil {
		t.Fatalf("restart after terminal: %v", err)
	}
}

func TestTaskFlow_Reject(t *testing.T) {
	db := connectDB(t)
	ctx := context.Background()

	ledger := service.NewLedgerService(db)
	referrals := service.NewReferralService(db, ledger, notify.Discard())
	tasks := service.NewTaskService(db, ledger, referrals, notify.Discard(), 50)

	u := createUser(t, db)
	task := createTask(t, db, 80)

	if _, err := tasks.Start(ctx, u.ID, task.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	sub, err := tasks.Submit(ctx, u.ID, task.ID, "proof")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	sub, err = tasks.Review(ctx, sub.ID, false, "blurry screenshot")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if sub.Status != domain.SubmissionRejected {
		t.Fatalf("expected rejected, got %s", sub.Status)
	}
	if sub.ReviewerNote != "blurry screenshot" {
		t.Fatalf("note not recorded: %q", sub.ReviewerNote)
	}

	main, _, _ := ledger.GetBalances(ctx, u.ID)
	if main != 0 {
		t.Fatalf("rejection must not credit, got %d", main)
	}
}

// ActiveSubmission tracks the in-flight submission and goes back to
// nil once the review is terminal.
func TestTaskFlow_ActiveSubmission(t *testing.T) {
	db := connectDB(t)
	ctx := context.Background()

	ledger := service.NewLedgerService(db)
	referrals := service.NewReferralService(db, ledger, notify.Discard())
	tasks := service.NewTaskService(db, ledger, referrals, notify.Discard(), 50)

	u := createUser(t, db)
	task := createTask(t, db, 80)

	sub, err := tasks.ActiveSubmission(ctx, u.ID, task.ID)
	if err != nil {
		t.Fatalf("active submission: %v", err)
	}
	if sub != nil {
		t.Fatalf("expected no live submission, got %+v", sub)
	}

	if _, err := tasks.Start(ctx, u.ID, task.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	sub, err = tasks.ActiveSubmission(ctx, u.ID, task.ID)
	if err != nil {
		t.Fatalf("active submission: %v", err)
	}
	if sub == nil || sub.Status != domain.SubmissionStarted {
		t.Fatalf("expected started submission, got %+v", sub)
	}

	if _, err := tasks.Submit(ctx, u.ID, task.ID, "proof"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := tasks.Review(ctx, sub.ID, false, "no"); err != nil {
		t.Fatalf("review: %v", err)
	}

	sub, err = tasks.ActiveSubmission(ctx, u.ID, task.ID)
	if err != nil {
		t.Fatalf("active submission: %v", err)
	}
	if sub != nil {
		t.Fatalf("terminal submission still reported live: %+v", sub)
	}
}

func TestTaskFlow_SubmitWithoutStart(t *testing.T) {
	db := connectDB(t)
	ctx := context.Background()

	ledger := service.NewLedgerService(db)
	referrals := service.NewReferralService(db, ledger, notify.Discard())
	tasks := service.NewTaskService(db, ledger, referrals, notify.Discard(), 50)

	u := createUser(t, db)
	task := createTask(t, db, 80)

	if _, err := tasks.Submit(ctx, u.ID, task.ID, "proof"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestTaskFlow_InactiveTask(t *testing.T) {
	db := connectDB(t)
	ctx := context.Background()

	ledger := service.NewLedgerService(db)
	referrals := service.NewReferralService(db, ledger, notify.Discard())
	tasks := service.NewTaskService(db, ledger, referrals, notify.Discard(), 50)

	u := createUser(t, db)
	task := createTask(t, db, 80)
	if err := repository.NewTaskRepository(db).SetActive(ctx, task.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := tasks.Start(ctx, u.ID, task.ID); !errors.Is(err, domain.ErrTaskInactive) {
		t.Fatalf("expected ErrTaskInactive, got %v", err)
	}
}

// The referral bonus is paid once per referee, no matter how many of
// their tasks get approved.
func TestReferral_BonusExactlyOnce(t *testing.T) {
	db := connectDB(t)
	ctx := context.Background()

	ledger := service.NewLedgerService(db)
	referrals := service.NewReferralService(db, ledger, notify.Discard())
	tasks := service.NewTaskService(db, ledger, referrals, notify.Discard(), 50)

	referrer := createUser(t, db)

	referee := &domain.User{
		TgID:         tgSeq.Add(1),
		Username:     "referee",
		FirstName:    "Referee",
		ReferralCode: repository.GenerateReferralCode(),
		ReferredBy:   &referrer.ID,
	}
	if err := repository.NewUserRepository(db).Create(ctx, referee); err != nil {
		t.Fatalf("create referee: %v", err)
	}

	for i := 0; i < 2; i++ {
		task := createTask(t, db, 100)
		if _, err := tasks.Start(ctx, referee.ID, task.ID); err != nil {
			t.Fatalf("start: %v", err)
		}
		sub, err := tasks.Submit(ctx, referee.ID, task.ID, "proof")
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if _, err := tasks.Review(ctx, sub.ID, true, ""); err != nil {
			t.Fatalf("review: %v", err)
		}
	}

	_, cash, err := ledger.GetBalances(ctx, referrer.ID)
	if err != nil {
		t.Fatalf("get balances: %v", err)
	}
	if cash != 50 {
		t.Fatalf("expected single bonus of 50, got %d", cash)
	}

	stats, err := referrals.Stats(ctx, referrer.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Invited != 1 || stats.TotalReferrals != 1 || stats.TotalEarned != 50 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

// A user with no referrer produces no event and no credit.
func TestReferral_NoReferrerNoop(t *testing.T) {
	db := connectDB(t)
	ctx := context.Background()

	ledger := service.NewLedgerService(db)
	referrals := service.NewReferralService(db, ledger, notify.Discard())

	u := createUser(t, db)
	if err := referrals.Apply(ctx, u.ID, domain.ReferralActionTaskApproval, 50); err != nil {
		t.Fatalf("apply: %v", err)
	}

	var count int
	if err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM referral_events WHERE referee_id = $1`, u.ID).Scan(&count); err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no events, got %d", count)
	}
}
