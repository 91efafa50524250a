package service

import (
	"context"
	"errors"
	"fmt"

	"earnhub/internal/domain"
	"earnhub/internal/logger"
	"earnhub/internal/notify"
	"earnhub/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskService drives submissions through
// started -> submitted -> approved/rejected. State never regresses; a
// submission abandoned in "started" just stays there.
type TaskService struct {
	db            *pgxpool.Pool
	tasks         *repository.TaskRepository
	ledger        *LedgerService
	referrals     *ReferralService
	notifier      notify.Sink
	referralBonus int64
}

func NewTaskService(db *pgxpool.Pool, ledger *LedgerService, referrals *ReferralService, notifier notify.Sink, referralBonus int64) *TaskService {
	return &TaskService{
		db:            db,
		tasks:         repository.NewTaskRepository(db),
		ledger:        ledger,
		referrals:     referrals,
		notifier:      notifier,
		referralBonus: referralBonus,
	}
}

func (s *TaskService) ListActive(ctx context.Context) ([]*domain.Task, error) {
	return s.tasks.ListActive(ctx)
}

func (s *TaskService) Get(ctx context.Context, taskID int64) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, taskID)
}

// ActiveSubmission returns the user's live submission on the task, or
// nil when nothing is in flight.
func (s *TaskService) ActiveSubmission(ctx context.Context, userID, taskID int64) (*domain.Submission, error) {
	sub, err := s.tasks.GetActiveSubmission(ctx, userID, taskID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return sub, err
}

func (s *TaskService) ListMine(ctx context.Context, userID int64, limit int) ([]*domain.Submission, error) {
	return s.tasks.ListByUser(ctx, userID, limit)
}

func (s *TaskService) ListPendingReview(ctx context.Context, limit int) ([]*domain.Submission, error) {
	return s.tasks.ListPendingReview(ctx, limit)
}

func (s *TaskService) Create(ctx context.Context, task *domain.Task) error {
	return s.tasks.Create(ctx, task)
}

func (s *TaskService) SetActive(ctx context.Context, taskID int64, active bool) error {
	return s.tasks.SetActive(ctx, taskID, active)
}

// Start creates a submission in state "started".
func (s *TaskService) Start(ctx context.Context, userID, taskID int64) (*domain.Submission, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsActive {
		return nil, domain.ErrTaskInactive
	}

	sub := &domain.Submission{UserID: userID, TaskID: taskID}
	if err := s.tasks.CreateSubmission(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Submit attaches the proof artifact and moves started -> submitted.
func (s *TaskService) Submit(ctx context.Context, userID, taskID int64, proofRef string) (*domain.Submission, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.tasks.MarkSubmitted(ctx, userID, taskID, proofRef)
}

// Review finalizes a submitted submission. Approval credits the main
// wallet, bumps the completed counter and fires the referral engine;
// all ledger effects commit atomically with the state transition, so a
// replayed approval fails on the status guard and cannot double-credit.
func (s *TaskService) Review(ctx context.Context, submissionID int64, approve bool, note string) (*domain.Submission, error) {
	sub, err := s.tasks.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.GetByID(ctx, sub.TaskID)
	if err != nil {
		return nil, err
	}

	status := domain.SubmissionRejected
	if approve {
		status = domain.SubmissionApproved
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err = s.tasks.MarkReviewedTx(ctx, tx, submissionID, status, note); err != nil {
		return nil, err
	}

	if approve {
		if _, err = s.ledger.CreditTx(ctx, tx, sub.UserID, domain.WalletMain, task.Reward, "task_reward",
			map[string]interface{}{"task_id": task.ID, "submission_id": submissionID}); err != nil {
			return nil, err
		}
		if _, err = tx.Exec(ctx,
			`UPDATE users SET tasks_completed = tasks_completed + 1 WHERE id = $1`,
			sub.UserID); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	logger.Info("submission reviewed",
		"submission_id", submissionID, "user_id", sub.UserID, "status", status)

	if approve {
		// The referral credit lives outside the approval's atomic
		// scope; the event's idempotency guard makes retries safe.
		if err := s.referrals.Apply(ctx, sub.UserID, domain.ReferralActionTaskApproval, s.referralBonus); err != nil {
			logger.Error("referral apply failed", "referee_id", sub.UserID, "error", err)
		}

		s.notifier.Notify(notify.Event{
			UserID: sub.UserID,
			Kind:   notify.KindTaskApproved,
			Amount: task.Reward,
			Text:   fmt.Sprintf("Task %q approved: +%d to your main wallet.", task.Title, task.Reward),
		})
	} else {
		s.notifier.Notify(notify.Event{
			UserID: sub.UserID,
			Kind:   notify.KindTaskRejected,
			Text:   fmt.Sprintf("Task %q was rejected. %s", task.Title, note),
		})
	}

	return s.tasks.GetSubmission(ctx, submissionID)
}
