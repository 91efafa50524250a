package repository

import (
	"context"
	"errors"
	"time"

	"earnhub/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, title, details, link, reward, category, is_active, created_at
		FROM tasks WHERE id = $1`, id)

	var t domain.Task
	if err := row.Scan(&t.ID, &t.Title, &t.Details, &t.Link, &t.Reward, &t.Category, &t.IsActive, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) ListActive(ctx context.Context) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, details, link, reward, category, is_active, created_at
		FROM tasks WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Details, &t.Link, &t.Reward, &t.Category, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO tasks (title, details, link, reward, category, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		t.Title, t.Details, t.Link, t.Reward, t.Category, t.IsActive,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *TaskRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE tasks SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateSubmission inserts a submission in state "started". The partial
// unique index on live submissions makes a second concurrent start lose
// the race; that surfaces as ErrDuplicateSubmission.
func (r *TaskRepository) CreateSubmission(ctx context.Context, s *domain.Submission) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO submissions (user_id, task_id, status)
		VALUES ($1, $2, 'started')
		ON CONFLICT (user_id, task_id) WHERE status IN ('started', 'submitted') DO NOTHING
		RETURNING id, started_at`,
		s.UserID, s.TaskID,
	).Scan(&s.ID, &s.StartedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrDuplicateSubmission
	}
	if err == nil {
		s.Status = domain.SubmissionStarted
	}
	return err
}

func (r *TaskRepository) GetSubmission(ctx context.Context, id int64) (*domain.Submission, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, task_id, status, COALESCE(proof_ref, ''), COALESCE(reviewer_note, ''),
		       started_at, submitted_at, reviewed_at
		FROM submissions WHERE id = $1`, id)
	return scanSubmission(row)
}

// MarkSubmitted moves started -> submitted for the pair. The status
// guard in the WHERE clause rejects the transition from any other
// state; zero affected rows means the caller saw a stale view.
func (r *TaskRepository) MarkSubmitted(ctx context.Context, userID, taskID int64, proofRef string) (*domain.Submission, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE submissions
		SET status = 'submitted', proof_ref = $3, submitted_at = NOW()
		WHERE user_id = $1 AND task_id = $2 AND status = 'started'
		RETURNING id, user_id, task_id, status, COALESCE(proof_ref, ''), COALESCE(reviewer_note, ''),
		          started_at, submitted_at, reviewed_at`,
		userID, taskID, proofRef)
	s, err := scanSubmission(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidState
	}
	return s, err
}

// MarkReviewedTx finalizes a submission inside an existing transaction,
// guarded on status = 'submitted'.
func (r *TaskRepository) MarkReviewedTx(ctx context.Context, tx pgx.Tx, id int64, status domain.SubmissionStatus, note string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE submissions
		SET status = $2, reviewer_note = $3, reviewed_at = NOW()
		WHERE id = $1 AND status = 'submitted'`,
		id, status, note)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// GetActiveSubmission returns the live (non-terminal) submission for
// the pair, or ErrNotFound.
func (r *TaskRepository) GetActiveSubmission(ctx context.Context, userID, taskID int64) (*domain.Submission, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, task_id, status, COALESCE(proof_ref, ''), COALESCE(reviewer_note, ''),
		       started_at, submitted_at, reviewed_at
		FROM submissions
		WHERE user_id = $1 AND task_id = $2 AND status IN ('started', 'submitted')`,
		userID, taskID)
	return scanSubmission(row)
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.Submission, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, task_id, status, COALESCE(proof_ref, ''), COALESCE(reviewer_note, ''),
		       started_at, submitted_at, reviewed_at
		FROM submissions WHERE user_id = $1
		ORDER BY started_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

// ListPendingReview returns submissions awaiting an admin decision,
// oldest first.
func (r *TaskRepository) ListPendingReview(ctx context.Context, limit int) ([]*domain.Submission, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, task_id, status, COALESCE(proof_ref, ''), COALESCE(reviewer_note, ''),
		       started_at, submitted_at, reviewed_at
		FROM submissions WHERE status = 'submitted'
		ORDER BY submitted_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var s domain.Submission
	var submittedAt, reviewedAt *time.Time
	if err := row.Scan(
		&s.ID, &s.UserID, &s.TaskID, &s.Status, &s.ProofRef, &s.ReviewerNote,
		&s.StartedAt, &submittedAt, &reviewedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	s.SubmittedAt = submittedAt
	s.ReviewedAt = reviewedAt
	return &s, nil
}

func scanSubmissions(rows pgx.Rows) ([]*domain.Submission, error) {
	var res []*domain.Submission
	for rows.Next() {
		var s domain.Submission
		var submittedAt, reviewedAt *time.Time
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.TaskID, &s.Status, &s.ProofRef, &s.ReviewerNote,
			&s.StartedAt, &submittedAt, &reviewedAt,
		); err != nil {
			return nil, err
		}
		s.SubmittedAt = submittedAt
		s.ReviewedAt = reviewedAt
		res = append(res, &s)
	}
	return res, rows.Err()
}
