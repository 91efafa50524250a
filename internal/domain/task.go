package domain

import "time"

// Task is a published task definition. Immutable once published except
// for the IsActive flag.
type Task struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Details   string    `db:"details" json:"details"`
	Link      string    `db:"link" json:"link"`
	Reward    int64     `db:"reward" json:"reward"`
	Category  string    `db:"category" json:"category"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SubmissionStatus tracks one user's attempt at one task.
type SubmissionStatus string

const (
	SubmissionStarted   SubmissionStatus = "started"
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionApproved  SubmissionStatus = "approved"
	SubmissionRejected  SubmissionStatus = "rejected"
)

// Terminal reports whether the status can never change again.
// A submission left in "started" forever is abandoned, not terminal.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionApproved || s == SubmissionRejected
}

// Submission is kept forever as an audit record; it is never deleted.
type Submission struct {
	ID           int64            `db:"id" json:"id"`
	UserID       int64            `db:"user_id" json:"user_id"`
	TaskID       int64            `db:"task_id" json:"task_id"`
	Status       SubmissionStatus `db:"status" json:"status"`
	ProofRef     string           `db:"proof_ref" json:"proof_ref,omitempty"`
	ReviewerNote string           `db:"reviewer_note" json:"reviewer_note,omitempty"`
	StartedAt    time.Time        `db:"started_at" json:"started_at"`
	SubmittedAt  *time.Time       `db:"submitted_at" json:"submitted_at,omitempty"`
	ReviewedAt   *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
}
