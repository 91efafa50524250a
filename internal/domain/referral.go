package domain

import "time"

// ReferralAction is the qualifying action that triggered the bonus.
type ReferralAction string

const (
	ReferralActionTaskApproval ReferralAction = "task_approval"
)

// ReferralEvent records the one-time crediting of a referrer. At most
// one event exists per referee; the first qualifying action wins.
type ReferralEvent struct {
	ID         string         `db:"id" json:"id"`
	ReferrerID int64          `db:"referrer_id" json:"referrer_id"`
	RefereeID  int64          `db:"referee_id" json:"referee_id"`
	Action     ReferralAction `db:"action" json:"action"`
	Bonus      int64          `db:"bonus" json:"bonus"`
	AppliedAt  time.Time      `db:"applied_at" json:"applied_at"`
}

// ReferralStats is the referrer-side summary. Invited counts everyone
// who signed up with the code; TotalReferrals counts only referees who
// already produced the bonus.
type ReferralStats struct {
	Invited        int   `json:"invited"`
	TotalReferrals int   `json:"total_referrals"`
	TotalEarned    int64 `json:"total_earned"`
}
