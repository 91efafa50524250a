package service

import (
	"context"

	"earnhub/internal/logger"
)

// MembershipChecker is the external membership oracle.
type MembershipChecker interface {
	IsMember(ctx context.Context, channel string, tgID int64) (bool, error)
}

// AccessGate checks required channel subscriptions before
// ledger-affecting actions.
type AccessGate struct {
	checker  MembershipChecker
	channels []string
}

func NewAccessGate(checker MembershipChecker, channels []string) *AccessGate {
	return &AccessGate{checker: checker, channels: channels}
}

// Evaluate returns the required channels the user has NOT joined; an
// empty result grants access. A transient oracle failure counts that
// channel as satisfied (fail-open): an oracle outage must degrade to
// letting users earn, not lock everyone out. One channel failing never
// aborts the checks of the others.
func (g *AccessGate) Evaluate(ctx context.Context, tgID int64) []string {
	var missing []string
	for _, ch := range g.channels {
		joined, err := g.checker.IsMember(ctx, ch, tgID)
		if err != nil {
			logger.Warn("membership check failed, treating as joined",
				"channel", ch, "tg_id", tgID, "error", err)
			continue
		}
		if !joined {
			missing = append(missing, ch)
		}
	}
	return missing
}

// Channels returns the configured requirement list.
func (g *AccessGate) Channels() []string {
	return g.channels
}
