package notify

// Kind labels the state transition being announced.
type Kind string

const (
	KindTaskApproved       Kind = "task_approved"
	KindTaskRejected       Kind = "task_rejected"
	KindWithdrawalApproved Kind = "withdrawal_approved"
	KindWithdrawalRejected Kind = "withdrawal_rejected"
	KindWithdrawalPaid     Kind = "withdrawal_paid"
	KindReferralBonus      Kind = "referral_bonus"
)

// Event is emitted after a transition has already committed.
type Event struct {
	UserID int64  `json:"user_id"`
	Kind   Kind   `json:"kind"`
	Amount int64  `json:"amount,omitempty"`
	Text   string `json:"text"`
}

// Sink delivers events to users. Delivery is fire-and-forget:
// implementations must not block the caller and a failed delivery
// never rolls back the transition that produced the event.
type Sink interface {
	Notify(e Event)
}

type multi []Sink

func (m multi) Notify(e Event) {
	for _, s := range m {
		s.Notify(e)
	}
}

// Multi fans one event out to several sinks.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

type discard struct{}

func (discard) Notify(Event) {}

// Discard swallows all events. Used when no delivery channel is
// configured and in tests.
func Discard() Sink {
	return discard{}
}
