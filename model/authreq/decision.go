package authreq

import "time"

// State tracks a request through its lifecycle. The initial state is
// implicit at creation; Approved, Denied and Expired are terminal.
type State string

const (
	StatePendingDelivery State = "PENDING_DELIVERY"
	StateDelivered       State = "DELIVERED"
	StateApproved        State = "APPROVED"
	StateDenied          State = "DENIED"
	StateExpired         State = "EXPIRED"
)

// Terminal reports whether no further transitions may occur.
func (s State) Terminal() bool {
	switch s {
	case StateApproved, StateDenied, StateExpired:
		return true
	}
	return false
}

// Action names the two mutually exclusive choices offered to the recipient.
type Action string

const (
	ActionApprove Action = "approve"
	ActionDeny    Action = "deny"
)

// Decision is the record produced when a recipient resolves a request.
type Decision struct {
	Approved   bool      `json:"approved"`
	ResolvedBy string    `json:"resolvedBy"`
	ResolvedAt time.Time `json:"resolvedAt"`
	Reason     string    `json:"reason,omitempty"`
}

// Origin distinguishes how a request entered the pipeline. Only
// webhook-originated requests propagate their outcome back over HTTP; for
// polled requests the store update itself is the notification.
type Origin string

const (
	OriginPoll    Origin = "poll"
	OriginWebhook Origin = "webhook"
)
