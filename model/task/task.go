package task

import (
	"encoding/json"
	"time"
)

// Kind discriminates task payload contracts stored in the shared queue table.
type Kind string

const (
	// KindAccessAuthorization asks a human to approve or deny access to a
	// network resource on behalf of a game account.
	KindAccessAuthorization Kind = "access-authorization-request"

	// KindSecurityAlert records a denial escalation for operator review.
	KindSecurityAlert Kind = "security-alert"
)

// Task is a unit of cross-system work recorded in the shared relational
// store. The store assigns ID; everything else is written by the origin
// system and later resolved by the dispatcher or the decision processor.
type Task struct {
	ID          string            `json:"id"`
	Kind        Kind              `json:"kind"`
	Payload     json.RawMessage   `json:"payload,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	Processed   bool              `json:"processed"`
	ProcessedAt *time.Time        `json:"processedAt,omitempty"`
	Result      *ProcessingResult `json:"result,omitempty"`
}

// ProcessingResult captures the terminal outcome of a task. It is embedded in
// the task row as serialized text; Processed flipping false to true is the
// only state transition the store enforces.
type ProcessingResult struct {
	Success    bool      `json:"success"`
	Action     string    `json:"action,omitempty"`
	ResolvedBy string    `json:"resolvedBy,omitempty"`
	ResolvedAt time.Time `json:"resolvedAt"`
	Reason     string    `json:"reason,omitempty"`
}

// Recognized reports whether the kind belongs to the set the dispatcher
// claims from the store.
func (k Kind) Recognized() bool {
	switch k {
	case KindAccessAuthorization, KindSecurityAlert:
		return true
	}
	return false
}

// Failure builds a failed processing result with the supplied reason.
func Failure(reason string, at time.Time) *ProcessingResult {
	return &ProcessingResult{Success: false, Reason: reason, ResolvedAt: at}
}

// Delivered builds a successful result recording that the approval message
// reached its recipient and now awaits a human decision.
func Delivered(at time.Time) *ProcessingResult {
	return &ProcessingResult{Success: true, Action: "delivered", ResolvedAt: at}
}
