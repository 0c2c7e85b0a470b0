// Package event defines the envelope published on the relay's internal feed.
// Consumers (operator tooling, tests) subscribe via the messaging queue
// exposed by the root service.
package event

// Standard topics.
const (
	TopicRequestCreated   = "request.created"
	TopicRequestDuplicate = "request.duplicate"
	TopicRequestExpired   = "request.expired"
	TopicDecisionCreated  = "decision.created"
)

// Event is the envelope for internal notifications.
type Event struct {
	Topic   string            `json:"topic"`
	Data    interface{}       `json:"data,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}
