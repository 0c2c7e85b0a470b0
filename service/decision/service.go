// Package decision applies a human's approve or deny exactly once and fans
// the outcome out to the store, the chat message, the audit trail and the
// origin system.
package decision

import (
	"context"
	"fmt"
	"log"

	"github.com/viant/grantly/internal/clock"
	"github.com/viant/grantly/model/authreq"
	"github.com/viant/grantly/model/task"
	"github.com/viant/grantly/service/audit"
	"github.com/viant/grantly/service/dao"
	"github.com/viant/grantly/service/event"
	"github.com/viant/grantly/service/messaging"
	"github.com/viant/grantly/service/registry"
	"github.com/viant/grantly/service/sender"
	"github.com/viant/grantly/tracing"
)

// Service resolves decision events. Requests move
// PENDING_DELIVERY -> DELIVERED -> {APPROVED | DENIED | EXPIRED}; this
// service owns the terminal transition.
type Service struct {
	registry *registry.Service
	sender   *sender.Service
	store    dao.Service
	granter  Granter
	auditor  audit.Recorder
	notifier Notifier
	events   messaging.Queue[event.Event]
}

// New creates a decision service.
func New(options ...Option) (*Service, error) {
	s := &Service{}
	for _, option := range options {
		option(s)
	}
	if s.registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if s.sender == nil {
		return nil, fmt.Errorf("sender is required")
	}
	if s.granter == nil {
		return nil, fmt.Errorf("granter is required")
	}
	return s, nil
}

// Decide processes one button press: token is the action identifier baked
// into the message control, actor the identity that pressed it.
//
// The registry entry is removed before any side effect runs. A concurrent
// duplicate press therefore finds no entry and fails with ErrStale; this
// ordering is what makes the grant at-most-once.
func (s *Service) Decide(ctx context.Context, token, actor string) (d *authreq.Decision, err error) {
	ctx, span := tracing.StartSpan(ctx, "decision.decide", "SERVER")
	defer func() { tracing.EndSpan(span, err) }()

	action, key, err := sender.ParseToken(token)
	if err != nil {
		return nil, err
	}
	span.WithAttributes(map[string]string{"decision.action": string(action)})

	entry, ok := s.registry.Take(key)
	if !ok {
		return nil, ErrStale
	}
	if entry.Payload.Recipient != actor {
		// Hard rejection, but the legitimate recipient must still be able to
		// decide, so the claimed entry goes back.
		s.registry.Restore(key, entry)
		return nil, ErrNotAuthorized
	}

	now := clock.Now()
	d = &authreq.Decision{
		Approved:   action == authreq.ActionApprove,
		ResolvedBy: actor,
		ResolvedAt: now,
	}
	state := authreq.StateDenied
	result := &task.ProcessingResult{Success: true, Action: "denied", ResolvedBy: actor, ResolvedAt: now}

	if d.Approved {
		state = authreq.StateApproved
		result.Action = "approved"
		if gErr := s.granter.Grant(ctx, entry.Payload.SubjectID, entry.Payload.Resource); gErr != nil {
			log.Printf("decision: grant for subject %d failed: %v", entry.Payload.SubjectID, gErr)
			result.Success = false
			result.Reason = gErr.Error()
		}
	} else if s.auditor != nil {
		if aErr := s.auditor.RecordDenial(ctx, audit.NewEntry(entry.Payload, actor, now)); aErr != nil {
			log.Printf("decision: failed to record denial: %v", aErr)
		}
	}

	s.recordResult(ctx, entry.TaskID, result)

	if rErr := s.sender.Resolve(ctx, entry.Payload.Recipient, entry.MessageRef, state); rErr != nil {
		log.Printf("decision: failed to update approval message %s: %v", entry.MessageRef, rErr)
	}

	if entry.Origin == authreq.OriginWebhook && s.notifier != nil {
		if nErr := s.notifier.Notify(ctx, entry.Payload.SubjectID, entry.Payload.Resource, d.Approved, actor); nErr != nil {
			// A single bounded attempt; the origin has its own timeout.
			log.Printf("decision: outcome propagation failed: %v", nErr)
		}
	}

	if s.events != nil {
		_ = s.events.Publish(ctx, &event.Event{Topic: event.TopicDecisionCreated, Data: d})
	}
	return d, nil
}

// recordResult writes the decision into the underlying task. The delivery
// pass normally already flipped processed, in which case only the result is
// rewritten; when it did not (crash between send and mark), the conditional
// transition is taken here.
func (s *Service) recordResult(ctx context.Context, taskID string, result *task.ProcessingResult) {
	if taskID == "" || s.store == nil {
		return
	}
	won, err := s.store.MarkProcessed(ctx, taskID, result)
	if err != nil {
		log.Printf("decision: failed to mark task %s processed: %v", taskID, err)
		return
	}
	if won {
		return
	}
	if err := s.store.UpdateResult(ctx, taskID, result); err != nil {
		log.Printf("decision: failed to update result for task %s: %v", taskID, err)
	}
}
