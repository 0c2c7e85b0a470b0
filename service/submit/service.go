// Package submit is the single fan-in both entry points (polling dispatcher
// and webhook ingestor) call to turn a validated candidate request into a
// delivered approval message. Dedup against the pending-request registry
// lives here and nowhere else.
package submit

import (
	"context"

	"github.com/viant/grantly/model/authreq"
	"github.com/viant/grantly/service/event"
	"github.com/viant/grantly/service/messaging"
	"github.com/viant/grantly/service/registry"
	"github.com/viant/grantly/service/sender"
)

// Service funnels candidate requests through the registry into the sender.
type Service struct {
	registry *registry.Service
	sender   *sender.Service
	events   messaging.Queue[event.Event]
}

// New creates a submit service. The events queue is optional.
func New(reg *registry.Service, snd *sender.Service, options ...Option) *Service {
	s := &Service{registry: reg, sender: snd}
	for _, option := range options {
		option(s)
	}
	return s
}

// Submit dispatches the payload unless an identical request is already in
// flight. It returns (false, nil) for a suppressed duplicate, (true, nil)
// after a successful delivery, and (false, err) when delivery failed; a
// failed delivery leaves no registry entry behind so the caller may
// re-trigger.
func (s *Service) Submit(ctx context.Context, p *authreq.Payload, origin authreq.Origin, taskID string) (bool, error) {
	key := p.Key()
	entry := &registry.Pending{Payload: p, Origin: origin, TaskID: taskID}
	if !s.registry.PutIfAbsent(key, entry) {
		s.publish(ctx, event.TopicRequestDuplicate, p)
		return false, nil
	}
	ref, err := s.sender.Send(ctx, p)
	if err != nil {
		// Roll the reservation back, otherwise the key would stay blocked
		// for a request that was never delivered.
		s.registry.Take(key)
		return false, err
	}
	s.registry.SetMessageRef(key, ref)
	s.publish(ctx, event.TopicRequestCreated, p)
	return true, nil
}

func (s *Service) publish(ctx context.Context, topic string, data interface{}) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, &event.Event{Topic: topic, Data: data})
}
