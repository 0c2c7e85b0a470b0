package decision

import (
	"github.com/viant/grantly/service/audit"
	"github.com/viant/grantly/service/dao"
	"github.com/viant/grantly/service/event"
	"github.com/viant/grantly/service/messaging"
	"github.com/viant/grantly/service/registry"
	"github.com/viant/grantly/service/sender"
)

type Option func(*Service)

// WithRegistry sets the pending-request registry.
func WithRegistry(reg *registry.Service) Option {
	return func(s *Service) { s.registry = reg }
}

// WithSender sets the sender used to rewrite messages to terminal state.
func WithSender(snd *sender.Service) Option {
	return func(s *Service) { s.sender = snd }
}

// WithStore sets the optional task store; when present, decisions are
// recorded on the originating task.
func WithStore(store dao.Service) Option {
	return func(s *Service) { s.store = store }
}

// WithGranter sets the external authorization collaborator.
func WithGranter(granter Granter) Option {
	return func(s *Service) { s.granter = granter }
}

// WithAudit sets the recorder denial escalations go to.
func WithAudit(recorder audit.Recorder) Option {
	return func(s *Service) { s.auditor = recorder }
}

// WithNotifier sets the outbound propagator for webhook-originated requests.
func WithNotifier(notifier Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

// WithEvents attaches the internal notification feed.
func WithEvents(queue messaging.Queue[event.Event]) Option {
	return func(s *Service) { s.events = queue }
}
