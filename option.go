package grantly

import (
	"github.com/viant/grantly/service/audit"
	"github.com/viant/grantly/service/dao"
	"github.com/viant/grantly/service/decision"
	"github.com/viant/grantly/service/event"
	"github.com/viant/grantly/service/linker"
	"github.com/viant/grantly/service/messaging"
	"github.com/viant/grantly/service/sender"
)

type Option func(s *Service)

// WithConfig sets the relay configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithCourier sets the chat delivery collaborator.
func WithCourier(courier sender.Courier) Option {
	return func(s *Service) { s.courier = courier }
}

// WithGranter sets the external authorization collaborator.
func WithGranter(granter decision.Granter) Option {
	return func(s *Service) { s.granter = granter }
}

// WithLinker sets the account-linking collaborator.
func WithLinker(l linker.Service) Option {
	return func(s *Service) { s.linkerSvc = l }
}

// WithStore overrides the task store adapter.
func WithStore(store dao.Service) Option {
	return func(s *Service) { s.store = store }
}

// WithAudit overrides the denial escalation recorder.
func WithAudit(recorder audit.Recorder) Option {
	return func(s *Service) { s.auditor = recorder }
}

// WithEvents overrides the internal notification queue.
func WithEvents(queue messaging.Queue[event.Event]) Option {
	return func(s *Service) { s.events = queue }
}
