package submit

import (
	"github.com/viant/grantly/service/event"
	"github.com/viant/grantly/service/messaging"
)

type Option func(*Service)

// WithEvents attaches the internal notification feed; requests created and
// duplicates suppressed are published on it.
func WithEvents(queue messaging.Queue[event.Event]) Option {
	return func(s *Service) { s.events = queue }
}
