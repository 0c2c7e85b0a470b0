package dispatcher

import (
	"time"

	"github.com/viant/grantly/service/audit"
	"github.com/viant/grantly/service/dao"
	"github.com/viant/grantly/service/linker"
	"github.com/viant/grantly/service/submit"
)

type Option func(*Service)

// WithStore sets the task store adapter.
func WithStore(store dao.Service) Option {
	return func(s *Service) { s.store = store }
}

// WithLinker sets the account-linking collaborator.
func WithLinker(l linker.Service) Option {
	return func(s *Service) { s.linker = l }
}

// WithSubmitter sets the shared submit fan-in.
func WithSubmitter(sub *submit.Service) Option {
	return func(s *Service) { s.submitter = sub }
}

// WithAudit sets the recorder security-alert tasks are routed to.
func WithAudit(recorder audit.Recorder) Option {
	return func(s *Service) { s.auditor = recorder }
}

// WithInterval overrides the default 5 second poll interval.
func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.config.Interval = interval
		}
	}
}

// WithBatchSize overrides how many tasks a single tick may claim.
func WithBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.config.BatchSize = size
		}
	}
}
