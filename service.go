package grantly

import (
	"context"
	"fmt"
	"log"

	"github.com/viant/grantly/model/authreq"
	"github.com/viant/grantly/service/audit"
	auditfs "github.com/viant/grantly/service/audit/fs"
	auditmem "github.com/viant/grantly/service/audit/memory"
	"github.com/viant/grantly/service/dao"
	daomem "github.com/viant/grantly/service/dao/memory"
	daosql "github.com/viant/grantly/service/dao/sql"
	"github.com/viant/grantly/service/decision"
	"github.com/viant/grantly/service/dispatcher"
	"github.com/viant/grantly/service/event"
	"github.com/viant/grantly/service/ingest"
	"github.com/viant/grantly/service/linker"
	"github.com/viant/grantly/service/messaging"
	qmem "github.com/viant/grantly/service/messaging/memory"
	"github.com/viant/grantly/service/propagator"
	"github.com/viant/grantly/service/registry"
	"github.com/viant/grantly/service/secret"
	"github.com/viant/grantly/service/sender"
	"github.com/viant/grantly/service/submit"
)

// Service is the relay façade: it wires the store, registry, sender,
// dispatcher, decision processor and webhook surface from a Config plus the
// collaborator ports the host application supplies.
type Service struct {
	config *Config

	courier   sender.Courier
	granter   decision.Granter
	linkerSvc linker.Service
	store     dao.Service
	auditor   audit.Recorder

	events     messaging.Queue[event.Event]
	registry   *registry.Service
	sender     *sender.Service
	submitter  *submit.Service
	dispatcher *dispatcher.Service
	decisions  *decision.Service
	webhook    *ingest.Server
	secrets    *secret.Service
}

// New creates a relay service. Courier, granter and linker are collaborator
// ports the host must supply; the rest falls back to in-memory defaults.
func New(options ...Option) (*Service, error) {
	s := &Service{config: DefaultConfig(), secrets: secret.New()}
	for _, option := range options {
		option(s)
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if s.courier == nil {
		return nil, fmt.Errorf("courier is required")
	}
	if s.granter == nil {
		return nil, fmt.Errorf("granter is required")
	}
	if s.linkerSvc == nil {
		return nil, fmt.Errorf("linker is required")
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) init() error {
	if s.store == nil {
		if s.config.Store.DSN != "" {
			store, err := daosql.Open(s.config.Store.DSN)
			if err != nil {
				return err
			}
			s.store = store
		} else {
			s.store = daomem.New()
		}
	}
	if s.auditor == nil {
		if s.config.Audit.BaseURL != "" {
			s.auditor = auditfs.New(s.config.Audit.BaseURL)
		} else {
			s.auditor = auditmem.New()
		}
	}
	if s.events == nil {
		s.events = qmem.NewQueue[event.Event](qmem.DefaultConfig())
	}

	s.sender = sender.New(s.courier)
	s.registry = registry.New(
		registry.WithTTL(s.config.TTL()),
		registry.WithSweepInterval(s.config.SweepInterval()),
		registry.WithOnExpire(s.onExpire),
	)
	s.submitter = submit.New(s.registry, s.sender, submit.WithEvents(s.events))

	var err error
	s.dispatcher, err = dispatcher.New(
		dispatcher.WithStore(s.store),
		dispatcher.WithLinker(s.linkerSvc),
		dispatcher.WithSubmitter(s.submitter),
		dispatcher.WithAudit(s.auditor),
		dispatcher.WithInterval(s.config.PollInterval()),
		dispatcher.WithBatchSize(s.config.Dispatcher.BatchSize),
	)
	if err != nil {
		return err
	}

	decisionOptions := []decision.Option{
		decision.WithRegistry(s.registry),
		decision.WithSender(s.sender),
		decision.WithStore(s.store),
		decision.WithGranter(s.granter),
		decision.WithAudit(s.auditor),
		decision.WithEvents(s.events),
	}
	if s.config.Propagator.URL != "" {
		token, err := s.bearerToken(context.Background(), s.config.Propagator.Token, s.config.Propagator.TokenURL, s.config.Propagator.TokenKey)
		if err != nil {
			return err
		}
		decisionOptions = append(decisionOptions, decision.WithNotifier(propagator.New(s.config.Propagator.URL, token)))
	}
	s.decisions, err = decision.New(decisionOptions...)
	return err
}

// Start launches the registry sweeper, the polling dispatcher and, when
// configured, the webhook server.
func (s *Service) Start(ctx context.Context) error {
	s.registry.Start(ctx)
	s.dispatcher.Start(ctx)
	if s.config.Webhook.Addr != "" {
		token, err := s.bearerToken(ctx, s.config.Webhook.Token, s.config.Webhook.TokenURL, s.config.Webhook.TokenKey)
		if err != nil {
			return err
		}
		s.webhook = ingest.NewServer(s.config.Webhook.Addr, token, s.submitter)
		s.webhook.Start()
	}
	return nil
}

// Shutdown stops all background work; in-flight handlers may finish, task
// completion is re-derived from store state on restart.
func (s *Service) Shutdown(ctx context.Context) error {
	s.dispatcher.Shutdown()
	s.registry.Shutdown()
	if s.webhook != nil {
		return s.webhook.Shutdown(ctx)
	}
	return nil
}

// Decide forwards a button press from the chat integration to the decision
// processor.
func (s *Service) Decide(ctx context.Context, token, actor string) (*authreq.Decision, error) {
	return s.decisions.Decide(ctx, token, actor)
}

// Tick runs a single dispatcher poll cycle synchronously. Useful for
// embedded hosts that drive polling from their own scheduler.
func (s *Service) Tick(ctx context.Context) {
	s.dispatcher.Tick(ctx)
}

// Submitter exposes the shared submit fan-in for custom entry points.
func (s *Service) Submitter() *submit.Service { return s.submitter }

// Store exposes the task store adapter.
func (s *Service) Store() dao.Service { return s.store }

// Events exposes the internal notification feed.
func (s *Service) Events() messaging.Queue[event.Event] { return s.events }

// bearerToken resolves a credential: an inline token wins unless a scy
// resource URL is configured.
func (s *Service) bearerToken(ctx context.Context, token, tokenURL, tokenKey string) (string, error) {
	if tokenURL != "" {
		return s.secrets.BearerToken(ctx, tokenURL, tokenKey)
	}
	return token, nil
}

// onExpire rewrites a swept request's message to its expired rendering and
// publishes the expiry on the feed.
func (s *Service) onExpire(p *registry.Pending) {
	ctx := context.Background()
	if err := s.sender.Resolve(ctx, p.Payload.Recipient, p.MessageRef, authreq.StateExpired); err != nil {
		log.Printf("grantly: failed to expire approval message %s: %v", p.MessageRef, err)
	}
	_ = s.events.Publish(ctx, &event.Event{Topic: event.TopicRequestExpired, Data: p.Payload})
}
