// Package dispatcher polls the shared task store and routes every
// unprocessed task of a recognized kind to exactly one handler invocation.
package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/viant/grantly/internal/clock"
	"github.com/viant/grantly/model/authreq"
	"github.com/viant/grantly/model/task"
	"github.com/viant/grantly/service/audit"
	"github.com/viant/grantly/service/dao"
	"github.com/viant/grantly/service/linker"
	"github.com/viant/grantly/service/schema"
	"github.com/viant/grantly/service/submit"
	"github.com/viant/grantly/tracing"
)

// Config represents dispatcher configuration.
type Config struct {
	// Interval between store polls.
	Interval time.Duration

	// BatchSize bounds how many tasks one tick may claim.
	BatchSize int
}

// DefaultConfig returns the default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Interval:  5 * time.Second,
		BatchSize: 10,
	}
}

// Service drives the pull path. A single ticker scans the store; an
// in-flight set guards against re-entry when a tick fires before the
// previous tick's work for the same task id finished. The store write of
// processed=true remains the source of truth across restarts.
type Service struct {
	config    Config
	store     dao.Service
	linker    linker.Service
	submitter *submit.Service
	auditor   audit.Recorder

	mu       sync.Mutex
	inflight map[string]struct{}

	// wg tracks spawned task handlers only; the polling loop goroutine is
	// tracked separately so Tick can wait for handlers while the loop runs.
	wg         sync.WaitGroup
	loopWg     sync.WaitGroup
	shutdownCh chan struct{}
	once       sync.Once
}

// New creates a dispatcher service.
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:     DefaultConfig(),
		inflight:   make(map[string]struct{}),
		shutdownCh: make(chan struct{}),
	}
	for _, option := range options {
		option(s)
	}
	if s.store == nil {
		return nil, fmt.Errorf("task store is required")
	}
	if s.linker == nil {
		return nil, fmt.Errorf("linker is required")
	}
	if s.submitter == nil {
		return nil, fmt.Errorf("submitter is required")
	}
	return s, nil
}

// Start launches the polling loop. It returns immediately; cancel ctx or
// call Shutdown to stop.
func (s *Service) Start(ctx context.Context) {
	s.loopWg.Add(1)
	go func() {
		defer s.loopWg.Done()
		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.shutdownCh:
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Shutdown stops the ticker and waits for in-flight handlers to finish.
func (s *Service) Shutdown() {
	s.once.Do(func() { close(s.shutdownCh) })
	s.loopWg.Wait()
	s.wg.Wait()
}

// Tick runs a single poll cycle synchronously and waits for the handlers it
// spawned. Exposed for tests and for callers that drive their own schedule.
func (s *Service) Tick(ctx context.Context) {
	s.tick(ctx)
	s.wg.Wait()
}

func (s *Service) tick(ctx context.Context) {
	ctx, span := tracing.StartSpan(ctx, "dispatcher.tick", "INTERNAL")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	kinds := []task.Kind{task.KindAccessAuthorization, task.KindSecurityAlert}
	tasks, err := s.store.ListUnprocessed(ctx, kinds, s.config.BatchSize)
	if err != nil {
		// Store unreachable aborts this tick; the next tick retries.
		log.Printf("dispatcher: failed to list unprocessed tasks: %v", err)
		return
	}
	for _, t := range tasks {
		if !s.claim(t.ID) {
			continue
		}
		s.wg.Add(1)
		go func(t *task.Task) {
			defer s.wg.Done()
			defer s.release(t.ID)
			s.process(ctx, t)
		}(t)
	}
}

// claim reserves the task id in the in-flight set; false means a previous
// tick is still working on it.
func (s *Service) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inflight[id]; ok {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *Service) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}

// process routes a claimed task to its kind handler. A nil result means an
// infrastructure failure: the task stays unprocessed and the next tick
// naturally retries it.
func (s *Service) process(ctx context.Context, t *task.Task) {
	var result *task.ProcessingResult
	switch {
	case !t.Kind.Recognized():
		result = task.Failure(fmt.Sprintf("unrecognized task kind: %s", t.Kind), clock.Now())
	case t.Kind == task.KindAccessAuthorization:
		result = s.handleAuthorization(ctx, t)
	default:
		result = s.handleSecurityAlert(ctx, t)
	}
	if result == nil {
		return
	}
	won, err := s.store.MarkProcessed(ctx, t.ID, result)
	if err != nil {
		log.Printf("dispatcher: failed to mark task %s processed: %v", t.ID, err)
		return
	}
	if !won {
		log.Printf("dispatcher: task %s was already processed by another writer", t.ID)
	}
}

func (s *Service) handleAuthorization(ctx context.Context, t *task.Task) *task.ProcessingResult {
	var raw map[string]interface{}
	if err := json.Unmarshal(t.Payload, &raw); err != nil {
		return task.Failure(fmt.Sprintf("malformed payload: %v", err), clock.Now())
	}
	payload, violations := schema.Validate(t.Kind, raw)
	if len(violations) > 0 {
		return task.Failure("schema violations: "+strings.Join(violations, "; "), clock.Now())
	}

	recipient, err := s.linker.Resolve(ctx, payload.SubjectID)
	if err != nil {
		if errors.Is(err, linker.ErrNotLinked) {
			return task.Failure("recipient not linked", clock.Now())
		}
		// Lookup collaborator unreachable; retry on a later tick.
		log.Printf("dispatcher: linkage lookup for subject %d failed: %v", payload.SubjectID, err)
		return nil
	}
	// The verified linkage is authoritative over whatever the origin put in
	// the payload.
	payload.Recipient = recipient

	dispatched, err := s.submitter.Submit(ctx, payload, authreq.OriginPoll, t.ID)
	if err != nil {
		// Delivery is not retried automatically; a human re-triggers from
		// upstream.
		return task.Failure(fmt.Sprintf("delivery failed: %v", err), clock.Now())
	}
	if !dispatched {
		return &task.ProcessingResult{Success: true, Action: "duplicate", ResolvedAt: clock.Now()}
	}
	return task.Delivered(clock.Now())
}

func (s *Service) handleSecurityAlert(ctx context.Context, t *task.Task) *task.ProcessingResult {
	if s.auditor == nil {
		return task.Failure("no audit recorder configured", clock.Now())
	}
	var entry audit.Entry
	if err := json.Unmarshal(t.Payload, &entry); err != nil {
		return task.Failure(fmt.Sprintf("malformed payload: %v", err), clock.Now())
	}
	if entry.ResolvedAt.IsZero() {
		entry.ResolvedAt = clock.Now()
	}
	if err := s.auditor.RecordDenial(ctx, &entry); err != nil {
		log.Printf("dispatcher: failed to record security alert from task %s: %v", t.ID, err)
		return nil
	}
	return &task.ProcessingResult{Success: true, Action: "recorded", ResolvedAt: clock.Now()}
}
