// Package registry owns the in-memory set of in-flight approval requests.
// It exists purely to prevent duplicate dispatch within a TTL window; the
// relational store remains the correctness ledger.
package registry

import (
	"context"
	"sync"
	"time"

	"github.com/viant/grantly/internal/clock"
	"github.com/viant/grantly/model/authreq"
)

// Pending is a single in-flight approval request. The registry is the sole
// owner of entries; other components obtain exclusive access via Take.
type Pending struct {
	Payload    *authreq.Payload
	Origin     authreq.Origin
	TaskID     string        // empty for webhook-originated requests
	MessageRef string        // courier correlation for the delivered message
	State      authreq.State // PENDING_DELIVERY until the courier confirms
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the entry has outlived its window.
func (p *Pending) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}

// Service is a mutex-guarded TTL cache keyed by (recipient, resource).
// Check-then-insert is atomic with respect to other operations on the same
// key, so two near-simultaneous identical requests cannot both dispatch.
type Service struct {
	ttl           time.Duration
	sweepInterval time.Duration
	onExpire      func(*Pending)

	mu      sync.Mutex
	entries map[authreq.Key]*Pending

	shutdownCh chan struct{}
	once       sync.Once
}

// New creates a registry with the supplied options.
func New(options ...Option) *Service {
	s := &Service{
		ttl:           5 * time.Minute,
		sweepInterval: time.Minute,
		entries:       make(map[authreq.Key]*Pending),
		shutdownCh:    make(chan struct{}),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// PutIfAbsent inserts the entry unless a live entry already holds the key.
// It reports whether the insert happened; false means a duplicate is in
// flight and the caller must suppress dispatch. An expired entry found under
// the key is evicted and notified like a swept one.
func (s *Service) PutIfAbsent(key authreq.Key, p *Pending) bool {
	now := clock.Now()
	var evicted *Pending
	s.mu.Lock()
	if existing, ok := s.entries[key]; ok {
		if !existing.Expired(now) {
			s.mu.Unlock()
			return false
		}
		delete(s.entries, key)
		evicted = existing
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.ExpiresAt.IsZero() {
		p.ExpiresAt = p.CreatedAt.Add(s.ttl)
	}
	if p.State == "" {
		p.State = authreq.StatePendingDelivery
	}
	s.entries[key] = p
	s.mu.Unlock()
	s.notifyExpired(evicted)
	return true
}

// Take removes and returns the live entry for key. A missing or expired
// entry yields (nil, false); an expired entry is evicted on the way out and
// notified like a swept one, so its message still gets the expired
// rendering. Removal before any side effect is the caller's race-safety
// primitive: a concurrent duplicate decision finds no entry and is rejected
// as stale.
func (s *Service) Take(key authreq.Key) (*Pending, bool) {
	now := clock.Now()
	s.mu.Lock()
	p, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	delete(s.entries, key)
	s.mu.Unlock()
	if p.Expired(now) {
		s.notifyExpired(p)
		return nil, false
	}
	return p, true
}

// notifyExpired invokes the expiry callback outside the registry lock.
func (s *Service) notifyExpired(p *Pending) {
	if p == nil || s.onExpire == nil {
		return
	}
	s.onExpire(p)
}

// Restore puts back an entry previously obtained via Take, preserving its
// original expiry. Used when a decision attempt is rejected for a reason
// that must leave the request decidable, e.g. a wrong actor.
func (s *Service) Restore(key authreq.Key, p *Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = p
}

// SetMessageRef records the delivery correlation on a live entry and moves
// it from PENDING_DELIVERY to DELIVERED.
func (s *Service) SetMessageRef(key authreq.Key, ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.entries[key]; ok {
		p.MessageRef = ref
		p.State = authreq.StateDelivered
	}
}

// Len returns the number of entries including not-yet-swept expired ones.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Start launches the background sweeper. It returns immediately; cancel ctx
// or call Shutdown to stop.
func (s *Service) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.shutdownCh:
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// Shutdown stops the sweeper. Safe to call more than once.
func (s *Service) Shutdown() {
	s.once.Do(func() { close(s.shutdownCh) })
}

func (s *Service) sweep() {
	now := clock.Now()
	var expired []*Pending
	s.mu.Lock()
	for key, p := range s.entries {
		if p.Expired(now) {
			delete(s.entries, key)
			expired = append(expired, p)
		}
	}
	s.mu.Unlock()
	for _, p := range expired {
		s.notifyExpired(p)
	}
}
