package registry

import "time"

type Option func(*Service)

// WithTTL overrides the default 5 minute pending-request window.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSweepInterval overrides how often the background sweeper evicts
// expired entries. Expiry is also checked lazily on access, so the sweeper
// only bounds memory and drives expiry notifications.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithOnExpire registers a callback invoked for every swept entry, outside
// the registry lock.
func WithOnExpire(fn func(*Pending)) Option {
	return func(s *Service) { s.onExpire = fn }
}
