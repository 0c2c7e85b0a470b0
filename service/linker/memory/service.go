package memory

import (
	"context"
	"sync"

	"github.com/viant/grantly/service/linker"
)

// Service is an in-memory linkage table for tests and embedded setups.
type Service struct {
	mu    sync.RWMutex
	links map[int64]string
}

// New creates an empty linkage table.
func New() *Service {
	return &Service{links: make(map[int64]string)}
}

// Link registers a verified subject to recipient mapping.
func (s *Service) Link(subjectID int64, recipient string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[subjectID] = recipient
}

// Resolve returns the linked recipient or linker.ErrNotLinked.
func (s *Service) Resolve(_ context.Context, subjectID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recipient, ok := s.links[subjectID]
	if !ok {
		return "", linker.ErrNotLinked
	}
	return recipient, nil
}

var _ linker.Service = (*Service)(nil)
