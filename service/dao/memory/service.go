package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/viant/grantly/internal/clock"
	"github.com/viant/grantly/internal/idgen"
	"github.com/viant/grantly/model/task"
	"github.com/viant/grantly/service/dao"
)

// Service is an in-memory task store. It backs tests and embedded setups
// where no shared relational store is available; semantics mirror the SQL
// adapter, including the conditional MarkProcessed transition.
type Service struct {
	mu      sync.RWMutex
	records map[string]*task.Task
}

// New creates an empty in-memory task store.
func New() *Service {
	return &Service{records: make(map[string]*task.Task)}
}

// Insert persists a new task, assigning an id when absent.
func (s *Service) Insert(_ context.Context, t *task.Task) error {
	if t == nil {
		return dao.ErrNilTask
	}
	if t.ID == "" {
		t.ID = idgen.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = clock.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *t
	s.records[t.ID] = &clone
	return nil
}

// Load returns a task by id.
func (s *Service) Load(_ context.Context, id string) (*task.Task, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.records[id]
	if !ok {
		return nil, dao.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

// ListUnprocessed returns unprocessed tasks of the given kinds, oldest first.
func (s *Service) ListUnprocessed(_ context.Context, kinds []task.Kind, limit int) ([]*task.Task, error) {
	wanted := make(map[task.Kind]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}
	s.mu.RLock()
	var out []*task.Task
	for _, t := range s.records {
		if t.Processed || !wanted[t.Kind] {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkProcessed flips the processed flag, only when still unprocessed.
func (s *Service) MarkProcessed(_ context.Context, id string, result *task.ProcessingResult) (bool, error) {
	if id == "" {
		return false, dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.records[id]
	if !ok {
		return false, dao.ErrNotFound
	}
	if t.Processed {
		return false, nil
	}
	now := clock.Now()
	t.Processed = true
	t.ProcessedAt = &now
	t.Result = result
	return true, nil
}

// UpdateResult rewrites the processing result of a processed task.
func (s *Service) UpdateResult(_ context.Context, id string, result *task.ProcessingResult) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.records[id]
	if !ok {
		return dao.ErrNotFound
	}
	t.Result = result
	return nil
}

var _ dao.Service = (*Service)(nil)
