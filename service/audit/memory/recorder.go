package memory

import (
	"context"
	"sync"

	"github.com/viant/grantly/service/audit"
)

// Recorder keeps audit entries in memory for tests and embedded setups.
type Recorder struct {
	mu      sync.Mutex
	entries []*audit.Entry
}

// New creates an empty recorder.
func New() *Recorder {
	return &Recorder{}
}

// RecordDenial appends the entry.
func (r *Recorder) RecordDenial(_ context.Context, entry *audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// Entries returns a snapshot of recorded entries.
func (r *Recorder) Entries() []*audit.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*audit.Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

var _ audit.Recorder = (*Recorder)(nil)
