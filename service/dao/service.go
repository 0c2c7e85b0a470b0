package dao

import (
	"context"

	"github.com/viant/grantly/model/task"
)

// Service is the task store adapter over the shared queue table. The
// relational store is the single source of truth for task completion and may
// be shared by multiple process instances; implementations must keep
// MarkProcessed conditional so the processed flag flips false to true at
// most once across all writers.
type Service interface {
	// Insert persists a new task. When the task carries no id the store
	// assigns one and mutates the argument.
	Insert(ctx context.Context, t *task.Task) error

	// Load returns a task by id, or ErrNotFound.
	Load(ctx context.Context, id string) (*task.Task, error)

	// ListUnprocessed returns up to limit unprocessed tasks of the given
	// kinds, ordered by creation time ascending.
	ListUnprocessed(ctx context.Context, kinds []task.Kind, limit int) ([]*task.Task, error)

	// MarkProcessed records the terminal result for a task, only if it is
	// still unprocessed. It reports whether this call won the transition;
	// false means another writer already resolved the task.
	MarkProcessed(ctx context.Context, id string, result *task.ProcessingResult) (bool, error)

	// UpdateResult rewrites the processing result of an already processed
	// task without touching the processed flag. Used to record the human
	// decision after the delivery result was written.
	UpdateResult(ctx context.Context, id string, result *task.ProcessingResult) error
}
