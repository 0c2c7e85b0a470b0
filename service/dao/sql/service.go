package sql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/viant/grantly/internal/clock"
	"github.com/viant/grantly/model/task"
	"github.com/viant/grantly/service/dao"
)

// Service is the Postgres-backed task store adapter. The table is shared
// with the origin system; this adapter only reads unprocessed rows and
// writes the processed transition, it never deletes.
type Service struct {
	db *sql.DB
}

// New creates a task store over an existing database handle.
func New(db *sql.DB) *Service {
	return &Service{db: db}
}

// Open dials the store with the supplied postgres DSN.
func Open(dsn string) (*Service, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open task store: %w", err)
	}
	return &Service{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	payload TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	processed BOOLEAN NOT NULL DEFAULT FALSE,
	processed_at TIMESTAMPTZ,
	processing_result TEXT
);
CREATE INDEX IF NOT EXISTS idx_tasks_unprocessed ON tasks(kind, created_at) WHERE processed = FALSE;
`

// Init creates the queue table when it does not exist yet.
func (s *Service) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Insert persists a new task, assigning an id when absent.
func (s *Service) Insert(ctx context.Context, t *task.Task) error {
	if t == nil {
		return dao.ErrNilTask
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = clock.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, kind, payload, created_at, processed)
		VALUES ($1, $2, $3, $4, FALSE)
	`, t.ID, string(t.Kind), string(t.Payload), t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert task %s: %w", t.ID, err)
	}
	return nil
}

// Load returns a task by id, or dao.ErrNotFound.
func (s *Service) Load(ctx context.Context, id string) (*task.Task, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, payload, created_at, processed, processed_at, processing_result
		FROM tasks WHERE id = $1
	`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dao.ErrNotFound
	}
	return t, err
}

// ListUnprocessed returns up to limit unprocessed tasks of the given kinds,
// oldest first.
func (s *Service) ListUnprocessed(ctx context.Context, kinds []task.Kind, limit int) ([]*task.Task, error) {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, payload, created_at, processed, processed_at, processing_result
		FROM tasks
		WHERE processed = FALSE AND kind = ANY($1)
		ORDER BY created_at ASC
		LIMIT $2
	`, pq.Array(names), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkProcessed flips the processed flag with a conditional update so that
// concurrent workers cannot both win the transition.
func (s *Service) MarkProcessed(ctx context.Context, id string, result *task.ProcessingResult) (bool, error) {
	if id == "" {
		return false, dao.ErrInvalidID
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		return false, fmt.Errorf("failed to marshal processing result: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET processed = TRUE, processed_at = $2, processing_result = $3
		WHERE id = $1 AND processed = FALSE
	`, id, clock.Now(), string(encoded))
	if err != nil {
		return false, fmt.Errorf("failed to mark task %s processed: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 1 {
		return true, nil
	}
	// Zero rows either means another writer won the transition or the task
	// does not exist; only the latter is an error.
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check task %s: %w", id, err)
	}
	if !exists {
		return false, dao.ErrNotFound
	}
	return false, nil
}

// UpdateResult rewrites the processing result without touching the processed
// flag.
func (s *Service) UpdateResult(ctx context.Context, id string, result *task.ProcessingResult) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal processing result: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET processing_result = $2 WHERE id = $1
	`, id, string(encoded))
	if err != nil {
		return fmt.Errorf("failed to update result for task %s: %w", id, err)
	}
	if affected, aErr := res.RowsAffected(); aErr == nil && affected == 0 {
		return dao.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row scanner) (*task.Task, error) {
	var (
		t       task.Task
		kind    string
		payload sql.NullString
		result  sql.NullString
		doneAt  sql.NullTime
	)
	if err := row.Scan(&t.ID, &kind, &payload, &t.CreatedAt, &t.Processed, &doneAt, &result); err != nil {
		return nil, err
	}
	t.Kind = task.Kind(kind)
	if payload.Valid {
		t.Payload = json.RawMessage(payload.String)
	}
	if doneAt.Valid {
		at := doneAt.Time
		t.ProcessedAt = &at
	}
	if result.Valid && result.String != "" {
		var r task.ProcessingResult
		if err := json.Unmarshal([]byte(result.String), &r); err != nil {
			return nil, fmt.Errorf("failed to decode processing result for task %s: %w", t.ID, err)
		}
		t.Result = &r
	}
	return &t, nil
}

var _ dao.Service = (*Service)(nil)
