package sql

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/viant/grantly/model/task"
	"github.com/viant/grantly/service/dao"
)

func TestInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()
	store := New(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks")).
		WithArgs("t1", "access-authorization-request", `{"subject":"alice"}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = store.Insert(ctx, &task.Task{ID: "t1", Kind: task.KindAccessAuthorization, Payload: []byte(`{"subject":"alice"}`)})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUnprocessed(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()
	store := New(db)
	ctx := context.Background()

	created := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "kind", "payload", "created_at", "processed", "processed_at", "processing_result"}).
		AddRow("t1", "access-authorization-request", `{"subject":"alice"}`, created, false, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE processed = FALSE AND kind = ANY($1)")).
		WillReturnRows(rows)

	listed, err := store.ListUnprocessed(ctx, []task.Kind{task.KindAccessAuthorization}, 10)
	assert.NoError(t, err)
	if assert.Len(t, listed, 1) {
		assert.Equal(t, "t1", listed[0].ID)
		assert.Equal(t, task.KindAccessAuthorization, listed[0].Kind)
		assert.False(t, listed[0].Processed)
		assert.Nil(t, listed[0].Result)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkProcessedConditional(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()
	store := New(db)
	ctx := context.Background()
	result := task.Delivered(time.Now())

	// First writer wins the transition.
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND processed = FALSE")).
		WithArgs("t1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	won, err := store.MarkProcessed(ctx, "t1", result)
	assert.NoError(t, err)
	assert.True(t, won)

	// A concurrent writer finds the row already flipped.
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND processed = FALSE")).
		WithArgs("t1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	won, err = store.MarkProcessed(ctx, "t1", result)
	assert.NoError(t, err)
	assert.False(t, won)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkProcessedMissingTask(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()
	store := New(db)

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND processed = FALSE")).
		WithArgs("missing", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	won, err := store.MarkProcessed(context.Background(), "missing", task.Delivered(time.Now()))
	assert.False(t, won)
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()
	store := New(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "payload", "created_at", "processed", "processed_at", "processing_result"}))

	_, err = store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() { _ = db.Close() }()
	store := New(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET processing_result = $2 WHERE id = $1")).
		WithArgs("t1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	err = store.UpdateResult(ctx, "t1", &task.ProcessingResult{Success: true, Action: "approved", ResolvedAt: time.Now()})
	assert.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET processing_result = $2 WHERE id = $1")).
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = store.UpdateResult(ctx, "missing", &task.ProcessingResult{})
	assert.ErrorIs(t, err, dao.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
