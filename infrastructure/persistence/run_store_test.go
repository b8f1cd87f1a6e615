package persistence_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupnom/overture-import/domain/importrun"
	"github.com/groupnom/overture-import/domain/store"
	"github.com/groupnom/overture-import/infrastructure/persistence"
	"github.com/groupnom/overture-import/internal/database"
	"github.com/groupnom/overture-import/internal/testdb"
)

func TestRunStore_StartAndFinish(t *testing.T) {
	ctx := context.Background()
	s := persistence.NewRunStore(testdb.New(t))

	run, err := s.Start(ctx, "2024-11-13.0")
	require.NoError(t, err)
	assert.NotZero(t, run.ID())
	assert.Equal(t, importrun.StatusRunning, run.Status())

	stored, err := s.FindOne(ctx, store.WithID(run.ID()))
	require.NoError(t, err)
	assert.Equal(t, importrun.StatusRunning, stored.Status())
	assert.True(t, stored.CompletedAt().IsZero())

	done, err := s.Finish(ctx, run.Complete(importrun.NewCounts(7, 5, 2)))
	require.NoError(t, err)
	assert.Equal(t, importrun.StatusCompleted, done.Status())

	stored, err = s.FindOne(ctx, store.WithID(run.ID()))
	require.NoError(t, err)
	assert.Equal(t, importrun.StatusCompleted, stored.Status())
	assert.Equal(t, importrun.NewCounts(7, 5, 2), stored.Counts())
	assert.False(t, stored.CompletedAt().IsZero())
	assert.Empty(t, stored.ErrorMessage())
}

func TestRunStore_FinishFailed(t *testing.T) {
	ctx := context.Background()
	s := persistence.NewRunStore(testdb.New(t))

	run, err := s.Start(ctx, "r1")
	require.NoError(t, err)

	_, err = s.Finish(ctx, run.Fail(importrun.NewCounts(3, 3, 0), errors.New("write failed")))
	require.NoError(t, err)

	failed, err := s.Find(ctx, importrun.WithStatus(importrun.StatusFailed))
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "write failed", failed[0].ErrorMessage())
	assert.Equal(t, 3, failed[0].Counts().Processed())
}

func TestRunStore_FinishRejectsRunning(t *testing.T) {
	ctx := context.Background()
	s := persistence.NewRunStore(testdb.New(t))

	run, err := s.Start(ctx, "r1")
	require.NoError(t, err)

	_, err = s.Finish(ctx, run)
	assert.ErrorIs(t, err, persistence.ErrRunNotTerminal)
}

func TestRunStore_FinishUnknownRun(t *testing.T) {
	ctx := context.Background()
	s := persistence.NewRunStore(testdb.New(t))

	_, err := s.Finish(ctx, importrun.NewRun("r1").WithID(42).Complete(importrun.Counts{}))
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRunStore_FindNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := persistence.NewRunStore(testdb.New(t))

	for _, release := range []string{"r1", "r2", "r3"} {
		_, err := s.Start(ctx, release)
		require.NoError(t, err)
	}

	runs, err := s.Find(ctx, importrun.NewestFirst(), store.WithOrderDesc("id"), store.WithLimit(2))
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].Release())

	count, err := s.Count(ctx, importrun.WithRelease("r2"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestValidateSchema(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, persistence.ValidateSchema(ctx, testdb.New(t)))

	plain, _ := testdb.NewPlain(t)
	err := persistence.ValidateSchema(ctx, plain)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "restaurants")
	assert.Contains(t, err.Error(), "import_logs")
}
