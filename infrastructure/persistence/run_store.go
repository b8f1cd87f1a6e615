package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/groupnom/overture-import/domain/importrun"
	"github.com/groupnom/overture-import/internal/database"
)

// ErrRunNotTerminal indicates Finish was called on a run that is still running.
var ErrRunNotTerminal = errors.New("run is not in a terminal state")

// RunStore implements importrun.Tracker and importrun.Store using GORM.
// Every write commits on its own session, outside any restaurant batch.
type RunStore struct {
	database.Repository[importrun.Run, ImportLogModel]
}

// NewRunStore creates a new RunStore.
func NewRunStore(db database.Database) RunStore {
	return RunStore{
		Repository: database.NewRepository[importrun.Run, ImportLogModel](db, RunMapper{}, "import log"),
	}
}

// Start records a new running run and returns it with its identifier.
func (s RunStore) Start(ctx context.Context, release string) (importrun.Run, error) {
	model := s.Mapper().ToModel(importrun.NewRun(release))
	if err := s.DB(ctx).Create(&model).Error; err != nil {
		return importrun.Run{}, fmt.Errorf("create import log: %w", describe(err))
	}
	return s.Mapper().ToDomain(model), nil
}

// Finish stores the terminal status, counts and error of a run.
func (s RunStore) Finish(ctx context.Context, run importrun.Run) (importrun.Run, error) {
	if !run.Status().IsTerminal() {
		return importrun.Run{}, fmt.Errorf("%w: %s", ErrRunNotTerminal, run.Status())
	}

	model := s.Mapper().ToModel(run)
	result := s.DB(ctx).Model(&ImportLogModel{}).
		Where("id = ?", run.ID()).
		Updates(map[string]any{
			"status":            model.Status,
			"completed_at":      model.CompletedAt,
			"records_processed": model.RecordsProcessed,
			"records_inserted":  model.RecordsInserted,
			"records_updated":   model.RecordsUpdated,
			"error_message":     model.ErrorMessage,
		})
	if result.Error != nil {
		return importrun.Run{}, fmt.Errorf("update import log: %w", describe(result.Error))
	}
	if result.RowsAffected == 0 {
		return importrun.Run{}, fmt.Errorf("%w: import log %d", database.ErrNotFound, run.ID())
	}
	return run, nil
}

var (
	_ importrun.Tracker = RunStore{}
	_ importrun.Store   = RunStore{}
)
