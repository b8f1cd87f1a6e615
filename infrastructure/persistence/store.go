package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/groupnom/overture-import/domain/importrun"
	"github.com/groupnom/overture-import/domain/place"
	"github.com/groupnom/overture-import/internal/database"
)

const connMaxLifetime = time.Hour

// Store bundles the restaurant and run stores over one connection.
type Store struct {
	db          database.Database
	restaurants RestaurantStore
	runs        RunStore
}

// NewStore creates a Store on an open database.
func NewStore(db database.Database, pageSize int) *Store {
	return &Store{
		db:          db,
		restaurants: NewRestaurantStore(db, pageSize),
		runs:        NewRunStore(db),
	}
}

// Open connects to the destination at url and verifies the schema.
func Open(ctx context.Context, url string, maxOpenConns, pageSize int) (*Store, error) {
	db, err := database.NewDatabase(ctx, url)
	if err != nil {
		return nil, err
	}
	if maxOpenConns > 0 {
		if err := db.ConfigurePool(maxOpenConns, maxOpenConns, connMaxLifetime); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("configure pool: %w", err)
		}
	}
	if err := ValidateSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewStore(db, pageSize), nil
}

// Database returns the underlying database.
func (s *Store) Database() database.Database { return s.db }

// Restaurants returns the restaurant store.
func (s *Store) Restaurants() RestaurantStore { return s.restaurants }

// Runs returns the run store.
func (s *Store) Runs() RunStore { return s.runs }

// Begin opens a restaurant write batch.
func (s *Store) Begin(ctx context.Context) (place.Batch, error) {
	return s.restaurants.Begin(ctx)
}

// Start records a new run.
func (s *Store) Start(ctx context.Context, release string) (importrun.Run, error) {
	return s.runs.Start(ctx, release)
}

// Finish records the end of a run.
func (s *Store) Finish(ctx context.Context, run importrun.Run) (importrun.Run, error) {
	return s.runs.Finish(ctx, run)
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.db.Close()
}
