package persistence

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm/clause"

	"github.com/groupnom/overture-import/domain/place"
	"github.com/groupnom/overture-import/internal/database"
)

// DefaultPageSize is the number of rows per INSERT statement.
const DefaultPageSize = 1000

// upsertColumns are overwritten when a gers_id already exists. created_at is
// left alone so the first insert time survives re-imports.
var upsertColumns = []string{
	"name",
	"address",
	"city",
	"state",
	"postal_code",
	"country",
	"lat",
	"lng",
	"h3_index_res8",
	"h3_index_res9",
	"categories",
	"primary_category",
	"overture_update_date",
	"updated_at",
}

// RestaurantStore implements place.Writer and place.Reader using GORM.
type RestaurantStore struct {
	database.Repository[place.Restaurant, RestaurantModel]
	pageSize int
}

// NewRestaurantStore creates a new RestaurantStore. A non-positive page size
// falls back to DefaultPageSize.
func NewRestaurantStore(db database.Database, pageSize int) RestaurantStore {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return RestaurantStore{
		Repository: database.NewRepository[place.Restaurant, RestaurantModel](db, RestaurantMapper{}, "restaurant"),
		pageSize:   pageSize,
	}
}

// Begin opens a write batch in a new transaction.
func (s RestaurantStore) Begin(ctx context.Context) (place.Batch, error) {
	tx, err := s.Database().Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &restaurantBatch{store: s, tx: tx}, nil
}

// CountByState returns restaurant counts per state, largest first.
func (s RestaurantStore) CountByState(ctx context.Context, limit int) ([]place.StateCount, error) {
	var rows []struct {
		State string
		Total int64
	}
	db := s.DB(ctx).Model(&RestaurantModel{}).
		Select("state, COUNT(*) AS total").
		Where("state IS NOT NULL").
		Group("state").
		Order("total DESC, state ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count restaurants by state: %w", err)
	}

	counts := make([]place.StateCount, len(rows))
	for i, r := range rows {
		counts[i] = place.StateCount{State: r.State, Count: r.Total}
	}
	return counts, nil
}

// restaurantBatch is one open transaction on the restaurants table.
type restaurantBatch struct {
	store RestaurantStore
	tx    *database.Transaction
}

// CountExisting queries the distinct ids one page at a time, keeping each IN
// list under the bind parameter limit of the driver.
func (b *restaurantBatch) CountExisting(ctx context.Context, gersIDs []string) (int64, error) {
	ids := slices.Clone(gersIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	var total int64
	for page := range slices.Chunk(ids, b.store.pageSize) {
		n, err := b.store.CountIn(b.tx.Session().WithContext(ctx), place.WithGersIDs(page))
		if err != nil {
			return 0, describe(err)
		}
		total += n
	}
	return total, nil
}

func (b *restaurantBatch) Upsert(ctx context.Context, restaurants []place.Restaurant) (int, error) {
	restaurants = lastByGersID(restaurants)
	if len(restaurants) == 0 {
		return 0, nil
	}

	models := make([]RestaurantModel, len(restaurants))
	for i, r := range restaurants {
		models[i] = b.store.Mapper().ToModel(r)
	}

	result := b.tx.Session().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "gers_id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		CreateInBatches(&models, b.store.pageSize)
	if result.Error != nil {
		return 0, fmt.Errorf("upsert restaurants: %w", describe(result.Error))
	}
	return len(models), nil
}

func (b *restaurantBatch) Commit() error {
	if err := b.tx.Commit(); err != nil {
		return describe(err)
	}
	return nil
}

func (b *restaurantBatch) Rollback() error {
	return b.tx.Rollback()
}

// lastByGersID drops earlier duplicates of the same gers_id so a single
// statement never touches one row twice.
func lastByGersID(restaurants []place.Restaurant) []place.Restaurant {
	last := make(map[string]int, len(restaurants))
	for i, r := range restaurants {
		last[r.GersID()] = i
	}
	if len(last) == len(restaurants) {
		return restaurants
	}
	unique := make([]place.Restaurant, 0, len(last))
	for i, r := range restaurants {
		if last[r.GersID()] == i {
			unique = append(unique, r)
		}
	}
	return unique
}

// describe appends the PostgreSQL error code and detail when present.
func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%w (sqlstate %s: %s)", err, pgErr.Code, pgErr.Detail)
	}
	return err
}

var (
	_ place.Writer = RestaurantStore{}
	_ place.Reader = RestaurantStore{}
	_ place.Batch  = (*restaurantBatch)(nil)
)
