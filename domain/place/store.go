package place

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/groupnom/overture-import/domain/region"
	"github.com/groupnom/overture-import/domain/store"
)

// Selection errors.
var (
	ErrInvalidRelease = errors.New("invalid release label")
	ErrInvalidCountry = errors.New("invalid country code")
)

var (
	releasePattern = regexp.MustCompile(`^[0-9A-Za-z._-]+$`)
	countryPattern = regexp.MustCompile(`^[A-Z]{2}$`)
)

// Selection identifies the slice of the source dataset to import.
type Selection struct {
	release string
	country string
	regions []string
}

// NewSelection creates a Selection. An empty regions list means nationwide.
func NewSelection(release, country string, regions []string) Selection {
	r := make([]string, len(regions))
	copy(r, regions)
	return Selection{release: release, country: country, regions: r}
}

// Release returns the source release label.
func (s Selection) Release() string { return s.release }

// Country returns the country code filter.
func (s Selection) Country() string { return s.country }

// Regions returns the region filter; empty means nationwide.
func (s Selection) Regions() []string {
	r := make([]string, len(s.regions))
	copy(r, s.regions)
	return r
}

// Nationwide reports whether no region filter applies.
func (s Selection) Nationwide() bool { return len(s.regions) == 0 }

// Validate checks the release label, country and region codes.
func (s Selection) Validate() error {
	if !releasePattern.MatchString(s.release) {
		return fmt.Errorf("%w: %q", ErrInvalidRelease, s.release)
	}
	if !countryPattern.MatchString(s.country) {
		return fmt.Errorf("%w: %q", ErrInvalidCountry, s.country)
	}
	if _, err := region.ValidateFor(s.country, s.regions); err != nil {
		return err
	}
	return nil
}

// Source reads places from the source dataset.
type Source interface {
	Open(ctx context.Context, selection Selection, chunkSize int) (Cursor, error)
	Close() error
}

// Cursor yields raw places in chunks. An empty chunk with a nil error means
// the result is exhausted. A cursor cannot be restarted.
type Cursor interface {
	Next(ctx context.Context) ([]Raw, error)
	Close() error
}

// Batch is one open write transaction on the restaurant store.
type Batch interface {
	// CountExisting returns how many of the given ids are already stored.
	CountExisting(ctx context.Context, gersIDs []string) (int64, error)
	// Upsert writes restaurants keyed by gers id without committing.
	Upsert(ctx context.Context, restaurants []Restaurant) (int, error)
	Commit() error
	// Rollback discards the batch. It is a no-op after Commit.
	Rollback() error
}

// Writer opens write batches.
type Writer interface {
	Begin(ctx context.Context) (Batch, error)
}

// StateCount is the number of stored restaurants in one state.
type StateCount struct {
	State string
	Count int64
}

// Reader queries stored restaurants.
type Reader interface {
	Find(ctx context.Context, options ...store.Option) ([]Restaurant, error)
	Count(ctx context.Context, options ...store.Option) (int64, error)
	CountByState(ctx context.Context, limit int) ([]StateCount, error)
}

// WithGersID filters by external identifier.
func WithGersID(id string) store.Option {
	return store.WithCondition("gers_id", id)
}

// WithGersIDs filters by a set of external identifiers.
func WithGersIDs(ids []string) store.Option {
	return store.WithConditionIn("gers_id", ids)
}

// WithState filters by state code.
func WithState(state string) store.Option {
	return store.WithCondition("state", state)
}
