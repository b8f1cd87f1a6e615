package importrun

import (
	"context"

	"github.com/groupnom/overture-import/domain/store"
)

// WithStatus filters runs by status.
func WithStatus(s Status) store.Option {
	return store.WithCondition("status", string(s))
}

// WithRelease filters runs by source release.
func WithRelease(release string) store.Option {
	return store.WithCondition("overture_release", release)
}

// NewestFirst orders runs by start time, most recent first.
func NewestFirst() store.Option {
	return store.WithOrderDesc("started_at")
}

// Tracker records the start and end of a run. Both calls commit on their
// own, independent of any batch transaction.
type Tracker interface {
	Start(ctx context.Context, release string) (Run, error)
	Finish(ctx context.Context, run Run) (Run, error)
}

// Store reads stored runs.
type Store interface {
	Find(ctx context.Context, options ...store.Option) ([]Run, error)
	FindOne(ctx context.Context, options ...store.Option) (Run, error)
	Count(ctx context.Context, options ...store.Option) (int64, error)
}
