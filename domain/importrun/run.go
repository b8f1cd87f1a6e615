// Package importrun models the audit record of one import execution.
package importrun

import (
	"time"
)

// Status is the lifecycle state of an import run.
type Status string

// Status values.
const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal returns true if the status is a final state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusRunning || s.IsTerminal()
}

// Counts holds the per-run record counters.
type Counts struct {
	processed int
	inserted  int
	updated   int
}

// NewCounts creates Counts.
func NewCounts(processed, inserted, updated int) Counts {
	return Counts{processed: processed, inserted: inserted, updated: updated}
}

// Processed returns the number of records written and committed.
func (c Counts) Processed() int { return c.processed }

// Inserted returns the number of records counted as new.
func (c Counts) Inserted() int { return c.inserted }

// Updated returns the number of records counted as overwritten.
func (c Counts) Updated() int { return c.updated }

// Add returns the sum of c and other.
func (c Counts) Add(other Counts) Counts {
	return Counts{
		processed: c.processed + other.processed,
		inserted:  c.inserted + other.inserted,
		updated:   c.updated + other.updated,
	}
}

// Run is one execution of the import pipeline.
type Run struct {
	id           int64
	release      string
	status       Status
	startedAt    time.Time
	completedAt  time.Time
	counts       Counts
	errorMessage string
}

// NewRun creates a running Run for the given source release.
func NewRun(release string) Run {
	return Run{
		release:   release,
		status:    StatusRunning,
		startedAt: time.Now().UTC(),
	}
}

// RestoreRun reconstructs a Run from stored values.
func RestoreRun(
	id int64,
	release string,
	status Status,
	startedAt time.Time,
	completedAt time.Time,
	counts Counts,
	errorMessage string,
) Run {
	return Run{
		id:           id,
		release:      release,
		status:       status,
		startedAt:    startedAt,
		completedAt:  completedAt,
		counts:       counts,
		errorMessage: errorMessage,
	}
}

// ID returns the run identifier (0 until stored).
func (r Run) ID() int64 { return r.id }

// Release returns the source release label.
func (r Run) Release() string { return r.release }

// Status returns the run status.
func (r Run) Status() Status { return r.status }

// StartedAt returns when the run started.
func (r Run) StartedAt() time.Time { return r.startedAt }

// CompletedAt returns when the run finished; zero while running.
func (r Run) CompletedAt() time.Time { return r.completedAt }

// Counts returns the run counters.
func (r Run) Counts() Counts { return r.counts }

// ErrorMessage returns the failure text, empty unless failed.
func (r Run) ErrorMessage() string { return r.errorMessage }

// WithID returns a copy with the given identifier.
func (r Run) WithID(id int64) Run {
	r.id = id
	return r
}

// Complete returns a copy marked completed with the final counts.
func (r Run) Complete(counts Counts) Run {
	r.status = StatusCompleted
	r.completedAt = time.Now().UTC()
	r.counts = counts
	r.errorMessage = ""
	return r
}

// Fail returns a copy marked failed with the counts committed so far.
func (r Run) Fail(counts Counts, err error) Run {
	r.status = StatusFailed
	r.completedAt = time.Now().UTC()
	r.counts = counts
	r.errorMessage = "unknown error"
	if err != nil && err.Error() != "" {
		r.errorMessage = err.Error()
	}
	return r
}

// Duration returns the elapsed time of a finished run, or the time since
// start for a running one.
func (r Run) Duration(now time.Time) time.Duration {
	if r.completedAt.IsZero() {
		return now.Sub(r.startedAt)
	}
	return r.completedAt.Sub(r.startedAt)
}

// IsStale reports whether the run is still running after the given age.
// A stale running run is what a crashed import leaves behind.
func (r Run) IsStale(now time.Time, after time.Duration) bool {
	if r.status != StatusRunning || after <= 0 {
		return false
	}
	return now.Sub(r.startedAt) > after
}
