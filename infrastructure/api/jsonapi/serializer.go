package jsonapi

import (
	"strconv"
	"time"

	"github.com/groupnom/overture-import/domain/importrun"
	"github.com/groupnom/overture-import/domain/place"
)

// Resource types.
const (
	TypeImportRun  = "import_run"
	TypeStateCount = "state_count"
)

// RunAttributes represents an import run in JSON:API format.
type RunAttributes struct {
	Release          string   `json:"overture_release"`
	Status           string   `json:"status"`
	StartedAt        DateTime `json:"started_at"`
	CompletedAt      DateTime `json:"completed_at"`
	DurationSeconds  float64  `json:"duration_seconds"`
	RecordsProcessed int      `json:"records_processed"`
	RecordsInserted  int      `json:"records_inserted"`
	RecordsUpdated   int      `json:"records_updated"`
	ErrorMessage     string   `json:"error_message,omitempty"`
	Stale            bool     `json:"stale"`
}

// StateCountAttributes represents restaurants stored for one state.
type StateCountAttributes struct {
	State string `json:"state"`
	Count int64  `json:"count"`
}

// Serializer converts domain values to resources. Runs still running after
// staleAfter are flagged stale.
type Serializer struct {
	staleAfter time.Duration
	now        func() time.Time
}

// NewSerializer creates a new Serializer.
func NewSerializer(staleAfter time.Duration) *Serializer {
	return &Serializer{staleAfter: staleAfter, now: time.Now}
}

// RunResource converts a run to a resource.
func (s *Serializer) RunResource(run importrun.Run) *Resource {
	now := s.now()
	counts := run.Counts()
	return NewResource(TypeImportRun, strconv.FormatInt(run.ID(), 10), RunAttributes{
		Release:          run.Release(),
		Status:           string(run.Status()),
		StartedAt:        DateTime(run.StartedAt()),
		CompletedAt:      DateTime(run.CompletedAt()),
		DurationSeconds:  run.Duration(now).Seconds(),
		RecordsProcessed: counts.Processed(),
		RecordsInserted:  counts.Inserted(),
		RecordsUpdated:   counts.Updated(),
		ErrorMessage:     run.ErrorMessage(),
		Stale:            run.IsStale(now, s.staleAfter),
	})
}

// RunResources converts runs to resources.
func (s *Serializer) RunResources(runs []importrun.Run) []*Resource {
	resources := make([]*Resource, len(runs))
	for i, run := range runs {
		resources[i] = s.RunResource(run)
	}
	return resources
}

// StateCountResources converts per-state counts to resources keyed by state.
func (s *Serializer) StateCountResources(counts []place.StateCount) []*Resource {
	resources := make([]*Resource, len(counts))
	for i, c := range counts {
		resources[i] = NewResource(TypeStateCount, c.State, StateCountAttributes{State: c.State, Count: c.Count})
	}
	return resources
}
