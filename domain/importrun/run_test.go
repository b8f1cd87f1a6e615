package importrun

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRun(t *testing.T) {
	run := NewRun("2024-11-13.0")

	assert.Equal(t, int64(0), run.ID())
	assert.Equal(t, "2024-11-13.0", run.Release())
	assert.Equal(t, StatusRunning, run.Status())
	assert.False(t, run.StartedAt().IsZero())
	assert.True(t, run.CompletedAt().IsZero())
	assert.Empty(t, run.ErrorMessage())
}

func TestRun_Complete(t *testing.T) {
	run := NewRun("r1").WithID(7)
	done := run.Complete(NewCounts(10, 8, 2))

	assert.Equal(t, StatusCompleted, done.Status())
	assert.Equal(t, int64(7), done.ID())
	assert.Equal(t, 10, done.Counts().Processed())
	assert.Equal(t, 8, done.Counts().Inserted())
	assert.Equal(t, 2, done.Counts().Updated())
	assert.False(t, done.CompletedAt().IsZero())

	// original is untouched
	assert.Equal(t, StatusRunning, run.Status())
}

func TestRun_Fail(t *testing.T) {
	run := NewRun("r1").Fail(NewCounts(3, 3, 0), errors.New("write batch 2: boom"))

	assert.Equal(t, StatusFailed, run.Status())
	assert.Equal(t, "write batch 2: boom", run.ErrorMessage())
	assert.Equal(t, 3, run.Counts().Processed())
}

func TestRun_FailWithoutError(t *testing.T) {
	run := NewRun("r1").Fail(Counts{}, nil)
	assert.NotEmpty(t, run.ErrorMessage())
}

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
		valid    bool
	}{
		{StatusRunning, false, true},
		{StatusCompleted, true, true},
		{StatusFailed, true, true},
		{Status("paused"), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			assert.Equal(t, tt.valid, tt.status.Valid())
		})
	}
}

func TestCounts_Add(t *testing.T) {
	sum := NewCounts(3, 2, 1).Add(NewCounts(1, 1, 0))
	assert.Equal(t, NewCounts(4, 3, 1), sum)
}

func TestRun_IsStale(t *testing.T) {
	started := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	running := RestoreRun(1, "r", StatusRunning, started, time.Time{}, Counts{}, "")
	completed := RestoreRun(2, "r", StatusCompleted, started, started.Add(time.Hour), Counts{}, "")
	now := started.Add(7 * time.Hour)

	assert.True(t, running.IsStale(now, 6*time.Hour))
	assert.False(t, running.IsStale(now, 8*time.Hour))
	assert.False(t, running.IsStale(now, 0))
	assert.False(t, completed.IsStale(now, time.Hour))
	assert.Equal(t, time.Hour, completed.Duration(now))
	assert.Equal(t, 7*time.Hour, running.Duration(now))
}
