package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      JobStatus
		wantError bool
	}{
		{name: "Pending status", input: "pending", want: JobStatusPending},
		{name: "Running status", input: "running", want: JobStatusRunning},
		{name: "Completed status", input: "completed", want: JobStatusCompleted},
		{name: "Failed status", input: "failed", want: JobStatusFailed},
		{name: "Invalid status", input: "queued", wantError: true},
		{name: "Empty status", input: "", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJobStatus(tt.input)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())

			var decoded JobStatus
			require.NoError(t, json.Unmarshal([]byte(`"`+tt.input+`"`), &decoded))
			assert.Equal(t, tt.want, decoded)
		})
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]JobStatus{
		{JobStatusPending, JobStatusRunning},
		{JobStatusPending, JobStatusCompleted},
		{JobStatusRunning, JobStatusCompleted},
		{JobStatusRunning, JobStatusFailed},
		{JobStatusRunning, JobStatusPending},
		{JobStatusFailed, JobStatusRunning},
	}
	for _, pair := range allowed {
		assert.True(t, CanTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}

	denied := [][2]JobStatus{
		{JobStatusPending, JobStatusFailed},
		{JobStatusCompleted, JobStatusRunning},
		{JobStatusCompleted, JobStatusPending},
		{JobStatusFailed, JobStatusCompleted},
		{JobStatusRunning, JobStatusRunning},
	}
	for _, pair := range denied {
		assert.False(t, CanTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}
}

func TestScrapeJobPredicates(t *testing.T) {
	tests := []struct {
		name      string
		job       ScrapeJob
		retryable bool
		terminal  bool
		active    bool
	}{
		{"pending", ScrapeJob{Status: JobStatusPending}, false, false, true},
		{"running", ScrapeJob{Status: JobStatusRunning, Attempts: 2}, false, false, true},
		{"completed", ScrapeJob{Status: JobStatusCompleted}, false, true, false},
		{"failed once", ScrapeJob{Status: JobStatusFailed, Attempts: 1}, true, false, true},
		{"failed at cap", ScrapeJob{Status: JobStatusFailed, Attempts: MaxAttempts}, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.job.IsRetryable())
			assert.Equal(t, tt.terminal, tt.job.IsTerminal())
			assert.Equal(t, tt.active, tt.job.IsActive())
		})
	}
}

func TestScrapeJobBeforeCreate(t *testing.T) {
	job := &ScrapeJob{GoalID: 7}
	require.NoError(t, job.BeforeCreate(nil))
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, JobTriggerRefresh, job.Trigger)

	assert.Error(t, (&ScrapeJob{}).BeforeCreate(nil))
	assert.Error(t, (&ScrapeJob{GoalID: 1, Attempts: MaxAttempts + 1}).BeforeCreate(nil))
	assert.Error(t, (&ScrapeJob{GoalID: 1, Status: "bogus"}).BeforeCreate(nil))
}

func TestParseJobTrigger(t *testing.T) {
	for _, s := range []string{"create", "refresh", "nightly"} {
		got, err := ParseJobTrigger(s)
		require.NoError(t, err)
		assert.Equal(t, JobTrigger(s), got)
	}
	_, err := ParseJobTrigger("hourly")
	assert.Error(t, err)
}
