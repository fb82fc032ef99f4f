package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
)

func TestScheduler(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	cfg := SchedulerConfig{
		DispatchInterval:   10 * time.Second,
		StuckSweepInterval: 5 * time.Minute,
		NightlySchedule:    "0 3 * * *",
	}

	t.Run("Poll mode", func(t *testing.T) {
		s := NewScheduler(cfg, ts.Queue, ts.Reaper, nil)
		require.NoError(t, s.Start(context.Background()))
		defer s.Stop()
		assert.Equal(t, 2, s.Entries())
	})

	t.Run("Push mode", func(t *testing.T) {
		d := NewDispatcher(ts.Store, ts.Queue, ts.Worker, "http://127.0.0.1:1", "", 0, ts.clock)
		s := NewScheduler(cfg, ts.Queue, ts.Reaper, d)
		require.NoError(t, s.Start(context.Background()))
		defer s.Stop()
		assert.Equal(t, 3, s.Entries())
	})

	t.Run("Invalid nightly schedule", func(t *testing.T) {
		bad := cfg
		bad.NightlySchedule = "every night"
		s := NewScheduler(bad, ts.Queue, ts.Reaper, nil)
		assert.Error(t, s.Start(context.Background()))
	})
}

func TestSchedulerSweeps(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	active := ts.createGoal(t, models.CategoryVehicle)
	stuck := ts.createJob(t, active.ID, models.JobStatusRunning, 0, time.Hour)

	s := NewScheduler(SchedulerConfig{}, ts.Queue, ts.Reaper, nil)
	s.sweepStuck(ts.ctx)
	s.nightly(ts.ctx)

	assert.Equal(t, models.JobStatusPending, ts.job(t, stuck.ID).Status)
	_, total, err := ts.Queue.List(ts.ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
