package services

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/events"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

func TestEnqueue(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	goal := ts.createGoal(t, models.CategoryVehicle)

	t.Run("Creates a pending job", func(t *testing.T) {
		job, created, err := ts.Queue.Enqueue(ts.ctx, goal.ID, models.JobTriggerCreate)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, models.JobStatusPending, job.Status)
		assert.Equal(t, models.JobTriggerCreate, job.Trigger)
		assert.Zero(t, job.Attempts)
	})

	t.Run("Refresh returns the active job", func(t *testing.T) {
		first, _, err := ts.Queue.Enqueue(ts.ctx, goal.ID, models.JobTriggerRefresh)
		require.NoError(t, err)
		second, created, err := ts.Queue.Enqueue(ts.ctx, goal.ID, models.JobTriggerRefresh)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("Nightly always creates", func(t *testing.T) {
		job, created, err := ts.Queue.Enqueue(ts.ctx, goal.ID, models.JobTriggerNightly)
		require.NoError(t, err)
		assert.True(t, created)

		total, err := ts.Store.Jobs.Count(ts.ctx, &models.ListOptions{GoalID: goal.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Equal(t, models.JobTriggerNightly, job.Trigger)
	})

	t.Run("Unknown goal", func(t *testing.T) {
		_, _, err := ts.Queue.Enqueue(ts.ctx, 999999, models.JobTriggerRefresh)
		assert.ErrorIs(t, err, ErrGoalNotFound)
	})
}

func TestEnqueue_ConcurrentRefreshCreatesOneJob(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	goal := ts.createGoal(t, models.CategoryVehicle)

	const callers = 8
	var (
		wg      sync.WaitGroup
		created atomic.Int32
		ids     = make([]uint, callers)
		errs    = make([]error, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			job, isNew, err := ts.Queue.Enqueue(ts.ctx, goal.ID, models.JobTriggerRefresh)
			errs[i] = err
			if err == nil {
				ids[i] = job.ID
			}
			if isNew {
				created.Add(1)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.EqualValues(t, 1, created.Load())

	total, err := ts.Store.Jobs.Count(ts.ctx, &models.ListOptions{GoalID: goal.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestEnqueue_UnsupportedCategory(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	goal := ts.createGoal(t, models.Category("furniture"), func(g *models.Goal) {
		g.SearchTerm = "mid century sofa"
	})

	job, created, err := ts.Queue.Enqueue(ts.ctx, goal.ID, models.JobTriggerCreate)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.NotEmpty(t, job.Error)
	assert.Zero(t, job.Attempts)

	stored := ts.job(t, job.ID)
	assert.Equal(t, models.JobStatusCompleted, stored.Status)
	assert.Zero(t, stored.Attempts)
	assert.Equal(t, models.BadgeNotSupported, ts.goal(t, goal.ID).StatusBadge)

	badges := ts.Events.ofType(events.EventBadgeChanged)
	require.Len(t, badges, 1)
	assert.Equal(t, models.BadgeNotSupported, badges[0].Badge)

	// nothing is left for workers to pick up
	payload, err := ts.Worker.Poll(ts.ctx, "worker-1")
	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Empty(t, ts.Extractor.calls)
}

func TestEnqueueNightly(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	active := ts.createGoal(t, models.CategoryVehicle)
	ts.createGoal(t, models.CategoryVehicle, func(g *models.Goal) { g.Status = models.GoalStatusArchived })
	ts.createGoal(t, models.Category("furniture"))
	upper := ts.createGoal(t, models.Category("Vehicle"))

	// an active job does not prevent the nightly one
	_, _, err := ts.Queue.Enqueue(ts.ctx, active.ID, models.JobTriggerCreate)
	require.NoError(t, err)

	created, err := ts.Queue.EnqueueNightly(ts.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	nightly := models.JobStatusPending
	jobs, total, err := ts.Queue.List(ts.ctx, &models.ListOptions{Status: &nightly})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	goals := map[uint]int{}
	for _, j := range jobs {
		goals[j.GoalID]++
	}
	assert.Equal(t, 2, goals[active.ID])
	assert.Equal(t, 1, goals[upper.ID])
}

func TestEnqueue_WarmsFilters(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	cached := &vehicle.FilterBundle{
		Query: "sierra",
		Retailers: map[string]*vehicle.RetailerFilter{
			"carmax": {URL: "https://www.carmax.com/cars/gmc/sierra-3500", Filters: map[string]interface{}{"make": "GMC"}},
		},
	}
	ts.Extractor.bundle, ts.Extractor.err = cached, nil

	goal := ts.createGoal(t, models.CategoryVehicle)
	_, _, err := ts.Queue.Enqueue(ts.ctx, goal.ID, models.JobTriggerCreate)
	require.NoError(t, err)
	ts.Filters.Wait()

	stored := ts.goal(t, goal.ID)
	require.NotNil(t, stored.RetailerFilters)
	assert.Equal(t, cached.Retailers["carmax"].URL, stored.RetailerFilters.Get(vehicle.RetailerCarmax).URL)
	assert.Equal(t, []string{goal.SearchTerm}, ts.Extractor.calls)
}

func TestEnqueue_ExtractorFailureKeepsCache(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	goal := ts.createGoal(t, models.CategoryVehicle)
	previous := &vehicle.FilterBundle{
		Query:     goal.SearchTerm,
		Retailers: map[string]*vehicle.RetailerFilter{"truecar": {URL: "https://www.truecar.com/used-cars-for-sale/listings/"}},
	}
	require.NoError(t, ts.Store.Goals.SetRetailerFilters(ts.ctx, goal.ID, goal.SearchTerm, previous))

	job, _, err := ts.Queue.Enqueue(ts.ctx, goal.ID, models.JobTriggerRefresh)
	require.NoError(t, err)
	ts.Filters.Wait()

	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Equal(t, previous, ts.goal(t, goal.ID).RetailerFilters)
}

func TestFailAttempt(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	goal := ts.createGoal(t, models.CategoryVehicle)
	job := ts.createJob(t, goal.ID, models.JobStatusRunning, 1, 0)

	require.NoError(t, ts.Queue.FailAttempt(ts.ctx, job, "timeout"))
	stored := ts.job(t, job.ID)
	assert.Equal(t, models.JobStatusFailed, stored.Status)
	assert.Equal(t, 2, stored.Attempts)
	assert.True(t, stored.IsRetryable())
	assert.Equal(t, models.BadgePendingSearch, ts.goal(t, goal.ID).StatusBadge)

	last := ts.createJob(t, goal.ID, models.JobStatusRunning, 2, 0)
	require.NoError(t, ts.Queue.FailAttempt(ts.ctx, last, "timeout again"))
	stored = ts.job(t, last.ID)
	assert.Equal(t, models.MaxAttempts, stored.Attempts)
	assert.True(t, stored.IsTerminal())
	assert.Equal(t, models.BadgeNotFound, ts.goal(t, goal.ID).StatusBadge)
	assert.Len(t, ts.Events.ofType(events.EventJobFailed), 2)
}
