package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/compiler"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/repos"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/events"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/types"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

// recorder is an events.Publisher that keeps every event
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) ofType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// stubExtractor returns a fixed bundle or error
type stubExtractor struct {
	mu     sync.Mutex
	bundle *vehicle.FilterBundle
	err    error
	calls  []string
}

func (s *stubExtractor) Extract(_ context.Context, query string) (*vehicle.FilterBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, query)
	return s.bundle, s.err
}

// TestSetup wires real services over an in-memory database
type TestSetup struct {
	DB         *gorm.DB
	Store      *repos.Store
	Events     *recorder
	Extractor  *stubExtractor
	Filters    *Filters
	Queue      *Queue
	Worker     *Worker
	Goals      *Goal
	Reaper     *Reaper
	Now        time.Time
	ctx        context.Context
	clockMu    sync.Mutex
	nextGoalID uint
}

// NewTestSetup creates a new test setup with in-memory database
func NewTestSetup(t *testing.T) *TestSetup {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to create in-memory database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Goal{}, &models.ScrapeJob{}), "Failed to run migrations")

	ts := &TestSetup{
		DB:         db,
		Store:      repos.NewStore(db),
		Events:     &recorder{},
		Extractor:  &stubExtractor{err: fmt.Errorf("extractor offline")},
		Now:        time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC),
		ctx:        context.Background(),
		nextGoalID: 100,
	}
	c := compiler.New(compiler.WithClock(ts.clock))
	ts.Filters = NewFiltersService(ts.Store.Goals, c, ts.Extractor, time.Second)
	ts.Queue = NewQueueService(ts.Store, ts.Filters, ts.Events, ts.clock)
	ts.Worker = NewWorkerService(ts.Store, ts.Queue, ts.Filters, ts.Events, ts.clock)
	ts.Goals = NewGoalService(ts.Store, ts.Queue, ts.Events, ts.clock)
	ts.Reaper = NewReaper(ts.Store, ts.Events, 10*time.Minute, ts.clock)
	return ts
}

// CleanUp waits for background work and closes the database
func (ts *TestSetup) CleanUp() {
	ts.Filters.Wait()
	if sqlDB, err := ts.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (ts *TestSetup) clock() time.Time {
	ts.clockMu.Lock()
	defer ts.clockMu.Unlock()
	return ts.Now
}

func (ts *TestSetup) advance(d time.Duration) {
	ts.clockMu.Lock()
	defer ts.clockMu.Unlock()
	ts.Now = ts.Now.Add(d)
}

func (ts *TestSetup) createGoal(t *testing.T, category models.Category, mutate ...func(*models.Goal)) *models.Goal {
	t.Helper()
	ts.nextGoalID++
	goal := &models.Goal{
		ID:         ts.nextGoalID,
		Title:      "Work truck",
		Category:   category,
		SearchTerm: "2023 GMC Sierra 3500HD Denali dually",
	}
	for _, m := range mutate {
		m(goal)
	}
	_, err := ts.Store.Goals.Upsert(ts.ctx, goal)
	require.NoError(t, err)

	stored, err := ts.Store.Goals.Get(ts.ctx, goal.ID)
	require.NoError(t, err)
	return stored
}

func (ts *TestSetup) createJob(t *testing.T, goalID uint, status models.JobStatus, attempts int, age time.Duration) *models.ScrapeJob {
	t.Helper()
	at := ts.clock().Add(-age)
	job := &models.ScrapeJob{
		GoalID:    goalID,
		Status:    status,
		Attempts:  attempts,
		Trigger:   models.JobTriggerRefresh,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if status == models.JobStatusRunning {
		job.ClaimedBy = "worker-1"
	}
	require.NoError(t, ts.Store.Jobs.Create(ts.ctx, job))
	return job
}

func (ts *TestSetup) goal(t *testing.T, id uint) *models.Goal {
	t.Helper()
	goal, err := ts.Store.Goals.Get(ts.ctx, id)
	require.NoError(t, err)
	return goal
}

func (ts *TestSetup) job(t *testing.T, id uint) *models.ScrapeJob {
	t.Helper()
	job, err := ts.Store.Jobs.Get(ts.ctx, id)
	require.NoError(t, err)
	return job
}

func candidate(url string) models.Candidate {
	return models.Candidate{ID: url, Name: url, URL: url, Retailer: "carmax", Features: []string{}}
}

func listing(url string, price float64) models.Listing {
	return models.Listing{Name: "2023 GMC Sierra " + url, URL: url, Price: models.Number(price)}
}

// callbackFor is a successful callback with one fresh listing
func callbackFor(jobID uint) types.CallbackRequest {
	return types.CallbackRequest{
		JobID:   jobID,
		Scraper: "carmax",
		Status:  types.CallbackSuccess,
		Data:    []models.Listing{listing("https://www.carmax.com/car/1", 45990)},
	}
}
