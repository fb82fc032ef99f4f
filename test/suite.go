package test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/compiler"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/repos"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/events"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/notify"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/services"
	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/api/v1/client"
)

// DefaultTestTimeout is the default timeout for test suites.
const DefaultTestTimeout = 30 * time.Second

// TestWorkerToken is the worker token the test server expects
const TestWorkerToken = "test-worker-token"

// Clock is a manually advanced clock shared by every service of a suite
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock stopped at start
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Suite encapsulates all components needed for integration testing.
// It provides a complete test setup with:
//   - File-backed SQLite database
//   - Real services sharing a manual clock
//   - Real API server and client
//   - An event bus whose badge changes are recorded
type Suite struct {
	t *testing.T

	// Server components
	App    *fiber.App
	Server *httptest.Server

	// Client components
	APIClient client.Client

	// Database components
	DB    *gorm.DB
	Store *repos.Store

	// Services
	Filters *services.Filters
	Queue   *services.Queue
	Worker  *services.Worker
	Goals   *services.Goal
	Reaper  *services.Reaper

	// Events
	Bus    *events.Bus
	Badges *BadgeRecorder

	Clock *Clock

	ctx        context.Context
	cancelFunc context.CancelFunc

	cleanup     func()
	cleanupOnce sync.Once
}

// SetS sets the suite instance for this suite
func (s *Suite) SetS(_ suite.TestingSuite) {}

// SetT sets the testing.T instance for this suite
func (s *Suite) SetT(t *testing.T) {
	s.t = t
}

// T returns the testing.T instance for this suite
func (s *Suite) T() *testing.T {
	return s.t
}

// NewSuite creates a new test suite.
// The suite must be cleaned up after use by calling Cleanup.
func NewSuite(t *testing.T) *Suite {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTestTimeout)
	s := &Suite{
		t:          t,
		ctx:        ctx,
		cancelFunc: cancel,
		Clock:      NewClock(time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)),
	}
	s.cleanup = func() {
		if s.cancelFunc != nil {
			s.cancelFunc()
		}
		if s.Bus != nil {
			s.Bus.Wait()
		}
	}

	SetupTestDB(s, nil)
	SetupServices(s)
	SetupServer(s)

	return s
}

// SetupServices builds the service graph on top of the suite store
func SetupServices(s *Suite) {
	s.Bus = events.NewBus()
	s.Badges = &BadgeRecorder{}
	notify.Register(s.Bus, s.Badges)
	s.Bus.Start(s.ctx)

	now := s.Clock.Now
	s.Filters = services.NewFiltersService(s.Store.Goals, compiler.New(compiler.WithClock(now)), nil, 0)
	s.Queue = services.NewQueueService(s.Store, s.Filters, s.Bus, now)
	s.Worker = services.NewWorkerService(s.Store, s.Queue, s.Filters, s.Bus, now)
	s.Goals = services.NewGoalService(s.Store, s.Queue, s.Bus, now)
	s.Reaper = services.NewReaper(s.Store, s.Bus, services.DefaultStuckThreshold, now)
}

// Cleanup tears down the test suite, releasing all resources.
// It is safe to call more than once.
func (s *Suite) Cleanup() {
	s.cleanupOnce.Do(func() {
		if s.cleanup != nil {
			s.cleanup()
		}
	})
}

// Context returns the suite's context, which is automatically
// canceled when the suite is cleaned up.
func (s *Suite) Context() context.Context {
	return s.ctx
}

// Require returns a require.Assertions instance for this suite.
func (s *Suite) Require() *require.Assertions {
	return require.New(s.t)
}

// Retry retries a function until it succeeds or the number of retries is reached.
func (s *Suite) Retry(fn func() error, retries int, interval time.Duration) (err error) {
	for i := 0; i < retries; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		time.Sleep(interval)
	}
	return
}

// BadgeRecorder is a notifier that keeps every badge change it receives
type BadgeRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

// Notify implements notify.Notifier
func (r *BadgeRecorder) Notify(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// For returns the badge changes recorded for a goal in arrival order
func (r *BadgeRecorder) For(goalID uint) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.GoalID == goalID {
			out = append(out, e)
		}
	}
	return out
}
