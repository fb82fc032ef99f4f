// Package routes defines the API routes and URL structure
package routes

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/api/v1/handlers"
)

/*

To keep this file organized, routes should be organized in the following way:

1. Smallest scope first (i.e. scraper routes before goal routes)
2. For similar scopes, put the endpoints in alphabetical order
3. Order routes in GET, POST, PUT, DELETE order.
	a. Within this ordering, param urls (ie /:id) should go last, otherwise fiber will interpret the route slug as that param.
	b. After param considerations, order alphabetically.
4. For clarity, naming should match the action (i.e. GetJob, CreateJob)

*/

// API base configuration
const (
	// DefaultPort is the default port for the API
	DefaultPort = "8080"
	// APIv1Prefix is the prefix for all API endpoints
	APIv1Prefix = "/api/v1"
	// ScrapersPrefix is the prefix of the worker protocol
	ScrapersPrefix = "/scrapers"
)

// DefaultBaseURL is the default base URL for the API
var DefaultBaseURL = fmt.Sprintf("http://localhost:%s", DefaultPort)

// Route names for lookup
const (
	// Health check
	HealthCheck = "HealthCheck"

	// Worker protocol routes
	ScraperPoll     = "ScraperPoll"
	ScraperCallback = "ScraperCallback"

	// Filter routes
	CompileFilters = "CompileFilters"

	// Goal routes
	GetGoal         = "GetGoal"
	CandidateAction = "CandidateAction"
	RefreshGoal     = "RefreshGoal"
	SyncGoal        = "SyncGoal"

	// Job routes
	GetJobs   = "GetJobs"
	GetJob    = "GetJob"
	CreateJob = "CreateJob"
)

// routeCache stores extracted routes for use prior to compilation
var (
	routeCache     map[string]string
	routeCacheMu   sync.RWMutex
	routeCacheInit sync.Once
)

// Handlers groups the handlers RegisterRoutes wires
type Handlers struct {
	Scraper *handlers.ScraperHandler
	Goal    *handlers.GoalHandler
	Job     *handlers.JobHandler
	Filter  *handlers.FilterHandler
}

// NewHandlers builds every handler group over one APIHandler
func NewHandlers(api *handlers.APIHandler) Handlers {
	return Handlers{
		Scraper: handlers.NewScraperHandler(api),
		Goal:    handlers.NewGoalHandler(api),
		Job:     handlers.NewJobHandler(api),
		Filter:  handlers.NewFilterHandler(api),
	}
}

// RegisterRoutes configures all the v1 routes. workerToken guards the
// worker protocol; empty leaves it open.
//
// NOTE: route ordering is important because routes will try and match in the order they are registered.
func RegisterRoutes(app *fiber.App, h Handlers, workerToken string) {
	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	}).Name(HealthCheck)

	// Worker protocol
	scrapers := app.Group(ScrapersPrefix, handlers.WorkerAuth(workerToken))
	scrapers.Post("/callback", h.Scraper.Callback).Name(ScraperCallback)
	scrapers.Post("/poll", h.Scraper.Poll).Name(ScraperPoll)

	v1 := app.Group(APIv1Prefix)

	// ---------------------------
	// Filter endpoints
	filters := v1.Group("/filters")
	filters.Post("/compile", h.Filter.Compile).Name(CompileFilters)

	// ---------------------------
	// Goal endpoints
	goals := v1.Group("/goals")
	goals.Get("/:id", h.Goal.GetGoal).Name(GetGoal)
	goals.Post("/:id/candidates/:action", h.Goal.CandidateAction).Name(CandidateAction)
	goals.Post("/:id/refresh", h.Goal.RefreshGoal).Name(RefreshGoal)
	goals.Put("/:id", h.Goal.SyncGoal).Name(SyncGoal)

	// ---------------------------
	// Job endpoints
	jobs := v1.Group("/jobs")
	jobs.Get("/", h.Job.ListJobs).Name(GetJobs)
	jobs.Get("/:id", h.Job.GetJob).Name(GetJob)
	jobs.Post("/", h.Job.CreateJob).Name(CreateJob)
}

// initRouteCache initializes the route cache by creating a mock app and extracting routes
func initRouteCache() {
	routeCacheInit.Do(func() {
		routeCacheMu.Lock()
		defer routeCacheMu.Unlock()
		routeCache = make(map[string]string)

		app := fiber.New()
		RegisterRoutes(app, NewHandlers(&handlers.APIHandler{}), "")

		for _, route := range app.GetRoutes() {
			if route.Name != "" {
				routeCache[route.Name] = route.Path
			}
		}
	})
}

// GetRoute returns the route pattern for the given route name
func GetRoute(name string) string {
	initRouteCache()

	routeCacheMu.RLock()
	defer routeCacheMu.RUnlock()
	return routeCache[name]
}

// BuildURL builds a URL for the given route name and parameters
func BuildURL(routeName string, params map[string]string, queryParams url.Values) string {
	route := GetRoute(routeName)
	if route == "" {
		return ""
	}

	for param, value := range params {
		route = strings.ReplaceAll(route, ":"+param, value)
	}

	// Remove trailing slash if it's a base endpoint with no parameters
	if strings.HasSuffix(route, "/") && !strings.Contains(route, ":") {
		route = strings.TrimSuffix(route, "/")
	}

	if len(queryParams) > 0 {
		route = fmt.Sprintf("%s?%s", route, queryParams.Encode())
	}

	return route
}

// HealthCheckURL returns the URL for the health check endpoint
func HealthCheckURL() string {
	return BuildURL(HealthCheck, nil, nil)
}

// Worker protocol route helpers

// ScraperPollURL returns the URL workers poll for jobs
func ScraperPollURL() string {
	return BuildURL(ScraperPoll, nil, nil)
}

// ScraperCallbackURL returns the URL workers report results to
func ScraperCallbackURL() string {
	return BuildURL(ScraperCallback, nil, nil)
}

// CompileFiltersURL returns the URL of the filter compiler
func CompileFiltersURL() string {
	return BuildURL(CompileFilters, nil, nil)
}

// Goal route helpers

// GetGoalURL returns the URL for getting a goal by ID
func GetGoalURL(id string) string {
	return BuildURL(GetGoal, map[string]string{"id": id}, nil)
}

// SyncGoalURL returns the URL for syncing a goal
func SyncGoalURL(id string) string {
	return BuildURL(SyncGoal, map[string]string{"id": id}, nil)
}

// CandidateActionURL returns the URL for a candidate action on a goal
func CandidateActionURL(id, action string) string {
	return BuildURL(CandidateAction, map[string]string{"id": id, "action": action}, nil)
}

// RefreshGoalURL returns the URL for refreshing a goal
func RefreshGoalURL(id string) string {
	return BuildURL(RefreshGoal, map[string]string{"id": id}, nil)
}

// Job route helpers

// GetJobsURL returns the URL for listing jobs
func GetJobsURL(queryParams url.Values) string {
	return BuildURL(GetJobs, nil, queryParams)
}

// GetJobURL returns the URL for getting a job by ID
func GetJobURL(id string) string {
	return BuildURL(GetJob, map[string]string{"id": id}, nil)
}

// CreateJobURL returns the URL for creating a job
func CreateJobURL() string {
	return BuildURL(CreateJob, nil, nil)
}
