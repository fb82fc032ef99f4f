package test

import (
	"net/http/httptest"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/api/v1/client"
	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/api/v1/handlers"
	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/api/v1/routes"
)

// testClientTimeout is the timeout for test API client requests
const testClientTimeout = 5 * time.Second

// SetupServer configures the test suite with a real API server
func SetupServer(suite *Suite) {
	suite.App = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	suite.App.Use(logger.APILogger())

	apiHandler := handlers.NewAPIHandler(suite.Goals, suite.Queue, suite.Worker, suite.Filters)
	routes.RegisterRoutes(suite.App, routes.NewHandlers(apiHandler), TestWorkerToken)

	// Create test server using adaptor to convert Fiber app to http.Handler
	suite.Server = httptest.NewServer(adaptor.FiberApp(suite.App))

	apiClient, err := NewClient(suite.Server.URL, TestWorkerToken)
	suite.Require().NoError(err, "Failed to create API client")
	suite.APIClient = apiClient

	originalCleanup := suite.cleanup
	suite.cleanup = func() {
		if suite.Server != nil {
			suite.Server.Close()
		}
		if originalCleanup != nil {
			originalCleanup()
		}
	}
}

// NewClient creates a client for the suite server with the given worker token
func NewClient(baseURL, token string) (client.Client, error) {
	return client.NewClient(&client.Options{
		BaseURL:     baseURL,
		Timeout:     testClientTimeout,
		WorkerToken: token,
	})
}
