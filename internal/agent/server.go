package agent

import (
	"context"
	"encoding/json"
	"strings"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/types"
	"github.com/keycasey/Neon-Goals-Service-sub000/pkg/api/v1/handlers"
)

// JobsPath is where pushed jobs are accepted
const JobsPath = "/jobs"

// DispatchResponse acknowledges a pushed job
type DispatchResponse struct {
	Status string `json:"status"`
	JobID  uint   `json:"jobId"`
	Error  string `json:"error,omitempty"`
}

// NewServer returns the push mode app. Accepted jobs run on ctx in the
// background and are reported through the callback.
func NewServer(ctx context.Context, a *Agent, token string) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(logger.APILogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"service":  "scraper-agent",
			"workerId": a.WorkerID(),
		})
	}).Name("AgentHealth")

	app.Post(JobsPath, handlers.WorkerAuth(token), func(c *fiber.Ctx) error {
		var req types.DispatchRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(DispatchResponse{Status: "error", Error: err.Error()})
		}
		if req.JobID == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(DispatchResponse{Status: "error", Error: "jobId is required"})
		}
		if strings.TrimSpace(req.Query) == "" && req.RetailerFilters == nil {
			return c.Status(fiber.StatusBadRequest).JSON(DispatchResponse{Status: "error", JobID: req.JobID, Error: "query is required"})
		}

		a.Dispatch(ctx, Search{
			JobID:           req.JobID,
			Query:           req.Query,
			RetailerFilters: req.RetailerFilters,
		})
		return c.Status(fiber.StatusAccepted).JSON(DispatchResponse{Status: "dispatched", JobID: req.JobID})
	}).Name("DispatchJob")

	return app
}
