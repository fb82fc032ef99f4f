package handlers

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/services"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/types"
)

// JobHandler handles HTTP requests for scrape job operations
type JobHandler struct {
	*APIHandler
}

// NewJobHandler creates a new job handler instance
func NewJobHandler(api *APIHandler) *JobHandler {
	return &JobHandler{
		APIHandler: api,
	}
}

// ListJobs handles the request to list jobs, newest first
func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgNegativePagination))
	}
	opts := getPaginationOptions(page)

	if statusStr := c.Query("status"); statusStr != "" {
		status, err := models.ParseJobStatus(statusStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).
				JSON(types.ErrInvalidInput(ErrMsgJobStatusInvalid))
		}
		opts.Status = &status
	}
	if goalID := c.QueryInt("goalId", 0); goalID > 0 {
		opts.GoalID = uint(goalID)
	}

	jobs, total, err := h.queue.List(c.UserContext(), opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrServer(ErrMsgJobListFailed + ": " + err.Error()))
	}

	return c.JSON(types.JobListResponse{
		Rows: jobs,
		Pagination: types.PaginationResponse{
			Total:  int(total),
			Page:   page,
			Limit:  opts.Limit,
			Offset: opts.Offset,
		},
	})
}

// GetJob handles the request to get a job
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgInvalidJobID))
	}

	job, err := h.queue.Get(c.UserContext(), id)
	if errors.Is(err, services.ErrJobNotFound) {
		return c.Status(fiber.StatusNotFound).
			JSON(types.ErrNotFound(ErrMsgJobNotFound))
	} else if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrServer(ErrMsgJobGetFailed + ": " + err.Error()))
	}
	return c.JSON(types.Success(job))
}

// CreateJob handles the request to enqueue a scrape job for a goal
func (h *JobHandler) CreateJob(c *fiber.Ctx) error {
	var req types.JobCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgInvalidReqBody + ": " + err.Error()))
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(err.Error()))
	}

	job, created, err := h.queue.Enqueue(c.UserContext(), req.GoalID, req.Trigger)
	if errors.Is(err, services.ErrGoalNotFound) {
		return c.Status(fiber.StatusNotFound).
			JSON(types.ErrNotFound(ErrMsgGoalNotFound))
	} else if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrServer(ErrMsgJobCreateFailed + ": " + err.Error()))
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(types.Success(types.EnqueueResponse{Job: job, Created: created}))
}
