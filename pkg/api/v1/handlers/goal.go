package handlers

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/candidates"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/services"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/types"
)

// GoalHandler handles HTTP requests for goal acquisition state
type GoalHandler struct {
	*APIHandler
}

// NewGoalHandler creates a new GoalHandler instance
func NewGoalHandler(api *APIHandler) *GoalHandler {
	return &GoalHandler{
		APIHandler: api,
	}
}

// GetGoal godoc
// @Summary Get a goal with its candidate partitions
// @Tags goals
// @Produce json
// @Param id path int true "Goal ID"
// @Success 200 {object} types.SlugResponse{data=models.Goal}
// @Failure 404 {object} types.SlugResponse
// @Router /api/v1/goals/{id} [get]
func (h *GoalHandler) GetGoal(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgInvalidGoalID))
	}

	goal, err := h.goals.Get(c.UserContext(), id)
	if errors.Is(err, services.ErrGoalNotFound) {
		return c.Status(fiber.StatusNotFound).
			JSON(types.ErrNotFound(ErrMsgGoalNotFound))
	} else if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrServer(ErrMsgGoalGetFailed + ": " + err.Error()))
	}
	return c.JSON(types.Success(goal))
}

// SyncGoal godoc
// @Summary Create or update the fields of a goal the pipeline reads
// @Description The first sync of a goal enqueues its create job.
// @Tags goals
// @Accept json
// @Produce json
// @Param id path int true "Goal ID"
// @Param request body types.GoalSyncRequest true "Goal fields"
// @Success 200 {object} types.SlugResponse{data=types.GoalSyncResponse}
// @Success 201 {object} types.SlugResponse{data=types.GoalSyncResponse}
// @Router /api/v1/goals/{id} [put]
func (h *GoalHandler) SyncGoal(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgInvalidGoalID))
	}

	var req types.GoalSyncRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgInvalidReqBody + ": " + err.Error()))
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(err.Error()))
	}

	goal, job, created, err := h.goals.Sync(c.UserContext(), req.ToGoal(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrServer(ErrMsgGoalSyncFailed + ": " + err.Error()))
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(types.Success(types.GoalSyncResponse{
		Goal:    goal,
		Created: created,
		Job:     job,
	}))
}

// CandidateAction applies deny, restore, shortlist, unshortlist or select
// to the candidate named in the body
func (h *GoalHandler) CandidateAction(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgInvalidGoalID))
	}
	action, err := candidates.ParseAction(c.Params("action"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgUnknownAction))
	}

	var req types.CandidateActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgInvalidReqBody + ": " + err.Error()))
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(err.Error()))
	}

	goal, err := h.goals.Act(c.UserContext(), id, action, req.URL)
	switch {
	case errors.Is(err, services.ErrGoalNotFound):
		return c.Status(fiber.StatusNotFound).
			JSON(types.ErrNotFound(ErrMsgGoalNotFound))
	case errors.Is(err, candidates.ErrCandidateNotFound):
		return c.Status(fiber.StatusNotFound).
			JSON(types.ErrNotFound(ErrMsgCandidateNotFound + ": " + req.URL))
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrServer(ErrMsgActionFailed + ": " + err.Error()))
	}
	return c.JSON(types.Success(goal))
}

// RefreshGoal enqueues a refresh job, or returns the goal's active one
func (h *GoalHandler) RefreshGoal(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgInvalidGoalID))
	}

	job, created, err := h.goals.Refresh(c.UserContext(), id)
	if errors.Is(err, services.ErrGoalNotFound) {
		return c.Status(fiber.StatusNotFound).
			JSON(types.ErrNotFound(ErrMsgGoalNotFound))
	} else if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrServer(ErrMsgJobCreateFailed + ": " + err.Error()))
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(types.Success(types.EnqueueResponse{Job: job, Created: created}))
}
