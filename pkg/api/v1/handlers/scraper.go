package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/services"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/types"
)

// ScraperHandler serves the worker protocol
type ScraperHandler struct {
	*APIHandler
}

// NewScraperHandler creates a new ScraperHandler instance
func NewScraperHandler(api *APIHandler) *ScraperHandler {
	return &ScraperHandler{
		APIHandler: api,
	}
}

// WorkerAuth rejects worker protocol requests without the shared token.
// An empty token disables the check.
func WorkerAuth(token string) fiber.Handler {
	if token == "" {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}
	return keyauth.New(keyauth.Config{
		KeyLookup: "header:" + types.WorkerTokenHeader,
		Validator: func(_ *fiber.Ctx, key string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(key), []byte(token)) != 1 {
				return false, keyauth.ErrMissingOrMalformedAPIKey
			}
			return true, nil
		},
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return c.Status(fiber.StatusUnauthorized).
				JSON(types.SlugResponse{Slug: types.ErrorSlug, Error: ErrMsgUnauthorized})
		},
	})
}

// Poll godoc
// @Summary Claim the next scrape job
// @Description Atomically claims the oldest pending or retryable job. job is null when the queue is empty.
// @Tags scrapers
// @Accept json
// @Produce json
// @Param request body types.PollRequest false "Worker identity"
// @Success 200 {object} types.PollResponse
// @Failure 500 {object} types.SlugResponse
// @Router /scrapers/poll [post]
func (h *ScraperHandler) Poll(c *fiber.Ctx) error {
	var req types.PollRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).
				JSON(types.ErrInvalidInput(err.Error()))
		}
	}

	job, err := h.worker.Poll(c.UserContext(), req.WorkerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.ErrServer(err.Error()))
	}
	return c.JSON(types.PollResponse{Job: job})
}

// Callback godoc
// @Summary Report the outcome of a scrape job
// @Tags scrapers
// @Accept json
// @Produce json
// @Param request body types.CallbackRequest true "Job outcome"
// @Success 200 {object} types.CallbackResponse
// @Failure 400 {object} types.CallbackResponse "Malformed callback"
// @Failure 404 {object} types.CallbackResponse "Unknown job"
// @Failure 409 {object} types.CallbackResponse "Job no longer owned by the caller"
// @Router /scrapers/callback [post]
func (h *ScraperHandler) Callback(c *fiber.Ctx) error {
	var req types.CallbackRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return rejectCallback(c, fiber.StatusBadRequest, err)
	}
	if err := req.Validate(); err != nil {
		return rejectCallback(c, fiber.StatusBadRequest, err)
	}

	_, err := h.worker.HandleCallback(c.UserContext(), req)
	switch {
	case errors.Is(err, services.ErrJobNotFound):
		return rejectCallback(c, fiber.StatusNotFound, err)
	case errors.Is(err, services.ErrStaleCallback):
		return rejectCallback(c, fiber.StatusConflict, err)
	case err != nil:
		logger.Errorf("Callback for job %d failed: %v", req.JobID, err)
		return rejectCallback(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(types.CallbackResponse{
		Acknowledged: true,
		Status:       req.Status,
	})
}

func rejectCallback(c *fiber.Ctx, status int, err error) error {
	logger.WarnWithFields("Callback rejected", map[string]interface{}{
		"status": status,
		"error":  err.Error(),
	})
	return c.Status(status).JSON(types.CallbackResponse{
		Acknowledged: false,
		Status:       types.CallbackError,
		Error:        err.Error(),
	})
}
