// Package handlers provides HTTP request handling
package handlers

import (
	"strconv"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/services"
)

// APIHandler holds the services every handler group shares
type APIHandler struct {
	goals   *services.Goal
	queue   *services.Queue
	worker  *services.Worker
	filters *services.Filters
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(goals *services.Goal, queue *services.Queue, worker *services.Worker, filters *services.Filters) *APIHandler {
	return &APIHandler{
		goals:   goals,
		queue:   queue,
		worker:  worker,
		filters: filters,
	}
}

// paramID parses a positive numeric path parameter
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
