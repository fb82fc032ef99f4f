package handlers

import (
	fiber "github.com/gofiber/fiber/v2"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/types"
)

// FilterHandler exposes the retailer filter compiler
type FilterHandler struct {
	*APIHandler
}

// NewFilterHandler creates a new FilterHandler instance
func NewFilterHandler(api *APIHandler) *FilterHandler {
	return &FilterHandler{
		APIHandler: api,
	}
}

// Compile returns the filter of every retailer for a descriptor. Retailers
// the descriptor cannot be compiled for are null.
func (h *FilterHandler) Compile(c *fiber.Ctx) error {
	var req types.CompileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(ErrMsgInvalidReqBody + ": " + err.Error()))
	}
	if err := req.Descriptor.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(err.Error()))
	}
	return c.JSON(types.Success(types.CompileResponse{
		Retailers: h.filters.Compile(req.Descriptor),
	}))
}
