package demandevents

import (
	"naviport-backend/internal/middleware"
	"naviport-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// ListByDemand GET /api/v1/demands/:id/events
func (h *Handlers) ListByDemand(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	demandID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid demand id", fiber.StatusBadRequest, nil)
	}
	events, err := h.Service.ListByDemand(c.Context(), demandID)
	if err != nil {
		if err == ErrDemandNotFound {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Events retrieved", fiber.Map{"events": events}, nil)
}
