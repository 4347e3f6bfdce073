package reviews

import (
	"naviport-backend/internal/middleware"
	"naviport-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

var statusMap = map[error]int{
	ErrDemandNotFound:     fiber.StatusNotFound,
	ErrDemandNotCompleted: fiber.StatusConflict,
	ErrNoAcceptedOffer:    fiber.StatusConflict,
	ErrInvalidRating:      fiber.StatusBadRequest,
}

func respondErr(c *fiber.Ctx, err error) error {
	if code, ok := statusMap[err]; ok {
		return response.Error(c, err.Error(), code, nil)
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

// Upsert POST /api/v1/reviews
func (h *Handlers) Upsert(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var input UpsertInput
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if input.DemandID == uuid.Nil {
		return response.Error(c, "Demand id is required", fiber.StatusBadRequest, nil)
	}

	review, err := h.Service.Upsert(c.Context(), actor.UserID, input)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Review saved", fiber.Map{"review": review}, nil)
}

// ListMine GET /api/v1/reviews
func (h *Handlers) ListMine(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	reviews, err := h.Service.ListMine(c.Context(), actor.UserID)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Reviews retrieved", fiber.Map{"reviews": reviews}, nil)
}

// AgencySummary GET /api/v1/agencies/:id/rating
func (h *Handlers) AgencySummary(c *fiber.Ctx) error {
	agencyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid agency id", fiber.StatusBadRequest, nil)
	}
	summary, err := h.Service.AgencySummary(c.Context(), agencyID)
	if err != nil {
		return respondErr(c, err)
	}
	reviews, err := h.Service.ListByAgency(c.Context(), agencyID)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Agency rating retrieved", fiber.Map{
		"summary": summary,
		"reviews": reviews,
	}, nil)
}
