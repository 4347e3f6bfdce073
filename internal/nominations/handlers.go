package nominations

import (
	"naviport-backend/internal/domain"
	"naviport-backend/internal/middleware"
	"naviport-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

var statusMap = map[error]int{
	ErrOfferNotFound:      fiber.StatusNotFound,
	ErrOfferNotAccepted:   fiber.StatusConflict,
	ErrNominationExists:   fiber.StatusConflict,
	ErrNominationNotFound: fiber.StatusNotFound,
}

func respondErr(c *fiber.Ctx, err error) error {
	if code, ok := statusMap[err]; ok {
		return response.Error(c, err.Error(), code, nil)
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

// Create POST /api/v1/nominations
func (h *Handlers) Create(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var input CreateInput
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if input.OfferID == uuid.Nil {
		return response.Error(c, "Offer id is required", fiber.StatusBadRequest, nil)
	}

	nom, err := h.Service.Create(c.Context(), actor.UserID, input)
	if err != nil {
		return respondErr(c, err)
	}
	return response.SuccessCreated(c, "Nomination sent", fiber.Map{"nomination": nom}, nil)
}

// List GET /api/v1/nominations — agency inbox or armator outbox.
func (h *Handlers) List(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	if actor.Role == domain.RoleAgency {
		list, err := h.Service.ListForAgency(c.Context(), actor.UserID)
		if err != nil {
			return respondErr(c, err)
		}
		return response.Success(c, "Nominations retrieved", fiber.Map{"nominations": list}, nil)
	}
	list, err := h.Service.ListForArmator(c.Context(), actor.UserID)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Nominations retrieved", fiber.Map{"nominations": list}, nil)
}

// MarkRead POST /api/v1/nominations/:id/read
func (h *Handlers) MarkRead(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	nominationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid nomination id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.MarkRead(c.Context(), actor.UserID, nominationID); err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Nomination marked as read", nil, nil)
}
