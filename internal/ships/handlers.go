package ships

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
	ErrShipNotFound: fiber.StatusNotFound,
	ErrInvalidIMO:   fiber.StatusBadRequest,
	ErrImoTaken:     fiber.StatusConflict,
	ErrNameRequired: fiber.StatusBadRequest,
}

func respondErr(c *fiber.Ctx, err error) error {
	if code, ok := statusMap[err]; ok {
		return response.Error(c, err.Error(), code, nil)
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

// Create POST /api/v1/ships
func (h *Handlers) Create(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var input Input
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	ship, err := h.Service.Create(c.Context(), actor.UserID, input)
	if err != nil {
		return respondErr(c, err)
	}
	return response.SuccessCreated(c, "Ship created", fiber.Map{"ship": ship}, nil)
}

// List GET /api/v1/ships
func (h *Handlers) List(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	ships, err := h.Service.List(c.Context(), actor.UserID)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Ships retrieved", fiber.Map{"ships": ships}, nil)
}

// Get GET /api/v1/ships/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	shipID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid ship id", fiber.StatusBadRequest, nil)
	}
	ship, err := h.Service.Get(c.Context(), actor.UserID, shipID)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Ship retrieved", fiber.Map{"ship": ship}, nil)
}

// Update PUT /api/v1/ships/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	shipID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid ship id", fiber.StatusBadRequest, nil)
	}
	var input Input
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	ship, err := h.Service.Update(c.Context(), actor.UserID, shipID, input)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Ship updated", fiber.Map{"ship": ship}, nil)
}

// Delete DELETE /api/v1/ships/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	shipID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid ship id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.Context(), actor.UserID, shipID); err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Ship deleted", nil, nil)
}
