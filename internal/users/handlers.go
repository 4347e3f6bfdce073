package users

import (
	"naviport-backend/internal/middleware"
	"naviport-backend/internal/pkg/response"
	"naviport-backend/internal/ports"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

var statusMap = map[error]int{
	ErrUserNotFound:  fiber.StatusNotFound,
	ErrInvalidName:   fiber.StatusBadRequest,
	ErrTooManyPorts:  fiber.StatusBadRequest,
	ErrEmptyPortName: fiber.StatusBadRequest,
}

func respondErr(c *fiber.Ctx, err error) error {
	if code, ok := statusMap[err]; ok {
		return response.Error(c, err.Error(), code, nil)
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

// GetProfile GET /api/v1/users/me
func (h *Handlers) GetProfile(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	user, err := h.Service.Get(c.Context(), actor.UserID)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Profile retrieved", fiber.Map{"user": user}, nil)
}

// UpdateProfile PUT /api/v1/users/me
func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var input UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.UpdateProfile(c.Context(), actor.UserID, input)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Profile updated", fiber.Map{"user": user}, nil)
}

// ListPorts GET /api/v1/users/me/ports — the agency's registered ports plus
// the well-known port directory for pickers.
func (h *Handlers) ListPorts(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	registered, err := h.Service.ListPorts(c.Context(), actor.UserID)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Ports retrieved", fiber.Map{
		"ports":     registered,
		"directory": ports.Directory,
	}, nil)
}

// ReplacePorts PUT /api/v1/users/me/ports
func (h *Handlers) ReplacePorts(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body struct {
		Ports []string `json:"ports"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	registered, err := h.Service.ReplacePorts(c.Context(), actor.UserID, body.Ports)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Ports updated", fiber.Map{"ports": registered}, nil)
}
