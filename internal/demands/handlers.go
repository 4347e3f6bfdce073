package demands

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
	ErrShipNotFound:         fiber.StatusNotFound,
	ErrDemandNotFound:       fiber.StatusNotFound,
	ErrDemandNotPending:     fiber.StatusConflict,
	ErrDemandNotCancellable: fiber.StatusConflict,
	ErrDemandNotApprovable:  fiber.StatusConflict,
	ErrDemandNotRestorable:  fiber.StatusConflict,
	ErrInvalidDeadline:      fiber.StatusBadRequest,
	ErrInvalidPriority:      fiber.StatusBadRequest,
}

func respondErr(c *fiber.Ctx, err error) error {
	if code, ok := statusMap[err]; ok {
		return response.Error(c, err.Error(), code, nil)
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

// Create POST /api/v1/demands
func (h *Handlers) Create(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var input CreateInput
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if input.ShipID == uuid.Nil || input.Port == "" || input.Details == "" {
		return response.Error(c, "Ship, port and details are required", fiber.StatusBadRequest, nil)
	}

	demand, err := h.Service.Create(c.Context(), actor.UserID, input)
	if err != nil {
		return respondErr(c, err)
	}
	return response.SuccessCreated(c, "Demand created", fiber.Map{"demand": demand}, nil)
}

// List GET /api/v1/demands — role-shaped listing. Armators see their own,
// agencies see eligible active demands, admins see everything.
func (h *Handlers) List(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	switch actor.Role {
	case domain.RoleArmator:
		demands, err := h.Service.ListForArmator(c.Context(), actor.UserID)
		if err != nil {
			return respondErr(c, err)
		}
		return response.Success(c, "Demands retrieved", fiber.Map{"demands": demands}, nil)
	case domain.RoleAgency:
		var openID *uuid.UUID
		if raw := c.Query("open"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return response.Error(c, "Invalid demand id", fiber.StatusBadRequest, nil)
			}
			openID = &id
		}
		demands, hasPorts, err := h.Service.ListForAgency(c.Context(), actor.UserID, openID)
		if err != nil {
			return respondErr(c, err)
		}
		return response.Success(c, "Demands retrieved", fiber.Map{
			"demands":   demands,
			"has_ports": hasPorts,
		}, nil)
	case domain.RoleAdmin:
		demands, err := h.Service.ListAll(c.Context())
		if err != nil {
			return respondErr(c, err)
		}
		return response.Success(c, "Demands retrieved", fiber.Map{"demands": demands}, nil)
	}
	return response.Error(c, "Forbidden", fiber.StatusForbidden, nil)
}

// ListArchive GET /api/v1/demands/archive
func (h *Handlers) ListArchive(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	demands, err := h.Service.ListArchiveForArmator(c.Context(), actor.UserID)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Archived demands retrieved", fiber.Map{"demands": demands}, nil)
}

// Get GET /api/v1/demands/:id — agencies only see active demands here.
func (h *Handlers) Get(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	demandID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid demand id", fiber.StatusBadRequest, nil)
	}
	var demand *domain.Demand
	if actor.Role == domain.RoleAgency {
		demand, err = h.Service.GetForAgency(c.Context(), demandID)
	} else {
		demand, err = h.Service.Get(c.Context(), demandID)
	}
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Demand retrieved", fiber.Map{"demand": demand}, nil)
}

// Update PUT /api/v1/demands/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	demandID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid demand id", fiber.StatusBadRequest, nil)
	}
	var input UpdateInput
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if input.Port == "" || input.Details == "" {
		return response.Error(c, "Port and details are required", fiber.StatusBadRequest, nil)
	}

	demand, err := h.Service.Update(c.Context(), actor.UserID, demandID, input)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Demand updated", fiber.Map{"demand": demand}, nil)
}

// Delete DELETE /api/v1/demands/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	demandID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid demand id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.Context(), actor.UserID, demandID); err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Demand deleted", nil, nil)
}

// Cancel POST /api/v1/demands/:id/cancel
func (h *Handlers) Cancel(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	demandID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid demand id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Cancel(c.Context(), actor.UserID, demandID); err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Demand cancelled", nil, nil)
}

// Approve POST /api/v1/demands/:id/approve — admin only.
func (h *Handlers) Approve(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	demandID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid demand id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Approve(c.Context(), actor.UserID, demandID); err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Demand approved", nil, nil)
}

// Restore POST /api/v1/demands/:id/restore
func (h *Handlers) Restore(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	demandID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid demand id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Restore(c.Context(), actor.UserID, demandID); err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Demand restored", nil, nil)
}

// Sweep POST /api/v1/demands/sweep
// Manual trigger for the expiry sweep. Listings already sweep on read, so this
// exists for ops tooling and cron.
func (h *Handlers) Sweep(c *fiber.Ctx) error {
	count, err := h.Service.ExpireSweep(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Expiry sweep completed", fiber.Map{
		"expired": count,
	}, nil)
}
