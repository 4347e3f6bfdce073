package pdas

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
	ErrPdaNotFound:      fiber.StatusNotFound,
	ErrPdaNotReturned:   fiber.StatusConflict,
	ErrPdaNotPending:    fiber.StatusConflict,
	ErrPdaNotReviewable: fiber.StatusConflict,
	ErrPdaItemNotFound:  fiber.StatusNotFound,
	ErrTitleRequired:    fiber.StatusBadRequest,
	ErrInvalidPrice:     fiber.StatusBadRequest,
	ErrItemDescRequired: fiber.StatusBadRequest,
}

func respondErr(c *fiber.Ctx, err error) error {
	if code, ok := statusMap[err]; ok {
		return response.Error(c, err.Error(), code, nil)
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

// Create POST /api/v1/pdas
func (h *Handlers) Create(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var input CreateInput
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	pda, err := h.Service.Create(c.Context(), actor.UserID, input)
	if err != nil {
		return respondErr(c, err)
	}
	return response.SuccessCreated(c, "PDA submitted", fiber.Map{"pda": pda}, nil)
}

// List GET /api/v1/pdas — armators see their own, admins see all.
func (h *Handlers) List(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var (
		pdas []domain.PDA
		err  error
	)
	if actor.Role == domain.RoleAdmin {
		pdas, err = h.Service.ListAll(c.Context())
	} else {
		pdas, err = h.Service.ListForArmator(c.Context(), actor.UserID)
	}
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "PDAs retrieved", fiber.Map{"pdas": pdas}, nil)
}

// Get GET /api/v1/pdas/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	pdaID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid PDA id", fiber.StatusBadRequest, nil)
	}
	var owner *uuid.UUID
	if actor.Role != domain.RoleAdmin {
		owner = &actor.UserID
	}
	pda, err := h.Service.Get(c.Context(), pdaID, owner)
	if err != nil {
		return respondErr(c, err)
	}
	items, err := h.Service.ListItems(c.Context(), pdaID)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "PDA retrieved", fiber.Map{
		"pda":   pda,
		"items": items,
	}, nil)
}

// Resubmit POST /api/v1/pdas/:id/resubmit
func (h *Handlers) Resubmit(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	pdaID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid PDA id", fiber.StatusBadRequest, nil)
	}
	var input ResubmitInput
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	pda, err := h.Service.Resubmit(c.Context(), actor.UserID, pdaID, input)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "PDA resubmitted", fiber.Map{"pda": pda}, nil)
}

type reviewBody struct {
	Note *string `json:"note"`
}

// StartReview POST /api/v1/pdas/:id/review — admin.
func (h *Handlers) StartReview(c *fiber.Ctx) error {
	pdaID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid PDA id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.StartReview(c.Context(), pdaID); err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "PDA review started", nil, nil)
}

// Approve POST /api/v1/pdas/:id/approve — admin.
func (h *Handlers) Approve(c *fiber.Ctx) error {
	pdaID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid PDA id", fiber.StatusBadRequest, nil)
	}
	var body reviewBody
	_ = c.BodyParser(&body)
	if err := h.Service.Approve(c.Context(), pdaID, body.Note); err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "PDA approved", nil, nil)
}

// Return POST /api/v1/pdas/:id/return — admin.
func (h *Handlers) Return(c *fiber.Ctx) error {
	pdaID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid PDA id", fiber.StatusBadRequest, nil)
	}
	var body reviewBody
	_ = c.BodyParser(&body)
	if err := h.Service.Return(c.Context(), pdaID, body.Note); err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "PDA returned for revision", nil, nil)
}

// SetTargetPrice PUT /api/v1/pdas/:id/target-price — admin.
func (h *Handlers) SetTargetPrice(c *fiber.Ctx) error {
	pdaID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid PDA id", fiber.StatusBadRequest, nil)
	}
	var body struct {
		Price    float64 `json:"price"`
		Currency string  `json:"currency"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.SetTargetPrice(c.Context(), pdaID, body.Price, body.Currency); err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Target price set", nil, nil)
}

// AddItem POST /api/v1/pdas/:id/items — admin.
func (h *Handlers) AddItem(c *fiber.Ctx) error {
	pdaID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid PDA id", fiber.StatusBadRequest, nil)
	}
	var input ItemInput
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	item, err := h.Service.AddItem(c.Context(), pdaID, input)
	if err != nil {
		return respondErr(c, err)
	}
	return response.SuccessCreated(c, "PDA item added", fiber.Map{"item": item}, nil)
}

// UpdateItem PUT /api/v1/pdas/items/:itemId — admin.
func (h *Handlers) UpdateItem(c *fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return response.Error(c, "Invalid item id", fiber.StatusBadRequest, nil)
	}
	var input ItemInput
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	item, err := h.Service.UpdateItem(c.Context(), itemID, input)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "PDA item updated", fiber.Map{"item": item}, nil)
}

// DeleteItem DELETE /api/v1/pdas/items/:itemId — admin.
func (h *Handlers) DeleteItem(c *fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return response.Error(c, "Invalid item id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.DeleteItem(c.Context(), itemID); err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "PDA item deleted", nil, nil)
}
