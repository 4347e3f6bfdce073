package offers

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
	ErrDemandNotFound:    fiber.StatusNotFound,
	ErrDemandNotBiddable: fiber.StatusConflict,
	ErrDemandNotOpen:     fiber.StatusConflict,
	ErrOfferExists:       fiber.StatusConflict,
	ErrOfferNotFound:     fiber.StatusNotFound,
	ErrOfferNotPending:   fiber.StatusConflict,
	ErrInvalidPrice:      fiber.StatusBadRequest,
}

func respondErr(c *fiber.Ctx, err error) error {
	if code, ok := statusMap[err]; ok {
		return response.Error(c, err.Error(), code, nil)
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

// Submit POST /api/v1/offers
func (h *Handlers) Submit(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var input SubmitInput
	if err := c.BodyParser(&input); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if input.DemandID == uuid.Nil {
		return response.Error(c, "Demand id is required", fiber.StatusBadRequest, nil)
	}

	offer, err := h.Service.Submit(c.Context(), actor.UserID, input)
	if err != nil {
		return respondErr(c, err)
	}
	return response.SuccessCreated(c, "Offer submitted", fiber.Map{"offer": offer}, nil)
}

// Accept POST /api/v1/offers/:id/accept
func (h *Handlers) Accept(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	offerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid offer id", fiber.StatusBadRequest, nil)
	}

	offer, err := h.Service.Accept(c.Context(), actor.UserID, offerID)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Offer accepted", fiber.Map{"offer": offer}, nil)
}

// ListByDemand GET /api/v1/demands/:id/offers — demand owner, eligible
// agency, or admin.
func (h *Handlers) ListByDemand(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	demandID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid demand id", fiber.StatusBadRequest, nil)
	}

	var (
		offers  []domain.Offer
		ratings map[uuid.UUID]float64
	)
	switch actor.Role {
	case domain.RoleAdmin:
		offers, ratings, err = h.Service.ListByDemand(c.Context(), demandID)
	case domain.RoleAgency:
		offers, ratings, err = h.Service.ListByDemandForAgency(c.Context(), actor.UserID, demandID)
	default:
		offers, ratings, err = h.Service.ListByDemandForArmator(c.Context(), actor.UserID, demandID)
	}
	if err != nil {
		return respondErr(c, err)
	}

	ratingsByID := make(map[string]float64, len(ratings))
	for id, avg := range ratings {
		ratingsByID[id.String()] = avg
	}
	return response.Success(c, "Offers retrieved", fiber.Map{
		"offers":         offers,
		"agency_ratings": ratingsByID,
	}, nil)
}

// ListMine GET /api/v1/offers — the agency's own offers plus the demand ids
// they cover, so clients can flag demands already bid on.
func (h *Handlers) ListMine(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	offers, err := h.Service.ListForAgency(c.Context(), actor.UserID)
	if err != nil {
		return respondErr(c, err)
	}
	demandIDs, err := h.Service.OfferedDemandIDs(c.Context(), actor.UserID)
	if err != nil {
		return respondErr(c, err)
	}
	return response.Success(c, "Offers retrieved", fiber.Map{
		"offers":             offers,
		"offered_demand_ids": demandIDs,
	}, nil)
}
