package nominations

import (
	"context"
	"encoding/json"
	"errors"

	"naviport-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrOfferNotFound      = errors.New("Offer not found")
	ErrOfferNotAccepted   = errors.New("Nominations can only be sent for accepted offers")
	ErrNominationExists   = errors.New("A nomination has already been sent for this offer")
	ErrNominationNotFound = errors.New("Nomination not found")
)

type Service struct {
	DB *gorm.DB
}

// CreateInput carries the armator-supplied contact block; voyage details are
// snapshotted server-side.
type CreateInput struct {
	OfferID      uuid.UUID `json:"offer_id"`
	ContactName  *string   `json:"contact_name"`
	ContactEmail *string   `json:"contact_email"`
	ContactPhone *string   `json:"contact_phone"`
	Message      *string   `json:"message"`
}

// Create dispatches the nomination for an accepted offer. Voyage fields are
// copied by value from the ship and demand at dispatch time, so later edits
// never reach the agency. One nomination per offer.
func (s *Service) Create(ctx context.Context, armatorID uuid.UUID, input CreateInput) (*domain.Nomination, error) {
	var nom domain.Nomination
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var offer domain.Offer
		if err := tx.Where("id = ?", input.OfferID).First(&offer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferNotFound
			}
			return err
		}
		if offer.Status != domain.OfferAccepted {
			return ErrOfferNotAccepted
		}

		var demand domain.Demand
		if err := tx.Preload("Ship").
			Joins("JOIN ships ON ships.id = demands.ship_id").
			Where("demands.id = ? AND ships.armator_id = ?", offer.DemandID, armatorID).
			First(&demand).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&domain.Nomination{}).
			Where("offer_id = ?", input.OfferID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrNominationExists
		}

		nom = domain.Nomination{
			OfferID:      offer.ID,
			DemandID:     demand.ID,
			ArmatorID:    armatorID,
			AgencyID:     offer.AgencyID,
			Port:         &demand.Port,
			ETA:          demand.EstimatedArrival,
			ETD:          demand.EstimatedDeparture,
			CargoType:    demand.CargoType,
			CargoAmount:  demand.CargoAmount,
			ContactName:  input.ContactName,
			ContactEmail: input.ContactEmail,
			ContactPhone: input.ContactPhone,
			Message:      input.Message,
		}
		if demand.Ship != nil {
			nom.VesselName = &demand.Ship.Name
			nom.VesselImo = &demand.Ship.ImoNo
		}
		if err := tx.Create(&nom).Error; err != nil {
			return err
		}

		data, _ := json.Marshal(map[string]interface{}{
			"nomination_id": nom.ID,
			"offer_id":      offer.ID,
			"agency_id":     offer.AgencyID,
		})
		return tx.Create(&domain.DemandEvent{
			DemandID:  demand.ID,
			EventType: domain.EventNominationSent,
			ActorID:   &armatorID,
			EventData: datatypes.JSON(data),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &nom, nil
}

// ListForAgency returns the agency's inbox, newest first, with armator contact.
func (s *Service) ListForAgency(ctx context.Context, agencyID uuid.UUID) ([]domain.Nomination, error) {
	var noms []domain.Nomination
	err := s.DB.WithContext(ctx).Preload("Armator").
		Where("agency_id = ?", agencyID).
		Order("created_at DESC").
		Find(&noms).Error
	return noms, err
}

// ListForArmator returns nominations the armator has dispatched.
func (s *Service) ListForArmator(ctx context.Context, armatorID uuid.UUID) ([]domain.Nomination, error) {
	var noms []domain.Nomination
	err := s.DB.WithContext(ctx).
		Where("armator_id = ?", armatorID).
		Order("created_at DESC").
		Find(&noms).Error
	return noms, err
}

// MarkRead flags a nomination read. Idempotent; only the recipient agency can
// flag its own nominations.
func (s *Service) MarkRead(ctx context.Context, agencyID, nominationID uuid.UUID) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.Nomination{}).
		Where("id = ? AND agency_id = ?", nominationID, agencyID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNominationNotFound
	}
	return s.DB.WithContext(ctx).Model(&domain.Nomination{}).
		Where("id = ? AND agency_id = ?", nominationID, agencyID).
		Update("is_read", true).Error
}
