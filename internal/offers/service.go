package offers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"naviport-backend/internal/domain"
	"naviport-backend/internal/ports"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrDemandNotFound    = errors.New("Demand not found")
	ErrDemandNotBiddable = errors.New("Demand is no longer open for offers")
	ErrDemandNotOpen     = errors.New("Demand is no longer open")
	ErrOfferExists       = errors.New("You have already submitted an offer for this demand")
	ErrOfferNotFound     = errors.New("Offer not found")
	ErrOfferNotPending   = errors.New("Offer is no longer pending")
	ErrInvalidPrice      = errors.New("Price must be greater than zero")
)

type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SubmitInput is an agency's bid payload.
type SubmitInput struct {
	DemandID uuid.UUID `json:"demand_id"`
	Price    *float64  `json:"price"`
	Currency string    `json:"currency"`
	Notes    *string   `json:"notes"`
	FileURL  *string   `json:"file_url"`
	FileName *string   `json:"file_name"`
	FileSize *int64    `json:"file_size"`
}

// Submit creates a pending offer against a biddable demand. The demand's flip
// to reviewing is the gate for the insert: it only lands while the demand is
// still open, so an acceptance committed after the initial read cannot be
// followed by a fresh offer. One offer per agency per demand, backed by the
// composite unique index.
func (s *Service) Submit(ctx context.Context, agencyID uuid.UUID, input SubmitInput) (*domain.Offer, error) {
	if input.Price != nil && *input.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}

	var offer domain.Offer
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var demand domain.Demand
		if err := tx.Where("id = ?", input.DemandID).First(&demand).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDemandNotFound
			}
			return err
		}
		if !biddable(&demand, s.now()) {
			return ErrDemandNotBiddable
		}

		var count int64
		if err := tx.Model(&domain.Offer{}).
			Where("demand_id = ? AND agency_id = ?", input.DemandID, agencyID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrOfferExists
		}

		// Conditional flip to reviewing. A no-op value-wise when the demand is
		// already reviewing, but it locks the row and proves the demand is
		// still open at insert time; zero rows means it closed underneath us.
		res := tx.Model(&domain.Demand{}).
			Where("id = ? AND status IN ? AND (expires_at IS NULL OR expires_at > ?)",
				input.DemandID, domain.DemandBiddableStatuses, s.now()).
			Update("status", domain.DemandReviewing)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDemandNotBiddable
		}

		offer = domain.Offer{
			DemandID: input.DemandID,
			AgencyID: agencyID,
			Status:   domain.OfferPending,
			Price:    input.Price,
			Currency: input.Currency,
			Notes:    input.Notes,
			FileURL:  input.FileURL,
			FileName: input.FileName,
			FileSize: input.FileSize,
		}
		if err := tx.Create(&offer).Error; err != nil {
			if isDuplicate(err) {
				return ErrOfferExists
			}
			return err
		}

		return recordEvent(tx, input.DemandID, &agencyID, domain.EventOfferSubmitted, map[string]interface{}{
			"offer_id":  offer.ID,
			"agency_id": agencyID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// Accept finalizes one offer as the winner. The demand is completed with a
// conditional update so exactly one acceptance can ever succeed; all other
// pending offers on the demand are rejected in the same transaction.
func (s *Service) Accept(ctx context.Context, armatorID, offerID uuid.UUID) (*domain.Offer, error) {
	var accepted domain.Offer
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var offer domain.Offer
		if err := tx.Where("id = ?", offerID).First(&offer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferNotFound
			}
			return err
		}

		// The caller must own the demand through one of their ships. Foreign
		// offers surface as not found.
		var owned int64
		if err := tx.Model(&domain.Demand{}).
			Joins("JOIN ships ON ships.id = demands.ship_id").
			Where("demands.id = ? AND ships.armator_id = ?", offer.DemandID, armatorID).
			Count(&owned).Error; err != nil {
			return err
		}
		if owned == 0 {
			return ErrOfferNotFound
		}

		res := tx.Model(&domain.Demand{}).
			Where("id = ? AND status IN ? AND (expires_at IS NULL OR expires_at > ?)",
				offer.DemandID, domain.DemandBiddableStatuses, s.now()).
			Update("status", domain.DemandCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDemandNotOpen
		}

		res = tx.Model(&domain.Offer{}).
			Where("id = ? AND status = ?", offerID, domain.OfferPending).
			Update("status", domain.OfferAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOfferNotPending
		}

		if err := tx.Model(&domain.Offer{}).
			Where("demand_id = ? AND id <> ? AND status = ?", offer.DemandID, offerID, domain.OfferPending).
			Update("status", domain.OfferRejected).Error; err != nil {
			return err
		}

		if err := tx.Preload("Agency").First(&accepted, "id = ?", offerID).Error; err != nil {
			return err
		}
		return recordEvent(tx, offer.DemandID, &armatorID, domain.EventOfferAccepted, map[string]interface{}{
			"offer_id":  offerID,
			"agency_id": offer.AgencyID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &accepted, nil
}

// ListByDemandForArmator returns a demand's offers to its owner, with the
// bidding agency profile and that agency's average review rating.
func (s *Service) ListByDemandForArmator(ctx context.Context, armatorID, demandID uuid.UUID) ([]domain.Offer, map[uuid.UUID]float64, error) {
	var owned int64
	if err := s.DB.WithContext(ctx).Model(&domain.Demand{}).
		Joins("JOIN ships ON ships.id = demands.ship_id").
		Where("demands.id = ? AND ships.armator_id = ?", demandID, armatorID).
		Count(&owned).Error; err != nil {
		return nil, nil, err
	}
	if owned == 0 {
		return nil, nil, ErrDemandNotFound
	}
	return s.ListByDemand(ctx, demandID)
}

// ListByDemandForAgency returns an active demand's offers to an eligible
// agency. Eligibility is the same fail-open port rule as the demand list, and
// archived demands are not served at all.
func (s *Service) ListByDemandForAgency(ctx context.Context, agencyID, demandID uuid.UUID) ([]domain.Offer, map[uuid.UUID]float64, error) {
	var demand domain.Demand
	err := s.DB.WithContext(ctx).
		Where("id = ? AND status IN ?", demandID, domain.DemandActiveStatuses).
		First(&demand).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrDemandNotFound
		}
		return nil, nil, err
	}

	var portNames []string
	if err := s.DB.WithContext(ctx).Model(&domain.AgencyPort{}).
		Where("agency_id = ?", agencyID).
		Pluck("port_name", &portNames).Error; err != nil {
		return nil, nil, err
	}
	if !ports.IsEligible(portNames, demand.Port) {
		return nil, nil, ErrDemandNotFound
	}
	return s.ListByDemand(ctx, demandID)
}

// ListByDemand returns a demand's offers without an ownership check (admin path).
func (s *Service) ListByDemand(ctx context.Context, demandID uuid.UUID) ([]domain.Offer, map[uuid.UUID]float64, error) {
	var offers []domain.Offer
	if err := s.DB.WithContext(ctx).Preload("Agency").
		Where("demand_id = ?", demandID).
		Order("created_at ASC").
		Find(&offers).Error; err != nil {
		return nil, nil, err
	}

	agencyIDs := make([]uuid.UUID, 0, len(offers))
	for _, o := range offers {
		agencyIDs = append(agencyIDs, o.AgencyID)
	}
	ratings := map[uuid.UUID]float64{}
	if len(agencyIDs) > 0 {
		type row struct {
			AgencyID uuid.UUID
			Avg      float64
		}
		var rows []row
		if err := s.DB.WithContext(ctx).Model(&domain.Review{}).
			Select("agency_id, AVG(rating) AS avg").
			Where("agency_id IN ?", agencyIDs).
			Group("agency_id").
			Scan(&rows).Error; err != nil {
			return nil, nil, err
		}
		for _, r := range rows {
			ratings[r.AgencyID] = r.Avg
		}
	}
	return offers, ratings, nil
}

// ListForAgency returns the agency's own offers, newest first.
func (s *Service) ListForAgency(ctx context.Context, agencyID uuid.UUID) ([]domain.Offer, error) {
	var offers []domain.Offer
	err := s.DB.WithContext(ctx).
		Where("agency_id = ?", agencyID).
		Order("created_at DESC").
		Find(&offers).Error
	return offers, err
}

// OfferedDemandIDs returns the ids of demands the agency has already bid on.
func (s *Service) OfferedDemandIDs(ctx context.Context, agencyID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.DB.WithContext(ctx).Model(&domain.Offer{}).
		Where("agency_id = ?", agencyID).
		Pluck("demand_id", &ids).Error
	return ids, err
}

func biddable(d *domain.Demand, now time.Time) bool {
	if d.Status != domain.DemandPending && d.Status != domain.DemandReviewing {
		return false
	}
	if d.ExpiresAt != nil && !d.ExpiresAt.After(now) {
		return false
	}
	return true
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

func recordEvent(tx *gorm.DB, demandID uuid.UUID, actorID *uuid.UUID, eventType string, data map[string]interface{}) error {
	b, _ := json.Marshal(data)
	return tx.Create(&domain.DemandEvent{
		DemandID:  demandID,
		EventType: eventType,
		ActorID:   actorID,
		EventData: datatypes.JSON(b),
	}).Error
}
