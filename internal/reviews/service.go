package reviews

import (
	"context"
	"errors"

	"naviport-backend/internal/domain"
	"naviport-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDemandNotFound     = errors.New("Demand not found")
	ErrDemandNotCompleted = errors.New("Only completed demands can be reviewed")
	ErrNoAcceptedOffer    = errors.New("Demand has no accepted offer to review")
	ErrInvalidRating      = errors.New("Rating must be between 1 and 5")
)

type Service struct {
	DB *gorm.DB
}

type UpsertInput struct {
	DemandID uuid.UUID `json:"demand_id"`
	Rating   int       `json:"rating"`
	Comment  *string   `json:"comment"`
}

// Upsert creates or replaces the armator's review of a completed demand.
// (demand, armator) is the natural key, so resubmitting edits in place and a
// demand never accumulates more than one review per armator. The reviewed
// agency is always derived from the accepted offer, never taken from input.
func (s *Service) Upsert(ctx context.Context, armatorID uuid.UUID, input UpsertInput) (*domain.Review, error) {
	if !validation.IsValidRating(input.Rating) {
		return nil, ErrInvalidRating
	}

	var review domain.Review
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var demand domain.Demand
		err := tx.Joins("JOIN ships ON ships.id = demands.ship_id").
			Where("demands.id = ? AND ships.armator_id = ?", input.DemandID, armatorID).
			First(&demand).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDemandNotFound
			}
			return err
		}
		if demand.Status != domain.DemandCompleted {
			return ErrDemandNotCompleted
		}

		var accepted domain.Offer
		err = tx.Where("demand_id = ? AND status = ?", input.DemandID, domain.OfferAccepted).
			First(&accepted).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoAcceptedOffer
			}
			return err
		}

		err = tx.Where("demand_id = ? AND armator_id = ?", input.DemandID, armatorID).
			First(&review).Error
		switch {
		case err == nil:
			review.Rating = input.Rating
			review.Comment = input.Comment
			review.AgencyID = accepted.AgencyID
			return tx.Save(&review).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			review = domain.Review{
				DemandID:  input.DemandID,
				ArmatorID: armatorID,
				AgencyID:  accepted.AgencyID,
				Rating:    input.Rating,
				Comment:   input.Comment,
			}
			return tx.Create(&review).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListMine returns the armator's reviews, newest first.
func (s *Service) ListMine(ctx context.Context, armatorID uuid.UUID) ([]domain.Review, error) {
	var reviews []domain.Review
	err := s.DB.WithContext(ctx).
		Where("armator_id = ?", armatorID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// AgencySummary is an agency's public rating aggregate.
type AgencySummary struct {
	AgencyID uuid.UUID `json:"agency_id"`
	Average  float64   `json:"average"`
	Count    int64     `json:"count"`
}

// AgencySummary aggregates ratings for one agency.
func (s *Service) AgencySummary(ctx context.Context, agencyID uuid.UUID) (*AgencySummary, error) {
	var out AgencySummary
	out.AgencyID = agencyID
	err := s.DB.WithContext(ctx).Model(&domain.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("agency_id = ?", agencyID).
		Scan(&out).Error
	return &out, err
}

// ListByAgency returns an agency's reviews, newest first.
func (s *Service) ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]domain.Review, error) {
	var reviews []domain.Review
	err := s.DB.WithContext(ctx).
		Where("agency_id = ?", agencyID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}
