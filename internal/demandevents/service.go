package demandevents

import (
	"context"
	"errors"

	"naviport-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrDemandNotFound = errors.New("Demand not found")

type Service struct {
	DB *gorm.DB
}

// ListByDemand returns a demand's audit trail, oldest first. Owners read the
// full history; admins too. Events are append-only, so the trail doubles as a
// change signal for cached clients.
func (s *Service) ListByDemand(ctx context.Context, demandID uuid.UUID) ([]domain.DemandEvent, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.Demand{}).Where("id = ?", demandID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrDemandNotFound
	}
	var events []domain.DemandEvent
	err := s.DB.WithContext(ctx).
		Where("demand_id = ?", demandID).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}

// LatestByDemand returns the most recent event, or nil when the trail is empty.
func (s *Service) LatestByDemand(ctx context.Context, demandID uuid.UUID) (*domain.DemandEvent, error) {
	var event domain.DemandEvent
	err := s.DB.WithContext(ctx).
		Where("demand_id = ?", demandID).
		Order("created_at DESC").
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}
