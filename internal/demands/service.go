package demands

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"naviport-backend/internal/domain"
	"naviport-backend/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrShipNotFound         = errors.New("Ship not found")
	ErrDemandNotFound       = errors.New("Demand not found")
	ErrDemandNotPending     = errors.New("Only pending demands can be edited or deleted")
	ErrDemandNotCancellable = errors.New("Only pending demands can be cancelled")
	ErrDemandNotApprovable  = errors.New("Only open demands can be approved")
	ErrDemandNotRestorable  = errors.New("Only archived demands can be restored")
	ErrInvalidDeadline      = errors.New("Deadline must be 24 or 48 hours")
	ErrInvalidPriority      = errors.New("Invalid priority level")
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

// CreateInput carries the armator-supplied demand fields.
type CreateInput struct {
	ShipID             uuid.UUID  `json:"ship_id"`
	Port               string     `json:"port"`
	Details            string     `json:"details"`
	Priority           string     `json:"priority"`
	EstimatedArrival   *time.Time `json:"estimated_arrival"`
	EstimatedDeparture *time.Time `json:"estimated_departure"`
	CargoType          *string    `json:"cargo_type"`
	CargoAmount        *float64   `json:"cargo_amount"`
	Notes              *string    `json:"notes"`
	// DeadlineHours is a creation-time choice only: 0 (no deadline), 24 or 48.
	DeadlineHours int `json:"deadline_hours"`
}

func validPriority(p string) bool {
	switch p {
	case domain.PriorityLow, domain.PriorityNormal, domain.PriorityHigh, domain.PriorityUrgent:
		return true
	}
	return false
}

// Create inserts a new demand in pending state for one of the armator's ships.
func (s *Service) Create(ctx context.Context, armatorID uuid.UUID, input CreateInput) (*domain.Demand, error) {
	if input.Priority == "" {
		input.Priority = domain.PriorityNormal
	}
	if !validPriority(input.Priority) {
		return nil, ErrInvalidPriority
	}
	if input.DeadlineHours != 0 && input.DeadlineHours != 24 && input.DeadlineHours != 48 {
		return nil, ErrInvalidDeadline
	}

	var demand domain.Demand
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ship domain.Ship
		if err := tx.Where("id = ? AND armator_id = ?", input.ShipID, armatorID).First(&ship).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShipNotFound
			}
			return err
		}

		demand = domain.Demand{
			ShipID:             ship.ID,
			Status:             domain.DemandPending,
			Port:               input.Port,
			Details:            input.Details,
			Priority:           input.Priority,
			EstimatedArrival:   input.EstimatedArrival,
			EstimatedDeparture: input.EstimatedDeparture,
			CargoType:          input.CargoType,
			CargoAmount:        input.CargoAmount,
			Notes:              input.Notes,
		}
		if input.DeadlineHours > 0 {
			exp := s.now().Add(time.Duration(input.DeadlineHours) * time.Hour)
			demand.ExpiresAt = &exp
		}
		if err := tx.Create(&demand).Error; err != nil {
			return err
		}
		demand.Ship = &ship

		return s.recordEvent(tx, demand.ID, &armatorID, domain.EventDemandCreated, map[string]interface{}{
			"port":           demand.Port,
			"priority":       demand.Priority,
			"deadline_hours": input.DeadlineHours,
		})
	})
	if err != nil {
		return nil, err
	}
	return &demand, nil
}

// UpdateInput carries the editable demand fields. The deadline is not among
// them: it can only be set at creation time.
type UpdateInput struct {
	Port               string     `json:"port"`
	Details            string     `json:"details"`
	Priority           string     `json:"priority"`
	EstimatedArrival   *time.Time `json:"estimated_arrival"`
	EstimatedDeparture *time.Time `json:"estimated_departure"`
	CargoType          *string    `json:"cargo_type"`
	CargoAmount        *float64   `json:"cargo_amount"`
	Notes              *string    `json:"notes"`
}

// Update edits a pending demand owned by the armator. Once an agency has bid
// (reviewing or later), the demand can no longer be altered unilaterally.
func (s *Service) Update(ctx context.Context, armatorID, demandID uuid.UUID, input UpdateInput) (*domain.Demand, error) {
	if input.Priority == "" {
		input.Priority = domain.PriorityNormal
	}
	if !validPriority(input.Priority) {
		return nil, ErrInvalidPriority
	}

	var updated domain.Demand
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ownedDemand(tx, armatorID, demandID); err != nil {
			return err
		}
		res := tx.Model(&domain.Demand{}).
			Where("id = ? AND status = ?", demandID, domain.DemandPending).
			Updates(map[string]interface{}{
				"port":                input.Port,
				"details":             input.Details,
				"priority":            input.Priority,
				"estimated_arrival":   input.EstimatedArrival,
				"estimated_departure": input.EstimatedDeparture,
				"cargo_type":          input.CargoType,
				"cargo_amount":        input.CargoAmount,
				"notes":               input.Notes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDemandNotPending
		}
		if err := tx.Preload("Ship").First(&updated, "id = ?", demandID).Error; err != nil {
			return err
		}
		return s.recordEvent(tx, demandID, &armatorID, domain.EventDemandUpdated, map[string]interface{}{
			"port": input.Port,
		})
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a pending demand owned by the armator.
func (s *Service) Delete(ctx context.Context, armatorID, demandID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ownedDemand(tx, armatorID, demandID); err != nil {
			return err
		}
		res := tx.Where("id = ? AND status = ?", demandID, domain.DemandPending).Delete(&domain.Demand{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDemandNotPending
		}
		return nil
	})
}

// Cancel moves a pending demand to cancelled. Manual armator action.
func (s *Service) Cancel(ctx context.Context, armatorID, demandID uuid.UUID) error {
	return s.transition(ctx, &armatorID, demandID,
		[]string{domain.DemandPending}, domain.DemandCancelled, ErrDemandNotCancellable, true)
}

// Approve marks an open demand approved. Admin-only administrative label,
// independent of the offer flow: it neither requires nor produces offers.
func (s *Service) Approve(ctx context.Context, adminID, demandID uuid.UUID) error {
	return s.transition(ctx, &adminID, demandID,
		domain.DemandBiddableStatuses, domain.DemandApproved, ErrDemandNotApprovable, false)
}

// transition applies one conditional status update. Zero rows affected means
// the demand was missing or no longer in an allowed state.
func (s *Service) transition(ctx context.Context, actorID *uuid.UUID, demandID uuid.UUID, from []string, to string, stateErr error, ownerCheck bool) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if ownerCheck {
			if _, err := s.ownedDemand(tx, *actorID, demandID); err != nil {
				return err
			}
		}
		res := tx.Model(&domain.Demand{}).
			Where("id = ? AND status IN ?", demandID, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&domain.Demand{}).Where("id = ?", demandID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrDemandNotFound
			}
			return stateErr
		}
		return s.recordEvent(tx, demandID, actorID, domain.EventStatusChanged, map[string]interface{}{
			"to": to,
		})
	})
}

// Restore re-opens an archived demand: status back to pending, deadline
// cleared. This is a deliberate manual override, not a workflow transition.
func (s *Service) Restore(ctx context.Context, armatorID, demandID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ownedDemand(tx, armatorID, demandID); err != nil {
			return err
		}
		res := tx.Model(&domain.Demand{}).
			Where("id = ? AND status IN ?", demandID, domain.DemandArchivedStatuses).
			Updates(map[string]interface{}{
				"status":     domain.DemandPending,
				"expires_at": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDemandNotRestorable
		}
		return s.recordEvent(tx, demandID, &armatorID, domain.EventDemandRestored, nil)
	})
}

// ExpireSweep atomically flips every pending/reviewing demand past its
// deadline to expired. Idempotent and callable at any time; it runs at the top
// of every demand listing, so staleness is bounded by page visits rather than
// a timer. Demands without a deadline never expire. Each swept demand gets an
// EXPIRED event in the same transaction.
func (s *Service) ExpireSweep(ctx context.Context) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := tx.Model(&domain.Demand{}).
			Where("status IN ? AND expires_at IS NOT NULL AND expires_at <= ?", domain.DemandBiddableStatuses, s.now()).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		res := tx.Model(&domain.Demand{}).
			Where("id IN ? AND status IN ?", ids, domain.DemandBiddableStatuses).
			Update("status", domain.DemandExpired)
		if res.Error != nil {
			return res.Error
		}
		count = res.RowsAffected
		for _, id := range ids {
			if err := s.recordEvent(tx, id, nil, domain.EventDemandExpired, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.Info().Int64("expired", count).Msg("demand expiry sweep")
	}
	return count, nil
}

// ListForArmator returns all demands for the armator's ships, newest first.
func (s *Service) ListForArmator(ctx context.Context, armatorID uuid.UUID) ([]domain.Demand, error) {
	if _, err := s.ExpireSweep(ctx); err != nil {
		return nil, err
	}
	var demands []domain.Demand
	err := s.DB.WithContext(ctx).Preload("Ship").
		Joins("JOIN ships ON ships.id = demands.ship_id").
		Where("ships.armator_id = ?", armatorID).
		Order("demands.created_at DESC").
		Find(&demands).Error
	return demands, err
}

// ListForAgency returns active demands visible to the agency: statuses
// pending/reviewing/approved, filtered by the eligibility router. An agency
// with no registered ports sees everything (fail-open); hasPorts lets the
// caller surface the onboarding warning. A deep-linked demand bypasses the
// port filter but not the status filter.
func (s *Service) ListForAgency(ctx context.Context, agencyID uuid.UUID, openDemandID *uuid.UUID) ([]domain.Demand, bool, error) {
	if _, err := s.ExpireSweep(ctx); err != nil {
		return nil, false, err
	}

	var portNames []string
	if err := s.DB.WithContext(ctx).Model(&domain.AgencyPort{}).
		Where("agency_id = ?", agencyID).
		Pluck("port_name", &portNames).Error; err != nil {
		return nil, false, err
	}
	hasPorts := len(portNames) > 0

	var active []domain.Demand
	if err := s.DB.WithContext(ctx).Preload("Ship").
		Where("status IN ?", domain.DemandActiveStatuses).
		Order("created_at DESC").
		Find(&active).Error; err != nil {
		return nil, hasPorts, err
	}

	visible := active[:0:0]
	for _, d := range active {
		if ports.IsEligible(portNames, d.Port) {
			visible = append(visible, d)
		}
	}

	if openDemandID != nil {
		found := false
		for _, d := range visible {
			if d.ID == *openDemandID {
				found = true
				break
			}
		}
		if !found {
			var direct domain.Demand
			err := s.DB.WithContext(ctx).Preload("Ship").
				Where("id = ? AND status IN ?", *openDemandID, domain.DemandActiveStatuses).
				First(&direct).Error
			if err == nil {
				visible = append([]domain.Demand{direct}, visible...)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, hasPorts, err
			}
		}
	}

	return visible, hasPorts, nil
}

// ListAll returns every demand (admin view).
func (s *Service) ListAll(ctx context.Context) ([]domain.Demand, error) {
	if _, err := s.ExpireSweep(ctx); err != nil {
		return nil, err
	}
	var demands []domain.Demand
	err := s.DB.WithContext(ctx).Preload("Ship").
		Order("created_at DESC").
		Find(&demands).Error
	return demands, err
}

// ListArchiveForArmator returns the armator's demands in the terminal set.
func (s *Service) ListArchiveForArmator(ctx context.Context, armatorID uuid.UUID) ([]domain.Demand, error) {
	if _, err := s.ExpireSweep(ctx); err != nil {
		return nil, err
	}
	var demands []domain.Demand
	err := s.DB.WithContext(ctx).Preload("Ship").
		Joins("JOIN ships ON ships.id = demands.ship_id").
		Where("ships.armator_id = ? AND demands.status IN ?", armatorID, domain.DemandArchivedStatuses).
		Order("demands.created_at DESC").
		Find(&demands).Error
	return demands, err
}

// Get returns one demand with its ship. A missing ship join is tolerated:
// Ship stays nil and the caller renders a placeholder.
func (s *Service) Get(ctx context.Context, demandID uuid.UUID) (*domain.Demand, error) {
	var d domain.Demand
	if err := s.DB.WithContext(ctx).Preload("Ship").First(&d, "id = ?", demandID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDemandNotFound
		}
		return nil, err
	}
	return &d, nil
}

// GetForAgency returns one demand only while it is in the active set. The
// status filter that scopes the agency list also scopes the detail view, so
// archived demands stay invisible to agencies even by direct link.
func (s *Service) GetForAgency(ctx context.Context, demandID uuid.UUID) (*domain.Demand, error) {
	var d domain.Demand
	err := s.DB.WithContext(ctx).Preload("Ship").
		Where("id = ? AND status IN ?", demandID, domain.DemandActiveStatuses).
		First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDemandNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ownedDemand loads a demand only if one of the armator's ships references it.
// Foreign demands surface as not found, same as the row-level rules upstream.
func (s *Service) ownedDemand(tx *gorm.DB, armatorID, demandID uuid.UUID) (*domain.Demand, error) {
	var d domain.Demand
	err := tx.Joins("JOIN ships ON ships.id = demands.ship_id").
		Where("demands.id = ? AND ships.armator_id = ?", demandID, armatorID).
		First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDemandNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *Service) recordEvent(tx *gorm.DB, demandID uuid.UUID, actorID *uuid.UUID, eventType string, data map[string]interface{}) error {
	if data == nil {
		data = map[string]interface{}{}
	}
	b, _ := json.Marshal(data)
	return tx.Create(&domain.DemandEvent{
		DemandID:  demandID,
		EventType: eventType,
		ActorID:   actorID,
		EventData: datatypes.JSON(b),
	}).Error
}
