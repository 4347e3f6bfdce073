package ships

import (
	"context"
	"errors"
	"strings"

	"naviport-backend/internal/domain"
	"naviport-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrShipNotFound = errors.New("Ship not found")
	ErrInvalidIMO   = errors.New("IMO number must be seven digits")
	ErrImoTaken     = errors.New("A ship with this IMO number is already registered")
	ErrNameRequired = errors.New("Ship name and flag are required")
)

type Service struct {
	DB *gorm.DB
}

type Input struct {
	Name      string   `json:"name"`
	ImoNo     string   `json:"imo_no"`
	Flag      string   `json:"flag"`
	GRT       float64  `json:"grt"`
	NRT       float64  `json:"nrt"`
	DWT       *float64 `json:"dwt"`
	BuildYear *int     `json:"build_year"`
	ShipType  *string  `json:"ship_type"`
}

func (s *Service) Create(ctx context.Context, armatorID uuid.UUID, input Input) (*domain.Ship, error) {
	if input.Name == "" || input.Flag == "" {
		return nil, ErrNameRequired
	}
	if !validation.IsValidIMO(input.ImoNo) {
		return nil, ErrInvalidIMO
	}
	ship := domain.Ship{
		ArmatorID: armatorID,
		Name:      input.Name,
		ImoNo:     input.ImoNo,
		Flag:      input.Flag,
		GRT:       input.GRT,
		NRT:       input.NRT,
		DWT:       input.DWT,
		BuildYear: input.BuildYear,
		ShipType:  input.ShipType,
	}
	if err := s.DB.WithContext(ctx).Create(&ship).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrImoTaken
		}
		return nil, err
	}
	return &ship, nil
}

func (s *Service) List(ctx context.Context, armatorID uuid.UUID) ([]domain.Ship, error) {
	var ships []domain.Ship
	err := s.DB.WithContext(ctx).
		Where("armator_id = ?", armatorID).
		Order("created_at DESC").
		Find(&ships).Error
	return ships, err
}

func (s *Service) Get(ctx context.Context, armatorID, shipID uuid.UUID) (*domain.Ship, error) {
	var ship domain.Ship
	err := s.DB.WithContext(ctx).
		Where("id = ? AND armator_id = ?", shipID, armatorID).
		First(&ship).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipNotFound
		}
		return nil, err
	}
	return &ship, nil
}

func (s *Service) Update(ctx context.Context, armatorID, shipID uuid.UUID, input Input) (*domain.Ship, error) {
	if input.Name == "" || input.Flag == "" {
		return nil, ErrNameRequired
	}
	if !validation.IsValidIMO(input.ImoNo) {
		return nil, ErrInvalidIMO
	}
	var ship domain.Ship
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND armator_id = ?", shipID, armatorID).First(&ship).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShipNotFound
			}
			return err
		}
		ship.Name = input.Name
		ship.ImoNo = input.ImoNo
		ship.Flag = input.Flag
		ship.GRT = input.GRT
		ship.NRT = input.NRT
		ship.DWT = input.DWT
		ship.BuildYear = input.BuildYear
		ship.ShipType = input.ShipType
		if err := tx.Save(&ship).Error; err != nil {
			if isDuplicate(err) {
				return ErrImoTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ship, nil
}

// Delete removes a ship. Demands that referenced it keep their rows; readers
// tolerate the missing join.
func (s *Service) Delete(ctx context.Context, armatorID, shipID uuid.UUID) error {
	res := s.DB.WithContext(ctx).
		Where("id = ? AND armator_id = ?", shipID, armatorID).
		Delete(&domain.Ship{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrShipNotFound
	}
	return nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
