package users

import (
	"context"
	"errors"

	"naviport-backend/internal/domain"
	"naviport-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound  = errors.New("User not found")
	ErrInvalidName   = errors.New("Full name is required")
	ErrTooManyPorts  = errors.New("At most 20 ports can be registered")
	ErrEmptyPortName = errors.New("Port names cannot be empty")
)

const maxAgencyPorts = 20

type Service struct {
	DB *gorm.DB
}

// Get returns a profile by id.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateProfileInput covers the self-editable profile fields. Email and role
// are deliberately absent.
type UpdateProfileInput struct {
	FullName    string  `json:"full_name"`
	Phone       *string `json:"phone"`
	CompanyName *string `json:"company_name"`
}

// UpdateProfile edits the caller's own profile.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	if !validation.IsValidFullname(input.FullName) {
		return nil, ErrInvalidName
	}
	var u domain.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		u.FullName = input.FullName
		u.Phone = input.Phone
		u.CompanyName = input.CompanyName
		return tx.Save(&u).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListPorts returns the agency's registered service ports.
func (s *Service) ListPorts(ctx context.Context, agencyID uuid.UUID) ([]domain.AgencyPort, error) {
	var ports []domain.AgencyPort
	err := s.DB.WithContext(ctx).
		Where("agency_id = ?", agencyID).
		Order("port_name ASC").
		Find(&ports).Error
	return ports, err
}

// ReplacePorts swaps the agency's registered port set wholesale. Duplicates in
// the input collapse; an empty list is legal and puts the agency back in
// fail-open mode.
func (s *Service) ReplacePorts(ctx context.Context, agencyID uuid.UUID, portNames []string) ([]domain.AgencyPort, error) {
	seen := map[string]bool{}
	deduped := make([]string, 0, len(portNames))
	for _, name := range portNames {
		if name == "" {
			return nil, ErrEmptyPortName
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		deduped = append(deduped, name)
	}
	if len(deduped) > maxAgencyPorts {
		return nil, ErrTooManyPorts
	}

	var out []domain.AgencyPort
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("agency_id = ?", agencyID).Delete(&domain.AgencyPort{}).Error; err != nil {
			return err
		}
		for _, name := range deduped {
			p := domain.AgencyPort{AgencyID: agencyID, PortName: name}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
