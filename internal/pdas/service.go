package pdas

import (
	"context"
	"errors"

	"naviport-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrPdaNotFound      = errors.New("PDA not found")
	ErrPdaNotReturned   = errors.New("Only returned PDAs can be resubmitted")
	ErrPdaNotPending    = errors.New("Only pending PDAs can move to reviewing")
	ErrPdaNotReviewable = errors.New("PDA is not open for review")
	ErrPdaItemNotFound  = errors.New("PDA item not found")
	ErrTitleRequired    = errors.New("Title is required")
	ErrInvalidPrice     = errors.New("Target price must be greater than zero")
	ErrItemDescRequired = errors.New("Item description is required")
)

type Service struct {
	DB *gorm.DB
}

// CreateInput for a new PDA submission.
type CreateInput struct {
	ShipID       *uuid.UUID `json:"ship_id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	FileURL      *string    `json:"file_url"`
	FileName     *string    `json:"file_name"`
	FileSize     *int64     `json:"file_size"`
	ArmatorNotes *string    `json:"armator_notes"`
}

// Create submits a new PDA in pending state.
func (s *Service) Create(ctx context.Context, armatorID uuid.UUID, input CreateInput) (*domain.PDA, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	pda := domain.PDA{
		ArmatorID:    armatorID,
		ShipID:       input.ShipID,
		Title:        input.Title,
		Description:  input.Description,
		Status:       domain.PdaPending,
		FileURL:      input.FileURL,
		FileName:     input.FileName,
		FileSize:     input.FileSize,
		ArmatorNotes: input.ArmatorNotes,
	}
	if err := s.DB.WithContext(ctx).Create(&pda).Error; err != nil {
		return nil, err
	}
	return &pda, nil
}

// ResubmitInput lets the armator revise a returned PDA.
type ResubmitInput struct {
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	FileURL      *string `json:"file_url"`
	FileName     *string `json:"file_name"`
	FileSize     *int64  `json:"file_size"`
	ArmatorNotes *string `json:"armator_notes"`
}

// Resubmit moves a returned PDA back to pending with the revised content.
func (s *Service) Resubmit(ctx context.Context, armatorID, pdaID uuid.UUID, input ResubmitInput) (*domain.PDA, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	var pda domain.PDA
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND armator_id = ?", pdaID, armatorID).First(&pda).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPdaNotFound
			}
			return err
		}
		res := tx.Model(&domain.PDA{}).
			Where("id = ? AND status = ?", pdaID, domain.PdaReturned).
			Updates(map[string]interface{}{
				"status":        domain.PdaPending,
				"title":         input.Title,
				"description":   input.Description,
				"file_url":      input.FileURL,
				"file_name":     input.FileName,
				"file_size":     input.FileSize,
				"armator_notes": input.ArmatorNotes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPdaNotReturned
		}
		return tx.First(&pda, "id = ?", pdaID).Error
	})
	if err != nil {
		return nil, err
	}
	return &pda, nil
}

// StartReview moves a pending PDA to reviewing (admin).
func (s *Service) StartReview(ctx context.Context, pdaID uuid.UUID) error {
	return s.adminTransition(ctx, pdaID, []string{domain.PdaPending}, domain.PdaReviewing, nil, ErrPdaNotPending)
}

// Approve closes review with approval (admin). Optional note kept for the armator.
func (s *Service) Approve(ctx context.Context, pdaID uuid.UUID, note *string) error {
	return s.adminTransition(ctx, pdaID, []string{domain.PdaPending, domain.PdaReviewing}, domain.PdaApproved, note, ErrPdaNotReviewable)
}

// Return sends the PDA back to the armator for revision (admin).
func (s *Service) Return(ctx context.Context, pdaID uuid.UUID, note *string) error {
	return s.adminTransition(ctx, pdaID, []string{domain.PdaPending, domain.PdaReviewing}, domain.PdaReturned, note, ErrPdaNotReviewable)
}

func (s *Service) adminTransition(ctx context.Context, pdaID uuid.UUID, from []string, to string, note *string, stateErr error) error {
	updates := map[string]interface{}{"status": to}
	if note != nil {
		updates["admin_notes"] = note
	}
	res := s.DB.WithContext(ctx).Model(&domain.PDA{}).
		Where("id = ? AND status IN ?", pdaID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.DB.WithContext(ctx).Model(&domain.PDA{}).Where("id = ?", pdaID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrPdaNotFound
		}
		return stateErr
	}
	return nil
}

// SetTargetPrice records the admin's negotiated price target on a PDA.
func (s *Service) SetTargetPrice(ctx context.Context, pdaID uuid.UUID, price float64, currency string) error {
	if price <= 0 {
		return ErrInvalidPrice
	}
	if currency == "" {
		currency = "USD"
	}
	res := s.DB.WithContext(ctx).Model(&domain.PDA{}).
		Where("id = ?", pdaID).
		Updates(map[string]interface{}{
			"target_price":    price,
			"target_currency": currency,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPdaNotFound
	}
	return nil
}

// ListForArmator returns the armator's PDAs with ship details, newest first.
func (s *Service) ListForArmator(ctx context.Context, armatorID uuid.UUID) ([]domain.PDA, error) {
	var pdas []domain.PDA
	err := s.DB.WithContext(ctx).Preload("Ship").
		Where("armator_id = ?", armatorID).
		Order("created_at DESC").
		Find(&pdas).Error
	return pdas, err
}

// ListAll returns every PDA with submitter and ship (admin view).
func (s *Service) ListAll(ctx context.Context) ([]domain.PDA, error) {
	var pdas []domain.PDA
	err := s.DB.WithContext(ctx).Preload("Armator").Preload("Ship").
		Order("created_at DESC").
		Find(&pdas).Error
	return pdas, err
}

// Get returns one PDA visible to the caller: its armator or any admin.
func (s *Service) Get(ctx context.Context, pdaID uuid.UUID, armatorID *uuid.UUID) (*domain.PDA, error) {
	q := s.DB.WithContext(ctx).Preload("Armator").Preload("Ship").Where("id = ?", pdaID)
	if armatorID != nil {
		q = q.Where("armator_id = ?", *armatorID)
	}
	var pda domain.PDA
	if err := q.First(&pda).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPdaNotFound
		}
		return nil, err
	}
	return &pda, nil
}

// ItemInput is one cost line payload.
type ItemInput struct {
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
	Currency    string   `json:"currency"`
	Note        *string  `json:"note"`
}

// AddItem appends a cost line to a PDA (admin).
func (s *Service) AddItem(ctx context.Context, pdaID uuid.UUID, input ItemInput) (*domain.PdaItem, error) {
	if input.Description == "" {
		return nil, ErrItemDescRequired
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}
	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.PDA{}).Where("id = ?", pdaID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrPdaNotFound
	}
	item := domain.PdaItem{
		PdaID:       pdaID,
		Description: input.Description,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Note:        input.Note,
	}
	if err := s.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem edits a cost line (admin).
func (s *Service) UpdateItem(ctx context.Context, itemID uuid.UUID, input ItemInput) (*domain.PdaItem, error) {
	if input.Description == "" {
		return nil, ErrItemDescRequired
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}
	var item domain.PdaItem
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", itemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPdaItemNotFound
			}
			return err
		}
		item.Description = input.Description
		item.Amount = input.Amount
		item.Currency = input.Currency
		item.Note = input.Note
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes a cost line (admin).
func (s *Service) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	res := s.DB.WithContext(ctx).Where("id = ?", itemID).Delete(&domain.PdaItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPdaItemNotFound
	}
	return nil
}

// ListItems returns a PDA's cost lines in insertion order.
func (s *Service) ListItems(ctx context.Context, pdaID uuid.UUID) ([]domain.PdaItem, error) {
	var items []domain.PdaItem
	err := s.DB.WithContext(ctx).
		Where("pda_id = ?", pdaID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}
