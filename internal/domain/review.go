package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review rates the agency whose offer was accepted for a completed demand.
// (demand, armator) is the natural key: resubmitting updates in place.
type Review struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	DemandID  uuid.UUID `gorm:"column:demand_id;type:uuid;not null;uniqueIndex:idx_demand_armator" json:"demand_id"`
	ArmatorID uuid.UUID `gorm:"column:armator_id;type:uuid;not null;uniqueIndex:idx_demand_armator" json:"armator_id"`
	AgencyID  uuid.UUID `gorm:"column:agency_id;type:uuid;not null;index" json:"agency_id"`
	Rating    int       `gorm:"column:rating;not null" json:"rating"`
	Comment   *string   `gorm:"column:comment" json:"comment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Review) TableName() string { return "reviews" }

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
