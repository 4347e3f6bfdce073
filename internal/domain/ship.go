package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ship is a vessel owned by exactly one armator. IMO number is the business key.
type Ship struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ArmatorID uuid.UUID `gorm:"column:armator_id;type:uuid;not null;index" json:"armator_id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	ImoNo     string    `gorm:"column:imo_no;uniqueIndex;not null" json:"imo_no"`
	Flag      string    `gorm:"column:flag;not null" json:"flag"`
	GRT       float64   `gorm:"column:grt;not null" json:"grt"`
	NRT       float64   `gorm:"column:nrt;not null" json:"nrt"`
	DWT       *float64  `gorm:"column:dwt" json:"dwt"`
	BuildYear *int      `gorm:"column:build_year" json:"build_year"`
	ShipType  *string   `gorm:"column:ship_type" json:"ship_type"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Ship) TableName() string { return "ships" }

func (s *Ship) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
