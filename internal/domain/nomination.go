package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Nomination carries voyage and contact details to the winning agency after an
// offer is accepted. Voyage fields are a snapshot taken at dispatch time; later
// edits to the ship or demand never alter a dispatched nomination. Immutable
// except IsRead.
type Nomination struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OfferID   uuid.UUID `gorm:"column:offer_id;type:uuid;not null;uniqueIndex" json:"offer_id"`
	DemandID  uuid.UUID `gorm:"column:demand_id;type:uuid;not null;index" json:"demand_id"`
	ArmatorID uuid.UUID `gorm:"column:armator_id;type:uuid;not null;index" json:"armator_id"`
	AgencyID  uuid.UUID `gorm:"column:agency_id;type:uuid;not null;index" json:"agency_id"`

	VesselName  *string    `gorm:"column:vessel_name" json:"vessel_name"`
	VesselImo   *string    `gorm:"column:vessel_imo" json:"vessel_imo"`
	Port        *string    `gorm:"column:port" json:"port"`
	ETA         *time.Time `gorm:"column:eta" json:"eta"`
	ETD         *time.Time `gorm:"column:etd" json:"etd"`
	CargoType   *string    `gorm:"column:cargo_type" json:"cargo_type"`
	CargoAmount *float64   `gorm:"column:cargo_amount" json:"cargo_amount"`

	ContactName  *string `gorm:"column:contact_name" json:"contact_name"`
	ContactEmail *string `gorm:"column:contact_email" json:"contact_email"`
	ContactPhone *string `gorm:"column:contact_phone" json:"contact_phone"`
	Message      *string `gorm:"column:message" json:"message"`

	IsRead bool `gorm:"column:is_read;not null;default:false" json:"is_read"`

	Armator *User `gorm:"foreignKey:ArmatorID" json:"armator,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Nomination) TableName() string { return "nominations" }

func (n *Nomination) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
