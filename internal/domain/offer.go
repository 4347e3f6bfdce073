package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Offer statuses. Finalized exactly once at acceptance time and never revert.
const (
	OfferPending  = "pending"
	OfferAccepted = "accepted"
	OfferRejected = "rejected"
)

// Offer is one agency's bid against one demand. At most one per
// (demand, agency), at most one accepted per demand.
type Offer struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	DemandID uuid.UUID `gorm:"column:demand_id;type:uuid;not null;uniqueIndex:idx_demand_agency" json:"demand_id"`
	AgencyID uuid.UUID `gorm:"column:agency_id;type:uuid;not null;uniqueIndex:idx_demand_agency" json:"agency_id"`
	Status   string    `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`
	Price    *float64  `gorm:"column:price;type:decimal(18,2)" json:"price"`
	Currency string    `gorm:"column:currency;type:varchar(3);not null;default:'USD'" json:"currency"`
	Notes    *string   `gorm:"column:notes" json:"notes"`
	FileURL  *string   `gorm:"column:file_url" json:"file_url"`
	FileName *string   `gorm:"column:file_name" json:"file_name"`
	FileSize *int64    `gorm:"column:file_size" json:"file_size"`

	Agency *User `gorm:"foreignKey:AgencyID" json:"agency,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Offer) TableName() string { return "offers" }

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
