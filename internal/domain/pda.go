package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PDA statuses. pending → reviewing → {returned, approved}; a returned PDA can
// be resubmitted by the armator, which puts it back to pending.
const (
	PdaPending   = "pending"
	PdaReviewing = "reviewing"
	PdaReturned  = "returned"
	PdaApproved  = "approved"
)

// PDA is a disbursement-account document submitted by an armator for admin
// cost review. Independent of the demand/offer flow.
type PDA struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ArmatorID   uuid.UUID  `gorm:"column:armator_id;type:uuid;not null;index" json:"armator_id"`
	ShipID      *uuid.UUID `gorm:"column:ship_id;type:uuid" json:"ship_id"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Description *string    `gorm:"column:description" json:"description"`
	Status      string     `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`

	FileURL  *string `gorm:"column:file_url" json:"file_url"`
	FileName *string `gorm:"column:file_name" json:"file_name"`
	FileSize *int64  `gorm:"column:file_size" json:"file_size"`

	ArmatorNotes   *string  `gorm:"column:armator_notes" json:"armator_notes"`
	AdminNotes     *string  `gorm:"column:admin_notes" json:"admin_notes"`
	TargetPrice    *float64 `gorm:"column:target_price;type:decimal(18,2)" json:"target_price"`
	TargetCurrency *string  `gorm:"column:target_currency;type:varchar(3)" json:"target_currency"`

	Armator *User `gorm:"foreignKey:ArmatorID" json:"armator,omitempty"`
	Ship    *Ship `gorm:"foreignKey:ShipID" json:"ship,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PDA) TableName() string { return "pdas" }

func (p *PDA) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PdaItem is one cost line on a PDA, maintained by the reviewing admin.
type PdaItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	PdaID       uuid.UUID `gorm:"column:pda_id;type:uuid;not null;index" json:"pda_id"`
	Description string    `gorm:"column:description;not null" json:"description"`
	Amount      *float64  `gorm:"column:amount;type:decimal(18,2)" json:"amount"`
	Currency    string    `gorm:"column:currency;type:varchar(3);not null;default:'USD'" json:"currency"`
	Note        *string   `gorm:"column:note" json:"note"`

	CreatedAt time.Time `json:"created_at"`
}

func (PdaItem) TableName() string { return "pda_items" }

func (i *PdaItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
