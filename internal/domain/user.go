package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values carried in the session and trusted for all authorization.
const (
	RoleArmator = "armator"
	RoleAgency  = "agency"
	RoleAdmin   = "admin"
)

// User is a platform profile: an armator, an agency or an admin.
type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Role         string    `gorm:"column:role;type:varchar(20);not null;default:'armator'" json:"role"`
	FullName     string    `gorm:"column:full_name;not null" json:"full_name"`
	Email        string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Phone        *string   `gorm:"column:phone" json:"phone"`
	CompanyName  *string   `gorm:"column:company_name" json:"company_name"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "profiles" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// AgencyPort is one registered service port of an agency profile.
// An agency with zero rows is eligible for every demand (fail-open).
type AgencyPort struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AgencyID uuid.UUID `gorm:"column:agency_id;type:uuid;not null;uniqueIndex:idx_agency_port" json:"agency_id"`
	PortName string    `gorm:"column:port_name;not null;uniqueIndex:idx_agency_port" json:"port_name"`

	CreatedAt time.Time `json:"created_at"`
}

func (AgencyPort) TableName() string { return "agency_ports" }

func (p *AgencyPort) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
