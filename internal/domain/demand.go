package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Demand statuses. pending → reviewing happens on the first offer; acceptance
// completes the demand; the sweep expires stale pending/reviewing demands.
const (
	DemandPending   = "pending"
	DemandReviewing = "reviewing"
	DemandApproved  = "approved"
	DemandRejected  = "rejected"
	DemandCompleted = "completed"
	DemandCancelled = "cancelled"
	DemandExpired   = "expired"
)

// Priority levels. Informational only: never sorts, routes or expires anything.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// DemandBiddableStatuses are the states in which offers may be submitted or accepted.
var DemandBiddableStatuses = []string{DemandPending, DemandReviewing}

// DemandActiveStatuses are the states agencies see in their demand list.
var DemandActiveStatuses = []string{DemandPending, DemandReviewing, DemandApproved}

// DemandArchivedStatuses is the terminal set; restore is the only way out.
var DemandArchivedStatuses = []string{DemandCompleted, DemandRejected, DemandCancelled, DemandExpired}

// Demand is one vessel's request for port service.
type Demand struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ShipID             uuid.UUID  `gorm:"column:ship_id;type:uuid;not null;index" json:"ship_id"`
	Status             string     `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`
	Port               string     `gorm:"column:port;not null" json:"port"`
	Details            string     `gorm:"column:details;not null" json:"details"`
	Priority           string     `gorm:"column:priority;type:varchar(10);not null;default:'normal'" json:"priority"`
	EstimatedArrival   *time.Time `gorm:"column:estimated_arrival" json:"estimated_arrival"`
	EstimatedDeparture *time.Time `gorm:"column:estimated_departure" json:"estimated_departure"`
	CargoType          *string    `gorm:"column:cargo_type" json:"cargo_type"`
	CargoAmount        *float64   `gorm:"column:cargo_amount" json:"cargo_amount"`
	Notes              *string    `gorm:"column:notes" json:"notes"`
	ExpiresAt          *time.Time `gorm:"column:expires_at;index" json:"expires_at"`

	Ship *Ship `gorm:"foreignKey:ShipID" json:"ship,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Demand) TableName() string { return "demands" }

func (d *Demand) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// DemandEvent is one audit entry on a demand's lifecycle. Written inside the
// same transaction as the transition it records; clients use the trail as the
// invalidation signal for cached projections.
type DemandEvent struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	DemandID  uuid.UUID      `gorm:"column:demand_id;type:uuid;not null;index" json:"demand_id"`
	EventType string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	ActorID   *uuid.UUID     `gorm:"column:actor_id;type:uuid" json:"actor_id"`
	EventData datatypes.JSON `gorm:"column:event_data" json:"event_data"`

	CreatedAt time.Time `json:"created_at"`
}

func (DemandEvent) TableName() string { return "demand_events" }

func (e *DemandEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Demand event types.
const (
	EventDemandCreated  = "CREATED"
	EventDemandUpdated  = "UPDATED"
	EventStatusChanged  = "STATUS_CHANGED"
	EventOfferSubmitted = "OFFER_SUBMITTED"
	EventOfferAccepted  = "OFFER_ACCEPTED"
	EventNominationSent = "NOMINATION_SENT"
	EventDemandRestored = "RESTORED"
	EventDemandExpired  = "EXPIRED"
)
