package entity

import (
	"time"

	"github.com/davidkiarie/opsdeck-api/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is the operational event record provisioned from an approved P&L.
// PlannedBudget carries the P&L's total costs at approval time.
type Event struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Venue         string          `gorm:"size:255" json:"venue"`
	StartDate     *time.Time      `gorm:"type:date" json:"start_date,omitempty"`
	EndDate       *time.Time      `gorm:"type:date" json:"end_date,omitempty"`
	PlannedBudget float64         `gorm:"type:decimal(15,2);default:0" json:"planned_budget"`
	Status        enum.EventStatus `gorm:"default:0" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new event
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Event model
func (Event) TableName() string {
	return "events"
}
