package entity

import (
	"time"

	"github.com/davidkiarie/opsdeck-api/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventPnl is the profit-and-loss projection for a single event. It is the
// aggregate root the editing session mutates line by line; the embedded
// Totals are derived and recomputed after every mutation, never hand-edited.
type EventPnl struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	LinkedEventID *uuid.UUID     `gorm:"type:uuid;index" json:"linked_event_id,omitempty"`
	Meta          PnlMeta        `gorm:"embedded;embeddedPrefix:meta_" json:"meta"`
	Totals        PnlTotals      `gorm:"embedded" json:"totals"`
	Status        enum.PnlStatus `gorm:"default:0" json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	RevenueLines []RevenueLine `gorm:"foreignKey:PnlID" json:"revenue_lines"`
	CostLines    []CostLine    `gorm:"foreignKey:PnlID" json:"cost_lines"`
	Owner        User          `gorm:"foreignKey:OwnerID" json:"-"`
	LinkedEvent  *Event        `gorm:"foreignKey:LinkedEventID" json:"linked_event,omitempty"`
}

// BeforeCreate generates a UUID before creating a new P&L
func (p *EventPnl) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the EventPnl model
func (EventPnl) TableName() string {
	return "event_pnls"
}

// PnlMeta holds the descriptive context of the projected event.
// ExpectedAttendance and TicketPrice feed the breakeven figure and the
// scenario applier; the rest are display fields.
type PnlMeta struct {
	EventName          string     `gorm:"size:255" json:"event_name"`
	Location           string     `gorm:"size:255" json:"location"`
	StartDate          *time.Time `gorm:"type:date" json:"start_date,omitempty"`
	EndDate            *time.Time `gorm:"type:date" json:"end_date,omitempty"`
	ExpectedAttendance int        `gorm:"default:0" json:"expected_attendance"`
	TicketPrice        float64    `gorm:"type:decimal(15,2);default:0" json:"ticket_price"`
	Notes              *string    `gorm:"type:text" json:"notes,omitempty"`
}

// PnlTotals is the derived financial summary of a P&L
type PnlTotals struct {
	TotalRevenue        float64 `gorm:"type:decimal(15,2);default:0" json:"total_revenue"`
	TotalCosts          float64 `gorm:"type:decimal(15,2);default:0" json:"total_costs"`
	GrossProfit         float64 `gorm:"type:decimal(15,2);default:0" json:"gross_profit"`
	MarginPercent       float64 `gorm:"type:decimal(6,2);default:0" json:"margin_percent"`
	BreakevenAttendance int     `gorm:"default:0" json:"breakeven_attendance"`
}

// RevenueLine is a single revenue entry. FeePercent is a deduction such as
// a platform or processing commission: Net = Quantity * UnitPrice * (1 - FeePercent/100).
type RevenueLine struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	PnlID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"pnl_id"`
	Category   string         `gorm:"size:255" json:"category"`
	Role       enum.LineRole  `gorm:"default:0" json:"role"`
	Quantity   float64        `gorm:"type:decimal(15,2);default:0" json:"quantity"`
	UnitPrice  float64        `gorm:"type:decimal(15,2);default:0" json:"unit_price"`
	FeePercent float64        `gorm:"type:decimal(5,2);default:0" json:"fee_percent"`
	Net        float64        `gorm:"type:decimal(15,2);default:0" json:"net"`
	Position   int            `gorm:"default:0" json:"position"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new revenue line
func (l *RevenueLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the RevenueLine model
func (RevenueLine) TableName() string {
	return "pnl_revenue_lines"
}

// CostLine is a single cost entry. FeePercent here is a surcharge (service
// charge, booking fee): Total = Quantity * UnitPrice * (1 + FeePercent/100).
type CostLine struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	PnlID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"pnl_id"`
	Category   string         `gorm:"size:255" json:"category"`
	Quantity   float64        `gorm:"type:decimal(15,2);default:0" json:"quantity"`
	UnitPrice  float64        `gorm:"type:decimal(15,2);default:0" json:"unit_price"`
	FeePercent float64        `gorm:"type:decimal(5,2);default:0" json:"fee_percent"`
	Total      float64        `gorm:"type:decimal(15,2);default:0" json:"total"`
	Position   int            `gorm:"default:0" json:"position"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new cost line
func (l *CostLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CostLine model
func (CostLine) TableName() string {
	return "pnl_cost_lines"
}
