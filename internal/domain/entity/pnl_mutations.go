package entity

import (
	"errors"
	"time"

	"github.com/davidkiarie/opsdeck-api/internal/domain/enum"
	"github.com/google/uuid"
)

var (
	// ErrLastRevenueLine is returned when removing the only remaining revenue line
	ErrLastRevenueLine = errors.New("cannot remove the last revenue line")
	// ErrLastCostLine is returned when removing the only remaining cost line
	ErrLastCostLine = errors.New("cannot remove the last cost line")
	// ErrLineNotFound is returned when a line id does not exist on the aggregate
	ErrLineNotFound = errors.New("line not found")
)

// NewEmptyPnl creates the draft-state starting aggregate: one zeroed
// ticket-role revenue line, one zeroed cost line, zeroed totals.
func NewEmptyPnl(ownerID uuid.UUID) *EventPnl {
	pnl := &EventPnl{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    "Untitled P&L",
		Status:  enum.PnlStatusDraft,
	}
	pnl.RevenueLines = []RevenueLine{{
		ID:       uuid.New(),
		PnlID:    pnl.ID,
		Category: "Ticket Sales",
		Role:     enum.LineRoleTicket,
	}}
	pnl.CostLines = []CostLine{{
		ID:       uuid.New(),
		PnlID:    pnl.ID,
		Category: "Venue",
	}}
	pnl.Recalculate()
	return pnl
}

// Recalculate clamps every numeric input into its valid range, then
// refreshes every line's derived value and the aggregate totals. Every
// mutation and save calls this before returning, so the rest of the system
// never observes stale totals or out-of-range figures, regardless of which
// path the aggregate came in through.
func (p *EventPnl) Recalculate() {
	for i := range p.RevenueLines {
		line := &p.RevenueLines[i]
		line.Quantity = clampNonNegative(line.Quantity)
		line.UnitPrice = clampNonNegative(line.UnitPrice)
		line.FeePercent = clampPercent(line.FeePercent)
		line.Net = ComputeRevenueNet(line)
	}
	for i := range p.CostLines {
		line := &p.CostLines[i]
		line.Quantity = clampNonNegative(line.Quantity)
		line.UnitPrice = clampNonNegative(line.UnitPrice)
		line.FeePercent = clampPercent(line.FeePercent)
		line.Total = ComputeCostTotal(line)
	}
	if p.Meta.ExpectedAttendance < 0 {
		p.Meta.ExpectedAttendance = 0
	}
	p.Meta.TicketPrice = clampNonNegative(p.Meta.TicketPrice)
	p.Totals = ComputeTotals(p.RevenueLines, p.CostLines, p.Meta.TicketPrice)
}

// AddRevenueLine appends a zeroed revenue line with a generated id and
// returns it.
func (p *EventPnl) AddRevenueLine() *RevenueLine {
	line := RevenueLine{
		ID:       uuid.New(),
		PnlID:    p.ID,
		Category: "New revenue",
		Role:     enum.LineRoleOther,
		Position: len(p.RevenueLines),
	}
	p.RevenueLines = append(p.RevenueLines, line)
	p.Recalculate()
	return &p.RevenueLines[len(p.RevenueLines)-1]
}

// AddCostLine appends a zeroed cost line with a generated id and returns it.
func (p *EventPnl) AddCostLine() *CostLine {
	line := CostLine{
		ID:       uuid.New(),
		PnlID:    p.ID,
		Category: "New cost",
		Position: len(p.CostLines),
	}
	p.CostLines = append(p.CostLines, line)
	p.Recalculate()
	return &p.CostLines[len(p.CostLines)-1]
}

// RevenueLinePatch is a partial update to a revenue line. Nil fields are
// left untouched.
type RevenueLinePatch struct {
	Category   *string        `json:"category"`
	Role       *enum.LineRole `json:"role"`
	Quantity   *float64       `json:"quantity"`
	UnitPrice  *float64       `json:"unit_price"`
	FeePercent *float64       `json:"fee_percent"`
}

// CostLinePatch is a partial update to a cost line
type CostLinePatch struct {
	Category   *string  `json:"category"`
	Quantity   *float64 `json:"quantity"`
	UnitPrice  *float64 `json:"unit_price"`
	FeePercent *float64 `json:"fee_percent"`
}

// UpdateRevenueLine merges the patch into the line with the given id,
// clamping numeric inputs into their valid ranges, then recomputes the
// line's net value and the aggregate totals.
func (p *EventPnl) UpdateRevenueLine(id uuid.UUID, patch RevenueLinePatch) error {
	for i := range p.RevenueLines {
		if p.RevenueLines[i].ID != id {
			continue
		}
		line := &p.RevenueLines[i]
		if patch.Category != nil {
			line.Category = *patch.Category
		}
		if patch.Role != nil {
			line.Role = *patch.Role
		}
		if patch.Quantity != nil {
			line.Quantity = clampNonNegative(*patch.Quantity)
		}
		if patch.UnitPrice != nil {
			line.UnitPrice = clampNonNegative(*patch.UnitPrice)
		}
		if patch.FeePercent != nil {
			line.FeePercent = clampPercent(*patch.FeePercent)
		}
		p.Recalculate()
		return nil
	}
	return ErrLineNotFound
}

// UpdateCostLine merges the patch into the cost line with the given id
func (p *EventPnl) UpdateCostLine(id uuid.UUID, patch CostLinePatch) error {
	for i := range p.CostLines {
		if p.CostLines[i].ID != id {
			continue
		}
		line := &p.CostLines[i]
		if patch.Category != nil {
			line.Category = *patch.Category
		}
		if patch.Quantity != nil {
			line.Quantity = clampNonNegative(*patch.Quantity)
		}
		if patch.UnitPrice != nil {
			line.UnitPrice = clampNonNegative(*patch.UnitPrice)
		}
		if patch.FeePercent != nil {
			line.FeePercent = clampPercent(*patch.FeePercent)
		}
		p.Recalculate()
		return nil
	}
	return ErrLineNotFound
}

// RemoveRevenueLine removes the line with the given id. A P&L must keep at
// least one revenue line, so removing the last one is rejected and the
// collection is left unchanged.
func (p *EventPnl) RemoveRevenueLine(id uuid.UUID) error {
	if len(p.RevenueLines) <= 1 {
		return ErrLastRevenueLine
	}
	for i := range p.RevenueLines {
		if p.RevenueLines[i].ID == id {
			p.RevenueLines = append(p.RevenueLines[:i], p.RevenueLines[i+1:]...)
			p.Recalculate()
			return nil
		}
	}
	return ErrLineNotFound
}

// RemoveCostLine removes the cost line with the given id, guarded by the
// same non-empty invariant as revenue lines.
func (p *EventPnl) RemoveCostLine(id uuid.UUID) error {
	if len(p.CostLines) <= 1 {
		return ErrLastCostLine
	}
	for i := range p.CostLines {
		if p.CostLines[i].ID == id {
			p.CostLines = append(p.CostLines[:i], p.CostLines[i+1:]...)
			p.Recalculate()
			return nil
		}
	}
	return ErrLineNotFound
}

// PnlMetaPatch is a partial update to the P&L meta fields
type PnlMetaPatch struct {
	Name               *string    `json:"name"`
	EventName          *string    `json:"event_name"`
	Location           *string    `json:"location"`
	StartDate          *time.Time `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
	ExpectedAttendance *int       `json:"expected_attendance"`
	TicketPrice        *float64   `json:"ticket_price"`
	Notes              *string    `json:"notes"`
}

// UpdateMeta merges the patch into the meta fields and recomputes totals
// (the breakeven figure depends on the ticket price).
func (p *EventPnl) UpdateMeta(patch PnlMetaPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.EventName != nil {
		p.Meta.EventName = *patch.EventName
	}
	if patch.Location != nil {
		p.Meta.Location = *patch.Location
	}
	if patch.StartDate != nil {
		p.Meta.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		p.Meta.EndDate = patch.EndDate
	}
	if patch.ExpectedAttendance != nil {
		attendance := *patch.ExpectedAttendance
		if attendance < 0 {
			attendance = 0
		}
		p.Meta.ExpectedAttendance = attendance
	}
	if patch.TicketPrice != nil {
		p.Meta.TicketPrice = clampNonNegative(*patch.TicketPrice)
	}
	if patch.Notes != nil {
		p.Meta.Notes = patch.Notes
	}
	p.Recalculate()
}

// ApplyScenario runs a what-if projection: it overwrites the committed
// attendance and ticket price, pushes the candidates into the ticket-role
// revenue line when one exists, and recomputes totals. When no ticket line
// exists only the meta fields change; no line is invented. Applying the
// same candidates twice yields the same aggregate state.
func (p *EventPnl) ApplyScenario(attendance int, ticketPrice float64) {
	if attendance < 0 {
		attendance = 0
	}
	ticketPrice = clampNonNegative(ticketPrice)

	p.Meta.ExpectedAttendance = attendance
	p.Meta.TicketPrice = ticketPrice

	for i := range p.RevenueLines {
		if p.RevenueLines[i].Role == enum.LineRoleTicket {
			p.RevenueLines[i].Quantity = float64(attendance)
			p.RevenueLines[i].UnitPrice = ticketPrice
			break
		}
	}

	p.Recalculate()
}

// TicketLine returns the revenue line tagged with the ticket role, or nil
func (p *EventPnl) TicketLine() *RevenueLine {
	for i := range p.RevenueLines {
		if p.RevenueLines[i].Role == enum.LineRoleTicket {
			return &p.RevenueLines[i]
		}
	}
	return nil
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
