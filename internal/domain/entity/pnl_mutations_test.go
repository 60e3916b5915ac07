package entity

import (
	"reflect"
	"testing"

	"github.com/davidkiarie/opsdeck-api/internal/domain/enum"
	"github.com/google/uuid"
)

func TestNewEmptyPnlStartsWithOneLineOfEachKind(t *testing.T) {
	ownerID := uuid.New()
	pnl := NewEmptyPnl(ownerID)

	if pnl.OwnerID != ownerID {
		t.Fatalf("expected owner %v, got %v", ownerID, pnl.OwnerID)
	}
	if pnl.Status != enum.PnlStatusDraft {
		t.Fatalf("expected draft status, got %v", pnl.Status)
	}
	if len(pnl.RevenueLines) != 1 || len(pnl.CostLines) != 1 {
		t.Fatalf("expected 1 revenue and 1 cost line, got %d and %d",
			len(pnl.RevenueLines), len(pnl.CostLines))
	}
	if pnl.RevenueLines[0].Role != enum.LineRoleTicket {
		t.Fatalf("expected the starting revenue line to carry the ticket role")
	}
	if pnl.Totals.TotalRevenue != 0 || pnl.Totals.TotalCosts != 0 {
		t.Fatalf("expected zeroed totals, got %+v", pnl.Totals)
	}
	if pnl.Totals.MarginPercent != 0 || pnl.Totals.BreakevenAttendance != 0 {
		t.Fatalf("expected safe zero margin and breakeven, got %+v", pnl.Totals)
	}
}

func TestAddLineRecomputesTotals(t *testing.T) {
	pnl := NewEmptyPnl(uuid.New())

	line := pnl.AddRevenueLine()
	if len(pnl.RevenueLines) != 2 {
		t.Fatalf("expected 2 revenue lines, got %d", len(pnl.RevenueLines))
	}

	err := pnl.UpdateRevenueLine(line.ID, RevenueLinePatch{
		Quantity:  ptrFloat(1),
		UnitPrice: ptrFloat(5000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pnl.Totals.TotalRevenue != 5000 {
		t.Fatalf("expected total revenue 5000, got %v", pnl.Totals.TotalRevenue)
	}
}

func TestRemoveLastRevenueLineIsRejected(t *testing.T) {
	pnl := NewEmptyPnl(uuid.New())
	id := pnl.RevenueLines[0].ID

	err := pnl.RemoveRevenueLine(id)
	if err != ErrLastRevenueLine {
		t.Fatalf("expected ErrLastRevenueLine, got %v", err)
	}
	if len(pnl.RevenueLines) != 1 {
		t.Fatalf("collection must be unchanged, got %d lines", len(pnl.RevenueLines))
	}
}

func TestRemoveLastCostLineIsRejected(t *testing.T) {
	pnl := NewEmptyPnl(uuid.New())
	id := pnl.CostLines[0].ID

	err := pnl.RemoveCostLine(id)
	if err != ErrLastCostLine {
		t.Fatalf("expected ErrLastCostLine, got %v", err)
	}
	if len(pnl.CostLines) != 1 {
		t.Fatalf("collection must be unchanged, got %d lines", len(pnl.CostLines))
	}
}

func TestRemoveLineDropsItAndRecomputes(t *testing.T) {
	pnl := NewEmptyPnl(uuid.New())
	extra := pnl.AddCostLine()
	if err := pnl.UpdateCostLine(extra.ID, CostLinePatch{
		Quantity:  ptrFloat(1),
		UnitPrice: ptrFloat(3000),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pnl.Totals.TotalCosts != 3000 {
		t.Fatalf("expected total costs 3000, got %v", pnl.Totals.TotalCosts)
	}

	if err := pnl.RemoveCostLine(extra.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pnl.CostLines) != 1 {
		t.Fatalf("expected 1 cost line after removal, got %d", len(pnl.CostLines))
	}
	if pnl.Totals.TotalCosts != 0 {
		t.Fatalf("expected total costs 0 after removal, got %v", pnl.Totals.TotalCosts)
	}
}

func TestUpdateLineUnknownIDReturnsNotFound(t *testing.T) {
	pnl := NewEmptyPnl(uuid.New())

	if err := pnl.UpdateRevenueLine(uuid.New(), RevenueLinePatch{}); err != ErrLineNotFound {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
	if err := pnl.UpdateCostLine(uuid.New(), CostLinePatch{}); err != ErrLineNotFound {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
}

func TestUpdateLineClampsInputs(t *testing.T) {
	pnl := NewEmptyPnl(uuid.New())
	id := pnl.RevenueLines[0].ID

	err := pnl.UpdateRevenueLine(id, RevenueLinePatch{
		Quantity:   ptrFloat(-5),
		UnitPrice:  ptrFloat(-10),
		FeePercent: ptrFloat(150),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	line := pnl.RevenueLines[0]
	if line.Quantity != 0 || line.UnitPrice != 0 {
		t.Fatalf("negative inputs must clamp to 0, got qty %v price %v", line.Quantity, line.UnitPrice)
	}
	if line.FeePercent != 100 {
		t.Fatalf("fee percent must clamp to 100, got %v", line.FeePercent)
	}
}

func TestRecalculateClampsLineInputs(t *testing.T) {
	pnl := NewEmptyPnl(uuid.New())
	pnl.RevenueLines[0].Quantity = -500
	pnl.RevenueLines[0].UnitPrice = 40
	pnl.CostLines[0].Quantity = 1
	pnl.CostLines[0].UnitPrice = -8000
	pnl.CostLines[0].FeePercent = 130
	pnl.Meta.TicketPrice = -40
	pnl.Meta.ExpectedAttendance = -10

	pnl.Recalculate()

	if pnl.RevenueLines[0].Quantity != 0 {
		t.Fatalf("negative quantity must clamp to 0, got %v", pnl.RevenueLines[0].Quantity)
	}
	if pnl.CostLines[0].UnitPrice != 0 {
		t.Fatalf("negative unit price must clamp to 0, got %v", pnl.CostLines[0].UnitPrice)
	}
	if pnl.CostLines[0].FeePercent != 100 {
		t.Fatalf("fee percent must clamp to 100, got %v", pnl.CostLines[0].FeePercent)
	}
	if pnl.Meta.TicketPrice != 0 || pnl.Meta.ExpectedAttendance != 0 {
		t.Fatalf("negative meta figures must clamp to 0, got %v/%d",
			pnl.Meta.TicketPrice, pnl.Meta.ExpectedAttendance)
	}
	if pnl.Totals.TotalRevenue != 0 || pnl.Totals.TotalCosts != 0 {
		t.Fatalf("expected zeroed totals after clamping, got %+v", pnl.Totals)
	}
}

func TestApplyScenarioOverwritesTicketLine(t *testing.T) {
	pnl := NewEmptyPnl(uuid.New())

	pnl.ApplyScenario(500, 40)

	if pnl.Meta.ExpectedAttendance != 500 || pnl.Meta.TicketPrice != 40 {
		t.Fatalf("expected meta 500/40, got %d/%v",
			pnl.Meta.ExpectedAttendance, pnl.Meta.TicketPrice)
	}
	ticket := pnl.TicketLine()
	if ticket == nil {
		t.Fatal("expected a ticket-role line")
	}
	if ticket.Quantity != 500 || ticket.UnitPrice != 40 {
		t.Fatalf("expected ticket line 500 @ 40, got %v @ %v", ticket.Quantity, ticket.UnitPrice)
	}
	if pnl.Totals.TotalRevenue != 20000 {
		t.Fatalf("expected total revenue 20000, got %v", pnl.Totals.TotalRevenue)
	}
}

func TestApplyScenarioIsIdempotent(t *testing.T) {
	pnl := NewEmptyPnl(uuid.New())

	pnl.ApplyScenario(500, 40)
	first := pnl.Totals
	pnl.ApplyScenario(500, 40)
	second := pnl.Totals

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("scenario application must be idempotent: %+v vs %+v", first, second)
	}
}

func TestApplyScenarioWithoutTicketLineOnlyChangesMeta(t *testing.T) {
	pnl := NewEmptyPnl(uuid.New())
	pnl.RevenueLines[0].Role = enum.LineRoleOther
	pnl.Recalculate()
	before := len(pnl.RevenueLines)

	pnl.ApplyScenario(500, 40)

	if len(pnl.RevenueLines) != before {
		t.Fatalf("no line may be invented, got %d lines", len(pnl.RevenueLines))
	}
	if pnl.RevenueLines[0].Quantity != 0 {
		t.Fatalf("non-ticket lines must be untouched, got qty %v", pnl.RevenueLines[0].Quantity)
	}
	if pnl.Meta.ExpectedAttendance != 500 || pnl.Meta.TicketPrice != 40 {
		t.Fatalf("meta must still update, got %d/%v",
			pnl.Meta.ExpectedAttendance, pnl.Meta.TicketPrice)
	}
}

func TestApplyScenarioClampsNegativeCandidates(t *testing.T) {
	pnl := NewEmptyPnl(uuid.New())

	pnl.ApplyScenario(-10, -40)

	if pnl.Meta.ExpectedAttendance != 0 || pnl.Meta.TicketPrice != 0 {
		t.Fatalf("negative candidates must clamp to 0, got %d/%v",
			pnl.Meta.ExpectedAttendance, pnl.Meta.TicketPrice)
	}
}

func TestUpdateMetaRecomputesBreakeven(t *testing.T) {
	pnl := NewEmptyPnl(uuid.New())
	if err := pnl.UpdateCostLine(pnl.CostLines[0].ID, CostLinePatch{
		Quantity:  ptrFloat(1),
		UnitPrice: ptrFloat(14000),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pnl.UpdateMeta(PnlMetaPatch{TicketPrice: ptrFloat(40)})

	if pnl.Totals.BreakevenAttendance != 350 {
		t.Fatalf("expected breakeven 350, got %v", pnl.Totals.BreakevenAttendance)
	}
}

func ptrFloat(v float64) *float64 { return &v }
