package entity

import (
	"math"
	"testing"

	"github.com/davidkiarie/opsdeck-api/internal/domain/enum"
	"github.com/google/uuid"
)

func revLine(category string, role enum.LineRole, qty, price, fee float64) RevenueLine {
	return RevenueLine{
		ID:         uuid.New(),
		Category:   category,
		Role:       role,
		Quantity:   qty,
		UnitPrice:  price,
		FeePercent: fee,
	}
}

func costLine(category string, qty, price, fee float64) CostLine {
	return CostLine{
		ID:         uuid.New(),
		Category:   category,
		Quantity:   qty,
		UnitPrice:  price,
		FeePercent: fee,
	}
}

func TestComputeRevenueNetAppliesFeeDeduction(t *testing.T) {
	line := revLine("Merch", enum.LineRoleOther, 100, 20, 10)
	got := ComputeRevenueNet(&line)
	want := 100.0 * 20.0 * 0.9
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected net %v, got %v", want, got)
	}
}

func TestComputeCostTotalAppliesFeeSurcharge(t *testing.T) {
	line := costLine("Catering", 50, 30, 10)
	got := ComputeCostTotal(&line)
	want := 50.0 * 30.0 * 1.1
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected total %v, got %v", want, got)
	}
}

func TestComputeTotalsWorkedExample(t *testing.T) {
	revenueLines := []RevenueLine{
		revLine("Ticket Sales", enum.LineRoleTicket, 500, 40, 0),
		revLine("Sponsorship", enum.LineRoleOther, 1, 5000, 0),
	}
	costLines := []CostLine{
		costLine("Venue", 1, 8000, 0),
		costLine("Artist Fee", 1, 6000, 0),
	}

	totals := ComputeTotals(revenueLines, costLines, 40)

	if totals.TotalRevenue != 25000 {
		t.Fatalf("expected total revenue 25000, got %v", totals.TotalRevenue)
	}
	if totals.TotalCosts != 14000 {
		t.Fatalf("expected total costs 14000, got %v", totals.TotalCosts)
	}
	if totals.GrossProfit != 11000 {
		t.Fatalf("expected gross profit 11000, got %v", totals.GrossProfit)
	}
	if math.Abs(totals.MarginPercent-44.0) > 1e-9 {
		t.Fatalf("expected margin 44.0, got %v", totals.MarginPercent)
	}
	if totals.BreakevenAttendance != 350 {
		t.Fatalf("expected breakeven 350, got %v", totals.BreakevenAttendance)
	}
}

func TestComputeTotalsZeroRevenueForcesZeroMargin(t *testing.T) {
	revenueLines := []RevenueLine{
		revLine("Ticket Sales", enum.LineRoleTicket, 0, 0, 0),
	}
	costLines := []CostLine{
		costLine("Venue", 1, 8000, 0),
	}

	totals := ComputeTotals(revenueLines, costLines, 40)

	if totals.MarginPercent != 0 {
		t.Fatalf("expected margin 0 with zero revenue, got %v", totals.MarginPercent)
	}
	if math.IsNaN(totals.MarginPercent) || math.IsInf(totals.MarginPercent, 0) {
		t.Fatalf("margin must never be NaN or Inf, got %v", totals.MarginPercent)
	}
}

func TestComputeTotalsZeroTicketPriceForcesZeroBreakeven(t *testing.T) {
	revenueLines := []RevenueLine{
		revLine("Sponsorship", enum.LineRoleOther, 1, 5000, 0),
	}
	costLines := []CostLine{
		costLine("Venue", 1, 8000, 0),
	}

	totals := ComputeTotals(revenueLines, costLines, 0)

	if totals.BreakevenAttendance != 0 {
		t.Fatalf("expected breakeven 0 with zero ticket price, got %v", totals.BreakevenAttendance)
	}
}

func TestComputeTotalsBreakevenRoundsUp(t *testing.T) {
	costLines := []CostLine{
		costLine("Venue", 1, 1001, 0),
	}

	totals := ComputeTotals(nil, costLines, 40)

	// 1001 / 40 = 25.025, a partial attendee does not cover the costs
	if totals.BreakevenAttendance != 26 {
		t.Fatalf("expected breakeven 26, got %v", totals.BreakevenAttendance)
	}
}

func TestComputeTotalsIsOrderIndependent(t *testing.T) {
	a := []RevenueLine{
		revLine("Ticket Sales", enum.LineRoleTicket, 500, 40, 0),
		revLine("Sponsorship", enum.LineRoleOther, 1, 5000, 0),
		revLine("Merch", enum.LineRoleOther, 200, 15, 5),
	}
	b := []RevenueLine{a[2], a[0], a[1]}
	costs := []CostLine{
		costLine("Venue", 1, 8000, 0),
		costLine("Security", 10, 300, 12),
	}

	first := ComputeTotals(a, costs, 40)
	second := ComputeTotals(b, costs, 40)

	if math.Abs(first.TotalRevenue-second.TotalRevenue) > 1e-9 {
		t.Fatalf("revenue totals differ by line order: %v vs %v", first.TotalRevenue, second.TotalRevenue)
	}
	if math.Abs(first.GrossProfit-second.GrossProfit) > 1e-9 {
		t.Fatalf("gross profit differs by line order: %v vs %v", first.GrossProfit, second.GrossProfit)
	}
}
