package entity

import "math"

// ComputeRevenueNet derives the net value of a revenue line after the fee
// deduction: quantity * unit price * (1 - fee/100).
func ComputeRevenueNet(line *RevenueLine) float64 {
	return line.Quantity * line.UnitPrice * (1 - line.FeePercent/100)
}

// ComputeCostTotal derives the total value of a cost line including the fee
// surcharge: quantity * unit price * (1 + fee/100).
func ComputeCostTotal(line *CostLine) float64 {
	return line.Quantity * line.UnitPrice * (1 + line.FeePercent/100)
}

// ComputeTotals derives the aggregate financial summary from the current
// line collections and the committed ticket price. Pure: it reads the
// lines' base fields (not their stored derived values) and touches nothing.
//
// MarginPercent is forced to 0 when total revenue is 0, and
// BreakevenAttendance to 0 when the ticket price is 0, so a freshly created
// P&L never shows NaN or a division fault.
func ComputeTotals(revenueLines []RevenueLine, costLines []CostLine, ticketPrice float64) PnlTotals {
	totals := PnlTotals{}

	for i := range revenueLines {
		totals.TotalRevenue += ComputeRevenueNet(&revenueLines[i])
	}
	for i := range costLines {
		totals.TotalCosts += ComputeCostTotal(&costLines[i])
	}

	totals.GrossProfit = totals.TotalRevenue - totals.TotalCosts

	if totals.TotalRevenue != 0 {
		totals.MarginPercent = totals.GrossProfit / totals.TotalRevenue * 100
	}

	if ticketPrice > 0 && totals.TotalCosts > 0 {
		totals.BreakevenAttendance = int(math.Ceil(totals.TotalCosts / ticketPrice))
	}

	return totals
}
