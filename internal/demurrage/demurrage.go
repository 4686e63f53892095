// Package demurrage computes laytime usage and demurrage cost for a
// barge voyage: hours used per port, time saved against the free-time
// allowance, and the amount owed at the agreed hourly rate.
//
// Calculate is a pure function of the input form; it never decides
// settlement status and persists nothing.
package demurrage

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ctrm/exposure-engine/internal/model"
)

// displayScale is the number of decimal places for derived figures.
const displayScale int32 = 2

var (
	two      = decimal.NewFromInt(2)
	nanosDec = decimal.NewFromInt(int64(time.Hour))
)

// Calculate derives every output figure from the input form state.
// Each port is allotted half the total free time; port time under that
// allowance counts as time saved. Demurrage accrues only on total time
// used beyond the full free-time figure.
func Calculate(in model.DemurrageInput) model.DemurrageResult {
	loadHours := portHours(in.LoadStart, in.LoadFinish, in.RoundLoadHours)
	dischargeHours := portHours(in.DischargeStart, in.DischargeFinish, in.RoundDischargeHours)

	halfFree := in.FreeTimeHours.Div(two)
	loadSaved := timeSaved(halfFree, loadHours)
	dischargeSaved := timeSaved(halfFree, dischargeHours)

	totalUsed := loadHours.Add(dischargeHours)

	demurrageHours := totalUsed.Sub(in.FreeTimeHours)
	if demurrageHours.IsNegative() {
		demurrageHours = decimal.Zero
	}
	demurrageDue := demurrageHours.Mul(in.Rate)

	return model.DemurrageResult{
		LoadPortHours:      loadHours.Round(displayScale),
		DischargePortHours: dischargeHours.Round(displayScale),
		LoadTimeSaved:      loadSaved.Round(displayScale),
		DischargeTimeSaved: dischargeSaved.Round(displayScale),
		TotalTimeUsed:      totalUsed.Round(displayScale),
		DemurrageHours:     demurrageHours.Round(displayScale),
		DemurrageDue:       demurrageDue.Round(displayScale),
	}
}

// portHours returns the elapsed hours between start and finish, zero if
// either timestamp is missing. With rounding enabled the figure is
// rounded to the nearest whole hour, the convention some charter
// parties apply per port.
func portHours(start, finish time.Time, roundWholeHours bool) decimal.Decimal {
	if start.IsZero() || finish.IsZero() {
		return decimal.Zero
	}
	elapsed := finish.Sub(start)
	if elapsed < 0 {
		return decimal.Zero
	}

	hours := decimal.NewFromInt(int64(elapsed)).Div(nanosDec)
	if roundWholeHours {
		return hours.Round(0)
	}
	return hours
}

// timeSaved is the unused part of a port's half share of the free time.
func timeSaved(halfFree, used decimal.Decimal) decimal.Decimal {
	saved := halfFree.Sub(used)
	if saved.IsNegative() {
		return decimal.Zero
	}
	return saved
}
