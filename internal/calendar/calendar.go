// Package calendar computes business-day counts and pro-rates quantities
// across calendar months weighted by business days. Weekends only — no
// holiday calendar is applied.
//
// All quantities use shopspring/decimal — never float64 for money.
package calendar

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ctrm/exposure-engine/internal/month"
)

// maxDistributionMonths bounds the month iteration in
// DistributeByBusinessDays against malformed ranges.
const maxDistributionMonths = 36

// quantityScale is the number of decimal places for distributed quantities.
const quantityScale int32 = 2

// IsBusinessDay reports whether t falls on a weekday (Mon-Fri).
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// CountBusinessDays returns the inclusive count of business days between
// start and end. Time-of-day is ignored; both bounds are normalized to
// midnight first. Returns 0 with a logged warning if end precedes start
// or either date is the zero value.
func CountBusinessDays(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		slog.Warn("invalid dates for business day count",
			"start", start, "end", end)
		return 0
	}

	s := truncateToDay(start)
	e := truncateToDay(end)
	if e.Before(s) {
		slog.Warn("end date before start date for business day count",
			"start", s, "end", e)
		return 0
	}

	count := 0
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			count++
		}
	}
	return count
}

// DistributeByBusinessDays splits total proportionally across every
// calendar month that [start, end] touches, weighted by each month's
// business-day count within the range. Returns an empty mapping if the
// range is invalid or contains no business days.
//
// The returned values sum exactly to total: each share is rounded to two
// decimals, then the residual is added to the month holding the largest
// allocation (first such month in chronological order on ties).
func DistributeByBusinessDays(start, end time.Time, total decimal.Decimal) map[month.Code]decimal.Decimal {
	result := make(map[month.Code]decimal.Decimal)

	totalDays := CountBusinessDays(start, end)
	if totalDays == 0 {
		return result
	}

	s := truncateToDay(start)
	e := truncateToDay(end)
	totalDaysDec := decimal.NewFromInt(int64(totalDays))

	var order []month.Code
	cursor := time.Date(s.Year(), s.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; !cursor.After(e); i++ {
		if i >= maxDistributionMonths {
			slog.Warn("distribution range exceeds month cap, aborting",
				"start", s, "end", e, "cap", maxDistributionMonths)
			break
		}

		sliceStart := cursor
		if sliceStart.Before(s) {
			sliceStart = s
		}
		sliceEnd := cursor.AddDate(0, 1, -1)
		if sliceEnd.After(e) {
			sliceEnd = e
		}

		if days := CountBusinessDays(sliceStart, sliceEnd); days > 0 {
			code := month.Format(cursor)
			share := total.
				Mul(decimal.NewFromInt(int64(days))).
				Div(totalDaysDec).
				Round(quantityScale)
			result[code] = share
			order = append(order, code)
		}

		cursor = cursor.AddDate(0, 1, 0)
	}

	if len(order) == 0 {
		return result
	}

	// Rounding correction: push the residual into the largest bucket so
	// the distributed values sum exactly to total.
	sum := decimal.Zero
	for _, code := range order {
		sum = sum.Add(result[code])
	}
	residual := total.Sub(sum)
	if !residual.IsZero() {
		largest := order[0]
		for _, code := range order[1:] {
			if result[code].GreaterThan(result[largest]) {
				largest = code
			}
		}
		result[largest] = result[largest].Add(residual)
	}

	return result
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
