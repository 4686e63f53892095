// Package exposure turns physical and paper trade legs into a normalized
// monthly exposure table: per month code and instrument, the physical,
// pricing, paper, and pricing-from-paper buckets.
//
// The package is pure computation over already-fetched, immutable inputs.
// Every calculation allocates fresh output structures, so results are
// complete snapshots and calls are safe to run in parallel.
//
// All quantities use shopspring/decimal — never float64 for money.
package exposure

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ctrm/exposure-engine/internal/model"
	"github.com/ctrm/exposure-engine/internal/month"
)

// dailyKeyLayout is the date key format of a daily distribution.
const dailyKeyLayout = "2006-01-02"

// Map accumulates signed quantities per month code and instrument.
type Map map[month.Code]model.InstrumentMap

// NewMap returns an empty exposure map.
func NewMap() Map {
	return make(Map)
}

// Add accumulates qty for the given month and instrument, never
// overwriting an existing contribution.
func (m Map) Add(code month.Code, instrument string, qty decimal.Decimal) {
	row, ok := m[code]
	if !ok {
		row = make(model.InstrumentMap)
		m[code] = row
	}
	row.Add(instrument, qty)
}

// AddAll accumulates every entry of src into the given month.
func (m Map) AddAll(code month.Code, src model.InstrumentMap) {
	for instrument, qty := range src {
		m.Add(code, instrument, qty)
	}
}

// periodSet answers membership queries against the configured periods.
type periodSet map[month.Code]struct{}

func newPeriodSet(periods []month.Code) periodSet {
	set := make(periodSet, len(periods))
	for _, p := range periods {
		set[p] = struct{}{}
	}
	return set
}

func (s periodSet) contains(code month.Code) bool {
	_, ok := s[code]
	return ok
}

// parseDailyKey parses a daily distribution date key. Malformed keys are
// dropped with a warning rather than aborting the calculation.
func parseDailyKey(key string) (time.Time, bool) {
	t, err := time.Parse(dailyKeyLayout, key)
	if err != nil {
		slog.Warn("invalid daily distribution date", "date", key)
		return time.Time{}, false
	}
	return t, true
}
