// Package limits evaluates exposure limits over a calculated monthly
// grid: a per-instrument cap on absolute net exposure in any single
// month, and an aggregate cap across instruments that share a pricing
// family.
//
// Instruments published by the same price reporting agency move
// together ("Argus UCOME" and "Argus RME" far more than either against
// "ICE GASOIL"), so the family cap bounds correlated risk the per-
// instrument cap alone would miss. Families are detected by the leading
// word of the instrument name.
package limits

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ctrm/exposure-engine/internal/model"
)

// Violation kinds.
const (
	KindInstrument = "instrument"
	KindFamily     = "family"
)

// Violation describes one breached limit in one month.
type Violation struct {
	Kind       string          `json:"kind"`
	Month      string          `json:"month"`
	Instrument string          `json:"instrument,omitempty"`
	Family     string          `json:"family,omitempty"`
	Net        decimal.Decimal `json:"net"`
	Limit      decimal.Decimal `json:"limit"`
}

// Checker holds the configured limits. Checking never blocks a
// calculation; violations are reported for the caller to surface.
type Checker struct {
	// MaxPerInstrument caps |net| for a single instrument in one month.
	MaxPerInstrument decimal.Decimal

	// MaxPerFamily caps the summed |net| across all instruments of one
	// pricing family in one month.
	MaxPerFamily decimal.Decimal
}

// NewChecker creates a checker with the given caps.
func NewChecker(maxPerInstrument, maxPerFamily decimal.Decimal) *Checker {
	return &Checker{
		MaxPerInstrument: maxPerInstrument,
		MaxPerFamily:     maxPerFamily,
	}
}

// Check evaluates every row of the grid and returns all violations,
// per-instrument breaches first within each month.
func (c *Checker) Check(rows []model.ExposureRow) []Violation {
	var violations []Violation

	for _, row := range rows {
		families := make(map[string]decimal.Decimal)

		for instrument, exp := range row.Products {
			abs := exp.Net.Abs()
			if abs.GreaterThan(c.MaxPerInstrument) {
				violations = append(violations, Violation{
					Kind:       KindInstrument,
					Month:      row.Month,
					Instrument: instrument,
					Net:        exp.Net,
					Limit:      c.MaxPerInstrument,
				})
			}
			fam := Family(instrument)
			families[fam] = families[fam].Add(abs)
		}

		for fam, total := range families {
			if total.GreaterThan(c.MaxPerFamily) {
				violations = append(violations, Violation{
					Kind:   KindFamily,
					Month:  row.Month,
					Family: fam,
					Net:    total,
					Limit:  c.MaxPerFamily,
				})
			}
		}
	}
	return violations
}

// Family returns the pricing family of an instrument: the leading word
// of its name ("Argus UCOME" → "Argus"), or the whole name for
// single-word instruments.
func Family(instrument string) string {
	if i := strings.IndexByte(instrument, ' '); i > 0 {
		return instrument[:i]
	}
	return instrument
}
