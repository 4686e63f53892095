package exposure

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ctrm/exposure-engine/internal/model"
	"github.com/ctrm/exposure-engine/internal/month"
)

// Buckets accumulates the four exposure buckets for one instrument in
// one month.
type Buckets struct {
	Physical         model.InstrumentMap
	Pricing          model.InstrumentMap
	Paper            model.InstrumentMap
	PricingFromPaper model.InstrumentMap
}

// Grid is the internal merge structure: month code → instrument → buckets.
type Grid map[month.Code]*Buckets

// Initialize builds a dense zero grid: every configured period with
// every allowed product present at zero across all buckets. This
// establishes the dense-grid invariant before any data is merged.
func Initialize(periods []month.Code, allowedProducts []string) Grid {
	grid := make(Grid, len(periods))
	for _, code := range periods {
		cell := &Buckets{
			Physical:         make(model.InstrumentMap, len(allowedProducts)),
			Pricing:          make(model.InstrumentMap, len(allowedProducts)),
			Paper:            make(model.InstrumentMap, len(allowedProducts)),
			PricingFromPaper: make(model.InstrumentMap, len(allowedProducts)),
		}
		for _, product := range allowedProducts {
			cell.Physical.Add(product, decimal.Zero)
			cell.Pricing.Add(product, decimal.Zero)
			cell.Paper.Add(product, decimal.Zero)
			cell.PricingFromPaper.Add(product, decimal.Zero)
		}
		grid[code] = cell
	}
	return grid
}

// Merge adds each source mapping into the grid in place and returns the
// sorted set of product names encountered. Pre-seeded zero columns are
// never removed; contributions for months missing from the grid are
// dropped (the extractors already filtered to the configured periods).
func Merge(grid Grid, physical, pricing, paper, pricingFromPaper Map) []string {
	seen := make(map[string]struct{})

	mergeOne := func(src Map, pick func(*Buckets) model.InstrumentMap) {
		for code, instruments := range src {
			cell, ok := grid[code]
			if !ok {
				continue
			}
			dst := pick(cell)
			for instrument, qty := range instruments {
				dst.Add(instrument, qty)
				seen[instrument] = struct{}{}
			}
		}
	}

	mergeOne(physical, func(c *Buckets) model.InstrumentMap { return c.Physical })
	mergeOne(pricing, func(c *Buckets) model.InstrumentMap { return c.Pricing })
	mergeOne(paper, func(c *Buckets) model.InstrumentMap { return c.Paper })
	mergeOne(pricingFromPaper, func(c *Buckets) model.InstrumentMap { return c.PricingFromPaper })

	products := make([]string, 0, len(seen))
	for p := range seen {
		products = append(products, p)
	}
	sort.Strings(products)
	return products
}

// FormatRows converts the merged grid into stable, period-ordered output
// rows: exactly one row per configured period regardless of sparsity,
// each containing every allowed product plus any extra products the data
// introduced. Net is the sum of all four buckets.
func FormatRows(grid Grid, periods []month.Code, allowedProducts []string) []model.ExposureRow {
	rows := make([]model.ExposureRow, 0, len(periods))

	for _, code := range periods {
		cell, ok := grid[code]
		if !ok {
			cell = emptyBuckets()
		}

		products := make(map[string]model.ProductExposure)
		for _, product := range rowProducts(cell, allowedProducts) {
			physical := cell.Physical[product]
			pricing := cell.Pricing[product]
			paper := cell.Paper[product]
			fromPaper := cell.PricingFromPaper[product]

			products[product] = model.ProductExposure{
				Physical:         physical,
				Pricing:          pricing,
				Paper:            paper,
				PricingFromPaper: fromPaper,
				Net:              physical.Add(pricing).Add(paper).Add(fromPaper),
			}
		}

		rows = append(rows, model.ExposureRow{
			Month:    code.String(),
			Products: products,
		})
	}
	return rows
}

// rowProducts returns the union of the allowed products and every
// product present in the cell, without duplicates.
func rowProducts(cell *Buckets, allowed []string) []string {
	set := make(map[string]struct{}, len(allowed))
	union := make([]string, 0, len(allowed))
	for _, p := range allowed {
		if _, ok := set[p]; !ok {
			set[p] = struct{}{}
			union = append(union, p)
		}
	}

	var extra []string
	for _, m := range []model.InstrumentMap{cell.Physical, cell.Pricing, cell.Paper, cell.PricingFromPaper} {
		for p := range m {
			if _, ok := set[p]; !ok {
				set[p] = struct{}{}
				extra = append(extra, p)
			}
		}
	}
	sort.Strings(extra)
	return append(union, extra...)
}

func emptyBuckets() *Buckets {
	return &Buckets{
		Physical:         make(model.InstrumentMap),
		Pricing:          make(model.InstrumentMap),
		Paper:            make(model.InstrumentMap),
		PricingFromPaper: make(model.InstrumentMap),
	}
}
