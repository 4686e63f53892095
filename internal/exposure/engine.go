package exposure

import (
	"log/slog"

	"github.com/ctrm/exposure-engine/internal/model"
	"github.com/ctrm/exposure-engine/internal/month"
)

// Input carries one calculation call: the fetched trade legs plus the
// configuration supplied at call time. Range is optional; when set the
// filtered code path is used for all four buckets.
type Input struct {
	PhysicalLegs []model.PhysicalLeg
	PaperLegs    []model.PaperLeg
	Periods      []month.Code
	Products     []string
	Range        *model.DateRange
}

// Result is a complete, immutable exposure snapshot. Rows contain one
// entry per configured period; ProductsSeen lists the instruments that
// actually carried data.
type Result struct {
	Rows         []model.ExposureRow `json:"rows"`
	ProductsSeen []string            `json:"products_seen"`
}

// Calculate runs the full pipeline: extract physical and paper exposure,
// apply the date-range filter when one is active, then merge into the
// dense per-month grid. Filtering is all-or-nothing across the four
// buckets for a given call.
func Calculate(in Input) Result {
	physical, pricing := CalculatePhysical(in.PhysicalLegs, in.Periods)
	paper, pricingFromPaper := CalculatePaper(in.PaperLegs, in.Periods, PaperOptions{})

	if in.Range != nil {
		rng := *in.Range
		physical = FilterPhysical(physical, in.Periods, rng)
		pricing = FilterPricing(in.PhysicalLegs, in.Periods, rng)
		// Paper is recomputed from daily data rather than sliced: only
		// daily-distribution legs can be correctly apportioned below
		// month granularity.
		paper, pricingFromPaper = CalculatePaper(in.PaperLegs, in.Periods, PaperOptions{
			OnlyDailyDistribution: true,
			From:                  rng,
		})
	}

	grid := Initialize(in.Periods, in.Products)
	seen := Merge(grid, physical, pricing, paper, pricingFromPaper)
	rows := FormatRows(grid, in.Periods, in.Products)

	slog.Debug("exposure calculated",
		"periods", len(in.Periods),
		"physical_legs", len(in.PhysicalLegs),
		"paper_legs", len(in.PaperLegs),
		"products_seen", len(seen),
		"filtered", in.Range != nil,
	)

	return Result{Rows: rows, ProductsSeen: seen}
}
