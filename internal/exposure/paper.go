package exposure

import (
	"github.com/ctrm/exposure-engine/internal/model"
	"github.com/ctrm/exposure-engine/internal/month"
)

// PaperOptions selects the paper extraction mode.
//
// In the default full-period mode the leg's nominal period drives month
// attribution. With OnlyDailyDistribution set, only legs carrying a daily
// distribution contribute, and every in-range day lands in its own
// month — the basis of sub-month slicing. Legs without daily granularity
// contribute nothing in that mode: exact sub-month paper exposure is
// only knowable when day-level data exists.
type PaperOptions struct {
	OnlyDailyDistribution bool
	From                  model.DateRange
}

// CalculatePaper derives per-month paper and pricing-from-paper exposure
// from paper trade legs.
func CalculatePaper(legs []model.PaperLeg, periods []month.Code, opts PaperOptions) (paper, pricingFromPaper Map) {
	paper = NewMap()
	pricingFromPaper = NewMap()
	in := newPeriodSet(periods)

	for i := range legs {
		leg := &legs[i]
		if opts.OnlyDailyDistribution {
			addPaperDaily(paper, pricingFromPaper, leg, in, opts.From)
		} else {
			addPaperFullPeriod(paper, pricingFromPaper, leg, in)
		}
	}
	return paper, pricingFromPaper
}

func addPaperFullPeriod(paper, pricingFromPaper Map, leg *model.PaperLeg, in periodSet) {
	if leg.Period == "" {
		return
	}
	code := month.Standardize(leg.Period)
	if !in.contains(code) {
		return
	}

	paperExp := paperExposures(leg)
	paper.AddAll(code, paperExp)

	if len(leg.Exposures.Pricing) > 0 {
		pricingFromPaper.AddAll(code, leg.Exposures.Pricing)
	} else {
		// Paper legs price against the same instruments they expose.
		pricingFromPaper.AddAll(code, paperExp)
	}
}

func addPaperDaily(paper, pricingFromPaper Map, leg *model.PaperLeg, in periodSet, rng model.DateRange) {
	if len(leg.DailyDistribution) == 0 {
		return
	}
	for instrument, days := range leg.DailyDistribution {
		for key, qty := range days {
			day, ok := parseDailyKey(key)
			if !ok {
				continue
			}
			if !month.DateInRange(day, rng.From, rng.To) {
				continue
			}
			code := month.Format(day)
			if !in.contains(code) {
				continue
			}
			paper.Add(code, instrument, qty)
			pricingFromPaper.Add(code, instrument, qty)
		}
	}
}

// paperExposures returns the leg's explicit paper exposure map, deriving
// it from the leg fields when the entry form did not precompute one.
// DIFF and SPREAD legs carry a mirror-signed right-side counter leg.
func paperExposures(leg *model.PaperLeg) model.InstrumentMap {
	if len(leg.Exposures.Paper) > 0 {
		return leg.Exposures.Paper
	}

	derived := make(model.InstrumentMap)
	if leg.Product != "" && !leg.Quantity.IsZero() {
		derived.Add(leg.Product, leg.SignedQuantity())
	}
	if (leg.RelationshipType == model.RelationshipDiff || leg.RelationshipType == model.RelationshipSpread) &&
		leg.RightSide != nil && leg.RightSide.Product != "" {
		derived.Add(leg.RightSide.Product, leg.RightSide.Quantity)
	}
	return derived
}
