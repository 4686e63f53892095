package exposure

import (
	"github.com/ctrm/exposure-engine/internal/model"
	"github.com/ctrm/exposure-engine/internal/month"
)

// CalculatePhysical derives per-month physical and pricing exposure from
// physical trade legs.
//
// Physical exposure is attributed to the month of the loading-period
// start. Pricing exposure follows the pricing period: day-level when the
// formula carries a daily distribution, the EFP designated month for EFP
// legs, otherwise the month of the pricing-period start. Contributions
// for months outside the configured periods are dropped.
func CalculatePhysical(legs []model.PhysicalLeg, periods []month.Code) (physical, pricing Map) {
	physical = NewMap()
	pricing = NewMap()
	in := newPeriodSet(periods)

	for i := range legs {
		leg := &legs[i]
		addPhysicalFromLeg(physical, leg, in)
		addPricingFromLeg(pricing, leg, in)
	}
	return physical, pricing
}

// addPhysicalFromLeg attributes the leg's physical exposure to the
// loading-period start month. Legs without a formula still contribute
// their direction-signed quantity against their own product.
func addPhysicalFromLeg(dst Map, leg *model.PhysicalLeg, in periodSet) {
	if leg.LoadingStart.IsZero() {
		return
	}
	code := month.Format(leg.LoadingStart)
	if !in.contains(code) {
		return
	}

	if leg.Formula != nil && len(leg.Formula.Exposures.Physical) > 0 {
		dst.AddAll(code, leg.Formula.Exposures.Physical)
		return
	}
	if leg.Product != "" && !leg.Quantity.IsZero() {
		dst.Add(code, leg.Product, leg.SignedQuantity())
	}
}

// addPricingFromLeg attributes the leg's pricing exposure. A leg missing
// its formula or pricing entries contributes nothing.
func addPricingFromLeg(dst Map, leg *model.PhysicalLeg, in periodSet) {
	if leg.Formula == nil || len(leg.Formula.Exposures.Pricing) == 0 {
		return
	}

	// Daily distribution is the source of truth when present: each day's
	// quantity lands in its own calendar month.
	if len(leg.Formula.DailyDistribution) > 0 {
		addDailyDistribution(dst, leg.Formula.DailyDistribution, in, nil)
		return
	}

	// EFP legs price against a designated futures settlement month.
	if leg.PricingType == model.PricingEFP && leg.EFPDesignatedMonth != "" {
		code := month.Standardize(leg.EFPDesignatedMonth)
		if in.contains(code) {
			dst.AddAll(code, leg.Formula.Exposures.Pricing)
		}
		return
	}

	if leg.PricingStart.IsZero() {
		return
	}
	code := month.Format(leg.PricingStart)
	if in.contains(code) {
		dst.AddAll(code, leg.Formula.Exposures.Pricing)
	}
}

// addDailyDistribution sums day-level quantities into their own months.
// When rng is non-nil only dates inside the range are considered.
func addDailyDistribution(dst Map, daily model.DailyDistribution, in periodSet, rng *model.DateRange) {
	for instrument, days := range daily {
		for key, qty := range days {
			day, ok := parseDailyKey(key)
			if !ok {
				continue
			}
			if rng != nil && !month.DateInRange(day, rng.From, rng.To) {
				continue
			}
			code := month.Format(day)
			if in.contains(code) {
				dst.Add(code, instrument, qty)
			}
		}
	}
}
