package exposure

import (
	"github.com/ctrm/exposure-engine/internal/model"
	"github.com/ctrm/exposure-engine/internal/month"
)

// efpInstrumentVariants are the instrument names under which EFP legs
// record their daily distribution.
var efpInstrumentVariants = []string{"ICE GASOIL", "ICE Gasoil", "EFP"}

// FilterPhysical restricts full-period physical exposure to the months
// touched by the range. Physical exposure is never apportioned below
// month granularity: a month either contributes its entire unfiltered
// exposure or none of it.
func FilterPhysical(full Map, periods []month.Code, rng model.DateRange) Map {
	filtered := NewMap()
	in := newPeriodSet(periods)

	for _, code := range month.CodesBetween(rng.From, rng.To) {
		if !in.contains(code) {
			continue
		}
		if instruments, ok := full[code]; ok {
			filtered.AddAll(code, instruments)
		}
	}
	return filtered
}

// FilterPricing re-derives pricing exposure from physical legs for the
// given range. Per leg, in priority order:
//
//  1. A daily distribution is sliced day by day, each in-range day
//     landing in its own month.
//  2. EFP legs without daily data attribute their whole pricing exposure
//     to the designated settlement month when that month is in range.
//  3. Legs with a pricing period overlapping the range attribute the
//     entire monthly pricing exposure to every month in the intersection
//     of pricing period and range. No reconciliation against day-level
//     data is attempted here: daily distribution wins outright when
//     present, so the two signals never mix within one leg.
//  4. Otherwise the loading-period start month is used, included only if
//     itself within range.
func FilterPricing(legs []model.PhysicalLeg, periods []month.Code, rng model.DateRange) Map {
	filtered := NewMap()
	in := newPeriodSet(periods)
	rangeCodes := newPeriodSet(month.CodesBetween(rng.From, rng.To))

	for i := range legs {
		leg := &legs[i]
		if leg.Formula == nil || len(leg.Formula.Exposures.Pricing) == 0 {
			continue
		}

		if len(leg.Formula.DailyDistribution) > 0 {
			daily := leg.Formula.DailyDistribution
			if leg.PricingType == model.PricingEFP && leg.EFPDesignatedMonth != "" {
				if variant, ok := EFPDailyVariant(daily); ok {
					daily = model.DailyDistribution{variant: daily[variant]}
				}
			}
			addDailyDistribution(filtered, daily, in, &rng)
			continue
		}

		if leg.PricingType == model.PricingEFP && leg.EFPDesignatedMonth != "" {
			code := month.Standardize(leg.EFPDesignatedMonth)
			if in.contains(code) && rangeCodes.contains(code) {
				filtered.AddAll(code, leg.Formula.Exposures.Pricing)
			}
			continue
		}

		if !leg.PricingStart.IsZero() && !leg.PricingEnd.IsZero() && periodsOverlap(leg, rng) {
			for _, code := range month.CodesBetween(leg.PricingStart, leg.PricingEnd) {
				if in.contains(code) && rangeCodes.contains(code) {
					filtered.AddAll(code, leg.Formula.Exposures.Pricing)
				}
			}
			continue
		}

		if leg.LoadingStart.IsZero() {
			continue
		}
		code := month.Format(leg.LoadingStart)
		if in.contains(code) && rangeCodes.contains(code) {
			filtered.AddAll(code, leg.Formula.Exposures.Pricing)
		}
	}
	return filtered
}

// EFPDailyVariant returns the first EFP instrument name variant present
// in the distribution, if any.
func EFPDailyVariant(daily model.DailyDistribution) (string, bool) {
	for _, variant := range efpInstrumentVariants {
		if _, ok := daily[variant]; ok {
			return variant, true
		}
	}
	return "", false
}

func periodsOverlap(leg *model.PhysicalLeg, rng model.DateRange) bool {
	return !leg.PricingStart.After(rng.To) && !leg.PricingEnd.Before(rng.From)
}
