package exposure

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ctrm/exposure-engine/internal/model"
	"github.com/ctrm/exposure-engine/internal/month"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func assertQty(t *testing.T, m Map, code month.Code, instrument, want string) {
	t.Helper()
	got, ok := m[code][instrument]
	if !ok {
		t.Fatalf("no %s entry for %s in %v", instrument, code, m)
	}
	if !got.Equal(dec(want)) {
		t.Errorf("%s/%s = %s, want %s", code, instrument, got, want)
	}
}

func formulaWith(exp model.Exposures) *model.PricingFormula {
	return &model.PricingFormula{Exposures: exp}
}

func TestCalculatePhysical_FormulaExposures(t *testing.T) {
	legs := []model.PhysicalLeg{{
		ID:           "leg-1",
		Product:      "Argus UCOME",
		BuySell:      model.DirectionBuy,
		Quantity:     dec("1000"),
		LoadingStart: date(2024, time.March, 15),
		LoadingEnd:   date(2024, time.March, 20),
		PricingStart: date(2024, time.March, 1),
		PricingEnd:   date(2024, time.March, 31),
		PricingType:  model.PricingStandard,
		Formula: formulaWith(model.Exposures{
			Physical: model.InstrumentMap{"Argus UCOME": dec("1000")},
			Pricing:  model.InstrumentMap{"Argus UCOME": dec("-1000")},
		}),
	}}

	physical, pricing := CalculatePhysical(legs, []month.Code{"Mar-24"})

	assertQty(t, physical, "Mar-24", "Argus UCOME", "1000")
	assertQty(t, pricing, "Mar-24", "Argus UCOME", "-1000")
}

func TestCalculatePhysical_FallbackWithoutFormula(t *testing.T) {
	legs := []model.PhysicalLeg{{
		ID:           "leg-1",
		Product:      "Argus RME",
		BuySell:      model.DirectionSell,
		Quantity:     dec("500"),
		LoadingStart: date(2024, time.April, 2),
	}}

	physical, pricing := CalculatePhysical(legs, []month.Code{"Apr-24"})

	assertQty(t, physical, "Apr-24", "Argus RME", "-500")
	if len(pricing) != 0 {
		t.Errorf("expected no pricing exposure without a formula, got %v", pricing)
	}
}

func TestCalculatePhysical_AccumulatesSameBucket(t *testing.T) {
	legs := []model.PhysicalLeg{
		{
			ID: "a", Product: "Argus FAME0", BuySell: model.DirectionBuy,
			Quantity: dec("300"), LoadingStart: date(2024, time.March, 5),
		},
		{
			ID: "b", Product: "Argus FAME0", BuySell: model.DirectionSell,
			Quantity: dec("100"), LoadingStart: date(2024, time.March, 28),
		},
	}

	physical, _ := CalculatePhysical(legs, []month.Code{"Mar-24"})

	assertQty(t, physical, "Mar-24", "Argus FAME0", "200")
}

func TestCalculatePhysical_OutsidePeriodsDropped(t *testing.T) {
	legs := []model.PhysicalLeg{{
		ID: "a", Product: "Argus UCOME", BuySell: model.DirectionBuy,
		Quantity: dec("1000"), LoadingStart: date(2024, time.June, 10),
	}}

	physical, _ := CalculatePhysical(legs, []month.Code{"Mar-24", "Apr-24"})

	if len(physical) != 0 {
		t.Errorf("expected contributions outside configured periods dropped, got %v", physical)
	}
}

func TestCalculatePhysical_ZeroLoadingStartSkipped(t *testing.T) {
	legs := []model.PhysicalLeg{{
		ID: "a", Product: "Argus UCOME", BuySell: model.DirectionBuy,
		Quantity: dec("1000"),
	}}

	physical, _ := CalculatePhysical(legs, []month.Code{"Mar-24"})

	if len(physical) != 0 {
		t.Errorf("expected leg without loading start skipped, got %v", physical)
	}
}

func TestCalculatePhysical_EFPDesignatedMonth(t *testing.T) {
	legs := []model.PhysicalLeg{{
		ID: "a", Product: "Argus UCOME", BuySell: model.DirectionBuy,
		Quantity:           dec("1000"),
		LoadingStart:       date(2024, time.March, 15),
		PricingStart:       date(2024, time.March, 1),
		PricingEnd:         date(2024, time.March, 31),
		PricingType:        model.PricingEFP,
		EFPDesignatedMonth: "Apr 24",
		Formula: formulaWith(model.Exposures{
			Pricing: model.InstrumentMap{"ICE GASOIL": dec("-1000")},
		}),
	}}

	_, pricing := CalculatePhysical(legs, []month.Code{"Mar-24", "Apr-24"})

	// The designated month wins over the pricing period, and the
	// non-canonical "Apr 24" token is standardized on the way in.
	assertQty(t, pricing, "Apr-24", "ICE GASOIL", "-1000")
	if _, ok := pricing["Mar-24"]; ok {
		t.Errorf("pricing attributed to pricing-period month despite EFP designation")
	}
}

func TestCalculatePhysical_DailyDistributionWins(t *testing.T) {
	legs := []model.PhysicalLeg{{
		ID: "a", Product: "Argus UCOME", BuySell: model.DirectionBuy,
		Quantity:     dec("700"),
		LoadingStart: date(2024, time.February, 26),
		PricingStart: date(2024, time.February, 26),
		PricingEnd:   date(2024, time.March, 4),
		PricingType:  model.PricingStandard,
		Formula: &model.PricingFormula{
			Exposures: model.Exposures{
				Pricing: model.InstrumentMap{"Platts LSGO": dec("-700")},
			},
			DailyDistribution: model.DailyDistribution{
				"Platts LSGO": {
					"2024-02-26": dec("-175"),
					"2024-02-27": dec("-175"),
					"2024-02-28": dec("-175"),
					"2024-02-29": dec("-87.50"),
					"2024-03-01": dec("-87.50"),
				},
			},
		},
	}}

	_, pricing := CalculatePhysical(legs, []month.Code{"Feb-24", "Mar-24"})

	assertQty(t, pricing, "Feb-24", "Platts LSGO", "-612.50")
	assertQty(t, pricing, "Mar-24", "Platts LSGO", "-87.50")
}

func TestCalculatePhysical_MalformedDailyKeySkipped(t *testing.T) {
	legs := []model.PhysicalLeg{{
		ID: "a", Product: "Argus UCOME", BuySell: model.DirectionBuy,
		Quantity:     dec("100"),
		LoadingStart: date(2024, time.March, 1),
		Formula: &model.PricingFormula{
			Exposures: model.Exposures{
				Pricing: model.InstrumentMap{"Platts LSGO": dec("-100")},
			},
			DailyDistribution: model.DailyDistribution{
				"Platts LSGO": {
					"not-a-date": dec("-40"),
					"2024-03-05": dec("-60"),
				},
			},
		},
	}}

	_, pricing := CalculatePhysical(legs, []month.Code{"Mar-24"})

	assertQty(t, pricing, "Mar-24", "Platts LSGO", "-60")
}
