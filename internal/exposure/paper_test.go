package exposure

import (
	"testing"
	"time"

	"github.com/ctrm/exposure-engine/internal/model"
	"github.com/ctrm/exposure-engine/internal/month"
)

func TestCalculatePaper_ExplicitExposures(t *testing.T) {
	legs := []model.PaperLeg{{
		ID:               "p-1",
		Product:          "Argus UCOME",
		BuySell:          model.DirectionBuy,
		Quantity:         dec("500"),
		Period:           "May-24",
		RelationshipType: model.RelationshipFP,
		Exposures: model.Exposures{
			Paper:   model.InstrumentMap{"Argus UCOME": dec("500")},
			Pricing: model.InstrumentMap{"Argus UCOME": dec("-500")},
		},
	}}

	paper, fromPaper := CalculatePaper(legs, []month.Code{"May-24"}, PaperOptions{})

	assertQty(t, paper, "May-24", "Argus UCOME", "500")
	assertQty(t, fromPaper, "May-24", "Argus UCOME", "-500")
}

func TestCalculatePaper_DiffDerivesBothSides(t *testing.T) {
	legs := []model.PaperLeg{{
		ID:               "p-1",
		Product:          "Argus UCOME",
		BuySell:          model.DirectionBuy,
		Quantity:         dec("500"),
		Period:           "May-24",
		RelationshipType: model.RelationshipDiff,
		RightSide: &model.PaperSide{
			Product:  "ICE GASOIL",
			Quantity: dec("-500"),
		},
	}}

	paper, fromPaper := CalculatePaper(legs, []month.Code{"May-24"}, PaperOptions{})

	assertQty(t, paper, "May-24", "Argus UCOME", "500")
	assertQty(t, paper, "May-24", "ICE GASOIL", "-500")
	// With no explicit pricing map, pricing-from-paper mirrors paper.
	assertQty(t, fromPaper, "May-24", "Argus UCOME", "500")
	assertQty(t, fromPaper, "May-24", "ICE GASOIL", "-500")
}

func TestCalculatePaper_PeriodStandardized(t *testing.T) {
	legs := []model.PaperLeg{{
		ID: "p-1", Product: "Argus RME", BuySell: model.DirectionSell,
		Quantity: dec("200"), Period: "May 24",
		RelationshipType: model.RelationshipFP,
	}}

	paper, _ := CalculatePaper(legs, []month.Code{"May-24"}, PaperOptions{})

	assertQty(t, paper, "May-24", "Argus RME", "-200")
}

func TestCalculatePaper_OutsidePeriodsDropped(t *testing.T) {
	legs := []model.PaperLeg{{
		ID: "p-1", Product: "Argus RME", BuySell: model.DirectionBuy,
		Quantity: dec("200"), Period: "Aug-24",
		RelationshipType: model.RelationshipFP,
	}}

	paper, fromPaper := CalculatePaper(legs, []month.Code{"May-24"}, PaperOptions{})

	if len(paper) != 0 || len(fromPaper) != 0 {
		t.Errorf("expected nothing outside configured periods, got %v / %v", paper, fromPaper)
	}
}

func TestCalculatePaper_DailyMode(t *testing.T) {
	legs := []model.PaperLeg{
		{
			ID: "with-daily", Product: "Argus UCOME", BuySell: model.DirectionBuy,
			Quantity: dec("300"), Period: "May-24",
			RelationshipType: model.RelationshipFP,
			DailyDistribution: model.DailyDistribution{
				"Argus UCOME": {
					"2024-05-10": dec("100"),
					"2024-05-20": dec("100"),
					"2024-05-30": dec("100"),
				},
			},
		},
		{
			// No day-level data: contributes nothing in daily mode.
			ID: "without-daily", Product: "Argus RME", BuySell: model.DirectionBuy,
			Quantity: dec("999"), Period: "May-24",
			RelationshipType: model.RelationshipFP,
		},
	}

	paper, fromPaper := CalculatePaper(legs, []month.Code{"May-24"}, PaperOptions{
		OnlyDailyDistribution: true,
		From: model.DateRange{
			From: date(2024, time.May, 1),
			To:   date(2024, time.May, 15),
		},
	})

	assertQty(t, paper, "May-24", "Argus UCOME", "100")
	assertQty(t, fromPaper, "May-24", "Argus UCOME", "100")
	if _, ok := paper["May-24"]["Argus RME"]; ok {
		t.Errorf("leg without daily distribution contributed in daily mode")
	}
}

func TestCalculatePaper_DailyModeRangeBounds(t *testing.T) {
	legs := []model.PaperLeg{{
		ID: "p-1", Product: "Argus UCOME", BuySell: model.DirectionBuy,
		Quantity: dec("300"), Period: "May-24",
		RelationshipType: model.RelationshipFP,
		DailyDistribution: model.DailyDistribution{
			"Argus UCOME": {
				"2024-05-01": dec("100"),
				"2024-05-15": dec("100"),
				"2024-05-16": dec("100"),
			},
		},
	}}

	paper, _ := CalculatePaper(legs, []month.Code{"May-24"}, PaperOptions{
		OnlyDailyDistribution: true,
		From: model.DateRange{
			From: date(2024, time.May, 1),
			To:   date(2024, time.May, 15),
		},
	})

	// Both bounds inclusive, the 16th excluded.
	assertQty(t, paper, "May-24", "Argus UCOME", "200")
}
