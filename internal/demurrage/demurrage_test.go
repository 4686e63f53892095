package demurrage

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ctrm/exposure-engine/internal/model"
)

func ts(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func assertFigure(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func TestCalculate_WithinFreeTime(t *testing.T) {
	result := Calculate(model.DemurrageInput{
		LoadStart:       ts(2024, time.March, 1, 8, 0),
		LoadFinish:      ts(2024, time.March, 1, 18, 0),
		DischargeStart:  ts(2024, time.March, 3, 6, 0),
		DischargeFinish: ts(2024, time.March, 3, 14, 0),
		FreeTimeHours:   dec("24"),
		Rate:            dec("1000"),
	})

	assertFigure(t, "load port hours", result.LoadPortHours, "10")
	assertFigure(t, "discharge port hours", result.DischargePortHours, "8")
	assertFigure(t, "load time saved", result.LoadTimeSaved, "2")
	assertFigure(t, "discharge time saved", result.DischargeTimeSaved, "4")
	assertFigure(t, "total time used", result.TotalTimeUsed, "18")
	assertFigure(t, "demurrage hours", result.DemurrageHours, "0")
	assertFigure(t, "demurrage due", result.DemurrageDue, "0")
}

func TestCalculate_ExceedsFreeTime(t *testing.T) {
	result := Calculate(model.DemurrageInput{
		LoadStart:       ts(2024, time.March, 1, 8, 0),
		LoadFinish:      ts(2024, time.March, 1, 18, 0),
		DischargeStart:  ts(2024, time.March, 3, 6, 0),
		DischargeFinish: ts(2024, time.March, 4, 2, 0),
		FreeTimeHours:   dec("24"),
		Rate:            dec("1000"),
	})

	assertFigure(t, "discharge port hours", result.DischargePortHours, "20")
	assertFigure(t, "load time saved", result.LoadTimeSaved, "2")
	assertFigure(t, "discharge time saved", result.DischargeTimeSaved, "0")
	assertFigure(t, "total time used", result.TotalTimeUsed, "30")
	assertFigure(t, "demurrage hours", result.DemurrageHours, "6")
	assertFigure(t, "demurrage due", result.DemurrageDue, "6000")
}

func TestCalculate_MissingTimestamps(t *testing.T) {
	result := Calculate(model.DemurrageInput{
		LoadStart:     ts(2024, time.March, 1, 8, 0),
		FreeTimeHours: dec("24"),
		Rate:          dec("1000"),
	})

	assertFigure(t, "load port hours", result.LoadPortHours, "0")
	assertFigure(t, "discharge port hours", result.DischargePortHours, "0")
	assertFigure(t, "total time used", result.TotalTimeUsed, "0")
	assertFigure(t, "demurrage due", result.DemurrageDue, "0")
	// Empty ports still count their half-share as saved time.
	assertFigure(t, "load time saved", result.LoadTimeSaved, "12")
}

func TestCalculate_InvertedTimestamps(t *testing.T) {
	result := Calculate(model.DemurrageInput{
		LoadStart:     ts(2024, time.March, 2, 8, 0),
		LoadFinish:    ts(2024, time.March, 1, 8, 0),
		FreeTimeHours: dec("24"),
	})

	assertFigure(t, "load port hours", result.LoadPortHours, "0")
}

func TestCalculate_FractionalHoursRounded(t *testing.T) {
	in := model.DemurrageInput{
		LoadStart:     ts(2024, time.March, 1, 8, 0),
		LoadFinish:    ts(2024, time.March, 1, 18, 20),
		FreeTimeHours: dec("12"),
		Rate:          dec("300"),
	}

	result := Calculate(in)
	// 10h20m = 10.3333... displayed as 10.33.
	assertFigure(t, "load port hours", result.LoadPortHours, "10.33")

	in.RoundLoadHours = true
	rounded := Calculate(in)
	assertFigure(t, "rounded load port hours", rounded.LoadPortHours, "10")
}

func TestCalculate_WholeHourRoundingAffectsDemurrage(t *testing.T) {
	in := model.DemurrageInput{
		LoadStart:     ts(2024, time.March, 1, 8, 0),
		LoadFinish:    ts(2024, time.March, 1, 20, 40),
		FreeTimeHours: dec("12"),
		Rate:          dec("600"),
	}

	exact := Calculate(in)
	// 12.6667h over a 12h allowance: 0.67h x 600.
	assertFigure(t, "demurrage hours", exact.DemurrageHours, "0.67")
	assertFigure(t, "demurrage due", exact.DemurrageDue, "400")

	in.RoundLoadHours = true
	rounded := Calculate(in)
	// 12h40m rounds to 13h, leaving exactly 1h on demurrage.
	assertFigure(t, "rounded demurrage hours", rounded.DemurrageHours, "1")
	assertFigure(t, "rounded demurrage due", rounded.DemurrageDue, "600")
}
