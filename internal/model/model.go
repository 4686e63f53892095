// Package model defines the core domain types shared across the exposure
// engine. All quantities use shopspring/decimal — never float64 for money.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Buy/sell direction of a trade leg.
const (
	DirectionBuy  = "buy"
	DirectionSell = "sell"
)

// Pricing type discriminator for physical legs.
const (
	PricingStandard = "standard"
	PricingEFP      = "efp"
	PricingFixed    = "fixed"
)

// Paper relationship types. DIFF and SPREAD legs carry a mirror-signed
// right-side counter leg.
const (
	RelationshipFP     = "FP"
	RelationshipDiff   = "DIFF"
	RelationshipSpread = "SPREAD"
)

// TokenKind enumerates pricing formula token variants.
type TokenKind string

const (
	TokenInstrument   TokenKind = "instrument"
	TokenFixedValue   TokenKind = "fixedValue"
	TokenPercentage   TokenKind = "percentage"
	TokenOperator     TokenKind = "operator"
	TokenOpenBracket  TokenKind = "openBracket"
	TokenCloseBracket TokenKind = "closeBracket"
)

// FormulaToken is one element of a pricing formula expression.
type FormulaToken struct {
	Kind  TokenKind `json:"kind"`
	Value string    `json:"value"`
}

// InstrumentMap maps an instrument name to a signed quantity.
type InstrumentMap map[string]decimal.Decimal

// Add accumulates qty into the map, never overwriting.
func (m InstrumentMap) Add(instrument string, qty decimal.Decimal) {
	m[instrument] = m[instrument].Add(qty)
}

// DailyDistribution is a per-instrument day-level breakdown of exposure
// within a pricing period. Dates are keyed as "2006-01-02". When present
// it is the source of truth for date-level apportionment and sums per
// instrument to the corresponding monthly figure.
type DailyDistribution map[string]map[string]decimal.Decimal

// Exposures holds the precomputed instrument exposure maps of a leg.
// Maps are always non-nil; absence of a contribution is an empty map,
// never nil.
type Exposures struct {
	Physical InstrumentMap `json:"physical"`
	Pricing  InstrumentMap `json:"pricing"`
	Paper    InstrumentMap `json:"paper"`
}

// NewExposures returns an Exposures value with empty, non-nil maps.
func NewExposures() Exposures {
	return Exposures{
		Physical: make(InstrumentMap),
		Pricing:  make(InstrumentMap),
		Paper:    make(InstrumentMap),
	}
}

// Normalize replaces nil maps with empty ones so callers can index
// without defensive checks.
func (e *Exposures) Normalize() {
	if e.Physical == nil {
		e.Physical = make(InstrumentMap)
	}
	if e.Pricing == nil {
		e.Pricing = make(InstrumentMap)
	}
	if e.Paper == nil {
		e.Paper = make(InstrumentMap)
	}
}

// PricingFormula is the ordered token expression of a physical leg
// together with its precomputed exposure maps.
type PricingFormula struct {
	Tokens            []FormulaToken    `json:"tokens"`
	Exposures         Exposures         `json:"exposures"`
	DailyDistribution DailyDistribution `json:"daily_distribution,omitempty"`
}

// PhysicalLeg is one priced physical delivery obligation.
// Zero-value dates mean "not set".
type PhysicalLeg struct {
	ID                 string          `json:"id" db:"id"`
	TradeReference     string          `json:"trade_reference" db:"trade_reference"`
	Product            string          `json:"product" db:"product"`
	BuySell            string          `json:"buy_sell" db:"buy_sell"`
	Quantity           decimal.Decimal `json:"quantity" db:"quantity"`
	Formula            *PricingFormula `json:"pricing_formula,omitempty" db:"pricing_formula"`
	LoadingStart       time.Time       `json:"loading_period_start" db:"loading_period_start"`
	LoadingEnd         time.Time       `json:"loading_period_end" db:"loading_period_end"`
	PricingStart       time.Time       `json:"pricing_period_start" db:"pricing_period_start"`
	PricingEnd         time.Time       `json:"pricing_period_end" db:"pricing_period_end"`
	PricingType        string          `json:"pricing_type" db:"pricing_type"`
	EFPDesignatedMonth string          `json:"efp_designated_month,omitempty" db:"efp_designated_month"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}

// SignedQuantity returns the leg quantity signed by direction:
// positive for buys, negative for sells.
func (l *PhysicalLeg) SignedQuantity() decimal.Decimal {
	if l.BuySell == DirectionSell {
		return l.Quantity.Neg()
	}
	return l.Quantity
}

// PaperSide is the right-hand counter leg of a DIFF or SPREAD paper leg.
// Quantity is mirror-signed relative to the left side.
type PaperSide struct {
	Product  string          `json:"product"`
	Quantity decimal.Decimal `json:"quantity"`
}

// PaperLeg is one leg of a purely financial position.
type PaperLeg struct {
	ID                string            `json:"id" db:"id"`
	TradeReference    string            `json:"trade_reference" db:"trade_reference"`
	Product           string            `json:"product" db:"product"`
	BuySell           string            `json:"buy_sell" db:"buy_sell"`
	Quantity          decimal.Decimal   `json:"quantity" db:"quantity"`
	Period            string            `json:"period" db:"period"`
	RelationshipType  string            `json:"relationship_type" db:"relationship_type"`
	RightSide         *PaperSide        `json:"right_side,omitempty" db:"right_side"`
	Exposures         Exposures         `json:"exposures" db:"exposures"`
	DailyDistribution DailyDistribution `json:"daily_distribution,omitempty" db:"daily_distribution"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
}

// SignedQuantity returns the leg quantity signed by direction.
func (l *PaperLeg) SignedQuantity() decimal.Decimal {
	if l.BuySell == DirectionSell {
		return l.Quantity.Neg()
	}
	return l.Quantity
}

// DateRange restricts an exposure calculation to a sub-period.
// Bounds are inclusive.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ProductExposure holds the four exposure buckets for one instrument in
// one month, plus the derived net.
type ProductExposure struct {
	Physical         decimal.Decimal `json:"physical"`
	Pricing          decimal.Decimal `json:"pricing"`
	Paper            decimal.Decimal `json:"paper"`
	PricingFromPaper decimal.Decimal `json:"pricing_from_paper"`
	Net              decimal.Decimal `json:"net"`
}

// ExposureRow is one output row of the exposure table: one calendar
// month with every configured instrument present (zero when no
// contribution — the grid is dense, never sparse).
type ExposureRow struct {
	Month    string                     `json:"month"`
	Products map[string]ProductExposure `json:"products"`
}

// DemurrageInput is the flat form state of a demurrage calculation.
type DemurrageInput struct {
	BargeName           string          `json:"barge_name"`
	BLDate              time.Time       `json:"bl_date"`
	Deadweight          decimal.Decimal `json:"deadweight"`
	QuantityLoaded      decimal.Decimal `json:"quantity_loaded"`
	RateMode            string          `json:"rate_mode"` // "TTB" or "BP"
	NominationSent      time.Time       `json:"nomination_sent"`
	NominationValid     time.Time       `json:"nomination_valid"`
	LoadStart           time.Time       `json:"load_port_start"`
	LoadFinish          time.Time       `json:"load_port_finish"`
	DischargeStart      time.Time       `json:"discharge_port_start"`
	DischargeFinish     time.Time       `json:"discharge_port_finish"`
	RoundLoadHours      bool            `json:"round_load_hours"`
	RoundDischargeHours bool            `json:"round_discharge_hours"`
	FreeTimeHours       decimal.Decimal `json:"free_time_hours"`
	Rate                decimal.Decimal `json:"rate"`
}

// DemurrageResult is the derived-field bundle, a pure function of the
// input. All figures are rounded to two decimal places.
type DemurrageResult struct {
	LoadPortHours      decimal.Decimal `json:"load_port_hours"`
	DischargePortHours decimal.Decimal `json:"discharge_port_hours"`
	LoadTimeSaved      decimal.Decimal `json:"load_time_saved"`
	DischargeTimeSaved decimal.Decimal `json:"discharge_time_saved"`
	TotalTimeUsed      decimal.Decimal `json:"total_time_used"`
	DemurrageHours     decimal.Decimal `json:"demurrage_hours"`
	DemurrageDue       decimal.Decimal `json:"demurrage_due"`
}

// DemurrageCalculation is a persisted calculation: the input form, its
// derived figures, and bookkeeping fields.
type DemurrageCalculation struct {
	ID        string          `json:"id" db:"id"`
	Input     DemurrageInput  `json:"input" db:"input"`
	Result    DemurrageResult `json:"result" db:"result"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
