// Package report provides the HTTP handlers for trade-leg management,
// exposure reporting, and demurrage calculations.
//
// All quantities use shopspring/decimal — never float64 for money.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ctrm/exposure-engine/internal/calendar"
	"github.com/ctrm/exposure-engine/internal/demurrage"
	"github.com/ctrm/exposure-engine/internal/exposure"
	"github.com/ctrm/exposure-engine/internal/limits"
	"github.com/ctrm/exposure-engine/internal/metrics"
	"github.com/ctrm/exposure-engine/internal/model"
	"github.com/ctrm/exposure-engine/internal/month"
	"github.com/ctrm/exposure-engine/internal/store"
)

// DefaultProducts is the instrument set shown when the caller does not
// name one: the biodiesel and gasoil benchmarks the desk trades against.
var DefaultProducts = []string{
	"Argus UCOME",
	"Argus RME",
	"Argus FAME0",
	"Argus HVO",
	"Platts LSGO",
	"ICE GASOIL",
}

// defaultPeriodCount is the width of the exposure window when the
// caller does not pass explicit periods.
const defaultPeriodCount = 12

// dateParam is the layout of from/to query parameters.
const dateParam = "2006-01-02"

// Service handles exposure reporting, trade-leg management, and
// demurrage calculations over a Store.
type Service struct {
	store   store.Store
	checker *limits.Checker
	wsHub   *WSHub // optional WebSocket hub for change broadcasts
	now     func() time.Time
}

// NewService creates a new report service.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(st store.Store, checker *limits.Checker, hub *WSHub) *Service {
	return &Service{
		store:   st,
		checker: checker,
		wsHub:   hub,
		now:     time.Now,
	}
}

// --- Request/Response types ---

// ExposureResponse is the JSON body returned from GET /exposure.
type ExposureResponse struct {
	Periods      []string            `json:"periods"`
	Rows         []model.ExposureRow `json:"rows"`
	ProductsSeen []string            `json:"products_seen"`
	Violations   []limits.Violation  `json:"violations,omitempty"`
	Filtered     bool                `json:"filtered"`
}

// DemurrageRequest is the JSON body for POST /demurrage.
type DemurrageRequest struct {
	model.DemurrageInput
	Save bool `json:"save"` // persist the calculation after computing
}

// --- Physical leg handlers ---

// CreatePhysicalLeg handles POST /api/v1/legs/physical
func (s *Service) CreatePhysicalLeg(w http.ResponseWriter, r *http.Request) {
	var leg model.PhysicalLeg
	if err := json.NewDecoder(r.Body).Decode(&leg); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if leg.Product == "" {
		writeError(w, "product is required", http.StatusBadRequest)
		return
	}
	if leg.BuySell != model.DirectionBuy && leg.BuySell != model.DirectionSell {
		writeError(w, "buy_sell must be buy or sell", http.StatusBadRequest)
		return
	}
	if leg.Quantity.IsZero() {
		writeError(w, "quantity must be non-zero", http.StatusBadRequest)
		return
	}
	if leg.PricingType == "" {
		leg.PricingType = model.PricingStandard
	}
	if leg.PricingType == model.PricingEFP && leg.EFPDesignatedMonth != "" {
		leg.EFPDesignatedMonth = month.Standardize(leg.EFPDesignatedMonth).String()
	}
	if leg.Formula != nil {
		leg.Formula.Exposures.Normalize()
	}

	leg.ID = uuid.New().String()
	leg.CreatedAt = s.now().UTC()

	if err := s.store.CreatePhysicalLeg(r.Context(), &leg); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}

	metrics.LegsCreated.WithLabelValues("physical").Inc()
	slog.Info("physical leg created",
		"id", leg.ID,
		"product", leg.Product,
		"direction", leg.BuySell,
		"qty", leg.Quantity.String(),
	)
	s.broadcast(WSMessage{Type: "leg_created", LegType: "physical", LegID: leg.ID, Product: leg.Product})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(leg)
}

// ListPhysicalLegs handles GET /api/v1/legs/physical
func (s *Service) ListPhysicalLegs(w http.ResponseWriter, r *http.Request) {
	legs, err := s.store.ListPhysicalLegs(r.Context())
	if err != nil {
		writeError(w, "failed to list physical legs", http.StatusInternalServerError)
		return
	}
	if legs == nil {
		legs = []model.PhysicalLeg{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(legs)
}

// GetPhysicalLeg handles GET /api/v1/legs/physical/{legID}
func (s *Service) GetPhysicalLeg(w http.ResponseWriter, r *http.Request) {
	leg, err := s.store.GetPhysicalLeg(r.Context(), chi.URLParam(r, "legID"))
	if err != nil {
		writeError(w, "physical leg not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(leg)
}

// DeletePhysicalLeg handles DELETE /api/v1/legs/physical/{legID}
func (s *Service) DeletePhysicalLeg(w http.ResponseWriter, r *http.Request) {
	legID := chi.URLParam(r, "legID")
	if err := s.store.DeletePhysicalLeg(r.Context(), legID); err != nil {
		writeError(w, "physical leg not found", http.StatusNotFound)
		return
	}
	s.broadcast(WSMessage{Type: "leg_deleted", LegType: "physical", LegID: legID})
	w.WriteHeader(http.StatusNoContent)
}

// --- Paper leg handlers ---

// CreatePaperLeg handles POST /api/v1/legs/paper
func (s *Service) CreatePaperLeg(w http.ResponseWriter, r *http.Request) {
	var leg model.PaperLeg
	if err := json.NewDecoder(r.Body).Decode(&leg); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if leg.Product == "" {
		writeError(w, "product is required", http.StatusBadRequest)
		return
	}
	if leg.BuySell != model.DirectionBuy && leg.BuySell != model.DirectionSell {
		writeError(w, "buy_sell must be buy or sell", http.StatusBadRequest)
		return
	}
	if leg.Quantity.IsZero() {
		writeError(w, "quantity must be non-zero", http.StatusBadRequest)
		return
	}
	switch leg.RelationshipType {
	case model.RelationshipFP:
	case model.RelationshipDiff, model.RelationshipSpread:
		if leg.RightSide == nil || leg.RightSide.Product == "" {
			writeError(w, "right_side is required for DIFF and SPREAD legs", http.StatusBadRequest)
			return
		}
	default:
		writeError(w, "relationship_type must be FP, DIFF, or SPREAD", http.StatusBadRequest)
		return
	}
	if leg.Period == "" {
		writeError(w, "period is required", http.StatusBadRequest)
		return
	}
	leg.Period = month.Standardize(leg.Period).String()
	leg.Exposures.Normalize()

	leg.ID = uuid.New().String()
	leg.CreatedAt = s.now().UTC()

	if err := s.store.CreatePaperLeg(r.Context(), &leg); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}

	metrics.LegsCreated.WithLabelValues("paper").Inc()
	slog.Info("paper leg created",
		"id", leg.ID,
		"product", leg.Product,
		"relationship", leg.RelationshipType,
		"period", leg.Period,
		"qty", leg.Quantity.String(),
	)
	s.broadcast(WSMessage{Type: "leg_created", LegType: "paper", LegID: leg.ID, Product: leg.Product, Period: leg.Period})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(leg)
}

// ListPaperLegs handles GET /api/v1/legs/paper
func (s *Service) ListPaperLegs(w http.ResponseWriter, r *http.Request) {
	legs, err := s.store.ListPaperLegs(r.Context())
	if err != nil {
		writeError(w, "failed to list paper legs", http.StatusInternalServerError)
		return
	}
	if legs == nil {
		legs = []model.PaperLeg{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(legs)
}

// GetPaperLeg handles GET /api/v1/legs/paper/{legID}
func (s *Service) GetPaperLeg(w http.ResponseWriter, r *http.Request) {
	leg, err := s.store.GetPaperLeg(r.Context(), chi.URLParam(r, "legID"))
	if err != nil {
		writeError(w, "paper leg not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(leg)
}

// DeletePaperLeg handles DELETE /api/v1/legs/paper/{legID}
func (s *Service) DeletePaperLeg(w http.ResponseWriter, r *http.Request) {
	legID := chi.URLParam(r, "legID")
	if err := s.store.DeletePaperLeg(r.Context(), legID); err != nil {
		writeError(w, "paper leg not found", http.StatusNotFound)
		return
	}
	s.broadcast(WSMessage{Type: "leg_deleted", LegType: "paper", LegID: legID})
	w.WriteHeader(http.StatusNoContent)
}

// --- Exposure report ---

// GetExposure handles GET /api/v1/exposure
//
// Query parameters:
//
//	periods  — comma-separated month codes (default: a rolling window
//	           starting at the current month)
//	products — comma-separated instrument names (default: DefaultProducts)
//	from, to — optional inclusive date range (2006-01-02); both must be
//	           present to activate the filtered calculation path
func (s *Service) GetExposure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	periods, err := s.parsePeriods(r.URL.Query().Get("periods"))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	products := parseProducts(r.URL.Query().Get("products"))

	rng, err := parseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	physicalLegs, err := s.store.ListPhysicalLegs(ctx)
	if err != nil {
		writeError(w, "failed to load physical legs", http.StatusInternalServerError)
		return
	}
	paperLegs, err := s.store.ListPaperLegs(ctx)
	if err != nil {
		writeError(w, "failed to load paper legs", http.StatusInternalServerError)
		return
	}

	start := time.Now()
	result := exposure.Calculate(exposure.Input{
		PhysicalLegs: physicalLegs,
		PaperLegs:    paperLegs,
		Periods:      periods,
		Products:     products,
		Range:        rng,
	})
	metrics.CalculationDuration.Observe(time.Since(start).Seconds())
	metrics.CalculationsTotal.WithLabelValues(strconv.FormatBool(rng != nil)).Inc()

	violations := s.checker.Check(result.Rows)
	for _, v := range violations {
		metrics.LimitViolations.WithLabelValues(v.Kind).Inc()
		slog.Warn("exposure limit breached",
			"kind", v.Kind,
			"month", v.Month,
			"instrument", v.Instrument,
			"family", v.Family,
			"net", v.Net.String(),
			"limit", v.Limit.String(),
		)
	}

	resp := ExposureResponse{
		Periods:      periodStrings(periods),
		Rows:         result.Rows,
		ProductsSeen: result.ProductsSeen,
		Violations:   violations,
		Filtered:     rng != nil,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// --- Business-day distribution ---

// DistributionResponse is the JSON body returned from GET /distribution.
type DistributionResponse struct {
	BusinessDays int                        `json:"business_days"`
	Months       map[string]decimal.Decimal `json:"months"`
}

// GetDistribution handles GET /api/v1/distribution
//
// Pro-rates a quantity across the months of [start, end] weighted by
// business days. The entry form uses this to prefill a leg's monthly
// pricing split before the trader refines it day by day.
func (s *Service) GetDistribution(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := time.Parse(dateParam, q.Get("start"))
	if err != nil {
		writeError(w, "invalid start date", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(dateParam, q.Get("end"))
	if err != nil {
		writeError(w, "invalid end date", http.StatusBadRequest)
		return
	}
	quantity, err := decimal.NewFromString(q.Get("quantity"))
	if err != nil {
		writeError(w, "invalid quantity", http.StatusBadRequest)
		return
	}

	shares := calendar.DistributeByBusinessDays(start, end, quantity)
	months := make(map[string]decimal.Decimal, len(shares))
	for code, share := range shares {
		months[code.String()] = share
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DistributionResponse{
		BusinessDays: calendar.CountBusinessDays(start, end),
		Months:       months,
	})
}

// --- Demurrage ---

// CalculateDemurrage handles POST /api/v1/demurrage
// Computes the derived figures; persists the calculation when save=true.
func (s *Service) CalculateDemurrage(w http.ResponseWriter, r *http.Request) {
	var req DemurrageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.FreeTimeHours.IsNegative() || req.Rate.IsNegative() {
		writeError(w, "free_time_hours and rate must not be negative", http.StatusBadRequest)
		return
	}

	result := demurrage.Calculate(req.DemurrageInput)
	metrics.DemurrageCalculations.Inc()

	calc := model.DemurrageCalculation{
		ID:        uuid.New().String(),
		Input:     req.DemurrageInput,
		Result:    result,
		CreatedAt: s.now().UTC(),
	}

	if req.Save {
		if err := s.store.SaveDemurrageCalculation(r.Context(), &calc); err != nil {
			writeError(w, "failed to save demurrage calculation", http.StatusInternalServerError)
			return
		}
		slog.Info("demurrage calculation saved",
			"id", calc.ID,
			"barge", req.BargeName,
			"due", result.DemurrageDue.String(),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(calc)
}

// ListDemurrageCalculations handles GET /api/v1/demurrage
func (s *Service) ListDemurrageCalculations(w http.ResponseWriter, r *http.Request) {
	calcs, err := s.store.ListDemurrageCalculations(r.Context())
	if err != nil {
		writeError(w, "failed to list demurrage calculations", http.StatusInternalServerError)
		return
	}
	if calcs == nil {
		calcs = []model.DemurrageCalculation{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(calcs)
}

// --- Helpers ---

func (s *Service) parsePeriods(raw string) ([]month.Code, error) {
	if raw == "" {
		return DefaultPeriods(s.now(), defaultPeriodCount), nil
	}
	var periods []month.Code
	for _, token := range strings.Split(raw, ",") {
		code, err := month.Parse(strings.TrimSpace(token))
		if err != nil {
			return nil, err
		}
		periods = append(periods, code)
	}
	return periods, nil
}

func parseProducts(raw string) []string {
	if raw == "" {
		return DefaultProducts
	}
	var products []string
	for _, token := range strings.Split(raw, ",") {
		if token = strings.TrimSpace(token); token != "" {
			products = append(products, token)
		}
	}
	return products
}

func parseRange(from, to string) (*model.DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, errors.New("both from and to are required for a date range")
	}
	f, err := time.Parse(dateParam, from)
	if err != nil {
		return nil, fmt.Errorf("invalid from date: %s", from)
	}
	t, err := time.Parse(dateParam, to)
	if err != nil {
		return nil, fmt.Errorf("invalid to date: %s", to)
	}
	if t.Before(f) {
		return nil, errors.New("to must not precede from")
	}
	return &model.DateRange{From: f, To: t}, nil
}

// DefaultPeriods returns a rolling window of n month codes starting at
// the month of now.
func DefaultPeriods(now time.Time, n int) []month.Code {
	periods := make([]month.Code, 0, n)
	cursor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		periods = append(periods, month.Format(cursor))
		cursor = cursor.AddDate(0, 1, 0)
	}
	return periods
}

func periodStrings(periods []month.Code) []string {
	out := make([]string, len(periods))
	for i, p := range periods {
		out[i] = p.String()
	}
	return out
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (s *Service) broadcast(msg WSMessage) {
	if s.wsHub != nil {
		s.wsHub.Broadcast(msg)
	}
}
