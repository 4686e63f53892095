package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ctrm/exposure-engine/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// Quantities are stored as NUMERIC for exact decimal precision; the
// structured formula/exposure payloads are stored as JSONB.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CreatePhysicalLeg(ctx context.Context, leg *model.PhysicalLeg) error {
	formula, err := marshalNullable(leg.Formula)
	if err != nil {
		return fmt.Errorf("marshal pricing formula: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO physical_legs
		   (id, trade_reference, product, buy_sell, quantity, pricing_formula,
		    loading_period_start, loading_period_end,
		    pricing_period_start, pricing_period_end,
		    pricing_type, efp_designated_month, created_at)
		 VALUES ($1, $2, $3, $4, $5::NUMERIC, $6, $7, $8, $9, $10, $11, $12, $13)`,
		leg.ID, leg.TradeReference, leg.Product, leg.BuySell,
		leg.Quantity.String(), formula,
		nullableTime(leg.LoadingStart), nullableTime(leg.LoadingEnd),
		nullableTime(leg.PricingStart), nullableTime(leg.PricingEnd),
		leg.PricingType, leg.EFPDesignatedMonth, leg.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetPhysicalLeg(ctx context.Context, id string) (*model.PhysicalLeg, error) {
	row := s.pool.QueryRow(ctx, selectPhysical+` WHERE id = $1`, id)
	leg, err := scanPhysicalLeg(row)
	if err != nil {
		return nil, fmt.Errorf("get physical leg %s: %w", id, err)
	}
	return leg, nil
}

func (s *PostgresStore) ListPhysicalLegs(ctx context.Context) ([]model.PhysicalLeg, error) {
	rows, err := s.pool.Query(ctx, selectPhysical+` ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var legs []model.PhysicalLeg
	for rows.Next() {
		leg, err := scanPhysicalLeg(rows)
		if err != nil {
			return nil, err
		}
		legs = append(legs, *leg)
	}
	return legs, rows.Err()
}

func (s *PostgresStore) DeletePhysicalLeg(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM physical_legs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("physical leg %s not found", id)
	}
	return nil
}

func (s *PostgresStore) CreatePaperLeg(ctx context.Context, leg *model.PaperLeg) error {
	exposures, err := json.Marshal(leg.Exposures)
	if err != nil {
		return fmt.Errorf("marshal exposures: %w", err)
	}
	daily, err := marshalNullable(leg.DailyDistribution)
	if err != nil {
		return fmt.Errorf("marshal daily distribution: %w", err)
	}
	rightSide, err := marshalNullable(leg.RightSide)
	if err != nil {
		return fmt.Errorf("marshal right side: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO paper_legs
		   (id, trade_reference, product, buy_sell, quantity, period,
		    relationship_type, right_side, exposures, daily_distribution, created_at)
		 VALUES ($1, $2, $3, $4, $5::NUMERIC, $6, $7, $8, $9, $10, $11)`,
		leg.ID, leg.TradeReference, leg.Product, leg.BuySell,
		leg.Quantity.String(), leg.Period, leg.RelationshipType,
		rightSide, exposures, daily, leg.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetPaperLeg(ctx context.Context, id string) (*model.PaperLeg, error) {
	row := s.pool.QueryRow(ctx, selectPaper+` WHERE id = $1`, id)
	leg, err := scanPaperLeg(row)
	if err != nil {
		return nil, fmt.Errorf("get paper leg %s: %w", id, err)
	}
	return leg, nil
}

func (s *PostgresStore) ListPaperLegs(ctx context.Context) ([]model.PaperLeg, error) {
	rows, err := s.pool.Query(ctx, selectPaper+` ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var legs []model.PaperLeg
	for rows.Next() {
		leg, err := scanPaperLeg(rows)
		if err != nil {
			return nil, err
		}
		legs = append(legs, *leg)
	}
	return legs, rows.Err()
}

func (s *PostgresStore) DeletePaperLeg(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM paper_legs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("paper leg %s not found", id)
	}
	return nil
}

func (s *PostgresStore) SaveDemurrageCalculation(ctx context.Context, calc *model.DemurrageCalculation) error {
	input, err := json.Marshal(calc.Input)
	if err != nil {
		return fmt.Errorf("marshal demurrage input: %w", err)
	}
	result, err := json.Marshal(calc.Result)
	if err != nil {
		return fmt.Errorf("marshal demurrage result: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO demurrage_calculations (id, input, result, created_at)
		 VALUES ($1, $2, $3, $4)`,
		calc.ID, input, result, calc.CreatedAt,
	)
	return err
}

func (s *PostgresStore) ListDemurrageCalculations(ctx context.Context) ([]model.DemurrageCalculation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, input, result, created_at
		 FROM demurrage_calculations ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calcs []model.DemurrageCalculation
	for rows.Next() {
		var c model.DemurrageCalculation
		var input, result []byte
		if err := rows.Scan(&c.ID, &input, &result, &c.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(input, &c.Input); err != nil {
			return nil, fmt.Errorf("unmarshal demurrage input: %w", err)
		}
		if err := json.Unmarshal(result, &c.Result); err != nil {
			return nil, fmt.Errorf("unmarshal demurrage result: %w", err)
		}
		calcs = append(calcs, c)
	}
	return calcs, rows.Err()
}

// --- Scan helpers ---

const selectPhysical = `
	SELECT id, trade_reference, product, buy_sell, quantity::TEXT,
	       pricing_formula,
	       loading_period_start, loading_period_end,
	       pricing_period_start, pricing_period_end,
	       pricing_type, efp_designated_month, created_at
	FROM physical_legs`

const selectPaper = `
	SELECT id, trade_reference, product, buy_sell, quantity::TEXT,
	       period, relationship_type, right_side, exposures,
	       daily_distribution, created_at
	FROM paper_legs`

// pgxRow abstracts pgx's QueryRow and Query results for shared scanning.
type pgxRow interface {
	Scan(dest ...interface{}) error
}

func scanPhysicalLeg(row pgxRow) (*model.PhysicalLeg, error) {
	var leg model.PhysicalLeg
	var qty string
	var formula []byte
	var loadStart, loadEnd, priceStart, priceEnd *time.Time

	if err := row.Scan(&leg.ID, &leg.TradeReference, &leg.Product, &leg.BuySell,
		&qty, &formula,
		&loadStart, &loadEnd, &priceStart, &priceEnd,
		&leg.PricingType, &leg.EFPDesignatedMonth, &leg.CreatedAt); err != nil {
		return nil, err
	}

	leg.Quantity, _ = decimal.NewFromString(qty)
	if len(formula) > 0 {
		var f model.PricingFormula
		if err := json.Unmarshal(formula, &f); err != nil {
			return nil, fmt.Errorf("unmarshal pricing formula: %w", err)
		}
		f.Exposures.Normalize()
		leg.Formula = &f
	}
	leg.LoadingStart = derefTime(loadStart)
	leg.LoadingEnd = derefTime(loadEnd)
	leg.PricingStart = derefTime(priceStart)
	leg.PricingEnd = derefTime(priceEnd)

	return &leg, nil
}

func scanPaperLeg(row pgxRow) (*model.PaperLeg, error) {
	var leg model.PaperLeg
	var qty string
	var rightSide, exposures, daily []byte

	if err := row.Scan(&leg.ID, &leg.TradeReference, &leg.Product, &leg.BuySell,
		&qty, &leg.Period, &leg.RelationshipType,
		&rightSide, &exposures, &daily, &leg.CreatedAt); err != nil {
		return nil, err
	}

	leg.Quantity, _ = decimal.NewFromString(qty)
	if len(rightSide) > 0 {
		var side model.PaperSide
		if err := json.Unmarshal(rightSide, &side); err != nil {
			return nil, fmt.Errorf("unmarshal right side: %w", err)
		}
		leg.RightSide = &side
	}
	if len(exposures) > 0 {
		if err := json.Unmarshal(exposures, &leg.Exposures); err != nil {
			return nil, fmt.Errorf("unmarshal exposures: %w", err)
		}
	}
	leg.Exposures.Normalize()
	if len(daily) > 0 {
		if err := json.Unmarshal(daily, &leg.DailyDistribution); err != nil {
			return nil, fmt.Errorf("unmarshal daily distribution: %w", err)
		}
	}

	return &leg, nil
}

// marshalNullable marshals v to JSON, mapping nil/empty values to SQL NULL.
func marshalNullable(v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case *model.PricingFormula:
		if val == nil {
			return nil, nil
		}
	case *model.PaperSide:
		if val == nil {
			return nil, nil
		}
	case model.DailyDistribution:
		if len(val) == 0 {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
