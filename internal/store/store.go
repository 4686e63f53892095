// Package store defines the persistence interface for the exposure
// engine's trade data. Implementations include PostgreSQL (source of
// truth), Redis (read-through cache), and in-memory (for testing).
package store

import (
	"context"

	"github.com/ctrm/exposure-engine/internal/model"
)

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer over the leg listings the
// exposure engine reads on every calculation.
type Store interface {
	// --- Physical trade legs ---

	// CreatePhysicalLeg persists a new physical leg.
	CreatePhysicalLeg(ctx context.Context, leg *model.PhysicalLeg) error

	// GetPhysicalLeg retrieves a physical leg by ID.
	GetPhysicalLeg(ctx context.Context, id string) (*model.PhysicalLeg, error)

	// ListPhysicalLegs returns all physical legs.
	ListPhysicalLegs(ctx context.Context) ([]model.PhysicalLeg, error)

	// DeletePhysicalLeg removes a physical leg.
	DeletePhysicalLeg(ctx context.Context, id string) error

	// --- Paper trade legs ---

	// CreatePaperLeg persists a new paper leg.
	CreatePaperLeg(ctx context.Context, leg *model.PaperLeg) error

	// GetPaperLeg retrieves a paper leg by ID.
	GetPaperLeg(ctx context.Context, id string) (*model.PaperLeg, error)

	// ListPaperLegs returns all paper legs.
	ListPaperLegs(ctx context.Context) ([]model.PaperLeg, error)

	// DeletePaperLeg removes a paper leg.
	DeletePaperLeg(ctx context.Context, id string) error

	// --- Demurrage calculations ---

	// SaveDemurrageCalculation persists a finalized calculation.
	SaveDemurrageCalculation(ctx context.Context, calc *model.DemurrageCalculation) error

	// ListDemurrageCalculations returns all saved calculations.
	ListDemurrageCalculations(ctx context.Context) ([]model.DemurrageCalculation, error)
}
