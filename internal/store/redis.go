package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ctrm/exposure-engine/internal/model"
)

// Cache keys for the leg listings the exposure engine reads on every
// calculation call.
const (
	physicalLegsKey = "legs:physical"
	paperLegsKey    = "legs:paper"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache over the leg listings. Writes go to the primary store and
// invalidate the cache; reads check Redis first then fall back to the
// primary.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, invalidate cache) ---

func (s *CachedStore) CreatePhysicalLeg(ctx context.Context, leg *model.PhysicalLeg) error {
	if err := s.primary.CreatePhysicalLeg(ctx, leg); err != nil {
		return err
	}
	s.rdb.Del(ctx, physicalLegsKey)
	return nil
}

func (s *CachedStore) DeletePhysicalLeg(ctx context.Context, id string) error {
	if err := s.primary.DeletePhysicalLeg(ctx, id); err != nil {
		return err
	}
	s.rdb.Del(ctx, physicalLegsKey)
	return nil
}

func (s *CachedStore) CreatePaperLeg(ctx context.Context, leg *model.PaperLeg) error {
	if err := s.primary.CreatePaperLeg(ctx, leg); err != nil {
		return err
	}
	s.rdb.Del(ctx, paperLegsKey)
	return nil
}

func (s *CachedStore) DeletePaperLeg(ctx context.Context, id string) error {
	if err := s.primary.DeletePaperLeg(ctx, id); err != nil {
		return err
	}
	s.rdb.Del(ctx, paperLegsKey)
	return nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) ListPhysicalLegs(ctx context.Context) ([]model.PhysicalLeg, error) {
	data, err := s.rdb.Get(ctx, physicalLegsKey).Bytes()
	if err == nil {
		var legs []model.PhysicalLeg
		if json.Unmarshal(data, &legs) == nil {
			return legs, nil
		}
	}

	// Cache miss: read from primary.
	legs, err := s.primary.ListPhysicalLegs(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(legs); err == nil {
		s.rdb.Set(ctx, physicalLegsKey, data, s.ttl)
	}
	return legs, nil
}

func (s *CachedStore) ListPaperLegs(ctx context.Context) ([]model.PaperLeg, error) {
	data, err := s.rdb.Get(ctx, paperLegsKey).Bytes()
	if err == nil {
		var legs []model.PaperLeg
		if json.Unmarshal(data, &legs) == nil {
			return legs, nil
		}
	}

	legs, err := s.primary.ListPaperLegs(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(legs); err == nil {
		s.rdb.Set(ctx, paperLegsKey, data, s.ttl)
	}
	return legs, nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) GetPhysicalLeg(ctx context.Context, id string) (*model.PhysicalLeg, error) {
	return s.primary.GetPhysicalLeg(ctx, id)
}

func (s *CachedStore) GetPaperLeg(ctx context.Context, id string) (*model.PaperLeg, error) {
	return s.primary.GetPaperLeg(ctx, id)
}

func (s *CachedStore) SaveDemurrageCalculation(ctx context.Context, calc *model.DemurrageCalculation) error {
	return s.primary.SaveDemurrageCalculation(ctx, calc)
}

func (s *CachedStore) ListDemurrageCalculations(ctx context.Context) ([]model.DemurrageCalculation, error) {
	return s.primary.ListDemurrageCalculations(ctx)
}
