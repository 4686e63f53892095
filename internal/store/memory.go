package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ctrm/exposure-engine/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu        sync.RWMutex
	physical  map[string]*model.PhysicalLeg
	paper     map[string]*model.PaperLeg
	demurrage []model.DemurrageCalculation
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		physical: make(map[string]*model.PhysicalLeg),
		paper:    make(map[string]*model.PaperLeg),
	}
}

func (s *MemoryStore) CreatePhysicalLeg(_ context.Context, leg *model.PhysicalLeg) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.physical[leg.ID]; exists {
		return fmt.Errorf("physical leg %s already exists", leg.ID)
	}

	// Store a copy to avoid external mutation.
	copy := *leg
	s.physical[leg.ID] = &copy
	return nil
}

func (s *MemoryStore) GetPhysicalLeg(_ context.Context, id string) (*model.PhysicalLeg, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	leg, ok := s.physical[id]
	if !ok {
		return nil, fmt.Errorf("physical leg %s not found", id)
	}
	copy := *leg
	return &copy, nil
}

func (s *MemoryStore) ListPhysicalLegs(_ context.Context) ([]model.PhysicalLeg, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	legs := make([]model.PhysicalLeg, 0, len(s.physical))
	for _, leg := range s.physical {
		legs = append(legs, *leg)
	}
	sort.Slice(legs, func(i, j int) bool { return legs[i].CreatedAt.Before(legs[j].CreatedAt) })
	return legs, nil
}

func (s *MemoryStore) DeletePhysicalLeg(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.physical[id]; !ok {
		return fmt.Errorf("physical leg %s not found", id)
	}
	delete(s.physical, id)
	return nil
}

func (s *MemoryStore) CreatePaperLeg(_ context.Context, leg *model.PaperLeg) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.paper[leg.ID]; exists {
		return fmt.Errorf("paper leg %s already exists", leg.ID)
	}

	copy := *leg
	s.paper[leg.ID] = &copy
	return nil
}

func (s *MemoryStore) GetPaperLeg(_ context.Context, id string) (*model.PaperLeg, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	leg, ok := s.paper[id]
	if !ok {
		return nil, fmt.Errorf("paper leg %s not found", id)
	}
	copy := *leg
	return &copy, nil
}

func (s *MemoryStore) ListPaperLegs(_ context.Context) ([]model.PaperLeg, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	legs := make([]model.PaperLeg, 0, len(s.paper))
	for _, leg := range s.paper {
		legs = append(legs, *leg)
	}
	sort.Slice(legs, func(i, j int) bool { return legs[i].CreatedAt.Before(legs[j].CreatedAt) })
	return legs, nil
}

func (s *MemoryStore) DeletePaperLeg(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.paper[id]; !ok {
		return fmt.Errorf("paper leg %s not found", id)
	}
	delete(s.paper, id)
	return nil
}

func (s *MemoryStore) SaveDemurrageCalculation(_ context.Context, calc *model.DemurrageCalculation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.demurrage = append(s.demurrage, *calc)
	return nil
}

func (s *MemoryStore) ListDemurrageCalculations(_ context.Context) ([]model.DemurrageCalculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	calcs := make([]model.DemurrageCalculation, len(s.demurrage))
	copy(calcs, s.demurrage)
	return calcs, nil
}
