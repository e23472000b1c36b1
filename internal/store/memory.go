package store

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ChinmayGopal931/delta-neutral/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing and
// development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu        sync.RWMutex
	exposures map[string]decimal.Decimal
	records   []model.RebalanceRecord
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		exposures: make(map[string]decimal.Decimal),
	}
}

func (s *MemoryStore) GetExposure(_ context.Context, poolID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Missing pools read as zero: exposure is created implicitly.
	return s.exposures[poolID], nil
}

func (s *MemoryStore) SetExposure(_ context.Context, poolID string, quantity decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.exposures[poolID] = quantity
	return nil
}

func (s *MemoryStore) ListExposures(_ context.Context) ([]model.Exposure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exposures := make([]model.Exposure, 0, len(s.exposures))
	for poolID, qty := range s.exposures {
		exposures = append(exposures, model.Exposure{PoolID: poolID, Quantity: qty})
	}
	return exposures, nil
}

func (s *MemoryStore) InsertRebalanceRecord(_ context.Context, rec *model.RebalanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, *rec)
	return nil
}

func (s *MemoryStore) GetRebalanceRecordsByPool(_ context.Context, poolID string) ([]model.RebalanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.RebalanceRecord
	for _, r := range s.records {
		if r.PoolID == poolID {
			result = append(result, r)
		}
	}
	return result, nil
}
