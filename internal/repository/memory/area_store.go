package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// AreaStore is an in-memory AreaRepository.
type AreaStore struct {
	mu    sync.RWMutex
	areas map[string]domain.Area
}

// NewAreaStore returns an empty store.
func NewAreaStore() *AreaStore {
	return &AreaStore{areas: make(map[string]domain.Area)}
}

func (s *AreaStore) Create(_ context.Context, area *domain.Area) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if area.ID == "" {
		area.ID = uuid.NewString()
	}
	now := time.Now()
	area.CreatedAt = now
	area.UpdatedAt = now
	s.areas[area.ID] = *area
	return nil
}

func (s *AreaStore) Update(_ context.Context, area *domain.Area) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.areas[area.ID]; !ok {
		return pgx.ErrNoRows
	}
	area.UpdatedAt = time.Now()
	s.areas[area.ID] = *area
	return nil
}

func (s *AreaStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.areas[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.areas, id)
	return nil
}

func (s *AreaStore) GetByID(_ context.Context, id string) (*domain.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	area, ok := s.areas[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &area, nil
}

func (s *AreaStore) GetByName(_ context.Context, name string) (*domain.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, area := range s.areas {
		if area.Name == name {
			a := area
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *AreaStore) List(_ context.Context) ([]domain.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Area, 0, len(s.areas))
	for _, area := range s.areas {
		result = append(result, area)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
