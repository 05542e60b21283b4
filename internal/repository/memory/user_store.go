// Package memory provides in-memory repository implementations used by tests.
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

// UserStore is an in-memory UserRepository.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserStore returns an empty store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *UserStore) ListByRole(_ context.Context, role domain.Role, excludeID string) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.User
	for _, user := range s.users {
		if user.Role == role && user.ID != excludeID {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *UserStore) ListIDsByManager(_ context.Context, managerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, user := range s.users {
		if user.ManagerID != nil && *user.ManagerID == managerID {
			ids = append(ids, user.ID)
		}
	}
	return ids, nil
}

func (s *UserStore) CountByArea(_ context.Context, areaID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, user := range s.users {
		if user.AreaID != nil && *user.AreaID == areaID {
			count++
		}
	}
	return count, nil
}
