package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

// TicketStore is an in-memory TicketRepository.
type TicketStore struct {
	mu      sync.RWMutex
	tickets map[string]domain.Ticket
}

// NewTicketStore returns an empty store.
func NewTicketStore() *TicketStore {
	return &TicketStore{tickets: make(map[string]domain.Ticket)}
}

func (s *TicketStore) Create(_ context.Context, ticket *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	now := time.Now()
	ticket.CreatedAt = now
	ticket.LastActivityAt = now
	s.tickets[ticket.ID] = *ticket
	return nil
}

func (s *TicketStore) Update(_ context.Context, ticket *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.LastActivityAt = time.Now()
	s.tickets[ticket.ID] = *ticket
	return nil
}

func (s *TicketStore) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (s *TicketStore) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if filter.MatchNone {
		return []domain.Ticket{}, nil
	}
	if filter.AssigneeIDs != nil && len(filter.AssigneeIDs) == 0 {
		return []domain.Ticket{}, nil
	}

	allowed := map[string]bool{}
	for _, id := range filter.AssigneeIDs {
		allowed[id] = true
	}

	var result []domain.Ticket
	for _, ticket := range s.tickets {
		if filter.AssigneeIDs != nil && !allowed[ticket.AssignedToID] {
			continue
		}
		if filter.AreaID != nil && (ticket.AreaID == nil || *ticket.AreaID != *filter.AreaID) {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		result = append(result, ticket)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(result) {
		return []domain.Ticket{}, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

func (s *TicketStore) CountByArea(_ context.Context, areaID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, ticket := range s.tickets {
		if (ticket.AreaID != nil && *ticket.AreaID == areaID) || (ticket.TargetAreaID != nil && *ticket.TargetAreaID == areaID) {
			count++
		}
	}
	return count, nil
}
