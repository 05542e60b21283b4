package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// CommentStore is an in-memory TicketCommentRepository. Entries keep
// insertion order, which matches the created_at ordering the SQL
// implementation returns.
type CommentStore struct {
	mu       sync.RWMutex
	comments []domain.TicketComment
}

// NewCommentStore returns an empty store.
func NewCommentStore() *CommentStore {
	return &CommentStore{}
}

func (s *CommentStore) Create(_ context.Context, comment *domain.TicketComment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.CreatedAt = time.Now()
	s.comments = append(s.comments, *comment)
	return nil
}

func (s *CommentStore) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketComment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.TicketComment
	for _, comment := range s.comments {
		if comment.TicketID == ticketID {
			result = append(result, comment)
		}
	}
	return result, nil
}

// HistoryStore is an in-memory TicketHistoryRepository.
type HistoryStore struct {
	mu      sync.RWMutex
	entries []domain.TicketHistory
}

// NewHistoryStore returns an empty store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

func (s *HistoryStore) Create(_ context.Context, history *domain.TicketHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if history.ID == "" {
		history.ID = uuid.NewString()
	}
	history.CreatedAt = time.Now()
	s.entries = append(s.entries, *history)
	return nil
}

func (s *HistoryStore) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.TicketHistory
	for _, entry := range s.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}
