package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/policy"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// TicketService is the workflow engine: it enforces the status state machine
// and mediates comments and history around it.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	comments   repository.TicketCommentRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	CommentRepo repository.TicketCommentRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title        string
	Description  string
	AreaID       *string
	TargetAreaID *string
}

// TicketUpdateInput describes the PUT payload. Nil fields are left untouched.
type TicketUpdateInput struct {
	Title       *string
	Description *string
	Status      *domain.TicketStatus
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		comments:   deps.CommentRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// allowedTransitions is the status state machine. CLOSED has no exits; the
// ADMIN reopen override is handled separately in UpdateTicket.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress},
	domain.TicketStatusInProgress: {domain.TicketStatusClosed},
	domain.TicketStatusClosed:     {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// CreateTicket creates a ticket owned by its creator. The origin area
// defaults to the creator's own area when none is supplied.
func (s *TicketService) CreateTicket(ctx context.Context, creator *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description are required")
	}

	areaID := input.AreaID
	if areaID == nil {
		areaID = creator.AreaID
	}

	ticket := &domain.Ticket{
		Title:        title,
		Description:  description,
		Status:       domain.TicketStatusOpen,
		AreaID:       areaID,
		TargetAreaID: input.TargetAreaID,
		AssignedToID: creator.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCreated,
		TicketID:  ticket.ID,
		ActorID:   creator.ID,
		ActorRole: creator.Role,
		Payload: events.TicketCreatedPayload{
			Title:        ticket.Title,
			AreaID:       ticket.AreaID,
			TargetAreaID: ticket.TargetAreaID,
		},
	})
	return ticket, nil
}

// ListTickets returns tickets visible to the caller, optionally narrowed by
// status. The visibility filter is rebuilt on every call.
func (s *TicketService) ListTickets(ctx context.Context, caller *domain.User, status *domain.TicketStatus, limit, offset int) ([]domain.Ticket, error) {
	input := policy.VisibilityInput{
		Role:   caller.Role,
		UserID: caller.ID,
		AreaID: caller.AreaID,
		Status: status,
	}
	if caller.Role == domain.RoleManager {
		ids, err := s.users.ListIDsByManager(ctx, caller.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		input.SubordinateIDs = ids
	}

	filter, err := policy.VisibilityFilter(input)
	if err != nil {
		return nil, apperrors.NewForbidden(err.Error())
	}
	filter.Limit = limit
	filter.Offset = offset

	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket fetches a single ticket for an authenticated caller.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.fetchTicket(ctx, ticketID)
}

// UpdateTicket applies title/description changes and status transitions.
// A requested status equal to the current one is a no-op transition; any
// other pair must be in the transition table, except that an ADMIN may force
// a ticket out of CLOSED.
func (s *TicketService) UpdateTicket(ctx context.Context, caller *domain.User, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	statusChanged := false
	if input.Status != nil && *input.Status != ticket.Status {
		next := *input.Status
		if !next.Valid() {
			return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", next))
		}
		if !isValidTransition(ticket.Status, next) {
			if !(ticket.Status == domain.TicketStatusClosed && policy.CanReopenClosed(caller.Role)) {
				return nil, apperrors.NewStateError(fmt.Sprintf("invalid status transition from %s to %s", ticket.Status, next))
			}
		}
		ticket.Status = next
		statusChanged = true
	}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, apperrors.NewValidationError("title cannot be empty")
		}
		ticket.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if statusChanged {
		if err := s.recordStatusChange(ctx, ticket.ID, &caller.ID, oldStatus, ticket.Status, ""); err != nil {
			return nil, apperrors.MapError(err)
		}
		s.publishEvent(ctx, events.Event{
			Type:      events.EventTicketStatusChanged,
			TicketID:  ticket.ID,
			ActorID:   caller.ID,
			ActorRole: caller.Role,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	return ticket, nil
}

// CloseTicket closes a ticket on behalf of its assignee, a MANAGER, or an
// ADMIN. The history row names the acting user and role.
func (s *TicketService) CloseTicket(ctx context.Context, caller *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanClose(caller.Role, caller.ID, ticket) {
		return nil, apperrors.NewForbidden("only the assignee, a manager, or an admin may close a ticket")
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewStateError("ticket is already closed")
	}

	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusClosed
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	note := fmt.Sprintf("closed by %s", caller.Role)
	if err := s.recordStatusChange(ctx, ticket.ID, &caller.ID, oldStatus, ticket.Status, note); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketStatusChanged,
		TicketID:  ticket.ID,
		ActorID:   caller.ID,
		ActorRole: caller.Role,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

// AddComment appends a comment; only the assignee may comment.
func (s *TicketService) AddComment(ctx context.Context, caller *domain.User, ticketID, content string) (*domain.TicketComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content is required")
	}
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanComment(caller.ID, ticket) {
		return nil, apperrors.NewForbidden("only the assignee may comment on this ticket")
	}

	comment := &domain.TicketComment{
		TicketID: ticket.ID,
		UserID:   caller.ID,
		Content:  content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	// comments bump the ticket's activity timestamp
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCommentAdded,
		TicketID:  ticket.ID,
		ActorID:   caller.ID,
		ActorRole: caller.Role,
		Payload: events.TicketCommentAddedPayload{
			CommentID:      comment.ID,
			AuthorID:       caller.ID,
			ContentPreview: stringPreview(content, 120),
		},
	})
	return comment, nil
}

// ListComments returns the comment thread for the assignee, MANAGER, or
// ADMIN.
func (s *TicketService) ListComments(ctx context.Context, caller *domain.User, ticketID string) ([]domain.TicketComment, error) {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewThread(caller.Role, caller.ID, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// ListHistory returns the audit log for the assignee, MANAGER, or ADMIN.
func (s *TicketService) ListHistory(ctx context.Context, caller *domain.User, ticketID string) ([]domain.TicketHistory, error) {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewThread(caller.Role, caller.ID, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	history, err := s.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return history, nil
}

func (s *TicketService) fetchTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) recordStatusChange(ctx context.Context, ticketID string, actorID *string, oldStatus, newStatus domain.TicketStatus, note string) error {
	action := fmt.Sprintf("status changed from %s to %s", oldStatus, newStatus)
	if note != "" {
		action = fmt.Sprintf("%s (%s)", action, note)
	}
	return s.history.Create(ctx, &domain.TicketHistory{
		TicketID: ticketID,
		FromID:   actorID,
		Action:   action,
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// stringPreview truncates on rune boundaries so multi-byte content never
// yields an invalid UTF-8 preview.
func stringPreview(body string, max int) string {
	runes := []rune(strings.TrimSpace(body))
	if len(runes) <= max {
		return string(runes)
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
