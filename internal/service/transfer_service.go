package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/policy"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// TransferService runs the transfer-approval protocol: the owner requests a
// reassignment, a MANAGER or ADMIN resolves it.
type TransferService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
}

// TransferDependencies bundles repositories.
type TransferDependencies struct {
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
}

// NewTransferService creates the service.
func NewTransferService(deps TransferDependencies) *TransferService {
	return &TransferService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// RequestTransfer opens a transfer request. Only the USER-role assignee of a
// ticket in IN_PROGRESS may request one; a still-pending request blocks a new
// one.
func (s *TransferService) RequestTransfer(ctx context.Context, caller *domain.User, ticketID, targetUserID string) (*domain.Ticket, error) {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanRequestTransfer(caller.Role, caller.ID, ticket) {
		return nil, apperrors.NewForbidden("only the owning user may request a transfer")
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewStateError("cannot transfer a closed ticket")
	}
	if ticket.Status != domain.TicketStatusInProgress {
		return nil, apperrors.NewStateError(fmt.Sprintf("ticket must be IN_PROGRESS to request a transfer, current status is %s", ticket.Status))
	}
	if ticket.TransferPending() {
		return nil, apperrors.NewStateError("a transfer request is already pending")
	}

	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("target user")
		}
		return nil, apperrors.MapError(err)
	}

	pending := domain.TransferStatusPending
	ticket.TransferToID = &target.ID
	ticket.TransferStatus = &pending
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.history.Create(ctx, &domain.TicketHistory{
		TicketID: ticket.ID,
		FromID:   &caller.ID,
		ToID:     &target.ID,
		Action:   "transfer requested, pending approval",
	}); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketTransferRequested,
		TicketID:  ticket.ID,
		ActorID:   caller.ID,
		ActorRole: caller.Role,
		Payload: events.TicketTransferRequestedPayload{
			FromUserID: caller.ID,
			ToUserID:   target.ID,
		},
	})
	return ticket, nil
}

// ResolveTransfer approves or rejects the pending request. Approval moves
// ownership to the requested target; rejection leaves ownership unchanged.
// Either way the pending target is cleared and the terminal transfer status
// stays on the ticket until a fresh request overwrites it.
func (s *TransferService) ResolveTransfer(ctx context.Context, caller *domain.User, ticketID string, approve bool) (*domain.Ticket, error) {
	if !policy.CanResolveTransfer(caller.Role) {
		return nil, apperrors.NewForbidden("only a manager or admin may resolve a transfer")
	}
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.TransferPending() {
		return nil, apperrors.NewStateError("no pending transfer for this ticket")
	}

	if approve {
		if ticket.TransferToID == nil {
			return nil, apperrors.NewInternalError(errors.New("pending transfer has no target"))
		}
		oldOwner := ticket.AssignedToID
		newOwner := *ticket.TransferToID
		approved := domain.TransferStatusApproved
		ticket.AssignedToID = newOwner
		ticket.TransferStatus = &approved
		ticket.TransferToID = nil
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, apperrors.MapError(err)
		}
		if err := s.history.Create(ctx, &domain.TicketHistory{
			TicketID: ticket.ID,
			FromID:   &oldOwner,
			ToID:     &newOwner,
			Action:   fmt.Sprintf("transfer approved by manager %s", caller.ID),
		}); err != nil {
			return nil, apperrors.MapError(err)
		}
		s.publishEvent(ctx, events.Event{
			Type:      events.EventTicketTransferResolved,
			TicketID:  ticket.ID,
			ActorID:   caller.ID,
			ActorRole: caller.Role,
			Payload: events.TicketTransferResolvedPayload{
				Approved:     true,
				NewAssignee:  &newOwner,
				ResolvedByID: caller.ID,
			},
		})
		return ticket, nil
	}

	rejected := domain.TransferStatusRejected
	ticket.TransferStatus = &rejected
	ticket.TransferToID = nil
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.history.Create(ctx, &domain.TicketHistory{
		TicketID: ticket.ID,
		Action:   fmt.Sprintf("transfer rejected by manager %s", caller.ID),
	}); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketTransferResolved,
		TicketID:  ticket.ID,
		ActorID:   caller.ID,
		ActorRole: caller.Role,
		Payload: events.TicketTransferResolvedPayload{
			Approved:     false,
			ResolvedByID: caller.ID,
		},
	})
	return ticket, nil
}

func (s *TransferService) fetchTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TransferService) publishEvent(ctx context.Context, event events.Event) {
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
