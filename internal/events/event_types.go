package events

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated           EventType = "ticket_created"
	EventTicketStatusChanged     EventType = "ticket_status_changed"
	EventTicketTransferRequested EventType = "ticket_transfer_requested"
	EventTicketTransferResolved  EventType = "ticket_transfer_resolved"
	EventTicketCommentAdded      EventType = "ticket_comment_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	ActorRole domain.Role `json:"actor_role"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title        string  `json:"title"`
	AreaID       *string `json:"area_id,omitempty"`
	TargetAreaID *string `json:"target_area_id,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketTransferRequestedPayload payload.
type TicketTransferRequestedPayload struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
}

// TicketTransferResolvedPayload payload.
type TicketTransferResolvedPayload struct {
	Approved     bool    `json:"approved"`
	NewAssignee  *string `json:"new_assignee,omitempty"`
	ResolvedByID string  `json:"resolved_by_id"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID      string `json:"comment_id"`
	AuthorID       string `json:"author_id"`
	ContentPreview string `json:"content_preview"`
}
