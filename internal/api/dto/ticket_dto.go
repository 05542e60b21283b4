package dto

import (
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	AreaID       *string `json:"area_id,omitempty"`
	TargetAreaID *string `json:"target_area_id,omitempty"`
}

// UpdateTicketRequest payload; nil fields are left unchanged.
type UpdateTicketRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *domain.TicketStatus `json:"status"`
}

// TransferRequest names the user a ticket should move to.
type TransferRequest struct {
	ToUserID string `json:"to_user_id"`
}

// ApproveTransferRequest resolves a pending transfer.
type ApproveTransferRequest struct {
	Approve bool `json:"approve"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// TicketResponse is the wire view of a ticket.
type TicketResponse struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Status         domain.TicketStatus    `json:"status"`
	AreaID         *string                `json:"area_id,omitempty"`
	TargetAreaID   *string                `json:"target_area_id,omitempty"`
	AssignedToID   string                 `json:"assigned_to_id"`
	TransferToID   *string                `json:"transfer_to_id,omitempty"`
	TransferStatus *domain.TransferStatus `json:"transfer_status,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	LastActivityAt time.Time              `json:"last_activity_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:             ticket.ID,
		Title:          ticket.Title,
		Description:    ticket.Description,
		Status:         ticket.Status,
		AreaID:         ticket.AreaID,
		TargetAreaID:   ticket.TargetAreaID,
		AssignedToID:   ticket.AssignedToID,
		TransferToID:   ticket.TransferToID,
		TransferStatus: ticket.TransferStatus,
		CreatedAt:      ticket.CreatedAt,
		LastActivityAt: ticket.LastActivityAt,
	}
}

// CommentResponse is the wire view of a comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(comment *domain.TicketComment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		TicketID:  comment.TicketID,
		UserID:    comment.UserID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}

// HistoryResponse is the wire view of an audit entry.
type HistoryResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	FromID    *string   `json:"from_id,omitempty"`
	ToID      *string   `json:"to_id,omitempty"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// NewHistoryResponse maps a domain history entry.
func NewHistoryResponse(entry *domain.TicketHistory) HistoryResponse {
	return HistoryResponse{
		ID:        entry.ID,
		TicketID:  entry.TicketID,
		FromID:    entry.FromID,
		ToID:      entry.ToID,
		Action:    entry.Action,
		CreatedAt: entry.CreatedAt,
	}
}
