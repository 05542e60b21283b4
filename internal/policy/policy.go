// Package policy holds the pure access rules: the role-based visibility
// filter for ticket listing and the per-action permission checks. Nothing in
// here touches storage; callers supply whatever identity data a rule needs.
package policy

import (
	"fmt"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

// VisibilityInput carries the caller identity for filter construction.
// SubordinateIDs is only consulted for MANAGER callers; the workflow layer
// resolves it before calling in, keeping this package free of IO.
type VisibilityInput struct {
	Role           domain.Role
	UserID         string
	AreaID         *string
	SubordinateIDs []string
	Status         *domain.TicketStatus
}

type visibilityFunc func(VisibilityInput) repository.TicketFilter

// visibilityTable is the single dispatch point for listing scope. Adding a
// role means adding a row here; VisibilityFilter rejects anything missing.
var visibilityTable = map[domain.Role]visibilityFunc{
	domain.RoleUser: func(in VisibilityInput) repository.TicketFilter {
		return repository.TicketFilter{AssigneeIDs: []string{in.UserID}}
	},
	domain.RoleManager: func(in VisibilityInput) repository.TicketFilter {
		ids := append([]string{}, in.SubordinateIDs...)
		ids = append(ids, in.UserID)
		return repository.TicketFilter{AssigneeIDs: ids}
	},
	domain.RoleAdmin: func(in VisibilityInput) repository.TicketFilter {
		if in.AreaID == nil {
			// an ADMIN without an area has no scope
			return repository.TicketFilter{MatchNone: true}
		}
		return repository.TicketFilter{AreaID: in.AreaID}
	},
	domain.RoleSuperAdmin: func(VisibilityInput) repository.TicketFilter {
		return repository.TicketFilter{}
	},
}

// VisibilityFilter builds the listing filter for the caller. The optional
// status narrows any scope by exact match.
func VisibilityFilter(in VisibilityInput) (repository.TicketFilter, error) {
	build, ok := visibilityTable[in.Role]
	if !ok {
		return repository.TicketFilter{}, fmt.Errorf("unknown role %q", in.Role)
	}
	filter := build(in)
	filter.Status = in.Status
	return filter, nil
}

// IsAssignee reports whether the user currently owns the ticket.
func IsAssignee(userID string, ticket *domain.Ticket) bool {
	return ticket != nil && ticket.AssignedToID == userID
}

// CanClose allows the assignee, MANAGER, or ADMIN to close a ticket.
func CanClose(role domain.Role, userID string, ticket *domain.Ticket) bool {
	if IsAssignee(userID, ticket) {
		return true
	}
	return role == domain.RoleManager || role == domain.RoleAdmin
}

// CanViewThread allows the assignee, MANAGER, or ADMIN to read comments and
// history of a ticket.
func CanViewThread(role domain.Role, userID string, ticket *domain.Ticket) bool {
	if IsAssignee(userID, ticket) {
		return true
	}
	return role == domain.RoleManager || role == domain.RoleAdmin
}

// CanComment allows only the assignee to add comments.
func CanComment(userID string, ticket *domain.Ticket) bool {
	return IsAssignee(userID, ticket)
}

// CanRequestTransfer allows only a USER-role assignee to request a transfer.
// Managers and admins reassign through approval, not by requesting.
func CanRequestTransfer(role domain.Role, userID string, ticket *domain.Ticket) bool {
	return role == domain.RoleUser && IsAssignee(userID, ticket)
}

// CanResolveTransfer allows MANAGER or ADMIN to approve or reject.
func CanResolveTransfer(role domain.Role) bool {
	return role == domain.RoleManager || role == domain.RoleAdmin
}

// CanReopenClosed reports whether the role may force a transition out of
// CLOSED.
func CanReopenClosed(role domain.Role) bool {
	return role == domain.RoleAdmin
}
