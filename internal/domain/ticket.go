package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// Valid reports whether the status is one of the known values.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// TransferStatus enumerates states of a transfer request. A nil value on the
// ticket means no request was ever made.
type TransferStatus string

const (
	TransferStatusPending  TransferStatus = "PENDING"
	TransferStatusApproved TransferStatus = "APPROVED"
	TransferStatusRejected TransferStatus = "REJECTED"
)

// Ticket is the aggregate for tracked work items.
//
// Invariant: TransferToID is non-nil iff TransferStatus is PENDING. Approval
// and rejection both clear TransferToID but leave TransferStatus at its
// terminal value.
type Ticket struct {
	ID             string
	Title          string
	Description    string
	Status         TicketStatus
	AreaID         *string
	TargetAreaID   *string
	AssignedToID   string
	TransferToID   *string
	TransferStatus *TransferStatus
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// TransferPending reports whether a transfer request is currently open.
func (t *Ticket) TransferPending() bool {
	return t.TransferStatus != nil && *t.TransferStatus == TransferStatusPending
}
