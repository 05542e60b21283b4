package domain

import "time"

// TicketHistory is an immutable audit trail entry. FromID and ToID carry the
// users involved when the action moves a ticket between people; both are nil
// for events without a direction (e.g. a rejected transfer).
type TicketHistory struct {
	ID        string
	TicketID  string
	FromID    *string
	ToID      *string
	Action    string
	CreatedAt time.Time
}
