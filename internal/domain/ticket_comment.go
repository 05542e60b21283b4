package domain

import "time"

// TicketComment is an append-only comment on a ticket, ordered by CreatedAt.
type TicketComment struct {
	ID        string
	TicketID  string
	UserID    string
	Content   string
	CreatedAt time.Time
}
