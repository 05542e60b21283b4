package domain

import "time"

// Area is an organizational unit tickets and users can be scoped to.
// An area cannot be deleted while any user or ticket references it.
type Area struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
