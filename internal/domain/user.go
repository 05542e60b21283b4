package domain

import "time"

// Role enumerates caller roles. The set is closed; policy dispatch tables
// index on it exhaustively.
type Role string

const (
	RoleUser       Role = "USER"
	RoleManager    Role = "MANAGER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User is the domain model for accounts. ManagerID is a weak reference to
// another user; cycles are not checked. AreaID scopes ADMIN visibility.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	AreaID       *string
	ManagerID    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
