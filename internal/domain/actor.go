package domain

import "github.com/google/uuid"

// Role says which side of the marketplace an actor can act on.
type Role int

const (
	RoleUnknown Role = iota
	RoleSeller
	RoleCollector
)

// ParseRole maps the stored user_type ("user" sells, "collector" buys).
func ParseRole(userType string) Role {
	switch userType {
	case "user", "seller":
		return RoleSeller
	case "collector":
		return RoleCollector
	}
	return RoleUnknown
}

func (r Role) String() string {
	switch r {
	case RoleSeller:
		return "seller"
	case RoleCollector:
		return "collector"
	}
	return "unknown"
}

// Actor is the authenticated party invoking an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsCollector() bool { return a.Role == RoleCollector }
