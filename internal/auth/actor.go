package auth

import "github.com/google/uuid"

// Role is the coarse-grained role carried by an authenticated actor.
type Role string

const (
	RoleClient     Role = "client"
	RoleStaff      Role = "staff"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Actor is the authenticated principal attached to every mutating call.
type Actor struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  Role
}

// IsStaff reports whether the actor belongs to the back office rather
// than being a prospective client.
func (a Actor) IsStaff() bool {
	switch a.Role {
	case RoleStaff, RoleManager, RoleAdmin, RoleSuperAdmin:
		return true
	}

	return false
}
