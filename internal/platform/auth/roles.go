package auth

import "fmt"

// Role is the closed set of account roles. Handlers never compare raw role
// strings; they go through the capability methods below.
type Role string

const (
	RoleUser   Role = "user"
	RoleDoctor Role = "doctor"
	RoleAdmin  Role = "admin"
)

// ParseRole validates a raw role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleDoctor, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string { return string(r) }

// CanReviewEscalations reports whether the role may read and update the
// clinical escalation queue.
func (r Role) CanReviewEscalations() bool {
	return r == RoleDoctor || r == RoleAdmin
}

// CanViewAnyWound reports whether the role may read wounds it does not own.
func (r Role) CanViewAnyWound() bool {
	return r == RoleDoctor || r == RoleAdmin
}

// CanModerate reports whether the role may delete other users' forum content
// and manage flags.
func (r Role) CanModerate() bool {
	return r == RoleAdmin
}

// CanManageClinics reports whether the role may create, update or delete
// clinic directory entries.
func (r Role) CanManageClinics() bool {
	return r == RoleAdmin
}

// CanAdminister reports whether the role may use the admin surface
// (user management, moderation queue, job triggers).
func (r Role) CanAdminister() bool {
	return r == RoleAdmin
}

// CanViewStats reports whether the role may read aggregate statistics.
func (r Role) CanViewStats() bool {
	return r == RoleDoctor || r == RoleAdmin
}
