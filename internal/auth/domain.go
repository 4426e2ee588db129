package auth

import "time"

// Role groups permissions at the account level.
type Role string

// Known roles. There is no hierarchy between them; the permission
// matrix spells out what each role may do.
const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
	RoleUser   Role = "user"
)

// ParseRole converts a string into a Role, reporting whether it names
// one of the known roles.
func ParseRole(raw string) (Role, bool) {
	role := Role(raw)
	switch role {
	case RoleAdmin, RoleEditor, RoleViewer, RoleUser:
		return role, true
	default:
		return "", false
	}
}

// Status is the lifecycle state of an account. Transitions are owned by
// the user store; the auth core only reads it.
type Status string

// Known account states.
const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// User is the authenticated principal.
type User struct {
	ID           int64
	Email        string
	Username     string
	FullName     string
	Role         Role
	Status       Status
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// SubjectRole implements Subject.
func (u *User) SubjectRole() (Role, bool) {
	if u == nil {
		return "", false
	}
	return u.Role, true
}

// Subject is anything a role or permission check can run against: a
// resolved principal, or the raw claims of a decoded token when no user
// store round trip is wanted.
type Subject interface {
	SubjectRole() (Role, bool)
}

// Admit applies the account status gate. Only active accounts pass;
// there is no implicit reactivation.
func Admit(u *User) error {
	if u == nil || u.Status != StatusActive {
		return ErrAccountNotActive
	}
	return nil
}
