package users

import (
	"time"

	"github.com/meridian-cms/meridian-cms/internal/auth"
)

// User is the management view of an account. Credentials never leave
// the auth store; this module only reads and reclassifies accounts.
type User struct {
	ID          int64
	Email       string
	Username    string
	FullName    string
	Role        auth.Role
	Status      auth.Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}
