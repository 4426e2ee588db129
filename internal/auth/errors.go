package auth

import "errors"

// Failure taxonomy for authentication and authorization. All of these
// are terminal for the current request; none are retried locally.
var (
	// ErrInvalidCredentials covers both unknown identifier and wrong
	// password so that login failures do not reveal which accounts exist.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrAccountNotActive indicates the account exists but its lifecycle
	// state forbids access.
	ErrAccountNotActive = errors.New("auth: account not active")
	// ErrDuplicateIdentifier indicates the email or username is taken.
	ErrDuplicateIdentifier = errors.New("auth: identifier already registered")
	// ErrInvalidToken covers malformed, badly signed and expired tokens.
	// The codec deliberately does not subdivide these.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrInvalidResetToken indicates a reset token that failed
	// verification or does not carry the password_reset purpose.
	ErrInvalidResetToken = errors.New("auth: invalid reset token")
	// ErrAuthenticationRequired indicates no usable credential was
	// presented on an endpoint that requires one.
	ErrAuthenticationRequired = errors.New("auth: authentication required")
	// ErrInsufficientRole indicates an authenticated caller without the
	// required role.
	ErrInsufficientRole = errors.New("auth: insufficient role")
	// ErrInsufficientPermission indicates an authenticated caller without
	// the required permission.
	ErrInsufficientPermission = errors.New("auth: insufficient permission")
)
