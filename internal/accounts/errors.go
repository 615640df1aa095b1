package accounts

import "errors"

var (
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("account not found")

	// ErrUsernameTaken is returned when a signup reuses a username.
	ErrUsernameTaken = errors.New("username already registered")

	// ErrInvalidCredentials is returned on failed authentication. The
	// message never reveals whether the username or the password was
	// wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrWeakPassword is returned when the password is too short.
	ErrWeakPassword = errors.New("password must be at least 8 characters")

	// ErrInvalidRole is returned when a role update uses an unknown role.
	ErrInvalidRole = errors.New("unknown role")

	// ErrSelfDelete is returned when an administrator tries to delete
	// their own account.
	ErrSelfDelete = errors.New("cannot delete your own account")
)
