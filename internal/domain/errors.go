package domain

import "errors"

var (
	// ErrValidation indicates a missing or malformed request field.
	ErrValidation = errors.New("validation error")
	// ErrDuplicateAccount indicates that an account with the email already exists.
	ErrDuplicateAccount = errors.New("user already exists")
	// ErrInvalidCredentials is returned for both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers bad signatures, malformed tokens and expired tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrNotFound indicates that no account has the requested id.
	ErrNotFound = errors.New("user not found")
	// ErrRepository wraps opaque failures from the persistence layer.
	ErrRepository = errors.New("repository error")
)
