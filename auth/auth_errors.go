package auth

import "errors"

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidUserID      = errors.New("user id must be a valid GUID")
	ErrInvalidCode        = errors.New("verification code must be exactly 4 digits")
	ErrNoRegisteredID     = errors.New("could not find user id in registration response")
)
