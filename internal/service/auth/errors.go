package auth

import "errors"

// Authentication errors returned by the JWT service and consumed by the auth
// middleware and handlers.
var (
	// ErrInvalidToken is returned when a token fails signature or claim
	// validation for any reason other than expiry.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token's expiry has passed.
	ErrExpiredToken = errors.New("token expired")

	// ErrInvalidCredentials is returned on login when the email is unknown or
	// the password does not match. The two cases are deliberately
	// indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
