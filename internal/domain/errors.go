package domain

import "errors"

// Credential errors. All of these surface to the client as a 401.
var (
	ErrCredentialMissing = errors.New("session credential missing")
	ErrCredentialInvalid = errors.New("session credential invalid")
	ErrCredentialExpired = errors.New("session credential expired")
)

// User store errors.
var (
	// ErrUserNotFound is returned by the user store for an unknown user ID.
	ErrUserNotFound = errors.New("user record not found")
	// ErrUserGone marks a valid credential whose user record no longer exists.
	ErrUserGone = errors.New("user belonging to this credential no longer exists")
)

// Upstream provider errors.
var (
	ErrUpstreamUnauthorized = errors.New("upstream rejected the access token")
	ErrInvalidAuthCode      = errors.New("authorization code is not valid")
	ErrUpstreamFailure      = errors.New("upstream identity provider failure")
)
