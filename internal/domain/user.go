package domain

import "time"

// UserRecord is the locally persisted account row for a Discord user.
// Access and refresh tokens are owned by the user store; the authentication
// path only ever reads them.
type UserRecord struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
