package domain

import "context"

// SessionCodec signs and verifies the session credential carried by the
// browser cookie.
type SessionCodec interface {
	Issue(userID string) (string, error)
	Verify(credential string) (string, error)
}

// UserStore persists user records keyed by the upstream user ID.
// FindByUserID returns ErrUserNotFound for unknown IDs.
type UserStore interface {
	FindByUserID(ctx context.Context, userID string) (*UserRecord, error)
	Upsert(ctx context.Context, record *UserRecord) error
}

// IdentityProvider talks to the upstream OAuth provider.
type IdentityProvider interface {
	ExchangeCode(ctx context.Context, code string) (*TokenGrant, error)
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
	FetchGuilds(ctx context.Context, accessToken string) ([]Guild, error)
}

// IdentityCache is a read-through cache in front of the identity provider.
// Profile and guild freshness are tracked independently.
type IdentityCache interface {
	GetProfile(ctx context.Context, userID, accessToken string) (*Profile, error)
	GetGuilds(ctx context.Context, userID, accessToken string) ([]Guild, error)
	Invalidate(userID string)
}
