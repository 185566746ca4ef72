package usecase

import (
	"context"
	"log/slog"

	"auth-gate/internal/domain"
)

// ResolveGuilds resolves guild membership for an already authenticated user.
// Opt-in: only handlers that actually need the guild list invoke it.
type ResolveGuilds struct {
	identities domain.IdentityCache
	logger     *slog.Logger
}

// NewResolveGuilds creates a new ResolveGuilds usecase.
func NewResolveGuilds(identities domain.IdentityCache, logger *slog.Logger) *ResolveGuilds {
	return &ResolveGuilds{identities: identities, logger: logger}
}

// Execute reads the guild list through the identity cache.
func (uc *ResolveGuilds) Execute(ctx context.Context, user *domain.UserRecord) ([]domain.Guild, error) {
	return uc.identities.GetGuilds(ctx, user.UserID, user.AccessToken)
}
