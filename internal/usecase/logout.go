package usecase

import (
	"context"
	"log/slog"

	"auth-gate/internal/domain"
)

// Logout drops the user's cached identity so a later login starts cold.
// The credential itself is destroyed by expiring its cookie at the handler.
type Logout struct {
	identities domain.IdentityCache
	logger     *slog.Logger
}

// NewLogout creates a new Logout usecase.
func NewLogout(identities domain.IdentityCache, logger *slog.Logger) *Logout {
	return &Logout{identities: identities, logger: logger}
}

// Execute invalidates the cached identity for userID.
func (uc *Logout) Execute(ctx context.Context, userID string) {
	uc.identities.Invalidate(userID)
	uc.logger.InfoContext(ctx, "user logged out", "user_id", userID)
}
