package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"auth-gate/internal/domain"
	"auth-gate/utils/logger"
)

// AuthResult carries the resolved identity attached to authenticated requests.
type AuthResult struct {
	User    *domain.UserRecord
	Profile *domain.Profile
}

// Authenticate resolves a session credential to a local user record and its
// cached upstream profile. Guild membership is resolved separately by
// ResolveGuilds so handlers that do not need it avoid the extra upstream call.
type Authenticate struct {
	codec      domain.SessionCodec
	users      domain.UserStore
	identities domain.IdentityCache
	logger     *slog.Logger
}

// NewAuthenticate creates a new Authenticate usecase.
func NewAuthenticate(codec domain.SessionCodec, users domain.UserStore, identities domain.IdentityCache, logger *slog.Logger) *Authenticate {
	return &Authenticate{codec: codec, users: users, identities: identities, logger: logger}
}

// Execute verifies the credential, loads the user record, and resolves the
// upstream profile through the identity cache. The user store is never
// written here.
func (uc *Authenticate) Execute(ctx context.Context, credential string) (*AuthResult, error) {
	userID, err := uc.codec.Verify(credential)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithAuthStage(ctx, "store_lookup")
	user, err := uc.users.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			uc.logger.WarnContext(ctx, "credential references deleted user", "user_id", userID)
			return nil, fmt.Errorf("%w: %w", domain.ErrUserGone, err)
		}
		return nil, err
	}

	ctx = logger.WithAuthStage(ctx, "profile_resolve")
	profile, err := uc.identities.GetProfile(ctx, user.UserID, user.AccessToken)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Profile: profile}, nil
}
