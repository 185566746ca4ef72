package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"auth-gate/internal/domain"
)

// LoginResult holds everything the callback handler needs after a successful
// OAuth exchange.
type LoginResult struct {
	User       *domain.UserRecord
	Profile    *domain.Profile
	Credential string
}

// Login exchanges an authorization code, persists the user record, and
// issues a session credential.
type Login struct {
	provider domain.IdentityProvider
	users    domain.UserStore
	codec    domain.SessionCodec
	logger   *slog.Logger
}

// NewLogin creates a new Login usecase.
func NewLogin(provider domain.IdentityProvider, users domain.UserStore, codec domain.SessionCodec, logger *slog.Logger) *Login {
	return &Login{provider: provider, users: users, codec: codec, logger: logger}
}

// Execute runs the code-exchange flow. The profile fetch uses the freshly
// granted access token, so an upstream 401 here means the grant itself is
// broken and is surfaced as-is.
func (uc *Login) Execute(ctx context.Context, code string) (*LoginResult, error) {
	grant, err := uc.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	profile, err := uc.provider.FetchProfile(ctx, grant.AccessToken)
	if err != nil {
		return nil, err
	}

	record := &domain.UserRecord{
		UserID:       profile.ID,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
	}
	if err := uc.users.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist user record: %w", err)
	}

	credential, err := uc.codec.Issue(profile.ID)
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to issue session credential", "user_id", profile.ID, "error", err)
		return nil, fmt.Errorf("failed to issue session credential: %w", err)
	}

	uc.logger.InfoContext(ctx, "user logged in", "user_id", profile.ID)

	return &LoginResult{User: record, Profile: profile, Credential: credential}, nil
}
