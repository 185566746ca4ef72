package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"auth-gate/internal/domain"

	"golang.org/x/oauth2"
)

// oauthScopes are requested on every authorization.
var oauthScopes = []string{"identify", "guilds"}

// DiscordConfig holds OAuth application settings for the Discord API.
type DiscordConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	BaseURL      string // e.g. https://discord.com/api/v10
}

// DiscordGateway talks to the Discord OAuth and user APIs.
// Implements domain.IdentityProvider.
type DiscordGateway struct {
	cfg        DiscordConfig
	oauth      *oauth2.Config
	httpClient *http.Client
}

// NewDiscordGateway creates a new Discord gateway with tuned HTTP transport.
func NewDiscordGateway(cfg DiscordConfig, timeout time.Duration) *DiscordGateway {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}

	return &DiscordGateway{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       oauthScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.BaseURL + "/oauth2/authorize",
				TokenURL: cfg.BaseURL + "/oauth2/token",
				// Discord wants client credentials in the form body
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// AuthorizeURL builds the provider authorization URL the frontend sends the
// browser to. state is echoed back on the callback for CSRF protection.
func (g *DiscordGateway) AuthorizeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for an access/refresh token pair.
func (g *DiscordGateway) ExchangeCode(ctx context.Context, code string) (*domain.TokenGrant, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Route the exchange through the tuned transport.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)

	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil &&
			retrieveErr.Response.StatusCode == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidAuthCode, err)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamFailure, err)
	}

	scope, _ := token.Extra("scope").(string)
	return &domain.TokenGrant{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    int(token.ExpiresIn),
		Scope:        scope,
		TokenType:    token.TokenType,
	}, nil
}

// FetchProfile retrieves the user object the access token belongs to.
func (g *DiscordGateway) FetchProfile(ctx context.Context, accessToken string) (*domain.Profile, error) {
	var profile domain.Profile
	if err := g.getJSON(ctx, "/users/@me", accessToken, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FetchGuilds retrieves the guild memberships of the access token's user.
func (g *DiscordGateway) FetchGuilds(ctx context.Context, accessToken string) ([]domain.Guild, error) {
	var guilds []domain.Guild
	if err := g.getJSON(ctx, "/users/@me/guilds", accessToken, &guilds); err != nil {
		return nil, err
	}
	return guilds, nil
}

// getJSON performs an authenticated GET against the Discord API and decodes
// the response body into out.
func (g *DiscordGateway) getJSON(ctx context.Context, path, accessToken string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUpstreamFailure, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return domain.ErrUpstreamUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", domain.ErrUpstreamFailure, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUpstreamFailure, err)
	}
	return nil
}
