package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"auth-gate/internal/domain"
	"auth-gate/internal/usecase"
	"auth-gate/utils/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCodec implements domain.SessionCodec for testing.
type mockCodec struct {
	userID string
	err    error
}

func (m *mockCodec) Issue(string) (string, error) { return "credential", nil }

func (m *mockCodec) Verify(string) (string, error) { return m.userID, m.err }

// mockUserStore implements domain.UserStore for testing.
type mockUserStore struct {
	record *domain.UserRecord
	err    error
}

func (m *mockUserStore) FindByUserID(context.Context, string) (*domain.UserRecord, error) {
	return m.record, m.err
}

func (m *mockUserStore) Upsert(context.Context, *domain.UserRecord) error { return nil }

// mockIdentityCache implements domain.IdentityCache for testing.
type mockIdentityCache struct {
	profile      *domain.Profile
	profileErr   error
	profileCalls int
}

func (m *mockIdentityCache) GetProfile(context.Context, string, string) (*domain.Profile, error) {
	m.profileCalls++
	return m.profile, m.profileErr
}

func (m *mockIdentityCache) GetGuilds(context.Context, string, string) ([]domain.Guild, error) {
	return nil, nil
}

func (m *mockIdentityCache) Invalidate(string) {}

func newAuthRequest(t *testing.T, withCookie bool) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	if withCookie {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "some-credential"})
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeFail(t *testing.T, rec *httptest.ResponseRecorder) failResponse {
	t.Helper()

	var body failResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequireSession_Authenticated(t *testing.T) {
	store := &mockUserStore{record: &domain.UserRecord{UserID: "u1", AccessToken: "at"}}
	identities := &mockIdentityCache{profile: &domain.Profile{ID: "u1", Username: "alice"}}
	uc := usecase.NewAuthenticate(&mockCodec{userID: "u1"}, store, identities, slog.Default())
	m := NewSessionAuth(uc, slog.Default())

	c, rec := newAuthRequest(t, true)

	var seenUser *domain.UserRecord
	var seenProfile *domain.Profile
	next := func(c echo.Context) error {
		seenUser = DBUser(c)
		seenProfile = DiscordUser(c)
		return c.NoContent(http.StatusOK)
	}

	err := m.RequireSession()(next)(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seenUser)
	require.NotNil(t, seenProfile)
	assert.Equal(t, "u1", seenUser.UserID)
	assert.Equal(t, "alice", seenProfile.Username)
}

func TestRequireSession_MissingCookie(t *testing.T) {
	uc := usecase.NewAuthenticate(&mockCodec{}, &mockUserStore{}, &mockIdentityCache{}, slog.Default())
	m := NewSessionAuth(uc, slog.Default())

	c, rec := newAuthRequest(t, false)

	nextCalled := false
	next := func(c echo.Context) error {
		nextCalled = true
		return nil
	}

	err := m.RequireSession()(next)(c)

	require.NoError(t, err)
	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeFail(t, rec)
	assert.Equal(t, "fail", body.Status)
	assert.Contains(t, body.Message, "not logged in")
}

func TestRequireSession_InvalidCredential(t *testing.T) {
	uc := usecase.NewAuthenticate(&mockCodec{err: domain.ErrCredentialInvalid}, &mockUserStore{}, &mockIdentityCache{}, slog.Default())
	m := NewSessionAuth(uc, slog.Default())

	c, rec := newAuthRequest(t, true)
	err := m.RequireSession()(func(echo.Context) error { return nil })(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "fail", decodeFail(t, rec).Status)
}

func TestRequireSession_ExpiredCredential(t *testing.T) {
	uc := usecase.NewAuthenticate(&mockCodec{err: domain.ErrCredentialExpired}, &mockUserStore{}, &mockIdentityCache{}, slog.Default())
	m := NewSessionAuth(uc, slog.Default())

	c, rec := newAuthRequest(t, true)
	err := m.RequireSession()(func(echo.Context) error { return nil })(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSession_UserGone(t *testing.T) {
	identities := &mockIdentityCache{}
	uc := usecase.NewAuthenticate(&mockCodec{userID: "u1"}, &mockUserStore{err: domain.ErrUserNotFound}, identities, slog.Default())
	m := NewSessionAuth(uc, slog.Default())

	c, rec := newAuthRequest(t, true)
	err := m.RequireSession()(func(echo.Context) error { return nil })(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, decodeFail(t, rec).Message, "does no longer exist")
	assert.Equal(t, 0, identities.profileCalls, "no upstream call for a deleted user")
}

func TestRequireSession_UpstreamUnauthorized(t *testing.T) {
	store := &mockUserStore{record: &domain.UserRecord{UserID: "u1", AccessToken: "stale"}}
	uc := usecase.NewAuthenticate(&mockCodec{userID: "u1"}, store, &mockIdentityCache{profileErr: domain.ErrUpstreamUnauthorized}, slog.Default())
	m := NewSessionAuth(uc, slog.Default())

	c, rec := newAuthRequest(t, true)
	err := m.RequireSession()(func(echo.Context) error { return nil })(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, decodeFail(t, rec).Message, "unauthorized")
}

func TestRequireSession_UpstreamOutage(t *testing.T) {
	store := &mockUserStore{record: &domain.UserRecord{UserID: "u1", AccessToken: "at"}}
	uc := usecase.NewAuthenticate(&mockCodec{userID: "u1"}, store, &mockIdentityCache{profileErr: domain.ErrUpstreamFailure}, slog.Default())
	m := NewSessionAuth(uc, slog.Default())

	c, rec := newAuthRequest(t, true)
	err := m.RequireSession()(func(echo.Context) error { return nil })(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDBUser_NotAuthenticated(t *testing.T) {
	c, _ := newAuthRequest(t, false)

	assert.Nil(t, DBUser(c))
	assert.Nil(t, DiscordUser(c))
}

func TestRequireSession_CookieNameIsCaseSensitive(t *testing.T) {
	assert.Equal(t, "JWT", SessionCookieName)

	store := &mockUserStore{record: &domain.UserRecord{UserID: "u1", AccessToken: "at"}}
	identities := &mockIdentityCache{profile: &domain.Profile{ID: "u1"}}
	uc := usecase.NewAuthenticate(&mockCodec{userID: "u1"}, store, identities, slog.Default())
	m := NewSessionAuth(uc, slog.Default())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "some-credential"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := m.RequireSession()(func(echo.Context) error { return nil })(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, decodeFail(t, rec).Message, "not logged in")
}

func TestRequireSession_EnrichesRequestContext(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.GlobalContext
	logger.GlobalContext = logger.NewContextLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer func() { logger.GlobalContext = prev }()

	store := &mockUserStore{record: &domain.UserRecord{UserID: "u1", AccessToken: "at"}}
	identities := &mockIdentityCache{profile: &domain.Profile{ID: "u1"}}
	uc := usecase.NewAuthenticate(&mockCodec{userID: "u1"}, store, identities, slog.Default())
	m := NewSessionAuth(uc, slog.Default())

	c, rec := newAuthRequest(t, true)

	var seenUserID any
	next := func(c echo.Context) error {
		seenUserID = c.Request().Context().Value(logger.UserIDKey)
		return c.NoContent(http.StatusOK)
	}

	err := m.RequireSession()(next)(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", seenUserID)
	assert.Contains(t, buf.String(), `"operation":"session_validate"`)
	assert.Contains(t, buf.String(), `"user_id":"u1"`)
}
