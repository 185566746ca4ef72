package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"auth-gate/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(ttl time.Duration) *JWTCodec {
	return NewJWTCodec(JWTConfig{
		Secret: "test-secret",
		Issuer: "auth-gate",
		TTL:    ttl,
	})
}

func TestJWTCodec_IssueAndVerify(t *testing.T) {
	codec := newTestCodec(time.Hour)

	credential, err := codec.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, credential)

	userID, err := codec.Verify(credential)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestJWTCodec_VerifyMissing(t *testing.T) {
	codec := newTestCodec(time.Hour)

	_, err := codec.Verify("")
	assert.True(t, errors.Is(err, domain.ErrCredentialMissing))
}

func TestJWTCodec_VerifyMalformed(t *testing.T) {
	codec := newTestCodec(time.Hour)

	_, err := codec.Verify("not-a-jwt")
	assert.True(t, errors.Is(err, domain.ErrCredentialInvalid))
}

func TestJWTCodec_VerifyTamperedSignature(t *testing.T) {
	codec := newTestCodec(time.Hour)

	credential, err := codec.Issue("user-123")
	require.NoError(t, err)

	// Flip a character in the signature segment
	parts := strings.Split(credential, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = codec.Verify(tampered)
	assert.True(t, errors.Is(err, domain.ErrCredentialInvalid))
}

func TestJWTCodec_VerifyWrongSecret(t *testing.T) {
	codec := newTestCodec(time.Hour)
	other := NewJWTCodec(JWTConfig{Secret: "other-secret", Issuer: "auth-gate", TTL: time.Hour})

	credential, err := other.Issue("user-123")
	require.NoError(t, err)

	_, err = codec.Verify(credential)
	assert.True(t, errors.Is(err, domain.ErrCredentialInvalid))
}

func TestJWTCodec_VerifyExpired(t *testing.T) {
	codec := newTestCodec(time.Hour)

	issuedAt := time.Now()
	codec.now = func() time.Time { return issuedAt }

	credential, err := codec.Issue("user-123")
	require.NoError(t, err)

	// Advance past the TTL; signature is still valid
	codec.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }

	_, err = codec.Verify(credential)
	assert.True(t, errors.Is(err, domain.ErrCredentialExpired))
}

func TestJWTCodec_VerifyMissingUserID(t *testing.T) {
	codec := newTestCodec(time.Hour)

	credential, err := codec.Issue("")
	require.NoError(t, err)

	_, err = codec.Verify(credential)
	assert.True(t, errors.Is(err, domain.ErrCredentialInvalid))
}
