package token

import (
	"errors"
	"fmt"
	"time"

	"auth-gate/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig holds session credential signing configuration.
type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// sessionClaims represents the claims embedded in a session credential.
type sessionClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// JWTCodec signs and verifies session credentials.
// Implements domain.SessionCodec.
type JWTCodec struct {
	cfg JWTConfig
	now func() time.Time
}

// NewJWTCodec creates a new session credential codec.
func NewJWTCodec(cfg JWTConfig) *JWTCodec {
	return &JWTCodec{cfg: cfg, now: time.Now}
}

// Issue generates a signed, expiring credential for the given user ID.
func (c *JWTCodec) Issue(userID string) (string, error) {
	now := c.now()
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.cfg.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.cfg.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.cfg.Secret))
}

// Verify checks signature and expiry and returns the embedded user ID.
// Verification is binary: any failure maps to a credential error.
func (c *JWTCodec) Verify(credential string) (string, error) {
	if credential == "" {
		return "", domain.ErrCredentialMissing
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(credential, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(c.cfg.Secret), nil
		},
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: %w", domain.ErrCredentialExpired, err)
		}
		return "", fmt.Errorf("%w: %w", domain.ErrCredentialInvalid, err)
	}

	if claims.UserID == "" {
		return "", domain.ErrCredentialInvalid
	}
	return claims.UserID, nil
}
