package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the session token lifetime when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// minSecretBytes is 256 bits of HMAC key material.
const minSecretBytes = 32

// Token errors. Malformed, signature and expiry failures all surface to
// clients as a plain 401.
var (
	ErrTokenMalformed = errors.New("malformed token")
	ErrTokenSignature = errors.New("invalid token signature")
	ErrTokenExpired   = errors.New("token has expired")
	ErrWeakSecret     = errors.New("token secret must be at least 32 bytes")
)

// Claims is the session token payload: subject (username), issued-at,
// expires-at and a unique token ID. It carries no role; authorisation is
// re-resolved from the user store on every request.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenConfig configures a TokenCodec.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// TokenCodec issues and verifies HS256 compact JWTs.
// A codec is immutable and safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
}

// NewTokenCodec validates cfg and builds a codec. A zero TTL means DefaultTokenTTL.
func NewTokenCodec(cfg TokenConfig) (*TokenCodec, error) {
	if len(cfg.Secret) < minSecretBytes {
		return nil, ErrWeakSecret
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &TokenCodec{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		// Expiry is checked separately by IsExpired so the boundary is ours.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
			jwt.WithStrictDecoding(),
		),
	}, nil
}

// TTL returns the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for subject valid from issuedAt for ttl. A zero ttl
// uses the codec's configured lifetime. Times have second precision.
func (c *TokenCodec) Issue(subject string, issuedAt time.Time, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("issuing token: empty subject")
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	issuedAt = issuedAt.Truncate(time.Second)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and structure of token and returns its
// claims. It does not check expiry; use IsExpired.
func (c *TokenCodec) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := c.parser.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, fmt.Errorf("%w: %w", ErrTokenSignature, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
	if !parsed.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenMalformed)
	}
	return claims, nil
}

// IsExpired reports whether claims are expired at now. A token stays valid
// up to and including its expiry instant. Claims without an expiry are
// treated as expired.
func IsExpired(claims *Claims, now time.Time) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return now.After(claims.ExpiresAt.Time)
}
