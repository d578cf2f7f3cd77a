package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Caller is the identity and role behind one request. It is resolved fresh
// from the user store for every request and never cached.
type Caller struct {
	ID       int64
	Username string
	Role     Role
}

// SessionResolver turns a bearer token into a Caller.
type SessionResolver struct {
	codec *TokenCodec
	users UserRepository
	now   func() time.Time
}

// NewSessionResolver creates a resolver.
func NewSessionResolver(codec *TokenCodec, users UserRepository) *SessionResolver {
	return &SessionResolver{codec: codec, users: users, now: time.Now}
}

// Resolve validates token and loads the current user it names.
//
// Malformed, tampered and expired tokens, as well as tokens for users that
// no longer exist or are disabled, fail with an error wrapping
// ErrUnauthenticated. Store I/O failures are returned unwrapped from that
// sentinel so they surface as server errors.
func (r *SessionResolver) Resolve(ctx context.Context, token string) (*Caller, error) {
	claims, err := r.codec.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if IsExpired(claims, r.now()) {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, ErrTokenExpired)
	}

	user, err := r.users.GetByUsername(ctx, claims.Subject)
	if errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving caller: %w", err)
	}
	if !user.Enabled {
		return nil, fmt.Errorf("%w: account disabled", ErrUnauthenticated)
	}

	return &Caller{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.EffectiveRole(),
	}, nil
}
