package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Session is the result of a successful login or registration.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

// Authenticator verifies credentials and issues session tokens.
type Authenticator struct {
	users  UserRepository
	hasher PasswordHasher
	codec  *TokenCodec
	now    func() time.Time

	dummyOnce   sync.Once
	dummyDigest string
}

// NewAuthenticator wires the credential store, hasher and token codec.
func NewAuthenticator(users UserRepository, hasher PasswordHasher, codec *TokenCodec) *Authenticator {
	return &Authenticator{
		users:  users,
		hasher: hasher,
		codec:  codec,
		now:    time.Now,
	}
}

// Login checks username and password and issues a token bound to the
// username. Unknown users, wrong passwords and disabled accounts all fail
// with ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		// Spend the same hashing time as a real check.
		a.burnVerify(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := a.hasher.Verify(password, user.PasswordHash)
	if err != nil && !errors.Is(err, ErrUnsupportedDigest) {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok || !user.Enabled {
		return nil, ErrInvalidCredentials
	}

	return a.IssueSession(user)
}

// Register creates a USER account. requestedRole may be empty or name USER;
// any other role is refused with ErrRoleNotAllowed. Escalation happens only
// through the promotion rule or an administrator.
func (a *Authenticator) Register(ctx context.Context, username, password, requestedRole string) (*User, error) {
	if !IsValidUsername(username) {
		return nil, ErrInvalidUsername
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if requestedRole != "" && NormalizeRole(requestedRole) != RoleUser {
		return nil, ErrRoleNotAllowed
	}

	exists, err := a.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if exists {
		return nil, ErrUsernameExists
	}

	digest, err := a.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Username:     username,
		PasswordHash: digest,
		Role:         RoleUser,
		Enabled:      true,
	}
	// Create maps a concurrent duplicate to ErrUsernameExists.
	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces a user's password after checking the current one.
func (a *Authenticator) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if len(next) < minPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := a.hasher.Verify(current, user.PasswordHash)
	if err != nil && !errors.Is(err, ErrUnsupportedDigest) {
		return fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	return a.SetPassword(ctx, userID, next)
}

// SetPassword hashes plaintext and stores the new digest.
func (a *Authenticator) SetPassword(ctx context.Context, userID int64, plaintext string) error {
	digest, err := a.hasher.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return a.users.UpdatePassword(ctx, userID, digest)
}

// IssueSession signs a token for user using the codec's TTL.
func (a *Authenticator) IssueSession(user *User) (*Session, error) {
	issuedAt := a.now()
	token, err := a.codec.Issue(user.Username, issuedAt, a.codec.TTL())
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		ExpiresAt: issuedAt.Truncate(time.Second).Add(a.codec.TTL()),
		User:      user,
	}, nil
}

func (a *Authenticator) burnVerify(password string) {
	a.dummyOnce.Do(func() {
		a.dummyDigest, _ = a.hasher.Hash("album-catalog-timing-guard") //nolint:errcheck // failure leaves digest empty
	})
	if a.dummyDigest != "" {
		_, _ = a.hasher.Verify(password, a.dummyDigest) //nolint:errcheck // result intentionally ignored
	}
}
