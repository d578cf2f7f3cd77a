package auth

import (
	"errors"
	"regexp"
	"time"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 1-64 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// maxUsernameLength is the maximum allowed username length.
const maxUsernameLength = 64

// minPasswordLength is the shortest password accepted at registration.
const minPasswordLength = 3

// IsValidUsername checks if a username meets format requirements.
func IsValidUsername(username string) bool {
	return len(username) <= maxUsernameLength && usernamePattern.MatchString(username)
}

// User is a catalog account. Role is stored as written and must be read
// through NormalizeRole, since older rows may carry a "ROLE_" prefix.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never serialised
	Role         Role      `json:"role"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// EffectiveRole returns the user's normalized role.
func (u *User) EffectiveRole() Role {
	return NormalizeRole(string(u.Role))
}

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidUsername    = errors.New("username must be 1-64 characters: letters, digits, dots, hyphens, underscores")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrRoleNotAllowed     = errors.New("role cannot be chosen at registration")
	ErrInvalidRole        = errors.New("role must be USER, EDITOR or ADMIN")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrSelfModification   = errors.New("cannot modify own account in this way")
)
