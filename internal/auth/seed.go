package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// seedPasswordBytes is the number of random bytes in a seeded admin password.
const seedPasswordBytes = 16

// SeedAdmin creates the initial ADMIN account on first boot if no users
// exist. The generated password is logged once and returned; it must be
// changed immediately. An empty password means seeding was skipped.
func SeedAdmin(ctx context.Context, users UserRepository, hasher PasswordHasher, username string, logger *slog.Logger) (string, error) {
	if !IsValidUsername(username) {
		return "", fmt.Errorf("seeding admin: %w", ErrInvalidUsername)
	}

	count, err := users.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("checking user count: %w", err)
	}
	if count > 0 {
		logger.Info("users exist, skipping admin seed")
		return "", nil
	}

	passwordBytes := make([]byte, seedPasswordBytes)
	if _, err := rand.Read(passwordBytes); err != nil { //nolint:govet // shadow: err re-declared in nested scope
		return "", fmt.Errorf("generating seed password: %w", err)
	}
	password := hex.EncodeToString(passwordBytes)

	digest, err := hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hashing seed password: %w", err)
	}

	admin := &User{
		Username:     username,
		PasswordHash: digest,
		Role:         RoleAdmin,
		Enabled:      true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return "", fmt.Errorf("creating seed admin: %w", err)
	}

	logger.Warn("seed admin account created",
		"username", username,
		"password", password,
		"action_required", "change this password immediately",
	)

	return password, nil
}
