package auth

import (
	"context"

	"stockward/internal/core/id"
)

// UserRepository defines user storage operations.
type UserRepository interface {
	Create(ctx context.Context, user *User) error

	GetByID(ctx context.Context, userID id.ID) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*User, error)

	Update(ctx context.Context, user *User) error

	// Exists checks whether an email is already registered.
	Exists(ctx context.Context, email string) (bool, error)

	// LoadRoles loads the user's role codes.
	LoadRoles(ctx context.Context, userID id.ID) ([]string, error)

	// SetRoles replaces the user's role codes.
	SetRoles(ctx context.Context, userID id.ID, roles []string) error
}

// TokenRepository defines refresh token storage.
type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error

	// GetRefreshToken retrieves a refresh token by hash.
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)

	RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error

	// RevokeAllUserTokens revokes every live token of a user.
	RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error

	// CleanupExpiredTokens removes expired tokens, returning the count.
	CleanupExpiredTokens(ctx context.Context) (int, error)
}
