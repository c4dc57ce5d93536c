// Package auth provides JWT token issuance/validation and password hashing
// for the API's authentication layer.
package auth

import (
	"context"

	"github.com/google/uuid"
)

// Claims holds the validated identity extracted from a token.
type Claims struct {
	UserID uuid.UUID
}

// JWTService issues and validates signed access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token carrying the user's ID.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken verifies a token's signature and time claims and returns
	// the embedded claims. Returns ErrExpiredToken or ErrInvalidToken on
	// failure.
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}
