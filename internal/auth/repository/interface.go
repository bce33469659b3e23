package repository

import (
	"context"
	"time"

	authdomain "minimalist-backend/internal/auth/domain"
)

// UserRepository defines persistence for users and their refresh tokens
type UserRepository interface {
	Create(ctx context.Context, user *authdomain.User) error
	FindByID(ctx context.Context, id string) (*authdomain.User, error)
	FindByEmail(ctx context.Context, email string) (*authdomain.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*authdomain.User, error)
	Update(ctx context.Context, user *authdomain.User) error

	SaveRefreshToken(ctx context.Context, token *authdomain.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*authdomain.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	// RotateRefreshToken deletes old and stores next atomically. It returns
	// false when old no longer exists (already rotated or logged out).
	RotateRefreshToken(ctx context.Context, old string, next *authdomain.RefreshToken) (bool, error)
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

// ShareCodeRepository stores QR handoff codes
type ShareCodeRepository interface {
	Create(ctx context.Context, code *authdomain.ShareCode) error
	FindByID(ctx context.Context, id string) (*authdomain.ShareCode, error)
	// MarkUsed consumes the code if it is still unused and unexpired at now.
	// It returns false when another redemption won or the code lapsed.
	MarkUsed(ctx context.Context, id string, now time.Time) (bool, error)
	DeleteStale(ctx context.Context, now time.Time) (int64, error)
}
