package usecase

import (
	"context"

	authdomain "minimalist-backend/internal/auth/domain"
	authdto "minimalist-backend/internal/auth/dto"
)

// AuthUsecase defines sign-in, token and device handoff operations
type AuthUsecase interface {
	// GoogleAuthURL returns the consent URL for state, or ErrOAuthNotConfigured.
	GoogleAuthURL(state string) (string, error)
	// GoogleCallback finishes the authorization-code flow.
	GoogleCallback(ctx context.Context, code string) (*authdto.TokenResponse, error)
	// GoogleSignIn signs in with a Google ID token obtained client side.
	GoogleSignIn(ctx context.Context, idToken string) (*authdto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*authdto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	// ValidateToken resolves a bearer access token to its user.
	ValidateToken(ctx context.Context, token string) (*authdomain.User, error)

	// CreateShareCode issues a single-use code another device can redeem.
	CreateShareCode(ctx context.Context, userID string) (*authdto.ShareResponse, error)
	RedeemShareCode(ctx context.Context, code string) (*authdto.TokenResponse, error)

	RegisterDevice(ctx context.Context, userID, token, deviceInfo string) error
	UnregisterDevice(ctx context.Context, userID, token string) error
}

// GoogleProvider is the Google side of sign-in, implemented by pkg/google.
type GoogleProvider interface {
	Configured() bool
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*authdomain.GoogleProfile, error)
	VerifyIDToken(ctx context.Context, idToken string) (*authdomain.GoogleProfile, error)
}
