package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	authdomain "minimalist-backend/internal/auth/domain"
	authdto "minimalist-backend/internal/auth/dto"
	"minimalist-backend/internal/auth/repository"
	"minimalist-backend/pkg/config"

	"go.uber.org/zap"
)

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo  repository.UserRepository
	shareRepo repository.ShareCodeRepository
	fcmRepo   repository.FCMTokenRepository
	google    GoogleProvider
	config    *config.Config
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(
	userRepo repository.UserRepository,
	shareRepo repository.ShareCodeRepository,
	fcmRepo repository.FCMTokenRepository,
	google GoogleProvider,
	cfg *config.Config,
	logger *zap.Logger,
) AuthUsecase {
	return &authUsecase{
		userRepo:  userRepo,
		shareRepo: shareRepo,
		fcmRepo:   fcmRepo,
		google:    google,
		config:    cfg,
		logger:    logger.Named("auth"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (u *authUsecase) GoogleAuthURL(state string) (string, error) {
	if u.google == nil || !u.google.Configured() {
		return "", authdomain.ErrOAuthNotConfigured
	}
	return u.google.AuthCodeURL(state), nil
}

func (u *authUsecase) GoogleCallback(ctx context.Context, code string) (*authdto.TokenResponse, error) {
	if u.google == nil || !u.google.Configured() {
		return nil, authdomain.ErrOAuthNotConfigured
	}
	profile, err := u.google.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return u.signInWithProfile(ctx, profile)
}

func (u *authUsecase) GoogleSignIn(ctx context.Context, idToken string) (*authdto.TokenResponse, error) {
	if u.google == nil || !u.google.Configured() {
		return nil, authdomain.ErrOAuthNotConfigured
	}
	profile, err := u.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authdomain.ErrInvalidToken, err)
	}
	return u.signInWithProfile(ctx, profile)
}

func (u *authUsecase) signInWithProfile(ctx context.Context, profile *authdomain.GoogleProfile) (*authdto.TokenResponse, error) {
	if !profile.EmailVerified {
		return nil, authdomain.ErrEmailNotVerified
	}
	user, err := u.upsertGoogleUser(ctx, profile)
	if err != nil {
		return nil, err
	}
	return u.generateTokens(ctx, user)
}

// upsertGoogleUser finds the user by Google id, links an existing account
// with the same email, or creates a new one.
func (u *authUsecase) upsertGoogleUser(ctx context.Context, profile *authdomain.GoogleProfile) (*authdomain.User, error) {
	user, err := u.userRepo.FindByGoogleID(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = u.userRepo.FindByEmail(ctx, profile.Email)
		if err != nil {
			return nil, err
		}
		if user != nil {
			u.logger.Info("linking existing account to google", zap.String("user_id", user.ID))
			user.GoogleID = profile.ID
		}
	}

	if user == nil {
		name := strings.TrimSpace(profile.Name)
		if name == "" {
			name = strings.SplitN(profile.Email, "@", 2)[0]
		}
		user = &authdomain.User{
			GoogleID: profile.ID,
			Email:    profile.Email,
			Name:     name,
			Picture:  profile.Picture,
		}
		if err := u.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		u.logger.Info("created user", zap.String("user_id", user.ID))
		return user, nil
	}

	// Refresh profile data, keeping old values when Google sends blanks
	if name := strings.TrimSpace(profile.Name); name != "" {
		user.Name = name
	}
	if picture := strings.TrimSpace(profile.Picture); picture != "" {
		user.Picture = picture
	}
	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, refreshToken string) (*authdto.TokenResponse, error) {
	claims, err := parseToken([]byte(u.config.JWTSecret), refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, authdomain.ErrInvalidToken
	}

	storedToken, err := u.userRepo.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if storedToken == nil || storedToken.ExpiresAt.Before(u.now()) {
		return nil, authdomain.ErrInvalidToken
	}

	user, err := u.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authdomain.ErrInvalidToken
	}

	access, err := u.generateAccessToken(user)
	if err != nil {
		return nil, err
	}
	next, err := u.newRefreshToken(user)
	if err != nil {
		return nil, err
	}
	rotated, err := u.userRepo.RotateRefreshToken(ctx, refreshToken, next)
	if err != nil {
		return nil, err
	}
	if !rotated {
		// Lost a race with another refresh or a logout.
		return nil, authdomain.ErrInvalidToken
	}

	return &authdto.TokenResponse{
		Token:        access,
		RefreshToken: next.Token,
		User:         user,
	}, nil
}

func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return u.userRepo.DeleteRefreshToken(ctx, refreshToken)
}

func (u *authUsecase) ValidateToken(ctx context.Context, tokenString string) (*authdomain.User, error) {
	claims, err := parseToken([]byte(u.config.JWTSecret), tokenString, tokenTypeAccess)
	if err != nil {
		return nil, authdomain.ErrInvalidToken
	}

	user, err := u.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authdomain.ErrUserNotFound
	}
	return user, nil
}

func (u *authUsecase) RegisterDevice(ctx context.Context, userID, token, deviceInfo string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return authdomain.ErrDeviceTokenRequired
	}
	return u.fcmRepo.SaveToken(ctx, userID, token, deviceInfo)
}

func (u *authUsecase) UnregisterDevice(ctx context.Context, userID, token string) error {
	return u.fcmRepo.DeleteUserToken(ctx, userID, token)
}

func (u *authUsecase) generateTokens(ctx context.Context, user *authdomain.User) (*authdto.TokenResponse, error) {
	accessToken, err := u.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refresh, err := u.newRefreshToken(user)
	if err != nil {
		return nil, err
	}
	if err := u.userRepo.SaveRefreshToken(ctx, refresh); err != nil {
		return nil, err
	}

	return &authdto.TokenResponse{
		Token:        accessToken,
		RefreshToken: refresh.Token,
		User:         user,
	}, nil
}

func (u *authUsecase) generateAccessToken(user *authdomain.User) (string, error) {
	return signToken([]byte(u.config.JWTSecret), user.ID, tokenTypeAccess, u.config.JWTAccessExpiry, u.now())
}

func (u *authUsecase) newRefreshToken(user *authdomain.User) (*authdomain.RefreshToken, error) {
	now := u.now()
	token, err := signToken([]byte(u.config.JWTSecret), user.ID, tokenTypeRefresh, u.config.JWTRefreshExpiry, now)
	if err != nil {
		return nil, err
	}
	return &authdomain.RefreshToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: now.Add(u.config.JWTRefreshExpiry),
	}, nil
}
