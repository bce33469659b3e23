package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	authdomain "minimalist-backend/internal/auth/domain"
	authdto "minimalist-backend/internal/auth/dto"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const shareSecretBytes = 32

// CreateShareCode issues "<id>.<secret>". Only a bcrypt hash of the secret is
// stored, so a leaked table cannot be replayed.
func (u *authUsecase) CreateShareCode(ctx context.Context, userID string) (*authdto.ShareResponse, error) {
	secret, err := randomSecret(shareSecretBytes)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash share secret: %w", err)
	}

	now := u.now()
	share := &authdomain.ShareCode{
		ID:         uuid.New().String(),
		UserID:     userID,
		SecretHash: string(hash),
		ExpiresAt:  now.Add(u.config.ShareCodeTTL),
		CreatedAt:  now,
	}
	if err := u.shareRepo.Create(ctx, share); err != nil {
		return nil, err
	}

	code := share.ID + "." + secret
	u.logger.Info("share code created",
		zap.String("user_id", userID),
		zap.String("share_id", share.ID),
		zap.Time("expires_at", share.ExpiresAt))

	return &authdto.ShareResponse{
		Code:      code,
		URL:       u.shareURL(code),
		ExpiresAt: share.ExpiresAt,
	}, nil
}

func (u *authUsecase) RedeemShareCode(ctx context.Context, code string) (*authdto.TokenResponse, error) {
	id, secret, ok := strings.Cut(strings.TrimSpace(code), ".")
	if !ok || secret == "" {
		return nil, authdomain.ErrShareCodeInvalid
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, authdomain.ErrShareCodeInvalid
	}

	share, err := u.shareRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := u.now()
	if share == nil || !share.Usable(now) {
		return nil, authdomain.ErrShareCodeInvalid
	}
	if bcrypt.CompareHashAndPassword([]byte(share.SecretHash), []byte(secret)) != nil {
		return nil, authdomain.ErrShareCodeInvalid
	}

	consumed, err := u.shareRepo.MarkUsed(ctx, share.ID, now)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, authdomain.ErrShareCodeInvalid
	}

	user, err := u.userRepo.FindByID(ctx, share.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authdomain.ErrShareCodeInvalid
	}

	u.logger.Info("share code redeemed", zap.String("user_id", user.ID), zap.String("share_id", share.ID))
	return u.generateTokens(ctx, user)
}

func (u *authUsecase) shareURL(code string) string {
	return u.config.FrontendURL + "/?share=" + url.QueryEscape(code)
}

func randomSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
