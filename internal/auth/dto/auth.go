package dto

import (
	"time"

	authdomain "minimalist-backend/internal/auth/domain"
)

type GoogleSignInRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type TokenResponse struct {
	Token        string           `json:"token"`
	RefreshToken string           `json:"refreshToken"`
	User         *authdomain.User `json:"user"`
}

type RedeemShareRequest struct {
	Code string `json:"code" binding:"required"`
}

// ShareResponse is what the desktop client renders as a QR code.
type ShareResponse struct {
	Code      string    `json:"code"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	QRCode    string    `json:"qrCode,omitempty"` // data:image/png;base64,...
}

type RegisterDeviceRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceInfo string `json:"deviceInfo"`
}
