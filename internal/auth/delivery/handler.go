package delivery

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	authdomain "minimalist-backend/internal/auth/domain"
	authdto "minimalist-backend/internal/auth/dto"
	"minimalist-backend/internal/auth/usecase"
	"minimalist-backend/pkg/config"
	"minimalist-backend/pkg/qrcode"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	stateCookie  = "oauth_state"
	returnCookie = "oauth_return"
	cookiePath   = "/api/auth"
	cookieMaxAge = int(10 * time.Minute / time.Second)
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	config      *config.Config
	logger      *zap.Logger
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		config:      cfg,
		logger:      logger.Named("auth.http"),
	}
}

// GoogleLogin starts the OAuth consent flow
// GET /api/auth/google
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		h.logger.Error("failed to generate oauth state", zap.Error(err))
		c.Redirect(http.StatusFound, h.errorRedirect(h.config.FrontendURL, "auth_failed"))
		return
	}

	authURL, err := h.authUsecase.GoogleAuthURL(state)
	if err != nil {
		if errors.Is(err, authdomain.ErrOAuthNotConfigured) {
			h.logger.Warn("google login requested but oauth is not configured")
			c.Redirect(http.StatusFound, h.errorRedirect(h.config.FrontendURL, "oauth_not_configured"))
			return
		}
		c.Redirect(http.StatusFound, h.errorRedirect(h.config.FrontendURL, "auth_failed"))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, cookieMaxAge, cookiePath, "", h.config.IsProduction(), true)
	if origin := refererOrigin(c.GetHeader("Referer")); h.config.OriginListed(origin) {
		c.SetCookie(returnCookie, origin, cookieMaxAge, cookiePath, "", h.config.IsProduction(), true)
	}

	c.Redirect(http.StatusFound, authURL)
}

// GoogleCallback completes the OAuth flow and hands the tokens to the frontend
// GET /api/auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	frontend := h.returnOrigin(c)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, "", -1, cookiePath, "", h.config.IsProduction(), true)
	c.SetCookie(returnCookie, "", -1, cookiePath, "", h.config.IsProduction(), true)

	if errParam := c.Query("error"); errParam != "" {
		h.logger.Info("google consent declined", zap.String("error", errParam))
		c.Redirect(http.StatusFound, h.errorRedirect(frontend, "auth_failed"))
		return
	}

	expected, err := c.Cookie(stateCookie)
	state := c.Query("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(state)) != 1 {
		h.logger.Warn("oauth state mismatch")
		c.Redirect(http.StatusFound, h.errorRedirect(frontend, "auth_failed"))
		return
	}

	resp, err := h.authUsecase.GoogleCallback(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.logger.Error("google callback failed", zap.Error(err))
		c.Redirect(http.StatusFound, h.errorRedirect(frontend, "auth_failed"))
		return
	}

	q := url.Values{}
	q.Set("token", resp.Token)
	q.Set("refresh_token", resp.RefreshToken)
	c.Redirect(http.StatusFound, frontend+"/auth/callback?"+q.Encode())
}

// GoogleSignIn exchanges a Google ID token for our tokens
// POST /api/auth/google
func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req authdto.GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authUsecase.GoogleSignIn(c.Request.Context(), req.IDToken)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated user
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token."})
		return
	}
	c.JSON(http.StatusOK, user)
}

// RefreshToken rotates a refresh token
// POST /api/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req authdto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authUsecase.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout revokes the given refresh token; bearer tokens expire on their own
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req authdto.LogoutRequest
	// Body is optional
	_ = c.ShouldBindJSON(&req)

	if err := h.authUsecase.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// CreateShare issues a QR share code for signing in on another device
// POST /api/auth/share
func (h *AuthHandler) CreateShare(c *gin.Context) {
	userID := c.GetString(ContextUserIDKey)

	resp, err := h.authUsecase.CreateShareCode(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	qr, err := qrcode.DataURL(resp.URL, qrcode.DefaultSize)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp.QRCode = qr
	c.JSON(http.StatusCreated, resp)
}

// ShareQR issues a share code and returns it rendered as a PNG
// GET /api/auth/share/qr?size=256
func (h *AuthHandler) ShareQR(c *gin.Context) {
	userID := c.GetString(ContextUserIDKey)
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(qrcode.DefaultSize)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "size must be a number"})
		return
	}

	resp, err := h.authUsecase.CreateShareCode(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	png, err := qrcode.PNG(resp.URL, size)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("X-Share-Code", resp.Code)
	c.Header("X-Share-Expires-At", resp.ExpiresAt.Format(time.RFC3339))
	c.Data(http.StatusOK, "image/png", png)
}

// RedeemShare signs a second device in with a share code
// POST /api/auth/share/redeem
func (h *AuthHandler) RedeemShare(c *gin.Context) {
	var req authdto.RedeemShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authUsecase.RedeemShareCode(c.Request.Context(), req.Code)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterFCMToken registers a device for due-date reminders
// POST /api/fcm/register
func (h *AuthHandler) RegisterFCMToken(c *gin.Context) {
	var req authdto.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString(ContextUserIDKey)
	if err := h.authUsecase.RegisterDevice(c.Request.Context(), userID, req.Token, req.DeviceInfo); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device registered"})
}

// UnregisterFCMToken removes a device
// DELETE /api/fcm/:token
func (h *AuthHandler) UnregisterFCMToken(c *gin.Context) {
	userID := c.GetString(ContextUserIDKey)
	if err := h.authUsecase.UnregisterDevice(c.Request.Context(), userID, c.Param("token")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device unregistered"})
}

func (h *AuthHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authdomain.ErrInvalidToken), errors.Is(err, authdomain.ErrUserNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token."})
	case errors.Is(err, authdomain.ErrShareCodeInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": authdomain.ErrShareCodeInvalid.Error()})
	case errors.Is(err, authdomain.ErrEmailNotVerified):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, authdomain.ErrOAuthNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, authdomain.ErrDeviceTokenRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong!"})
	}
}

// returnOrigin picks the frontend to send the browser back to.
func (h *AuthHandler) returnOrigin(c *gin.Context) string {
	if origin, err := c.Cookie(returnCookie); err == nil && h.config.OriginListed(origin) {
		return origin
	}
	return h.config.FrontendURL
}

func (h *AuthHandler) errorRedirect(frontend, message string) string {
	return frontend + "/auth/error?message=" + url.QueryEscape(message)
}

func refererOrigin(referer string) string {
	if referer == "" {
		return ""
	}
	u, err := url.Parse(referer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
