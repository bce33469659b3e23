package delivery

import (
	"errors"
	"net/http"
	"strings"

	authdomain "minimalist-backend/internal/auth/domain"
	"minimalist-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

const (
	// ContextUserKey holds the *domain.User of an authenticated request.
	ContextUserKey = "user"
	// ContextUserIDKey holds the authenticated user's id.
	ContextUserIDKey = "userID"
)

func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			msg := "Invalid token."
			if errors.Is(err, authdomain.ErrMissingToken) {
				msg = "Access denied. No token provided."
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		user, err := authUsecase.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, authdomain.ErrInvalidToken) || errors.Is(err, authdomain.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token."})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate"})
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.ID)
		c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*authdomain.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*authdomain.User)
	return user, ok && user != nil
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", authdomain.ErrMissingToken
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", authdomain.ErrInvalidToken
	}
	return parts[1], nil
}
