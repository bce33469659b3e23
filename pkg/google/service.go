package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	authdomain "minimalist-backend/internal/auth/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

var scopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
}

// Service runs the Google side of sign-in: consent URL, code exchange and
// ID token verification.
type Service struct {
	config *oauth2.Config
}

func NewService(clientID, clientSecret, redirectURL string) *Service {
	return &Service{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       scopes,
		},
	}
}

func (s *Service) Configured() bool {
	return s.config.ClientID != "" && s.config.ClientSecret != ""
}

// AuthCodeURL returns the consent screen URL carrying state.
func (s *Service) AuthCodeURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// ExchangeCode trades an authorization code for a token and loads the profile.
func (s *Service) ExchangeCode(ctx context.Context, code string) (*authdomain.GoogleProfile, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(s.config.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth2 service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	if info.Id == "" || info.Email == "" {
		return nil, errors.New("google profile is missing id or email")
	}

	verified := info.VerifiedEmail != nil && *info.VerifiedEmail
	return &authdomain.GoogleProfile{
		ID:            info.Id,
		Email:         info.Email,
		EmailVerified: verified,
		Name:          info.Name,
		Picture:       info.Picture,
	}, nil
}

// VerifyIDToken validates a Google-issued ID token for this client.
func (s *Service) VerifyIDToken(ctx context.Context, rawToken string) (*authdomain.GoogleProfile, error) {
	payload, err := idtoken.Validate(ctx, rawToken, s.config.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify Google token: %w", err)
	}

	profile := &authdomain.GoogleProfile{
		ID:      payload.Subject,
		Email:   claimString(payload.Claims, "email"),
		Name:    claimString(payload.Claims, "name"),
		Picture: claimString(payload.Claims, "picture"),
	}
	switch v := payload.Claims["email_verified"].(type) {
	case bool:
		profile.EmailVerified = v
	case string:
		profile.EmailVerified = strings.EqualFold(v, "true")
	}
	if profile.ID == "" || profile.Email == "" {
		return nil, errors.New("google token is missing subject or email")
	}
	return profile, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
