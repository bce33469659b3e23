// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	authdomain "minimalist-backend/internal/auth/domain"
	"minimalist-backend/internal/schema"
	"minimalist-backend/pkg/config"
	"minimalist-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewTestDB opens a private in-memory sqlite database with the schema migrated.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared&_foreign_keys=1"
	db, err := database.Open(sqlite.Open(dsn), zaptest.NewLogger(t))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, schema.Migrate(db))
	return db
}

// NewConfig returns a config suitable for tests
func NewConfig() *config.Config {
	return &config.Config{
		Port:               "5000",
		AppEnv:             "test",
		LogLevel:           "debug",
		JWTSecret:          "test-secret",
		JWTAccessExpiry:    time.Hour,
		JWTRefreshExpiry:   24 * time.Hour,
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		FrontendURL:        "http://localhost:5173",
		CORSOrigins:        []string{"http://localhost:5173"},
		ShareCodeTTL:       5 * time.Minute,
		ReminderInterval:   time.Minute,
		ReminderLead:       time.Hour,
	}
}

// CreateUser inserts a user directly
func CreateUser(t testing.TB, db *gorm.DB, email string) *authdomain.User {
	t.Helper()
	user := &authdomain.User{
		ID:       uuid.New().String(),
		GoogleID: "g-" + uuid.New().String(),
		Email:    email,
		Name:     email,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// FakeGoogle is a GoogleProvider whose profiles are keyed by code or ID token.
type FakeGoogle struct {
	Disabled bool
	Profiles map[string]*authdomain.GoogleProfile
}

func NewFakeGoogle() *FakeGoogle {
	return &FakeGoogle{Profiles: make(map[string]*authdomain.GoogleProfile)}
}

func (f *FakeGoogle) Configured() bool { return !f.Disabled }

func (f *FakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.google.test/o/oauth2/auth?state=" + state
}

func (f *FakeGoogle) ExchangeCode(_ context.Context, code string) (*authdomain.GoogleProfile, error) {
	if p, ok := f.Profiles[code]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, errors.New("invalid_grant")
}

func (f *FakeGoogle) VerifyIDToken(ctx context.Context, idToken string) (*authdomain.GoogleProfile, error) {
	return f.ExchangeCode(ctx, idToken)
}
