package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	api "minimalist-backend/cmd/api"
	authRepo "minimalist-backend/internal/auth/repository"
	authUsecase "minimalist-backend/internal/auth/usecase"
	"minimalist-backend/internal/schema"
	todoRepo "minimalist-backend/internal/todo/repository"
	"minimalist-backend/internal/todo/scheduler"
	todoUsecase "minimalist-backend/internal/todo/usecase"
	"minimalist-backend/pkg/config"
	"minimalist-backend/pkg/database"
	"minimalist-backend/pkg/fcm"
	"minimalist-backend/pkg/google"
	"minimalist-backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "minimalist-backend",
	Short: "Minimalist todo API",
	Long: `Minimalist todo API: Google sign-in, per-user todos with manual ordering,
QR-code session handoff and due-date push reminders.

Run without arguments to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		var err error
		log, err = logger.New(cfg.LogLevel, cfg.AppEnv)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the database and start the API server with background jobs",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		log.Info("database migrated")
		return closeDatabase(db)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openDatabase() (*gorm.DB, error) {
	db, err := database.NewConnection(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := schema.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func closeDatabase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.UsesDefaultSecret() {
		if cfg.IsProduction() {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		log.Warn("JWT_SECRET is not set, using the built-in development secret")
	}
	if !cfg.GoogleConfigured() {
		log.Warn("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set, Google sign-in disabled")
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer func() { _ = closeDatabase(db) }()

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	shareRepository := authRepo.NewShareCodeRepository(db)
	fcmTokenRepository := authRepo.NewFCMTokenRepository(db)
	todoRepository := todoRepo.NewGormTodoRepository(db)

	googleService := google.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)

	// FCM is optional; without it reminders are skipped
	var notifier scheduler.Notifier
	if cfg.FirebaseCredentials != "" {
		fcmClient, err := fcm.NewClient(ctx, cfg.FirebaseCredentials, log)
		if err != nil {
			log.Warn("failed to initialize FCM client, push reminders disabled", zap.Error(err))
		} else {
			notifier = fcmClient
		}
	} else {
		log.Info("FIREBASE_CREDENTIALS not set, push reminders disabled")
	}

	// Initialize use cases
	authUc := authUsecase.NewAuthUsecase(userRepository, shareRepository, fcmTokenRepository, googleService, cfg, log)
	todoUc := todoUsecase.NewTodoUsecase(todoRepository, log)

	jobs := scheduler.New(todoRepository, fcmTokenRepository, userRepository, shareRepository, notifier, scheduler.Options{
		Interval:    cfg.ReminderInterval,
		Lead:        cfg.ReminderLead,
		ClickAction: cfg.FrontendURL + "/",
	}, log)

	handler := api.NewHandler(authUc, todoUc, cfg, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return handler.Start(gctx, ":"+cfg.Port)
	})
	g.Go(func() error {
		return jobs.Run(gctx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	log.Info("server stopped")
	return nil
}
