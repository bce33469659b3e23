package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	authdelivery "minimalist-backend/internal/auth/delivery"
	authusecase "minimalist-backend/internal/auth/usecase"
	tododelivery "minimalist-backend/internal/todo/delivery"
	todousecase "minimalist-backend/internal/todo/usecase"
	"minimalist-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Handler struct {
	authUsecase authusecase.AuthUsecase
	authHandler *authdelivery.AuthHandler
	todoHandler *tododelivery.TodoHandler
	config      *config.Config
	logger      *zap.Logger
}

func NewHandler(authUc authusecase.AuthUsecase, todoUc todousecase.TodoUsecase, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		authUsecase: authUc,
		authHandler: authdelivery.NewAuthHandler(authUc, cfg, logger),
		todoHandler: tododelivery.NewTodoHandler(todoUc, logger),
		config:      cfg,
		logger:      logger,
	}
}

// Engine builds the gin engine with middleware and routes
func (h *Handler) Engine() *gin.Engine {
	if h.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(Recovery(h.logger), RequestLogger(h.logger.Named("http")), CORS(h.config))

	SetupRoutes(r, h)
	return r
}

// Start serves on addr until ctx is cancelled, then drains in-flight requests
func (h *Handler) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("server listening", zap.String("addr", addr), zap.String("env", h.config.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	h.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
