package scheduler

import (
	"context"
	"fmt"
	"time"

	authrepo "minimalist-backend/internal/auth/repository"
	"minimalist-backend/internal/todo/domain"
	"minimalist-backend/internal/todo/repository"
	"minimalist-backend/pkg/fcm"

	"go.uber.org/zap"
)

// Notifier delivers push notifications. *fcm.Client satisfies it.
type Notifier interface {
	SendToDevices(ctx context.Context, tokens []string, n fcm.NotificationData) ([]string, error)
}

// Options configures a Scheduler
type Options struct {
	Interval time.Duration
	// Lead is how far ahead of a due date the reminder goes out
	Lead time.Duration
	// ClickAction is opened when a reminder is clicked
	ClickAction string
}

// Scheduler sends due-date reminders and prunes expired auth records
type Scheduler struct {
	todoRepo  repository.TodoRepository
	fcmRepo   authrepo.FCMTokenRepository
	userRepo  authrepo.UserRepository
	shareRepo authrepo.ShareCodeRepository
	notifier  Notifier
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a Scheduler. notifier may be nil, which disables reminders
// but keeps maintenance running.
func New(
	todoRepo repository.TodoRepository,
	fcmRepo authrepo.FCMTokenRepository,
	userRepo authrepo.UserRepository,
	shareRepo authrepo.ShareCodeRepository,
	notifier Notifier,
	opts Options,
	logger *zap.Logger,
) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.Lead <= 0 {
		opts.Lead = time.Hour
	}
	return &Scheduler{
		todoRepo:  todoRepo,
		fcmRepo:   fcmRepo,
		userRepo:  userRepo,
		shareRepo: shareRepo,
		notifier:  notifier,
		opts:      opts,
		logger:    logger.Named("scheduler"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run ticks until ctx is cancelled. The first tick runs immediately.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started",
		zap.Duration("interval", s.opts.Interval),
		zap.Duration("lead", s.opts.Lead),
		zap.Bool("reminders", s.notifier != nil),
	)

	s.Tick(ctx)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Tick(ctx)
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		}
	}
}

// Tick runs one round of reminders and maintenance
func (s *Scheduler) Tick(ctx context.Context) {
	if s.notifier != nil {
		if err := s.SendReminders(ctx); err != nil {
			s.logger.Error("reminder round failed", zap.Error(err))
		}
	}
	if err := s.Cleanup(ctx); err != nil {
		s.logger.Error("maintenance round failed", zap.Error(err))
	}
}

// SendReminders notifies owners of todos due within the lead window.
// Each todo is marked as reminded whatever the delivery outcome.
func (s *Scheduler) SendReminders(ctx context.Context) error {
	now := s.now()
	todos, err := s.todoRepo.FindDueForReminder(ctx, now, now.Add(s.opts.Lead))
	if err != nil {
		return fmt.Errorf("failed to find due todos: %w", err)
	}
	if len(todos) == 0 {
		return nil
	}

	s.logger.Debug("due todos found", zap.Int("count", len(todos)))

	for _, todo := range todos {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.remind(ctx, todo)

		if err := s.todoRepo.MarkReminderSent(ctx, todo.ID); err != nil {
			s.logger.Error("failed to mark reminder sent", zap.String("todo_id", todo.ID), zap.Error(err))
		}
	}
	return nil
}

func (s *Scheduler) remind(ctx context.Context, todo *domain.Todo) {
	devices, err := s.fcmRepo.GetTokensByUserID(ctx, todo.UserID)
	if err != nil {
		s.logger.Error("failed to load device tokens", zap.String("user_id", todo.UserID), zap.Error(err))
		return
	}
	if len(devices) == 0 {
		return
	}

	tokens := make([]string, 0, len(devices))
	for _, d := range devices {
		tokens = append(tokens, d.Token)
	}

	failed, err := s.notifier.SendToDevices(ctx, tokens, reminderNotification(todo, s.opts.ClickAction))
	if err != nil {
		s.logger.Error("failed to send reminder", zap.String("todo_id", todo.ID), zap.Error(err))
		return
	}

	for _, token := range failed {
		if err := s.fcmRepo.DeleteToken(ctx, token); err != nil {
			s.logger.Warn("failed to delete rejected device token", zap.Error(err))
		}
	}
	s.logger.Info("reminder sent",
		zap.String("todo_id", todo.ID),
		zap.Int("delivered", len(tokens)-len(failed)),
	)
}

func reminderNotification(todo *domain.Todo, clickAction string) fcm.NotificationData {
	body := todo.Description
	if body == "" {
		body = "This todo is due soon"
	}
	if todo.DueDate != nil {
		body = fmt.Sprintf("%s\nDue %s", body, todo.DueDate.Format("Jan 2, 15:04 MST"))
	}

	return fcm.NotificationData{
		Title: "Reminder: " + todo.Title,
		Body:  body,
		Data: map[string]string{
			"type":     "todo_reminder",
			"todo_id":  todo.ID,
			"priority": string(todo.Priority),
		},
		ClickAction: clickAction,
	}
}

// Cleanup deletes used or expired share codes and expired refresh tokens
func (s *Scheduler) Cleanup(ctx context.Context) error {
	now := s.now()

	codes, err := s.shareRepo.DeleteStale(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to delete stale share codes: %w", err)
	}
	tokens, err := s.userRepo.DeleteExpiredRefreshTokens(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}

	if codes > 0 || tokens > 0 {
		s.logger.Debug("pruned expired records",
			zap.Int64("share_codes", codes),
			zap.Int64("refresh_tokens", tokens),
		)
	}
	return nil
}
