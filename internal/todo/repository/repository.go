package repository

import (
	"context"
	"time"

	"minimalist-backend/internal/todo/domain"
)

// TodoRepository defines the interface for todo data access.
// Every per-user method is scoped by userID; a todo owned by another user
// behaves as if it did not exist.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error

	// FindByID returns nil, nil when the todo does not exist for userID
	FindByID(ctx context.Context, userID, id string) (*domain.Todo, error)

	// List returns the user's todos filtered and sorted per filter
	List(ctx context.Context, userID string, filter domain.ListFilter) ([]*domain.Todo, error)

	// ListManualOrder returns all the user's todos in manual order:
	// display_order asc, created_at desc, id asc
	ListManualOrder(ctx context.Context, userID string) ([]*domain.Todo, error)

	// MinOrder returns the smallest display_order, and false when the user has no todos
	MinOrder(ctx context.Context, userID string) (int, bool, error)

	Update(ctx context.Context, todo *domain.Todo) error

	// Delete removes the todo and reports whether it existed
	Delete(ctx context.Context, userID, id string) (bool, error)

	// UpdateOrders writes display_order for each id in one transaction
	UpdateOrders(ctx context.Context, userID string, orders map[string]int) error

	Stats(ctx context.Context, userID string) (*domain.Stats, error)

	// FindDueForReminder finds open todos with due_date in (from, to] whose reminder is unsent
	FindDueForReminder(ctx context.Context, from, to time.Time) ([]*domain.Todo, error)

	MarkReminderSent(ctx context.Context, id string) error
}
