package usecase

import (
	"context"

	"minimalist-backend/internal/todo/domain"
	"minimalist-backend/internal/todo/dto"
)

// DefaultSearchLimit caps search results when the caller gives no limit
const DefaultSearchLimit = 20

// MaxSearchLimit is the largest limit SearchTodos honors
const MaxSearchLimit = 100

// TodoUsecase defines the interface for todo business logic.
// Every method is scoped to userID.
type TodoUsecase interface {
	ListTodos(ctx context.Context, userID string, filter domain.ListFilter) ([]*domain.Todo, error)
	GetTodo(ctx context.Context, userID, id string) (*domain.Todo, error)
	CreateTodo(ctx context.Context, userID string, req dto.CreateTodoRequest) (*domain.Todo, error)
	UpdateTodo(ctx context.Context, userID, id string, req dto.UpdateTodoRequest) (*domain.Todo, error)
	ToggleTodo(ctx context.Context, userID, id string) (*domain.Todo, error)

	// DeleteTodo returns the removed todo
	DeleteTodo(ctx context.Context, userID, id string) (*domain.Todo, error)

	// ReorderTodos places ids into the slots they occupy in the current
	// manual order and returns every todo in the new order
	ReorderTodos(ctx context.Context, userID string, ids []string) ([]*domain.Todo, error)

	SearchTodos(ctx context.Context, userID, query string, limit int) ([]*domain.Todo, error)
	GetStats(ctx context.Context, userID string) (*domain.Stats, error)
}
