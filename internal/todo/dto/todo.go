package dto

import "minimalist-backend/internal/todo/domain"

// CreateTodoRequest is the body of POST /api/todos
type CreateTodoRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

// UpdateTodoRequest carries only the fields the client sent.
// An empty DueDate clears the due date.
type UpdateTodoRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

// ReorderRequest lists todo ids in their new relative order
type ReorderRequest struct {
	IDs []string `json:"ids"`
}

// DeleteTodoResponse echoes the removed todo
type DeleteTodoResponse struct {
	Message string      `json:"message"`
	Todo    *domain.Todo `json:"todo"`
}
