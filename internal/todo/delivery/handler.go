package delivery

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"minimalist-backend/internal/todo/domain"
	"minimalist-backend/internal/todo/dto"
	"minimalist-backend/internal/todo/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// userIDKey matches the key the auth middleware stores the user id under
const userIDKey = "userID"

// TodoHandler handles todo-related HTTP requests
type TodoHandler struct {
	todoUsecase usecase.TodoUsecase
	logger      *zap.Logger
}

// NewTodoHandler creates a new TodoHandler
func NewTodoHandler(todoUsecase usecase.TodoUsecase, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		todoUsecase: todoUsecase,
		logger:      logger.Named("todo.http"),
	}
}

// GetTodos returns the authenticated user's todos
// GET /api/todos?completed=false&priority=high&sortBy=createdAt&order=desc
func (h *TodoHandler) GetTodos(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	todos, err := h.todoUsecase.ListTodos(c.Request.Context(), c.GetString(userIDKey), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(todos))
}

// GetTodo returns one todo
// GET /api/todos/:id
func (h *TodoHandler) GetTodo(c *gin.Context) {
	todo, err := h.todoUsecase.GetTodo(c.Request.Context(), c.GetString(userIDKey), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// CreateTodo creates a todo
// POST /api/todos
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	var req dto.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	todo, err := h.todoUsecase.CreateTodo(c.Request.Context(), c.GetString(userIDKey), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

// UpdateTodo applies a partial update
// PUT /api/todos/:id
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	var req dto.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	todo, err := h.todoUsecase.UpdateTodo(c.Request.Context(), c.GetString(userIDKey), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// ToggleTodo flips the completed flag
// PATCH /api/todos/:id/toggle
func (h *TodoHandler) ToggleTodo(c *gin.Context) {
	todo, err := h.todoUsecase.ToggleTodo(c.Request.Context(), c.GetString(userIDKey), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// DeleteTodo removes a todo
// DELETE /api/todos/:id
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	todo, err := h.todoUsecase.DeleteTodo(c.Request.Context(), c.GetString(userIDKey), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteTodoResponse{
		Message: "Todo deleted successfully",
		Todo:    todo,
	})
}

// ReorderTodos persists a new manual order
// PATCH /api/todos/reorder
func (h *TodoHandler) ReorderTodos(c *gin.Context) {
	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	todos, err := h.todoUsecase.ReorderTodos(c.Request.Context(), c.GetString(userIDKey), req.IDs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(todos))
}

// GetStats returns list counts
// GET /api/todos/stats
func (h *TodoHandler) GetStats(c *gin.Context) {
	stats, err := h.todoUsecase.GetStats(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// SearchTodos fuzzy-searches titles and descriptions
// GET /api/todos/search?q=milk&limit=20
func (h *TodoHandler) SearchTodos(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(usecase.DefaultSearchLimit)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a number"})
		return
	}

	todos, err := h.todoUsecase.SearchTodos(c.Request.Context(), c.GetString(userIDKey), c.Query("q"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(todos))
}

func (h *TodoHandler) respondError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.Is(err, domain.ErrTodoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
	default:
		h.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong!"})
	}
}

func parseListFilter(c *gin.Context) (domain.ListFilter, error) {
	filter := domain.ListFilter{
		SortBy:    c.DefaultQuery("sortBy", domain.SortCreatedAt),
		Ascending: strings.EqualFold(c.Query("order"), "asc"),
	}

	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, domain.NewValidationError("completed", "completed must be true or false")
		}
		filter.Completed = &completed
	}

	if raw := c.Query("priority"); raw != "" {
		priority, ok := domain.ParsePriority(raw)
		if !ok {
			return filter, domain.NewValidationError("priority", "Priority must be low, medium, or high")
		}
		filter.Priority = &priority
	}

	return filter, nil
}

// nonNil keeps empty lists serializing as [] instead of null
func nonNil(todos []*domain.Todo) []*domain.Todo {
	if todos == nil {
		return []*domain.Todo{}
	}
	return todos
}
