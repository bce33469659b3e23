package delivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"minimalist-backend/internal/testutil"
	"minimalist-backend/internal/todo/domain"
	"minimalist-backend/internal/todo/repository"
	"minimalist-backend/internal/todo/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	userID string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewTestDB(t)
	logger := zaptest.NewLogger(t)
	handler := NewTodoHandler(usecase.NewTodoUsecase(repository.NewGormTodoRepository(db), logger), logger)

	s := &testServer{
		router: gin.New(),
		userID: testutil.CreateUser(t, db, "owner@example.com").ID,
	}
	otherID := testutil.CreateUser(t, db, "other@example.com").ID

	// Stand-in for the auth middleware; X-As-Other switches user
	s.router.Use(func(c *gin.Context) {
		if c.GetHeader("X-As-Other") != "" {
			c.Set(userIDKey, otherID)
		} else {
			c.Set(userIDKey, s.userID)
		}
		c.Next()
	})

	todos := s.router.Group("/api/todos")
	todos.GET("", handler.GetTodos)
	todos.POST("", handler.CreateTodo)
	todos.GET("/stats", handler.GetStats)
	todos.GET("/search", handler.SearchTodos)
	todos.PATCH("/reorder", handler.ReorderTodos)
	todos.GET("/:id", handler.GetTodo)
	todos.PUT("/:id", handler.UpdateTodo)
	todos.PATCH("/:id/toggle", handler.ToggleTodo)
	todos.DELETE("/:id", handler.DeleteTodo)
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) create(t *testing.T, body gin.H) domain.Todo {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/todos", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.Todo](t, w)
}

func TestCreateTodo(t *testing.T) {
	s := newTestServer(t)

	t.Run("created", func(t *testing.T) {
		todo := s.create(t, gin.H{"title": "Buy milk", "priority": "high"})
		assert.NotEmpty(t, todo.ID)
		assert.Equal(t, "Buy milk", todo.Title)
		assert.Equal(t, domain.PriorityHigh, todo.Priority)
		assert.Equal(t, s.userID, todo.UserID)
	})

	t.Run("missing title", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/todos", gin.H{"description": "no title"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Title is required"}`, w.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/todos", "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("camelCase json", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/todos", gin.H{"title": "keys"})
		require.Equal(t, http.StatusCreated, w.Code)
		raw := decode[map[string]interface{}](t, w)
		assert.Contains(t, raw, "createdAt")
		assert.Contains(t, raw, "userId")
		assert.Contains(t, raw, "order")
		assert.NotContains(t, raw, "reminderSent")
		assert.NotContains(t, raw, "ReminderSent")
	})
}

func TestGetUpdateToggleDelete(t *testing.T) {
	s := newTestServer(t)
	todo := s.create(t, gin.H{"title": "draft"})
	path := "/api/todos/" + todo.ID

	w := s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "draft", decode[domain.Todo](t, w).Title)

	t.Run("other user gets 404", func(t *testing.T) {
		w := s.do(t, http.MethodGet, path, nil, "X-As-Other", "1")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Todo not found"}`, w.Body.String())
	})

	t.Run("update", func(t *testing.T) {
		w := s.do(t, http.MethodPut, path, gin.H{"title": "final", "completed": true})
		require.Equal(t, http.StatusOK, w.Code)
		updated := decode[domain.Todo](t, w)
		assert.Equal(t, "final", updated.Title)
		assert.True(t, updated.Completed)
	})

	t.Run("update with empty title", func(t *testing.T) {
		w := s.do(t, http.MethodPut, path, gin.H{"title": ""})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Title cannot be empty"}`, w.Body.String())
	})

	t.Run("toggle", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, path+"/toggle", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, decode[domain.Todo](t, w).Completed)
	})

	t.Run("delete", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, path, nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[struct {
			Message string      `json:"message"`
			Todo    domain.Todo `json:"todo"`
		}](t, w)
		assert.Equal(t, "Todo deleted successfully", resp.Message)
		assert.Equal(t, todo.ID, resp.Todo.ID)

		w = s.do(t, http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetTodos(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/todos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	s.create(t, gin.H{"title": "low", "priority": "low"})
	high := s.create(t, gin.H{"title": "high", "priority": "high"})
	s.do(t, http.MethodPatch, "/api/todos/"+high.ID+"/toggle", nil)

	tests := []struct {
		name  string
		query string
		code  int
		want  []string
	}{
		{"all newest first", "", http.StatusOK, []string{"high", "low"}},
		{"completed filter", "?completed=true", http.StatusOK, []string{"high"}},
		{"priority filter", "?priority=low", http.StatusOK, []string{"low"}},
		{"priority sort ascending", "?sortBy=priority&order=asc", http.StatusOK, []string{"low", "high"}},
		{"bad completed", "?completed=maybe", http.StatusBadRequest, nil},
		{"bad priority", "?priority=urgent", http.StatusBadRequest, nil},
		{"bad sortBy", "?sortBy=userId", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/api/todos"+tt.query, nil)
			require.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.want == nil {
				return
			}
			var got []string
			for _, todo := range decode[[]domain.Todo](t, w) {
				got = append(got, todo.Title)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReorderTodos(t *testing.T) {
	s := newTestServer(t)
	a := s.create(t, gin.H{"title": "a"})
	b := s.create(t, gin.H{"title": "b"})

	w := s.do(t, http.MethodPatch, "/api/todos/reorder", gin.H{"ids": []string{a.ID, b.ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	todos := decode[[]domain.Todo](t, w)
	require.Len(t, todos, 2)
	assert.Equal(t, a.ID, todos[0].ID)
	assert.Equal(t, 0, todos[0].Order)
	assert.Equal(t, b.ID, todos[1].ID)
	assert.Equal(t, 1, todos[1].Order)

	w = s.do(t, http.MethodPatch, "/api/todos/reorder", gin.H{"ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, "/api/todos/reorder", gin.H{"ids": []string{a.ID, a.ID}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, "/api/todos/reorder", gin.H{"ids": []string{a.ID}}, "X-As-Other", "1")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsAndSearch(t *testing.T) {
	s := newTestServer(t)
	milk := s.create(t, gin.H{"title": "Buy milk"})
	s.create(t, gin.H{"title": "Call mom"})
	s.do(t, http.MethodPatch, "/api/todos/"+milk.ID+"/toggle", nil)

	w := s.do(t, http.MethodGet, "/api/todos/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":2,"active":1,"completed":1,"completionRate":50}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/todos/search?q=milk", nil)
	require.Equal(t, http.StatusOK, w.Code)
	results := decode[[]domain.Todo](t, w)
	require.Len(t, results, 1)
	assert.Equal(t, milk.ID, results[0].ID)

	w = s.do(t, http.MethodGet, "/api/todos/search?q=dentist", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/todos/search?q=milk&limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
