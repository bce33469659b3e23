package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authdomain "minimalist-backend/internal/auth/domain"
	authdto "minimalist-backend/internal/auth/dto"
	authrepo "minimalist-backend/internal/auth/repository"
	authusecase "minimalist-backend/internal/auth/usecase"
	"minimalist-backend/internal/testutil"
	tododomain "minimalist-backend/internal/todo/domain"
	todorepo "minimalist-backend/internal/todo/repository"
	todousecase "minimalist-backend/internal/todo/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	cfg := testutil.NewConfig()
	logger := zaptest.NewLogger(t)

	google := testutil.NewFakeGoogle()
	google.Profiles["alice"] = &authdomain.GoogleProfile{ID: "g-alice", Email: "alice@example.com", EmailVerified: true, Name: "Alice"}
	google.Profiles["bob"] = &authdomain.GoogleProfile{ID: "g-bob", Email: "bob@example.com", EmailVerified: true, Name: "Bob"}

	authUc := authusecase.NewAuthUsecase(
		authrepo.NewUserRepository(db),
		authrepo.NewShareCodeRepository(db),
		authrepo.NewFCMTokenRepository(db),
		google, cfg, logger,
	)
	todoUc := todousecase.NewTodoUsecase(todorepo.NewGormTodoRepository(db), logger)
	return NewHandler(authUc, todoUc, cfg, logger).Engine()
}

func call(t *testing.T, r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signIn(t *testing.T, r http.Handler, idToken string) string {
	t.Helper()
	w := call(t, r, http.MethodPost, "/api/auth/google", gin.H{"idToken": idToken}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp authdto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func TestHealthAndNotFound(t *testing.T) {
	r := newEngine(t)

	w := call(t, r, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK","message":"Server is running"}`, w.Body.String())

	w = call(t, r, http.MethodGet, "/api/nothing-here", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Route not found"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	r := newEngine(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/todos", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardOmitsCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testutil.NewConfig()
	cfg.CORSOrigins = []string{"*"}

	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestTodosRequireAuth(t *testing.T) {
	r := newEngine(t)

	w := call(t, r, http.MethodGet, "/api/todos", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Access denied. No token provided."}`, w.Body.String())

	w = call(t, r, http.MethodGet, "/api/todos", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid token."}`, w.Body.String())
}

func TestTodoIsolationBetweenUsers(t *testing.T) {
	r := newEngine(t)
	alice := signIn(t, r, "alice")
	bob := signIn(t, r, "bob")

	w := call(t, r, http.MethodPost, "/api/todos", gin.H{"title": "Alice's secret"}, alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var todo tododomain.Todo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &todo))

	w = call(t, r, http.MethodGet, "/api/todos", nil, bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/todos/" + todo.ID},
		{http.MethodPut, "/api/todos/" + todo.ID},
		{http.MethodPatch, "/api/todos/" + todo.ID + "/toggle"},
		{http.MethodDelete, "/api/todos/" + todo.ID},
	} {
		w := call(t, r, tc.method, tc.path, gin.H{"title": "mine now"}, bob)
		assert.Equal(t, http.StatusNotFound, w.Code, tc.method+" "+tc.path)
	}

	w = call(t, r, http.MethodGet, "/api/todos/stats", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":1,"active":1,"completed":0,"completionRate":0}`, w.Body.String())
}
