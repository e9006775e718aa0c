package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eventforge/server/internal/auth"
)

func testManager() *auth.JWTManager {
	return auth.NewJWTManager("test-secret", time.Hour, "eventforge")
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_ValidToken(t *testing.T) {
	manager := testManager()
	token, err := manager.Generate("alice", auth.RoleUser)
	require.NoError(t, err)

	var captured *auth.Claims
	handler := Authenticate(manager, "test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = Claims(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	require.Equal(t, "alice", captured.Subject)
	require.Equal(t, "user", captured.Role)
}

func TestAuthenticate_MissingToken(t *testing.T) {
	handler := Authenticate(testManager(), "test")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	handler := Authenticate(testManager(), "test")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	manager := testManager()

	userToken, err := manager.Generate("alice", auth.RoleUser)
	require.NoError(t, err)
	adminToken, err := manager.Generate("root", auth.RoleAdmin)
	require.NoError(t, err)

	handler := Authenticate(manager, "test")(RequireRoles("test", auth.RoleAdmin)(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoles_WithoutAuthenticate(t *testing.T) {
	handler := RequireRoles("test", auth.RoleAdmin)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
