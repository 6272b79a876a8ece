package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":      "alice@example.com",
		"username":   "alice",
		"password":   "password123",
		"first_name": "Alice",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	body := decodeBody[AuthResponse](t, resp.Body.Bytes())
	assert.True(t, strings.HasPrefix(body.AccessToken, "v4.local."))
	assert.NotEmpty(t, body.RefreshToken)
	assert.Equal(t, "Bearer", body.TokenType)
	assert.Greater(t, body.ExpiresIn, 0)
	assert.Equal(t, "alice", body.User.Username)
	assert.Equal(t, "Alice", body.User.FirstName)

	// The password hash never crosses the wire.
	assert.NotContains(t, resp.Body.String(), "argon2id")
}

func TestRegister_BootstrapsDefaults(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "alice")

	resp := ts.api.Get("/api/v1/categories", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	body := decodeBody[ListCategoriesResponse](t, resp.Body.Bytes())
	require.Len(t, body.Categories, 3)
	var slugs []string
	for _, c := range body.Categories {
		slugs = append(slugs, c.Slug)
	}
	assert.ElementsMatch(t, []string{"today-alice", "tomorrow-alice", "nearest-time-alice"}, slugs)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerTestUser(t, "alice")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "alice@example.com",
		"username": "alice2",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestRegister_InvalidInput(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"bad email", map[string]any{"email": "not-an-email", "username": "alice", "password": "password123"}},
		{"short password", map[string]any{"email": "a@example.com", "username": "alice", "password": "short"}},
		{"username with spaces", map[string]any{"email": "a@example.com", "username": "not valid", "password": "password123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/auth/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
		})
	}
}

func TestLogin_Success(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerTestUser(t, "alice")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	body := decodeBody[AuthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "alice", body.User.Username)
	assert.NotEmpty(t, body.AccessToken)
}

func TestLogin_BadCredentials(t *testing.T) {
	ts := setupTestServer(t)
	ts.registerTestUser(t, "alice")

	// Wrong password and unknown email are indistinguishable.
	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "alice@example.com",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	wrongPassword := resp.Body.String()

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, wrongPassword, resp.Body.String())
}

func TestRefresh_RotatesTokens(t *testing.T) {
	ts := setupTestServer(t)
	_, authBody := ts.registerTestUser(t, "alice")

	resp := ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": authBody.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	rotated := decodeBody[struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}](t, resp.Body.Bytes())
	assert.NotEqual(t, authBody.RefreshToken, rotated.RefreshToken)

	// The consumed refresh token is dead.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": authBody.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// The rotated one works.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": rotated.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestLogout_RevokesSession(t *testing.T) {
	ts := setupTestServer(t)
	_, authBody := ts.registerTestUser(t, "alice")

	resp := ts.api.Post("/api/v1/auth/logout", map[string]any{
		"refresh_token": authBody.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": authBody.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// Logging out an already revoked token is a no-op.
	resp = ts.api.Post("/api/v1/auth/logout", map[string]any{
		"refresh_token": authBody.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, resp.Code)
}
