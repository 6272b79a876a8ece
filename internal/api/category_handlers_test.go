package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) createCategory(t *testing.T, token, name string) CategoryResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/categories", map[string]any{"name": name}, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decodeBody[CategoryResponse](t, resp.Body.Bytes())
}

func TestCreateCategory(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "alice")

	category := ts.createCategory(t, token, "Work projects")
	assert.Equal(t, "Work projects", category.Name)
	assert.Equal(t, "work-projects-alice", category.Slug)
	assert.NotEmpty(t, category.ID)
}

func TestCreateCategory_DuplicatePerUser(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, _ := ts.registerTestUser(t, "alice")
	bobToken, _ := ts.registerTestUser(t, "bob")

	ts.createCategory(t, aliceToken, "Work")

	resp := ts.api.Post("/api/v1/categories", map[string]any{"name": "Work"}, bearer(aliceToken))
	assert.Equal(t, http.StatusConflict, resp.Code)

	// The same name is free for another user.
	category := ts.createCategory(t, bobToken, "Work")
	assert.Equal(t, "work-bob", category.Slug)
}

func TestCreateCategory_NameWithoutSlugContent(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "alice")

	resp := ts.api.Post("/api/v1/categories", map[string]any{"name": "!!!"}, bearer(token))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUpdateCategory_KeepsSlug(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "alice")

	category := ts.createCategory(t, token, "Chores")

	resp := ts.api.Patch("/api/v1/categories/"+category.ID,
		map[string]any{"name": "House chores"}, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	updated := decodeBody[CategoryResponse](t, resp.Body.Bytes())
	assert.Equal(t, "House chores", updated.Name)
	assert.Equal(t, "chores-alice", updated.Slug)
}

func TestGetCategoryBySlug(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "alice")

	created := ts.createCategory(t, token, "Reading list")

	resp := ts.api.Get("/api/v1/categories/slug/reading-list-alice", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	category := decodeBody[CategoryResponse](t, resp.Body.Bytes())
	assert.Equal(t, created.ID, category.ID)

	resp = ts.api.Get("/api/v1/categories/slug/no-such-slug", bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCategoryOwnershipIsolation(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, _ := ts.registerTestUser(t, "alice")
	bobToken, _ := ts.registerTestUser(t, "bob")

	category := ts.createCategory(t, aliceToken, "Secret plans")

	// Another user's category is indistinguishable from a missing one.
	resp := ts.api.Get("/api/v1/categories/"+category.ID, bearer(bobToken))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Delete("/api/v1/categories/"+category.ID, bearer(bobToken))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// Still intact for the owner.
	resp = ts.api.Get("/api/v1/categories/"+category.ID, bearer(aliceToken))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestDeleteCategory(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "alice")

	category := ts.createCategory(t, token, "Temporary")

	resp := ts.api.Delete("/api/v1/categories/"+category.ID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/categories/"+category.ID, bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
