package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeckapp/taskdeck-server/internal/domain"
)

func (ts *testServer) createTag(t *testing.T, token, name, color string) TagResponse {
	t.Helper()
	body := map[string]any{"name": name}
	if color != "" {
		body["color"] = color
	}
	resp := ts.api.Post("/api/v1/tags", body, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decodeBody[TagResponse](t, resp.Body.Bytes())
}

func TestCreateTag(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "alice")

	tag := ts.createTag(t, token, "Urgent", domain.TagColorPink)
	assert.Equal(t, "Urgent", tag.Name)
	assert.Equal(t, "urgent-alice", tag.Slug)
	assert.Equal(t, domain.TagColorPink, tag.Color)
}

func TestCreateTag_DefaultColor(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "alice")

	tag := ts.createTag(t, token, "Plain", "")
	assert.Equal(t, domain.TagColorYellow, tag.Color)
}

func TestCreateTag_DuplicateName(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "alice")

	// "Important" is bootstrapped at registration.
	resp := ts.api.Post("/api/v1/tags", map[string]any{"name": "Important"}, bearer(token))
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestListTags_OrderedByName(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "alice")

	ts.createTag(t, token, "Zebra", "")
	ts.createTag(t, token, "Alpha", "")

	resp := ts.api.Get("/api/v1/tags", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	body := decodeBody[ListTagsResponse](t, resp.Body.Bytes())
	require.Len(t, body.Tags, 5)
	assert.Equal(t, "Alpha", body.Tags[0].Name)
	assert.Equal(t, "Zebra", body.Tags[4].Name)
}

func TestUpdateTag_KeepsSlug(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "alice")

	tag := ts.createTag(t, token, "Errands", "")

	resp := ts.api.Patch("/api/v1/tags/"+tag.ID,
		map[string]any{"name": "Shopping", "color": domain.TagColorGreen}, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	updated := decodeBody[TagResponse](t, resp.Body.Bytes())
	assert.Equal(t, "Shopping", updated.Name)
	assert.Equal(t, domain.TagColorGreen, updated.Color)
	assert.Equal(t, "errands-alice", updated.Slug)
}

func TestGetTagBySlug(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, _ := ts.registerTestUser(t, "alice")
	bobToken, _ := ts.registerTestUser(t, "bob")

	created := ts.createTag(t, aliceToken, "Errands", "")

	resp := ts.api.Get("/api/v1/tags/slug/errands-alice", bearer(aliceToken))
	require.Equal(t, http.StatusOK, resp.Code)
	tag := decodeBody[TagResponse](t, resp.Body.Bytes())
	assert.Equal(t, created.ID, tag.ID)

	// Slugs carry the owner's username, so the lookup still scopes by user.
	resp = ts.api.Get("/api/v1/tags/slug/errands-alice", bearer(bobToken))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestTagOwnershipIsolation(t *testing.T) {
	ts := setupTestServer(t)
	aliceToken, _ := ts.registerTestUser(t, "alice")
	bobToken, _ := ts.registerTestUser(t, "bob")

	tag := ts.createTag(t, aliceToken, "Private", "")

	resp := ts.api.Get("/api/v1/tags/"+tag.ID, bearer(bobToken))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Delete("/api/v1/tags/"+tag.ID, bearer(bobToken))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteTag(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.registerTestUser(t, "alice")

	tag := ts.createTag(t, token, "Fleeting", "")

	resp := ts.api.Delete("/api/v1/tags/"+tag.ID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/tags/"+tag.ID, bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
