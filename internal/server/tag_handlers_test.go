package server

import (
	"net/http"
	"strings"
	"testing"

	"bloggr/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTagViaAPI(t *testing.T, srv *Server, app *fiber.App, admin *models.User, name, category string) models.Tag {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/tags", fiber.Map{
		"name":     name,
		"category": category,
	}, authCookie(t, srv, admin))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var tag models.Tag
	decodeBody(t, resp, &tag)
	return tag
}

func TestTagCRUD_AdminOnly(t *testing.T) {
	srv, app, db := setupTestServer(t)
	admin := createTestUser(t, db, "root", models.UserRoleAdmin)
	author := createTestUser(t, db, "alice", models.UserRoleAuthor)

	// Non-admins cannot create tags.
	resp := doJSON(t, app, http.MethodPost, "/api/tags", fiber.Map{
		"name": "Go",
	}, authCookie(t, srv, author))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	tag := createTagViaAPI(t, srv, app, admin, "Distributed Systems", "programming")
	assert.Equal(t, "distributed-systems", tag.Slug)
	assert.Equal(t, models.TagCategoryProgramming, tag.Category)

	// Renames keep the slug stable so existing links survive.
	resp = doJSON(t, app, http.MethodPut, "/api/tags/"+tag.Slug, fiber.Map{
		"name":     "Distributed Computing",
		"category": "programming",
	}, authCookie(t, srv, admin))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var renamed models.Tag
	decodeBody(t, resp, &renamed)
	assert.Equal(t, "Distributed Computing", renamed.Name)
	assert.Equal(t, "distributed-systems", renamed.Slug)

	resp = doJSON(t, app, http.MethodGet, "/api/tags", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Tags []models.Tag `json:"tags"`
	}
	decodeBody(t, resp, &list)
	require.Len(t, list.Tags, 1)

	resp = doJSON(t, app, http.MethodDelete, "/api/tags/"+tag.Slug, nil, authCookie(t, srv, admin))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/tags/"+tag.Slug, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestPostTagging_AndFilter(t *testing.T) {
	srv, app, db := setupTestServer(t)
	admin := createTestUser(t, db, "root", models.UserRoleAdmin)
	author := createTestUser(t, db, "alice", models.UserRoleAuthor)

	goTag := createTagViaAPI(t, srv, app, admin, "Go", "programming")
	createTagViaAPI(t, srv, app, admin, "Career", "career")

	// Unknown tag slugs are rejected outright.
	resp := doJSON(t, app, http.MethodPost, "/api/posts", fiber.Map{
		"title":   "Mystery Tags",
		"content": "some content",
		"status":  "published",
		"tags":    []string{"no-such-tag"},
	}, authCookie(t, srv, author))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/posts", fiber.Map{
		"title":   "Tagged Piece",
		"content": strings.TrimSpace(strings.Repeat("word ", 100)),
		"status":  "published",
		"tags":    []string{goTag.Slug},
	}, authCookie(t, srv, author))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.Post
	decodeBody(t, resp, &post)
	require.Len(t, post.Tags, 1)
	assert.Equal(t, "go", post.Tags[0].Slug)

	createPostViaAPI(t, srv, app, author, "Off Topic Piece", "published")

	// The tag filter narrows the listing.
	resp = doJSON(t, app, http.MethodGet, "/api/posts?tag=go", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Posts []models.Post `json:"posts"`
	}
	decodeBody(t, resp, &list)
	require.Len(t, list.Posts, 1)
	assert.Equal(t, "tagged-piece", list.Posts[0].Slug)
}
