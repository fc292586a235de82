package server

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"bloggr/internal/middleware"
	"bloggr/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createPostViaAPI(t *testing.T, srv *Server, app *fiber.App, author *models.User, title, status string) models.Post {
	t.Helper()

	// Every post carries at least one tag; tests that don't care about
	// tagging share a catch-all.
	var tag models.Tag
	require.NoError(t, srv.db.Where(models.Tag{Slug: "general"}).
		Attrs(models.Tag{Name: "General", Category: models.TagCategoryOther}).
		FirstOrCreate(&tag).Error)

	resp := doJSON(t, app, http.MethodPost, "/api/posts", fiber.Map{
		"title":   title,
		"content": strings.TrimSpace(strings.Repeat("word ", 450)),
		"status":  status,
		"tags":    []string{tag.Slug},
	}, authCookie(t, srv, author))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post models.Post
	decodeBody(t, resp, &post)
	return post
}

func readCount(t *testing.T, db *gorm.DB, postID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.PostRead{}).Where("post_id = ?", postID).Count(&count).Error)
	return count
}

func TestCreatePost_SlugAndReadTime(t *testing.T) {
	srv, app, db := setupTestServer(t)
	author := createTestUser(t, db, "alice", models.UserRoleAuthor)

	post := createPostViaAPI(t, srv, app, author, "Go Generics in Practice", "published")
	assert.Equal(t, "go-generics-in-practice", post.Slug)
	assert.Equal(t, 3, post.ReadTime) // 450 words at 200 wpm
	assert.Equal(t, author.ID, post.UserID)

	// A second post with the same title gets a deduplicated slug.
	dup := createPostViaAPI(t, srv, app, author, "Go Generics in Practice", "published")
	assert.Equal(t, "go-generics-in-practice-2", dup.Slug)
}

func TestCreatePost_ReadersMayNotPublish(t *testing.T) {
	srv, app, db := setupTestServer(t)
	reader := createTestUser(t, db, "bob", models.UserRoleReader)

	resp := doJSON(t, app, http.MethodPost, "/api/posts", fiber.Map{
		"title":   "Nope",
		"content": "some content",
	}, authCookie(t, srv, reader))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestGetPosts_ListsOnlyPublished(t *testing.T) {
	srv, app, db := setupTestServer(t)
	author := createTestUser(t, db, "alice", models.UserRoleAuthor)

	createPostViaAPI(t, srv, app, author, "Public Piece", "published")
	createPostViaAPI(t, srv, app, author, "Secret Draft", "draft")

	resp := doJSON(t, app, http.MethodGet, "/api/posts", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Posts []models.Post `json:"posts"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Posts, 1)
	assert.Equal(t, "public-piece", body.Posts[0].Slug)
}

func TestGetPost_DraftHiddenFromStrangers(t *testing.T) {
	srv, app, db := setupTestServer(t)
	author := createTestUser(t, db, "alice", models.UserRoleAuthor)
	stranger := createTestUser(t, db, "bob", models.UserRoleReader)

	draft := createPostViaAPI(t, srv, app, author, "Work in Progress", "draft")

	// Strangers get a 404, not a 403, so draft existence is not leaked.
	resp := doJSON(t, app, http.MethodGet, "/api/posts/"+draft.Slug, nil, authCookie(t, srv, stranger))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/posts/"+draft.Slug, nil, authCookie(t, srv, author))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestUpdatePost_TitleEditKeepsSlug(t *testing.T) {
	srv, app, db := setupTestServer(t)
	author := createTestUser(t, db, "alice", models.UserRoleAuthor)

	post := createPostViaAPI(t, srv, app, author, "Original Title", "published")

	resp := doJSON(t, app, http.MethodPut, "/api/posts/"+post.Slug, fiber.Map{
		"title": "Renamed Title",
	}, authCookie(t, srv, author))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Post
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Renamed Title", updated.Title)
	// Links to the post keep working after a rename.
	assert.Equal(t, "original-title", updated.Slug)
}

func TestDeletePost_OwnershipEnforced(t *testing.T) {
	srv, app, db := setupTestServer(t)
	author := createTestUser(t, db, "alice", models.UserRoleAuthor)
	other := createTestUser(t, db, "mallory", models.UserRoleAuthor)
	admin := createTestUser(t, db, "root", models.UserRoleAdmin)

	post := createPostViaAPI(t, srv, app, author, "Keep Out", "published")

	resp := doJSON(t, app, http.MethodDelete, "/api/posts/"+post.Slug, nil, authCookie(t, srv, other))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, "/api/posts/"+post.Slug, nil, authCookie(t, srv, admin))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/posts/"+post.Slug, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestUpdatePostStatus(t *testing.T) {
	srv, app, db := setupTestServer(t)
	author := createTestUser(t, db, "alice", models.UserRoleAuthor)

	post := createPostViaAPI(t, srv, app, author, "Staged Piece", "draft")

	resp := doJSON(t, app, http.MethodPatch, "/api/posts/"+post.Slug+"/status", fiber.Map{
		"status": "published",
	}, authCookie(t, srv, author))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Post
	decodeBody(t, resp, &updated)
	assert.Equal(t, models.PostStatusPublished, updated.Status)

	resp = doJSON(t, app, http.MethodPatch, "/api/posts/"+post.Slug+"/status", fiber.Map{
		"status": "bogus",
	}, authCookie(t, srv, author))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestTogglePostLike_FlipsMembership(t *testing.T) {
	srv, app, db := setupTestServer(t)
	author := createTestUser(t, db, "alice", models.UserRoleAuthor)
	reader := createTestUser(t, db, "bob", models.UserRoleReader)

	post := createPostViaAPI(t, srv, app, author, "Likeable", "published")

	resp := doJSON(t, app, http.MethodPost, "/api/posts/"+post.Slug+"/like", nil, authCookie(t, srv, reader))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var state struct {
		Liked     bool  `json:"liked"`
		LikeCount int64 `json:"like_count"`
	}
	decodeBody(t, resp, &state)
	assert.True(t, state.Liked)
	assert.Equal(t, int64(1), state.LikeCount)

	// Toggling again removes the like.
	resp = doJSON(t, app, http.MethodPost, "/api/posts/"+post.Slug+"/like", nil, authCookie(t, srv, reader))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &state)
	assert.False(t, state.Liked)
	assert.Equal(t, int64(0), state.LikeCount)

	// Anonymous callers cannot like.
	resp = doJSON(t, app, http.MethodPost, "/api/posts/"+post.Slug+"/like", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestToggleBookmark_AndListing(t *testing.T) {
	srv, app, db := setupTestServer(t)
	author := createTestUser(t, db, "alice", models.UserRoleAuthor)
	reader := createTestUser(t, db, "bob", models.UserRoleReader)

	post := createPostViaAPI(t, srv, app, author, "Bookmarkable", "published")

	resp := doJSON(t, app, http.MethodPost, "/api/posts/"+post.Slug+"/bookmark", nil, authCookie(t, srv, reader))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var state struct {
		Bookmarked    bool  `json:"bookmarked"`
		BookmarkCount int64 `json:"bookmark_count"`
	}
	decodeBody(t, resp, &state)
	assert.True(t, state.Bookmarked)
	assert.Equal(t, int64(1), state.BookmarkCount)

	resp = doJSON(t, app, http.MethodGet, "/api/posts/bookmarks", nil, authCookie(t, srv, reader))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Posts []models.Post `json:"posts"`
	}
	decodeBody(t, resp, &list)
	require.Len(t, list.Posts, 1)
	assert.Equal(t, post.Slug, list.Posts[0].Slug)
}

func TestGetMyPosts_IncludesDrafts(t *testing.T) {
	srv, app, db := setupTestServer(t)
	author := createTestUser(t, db, "alice", models.UserRoleAuthor)

	createPostViaAPI(t, srv, app, author, "Shipped", "published")
	createPostViaAPI(t, srv, app, author, "In the Drawer", "draft")

	resp := doJSON(t, app, http.MethodGet, "/api/posts/me", nil, authCookie(t, srv, author))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Posts []models.Post `json:"posts"`
	}
	decodeBody(t, resp, &list)
	assert.Len(t, list.Posts, 2)

	resp = doJSON(t, app, http.MethodGet, "/api/posts/me?status=draft", nil, authCookie(t, srv, author))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &list)
	require.Len(t, list.Posts, 1)
	assert.Equal(t, "in-the-drawer", list.Posts[0].Slug)
}

func TestSearchPosts(t *testing.T) {
	srv, app, db := setupTestServer(t)
	author := createTestUser(t, db, "alice", models.UserRoleAuthor)

	createPostViaAPI(t, srv, app, author, "Profiling Go Services", "published")
	createPostViaAPI(t, srv, app, author, "Gardening Notes", "published")

	resp := doJSON(t, app, http.MethodGet, "/api/posts/search?q=profiling", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Posts []models.Post `json:"posts"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Posts, 1)
	assert.Equal(t, "profiling-go-services", body.Posts[0].Slug)

	resp = doJSON(t, app, http.MethodGet, "/api/posts/search", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestGetPost_RecordsAnonymousReadOnce(t *testing.T) {
	srv, app, db := setupTestServer(t)
	author := createTestUser(t, db, "alice", models.UserRoleAuthor)
	post := createPostViaAPI(t, srv, app, author, "Read Me", "published")

	anon := &http.Cookie{Name: middleware.AnonCookieName, Value: "visitor-token-1"}

	resp := doJSON(t, app, http.MethodGet, "/api/posts/"+post.Slug, nil, anon)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Recording is asynchronous; wait for the row to land.
	assert.Eventually(t, func() bool {
		return readCount(t, db, post.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// A second visit from the same visitor does not add a row.
	resp = doJSON(t, app, http.MethodGet, "/api/posts/"+post.Slug, nil, anon)
	resp.Body.Close()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), readCount(t, db, post.ID))

	var read models.PostRead
	require.NoError(t, db.Where("post_id = ?", post.ID).First(&read).Error)
	assert.Equal(t, "visitor-token-1", read.Identity)
	assert.Nil(t, read.UserID)
}

func TestGetPost_RecordsRegisteredRead(t *testing.T) {
	srv, app, db := setupTestServer(t)
	author := createTestUser(t, db, "alice", models.UserRoleAuthor)
	reader := createTestUser(t, db, "bob", models.UserRoleReader)
	post := createPostViaAPI(t, srv, app, author, "Counted", "published")

	resp := doJSON(t, app, http.MethodGet, "/api/posts/"+post.Slug, nil, authCookie(t, srv, reader))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Eventually(t, func() bool {
		return readCount(t, db, post.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	var read models.PostRead
	require.NoError(t, db.Where("post_id = ?", post.ID).First(&read).Error)
	require.NotNil(t, read.UserID)
	assert.Equal(t, reader.ID, *read.UserID)
}

func TestGetPost_AuthorSelfReadNotCounted(t *testing.T) {
	srv, app, db := setupTestServer(t)
	author := createTestUser(t, db, "alice", models.UserRoleAuthor)
	post := createPostViaAPI(t, srv, app, author, "My Own Words", "published")

	resp := doJSON(t, app, http.MethodGet, "/api/posts/"+post.Slug, nil, authCookie(t, srv, author))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(0), readCount(t, db, post.ID))
}
