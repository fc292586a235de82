// Package test contains end-to-end API journeys exercised against a fully
// wired server on an in-memory database.
package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bloggr/internal/cache"
	"bloggr/internal/config"
	"bloggr/internal/database"
	"bloggr/internal/models"
	"bloggr/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	cache.SetClient(nil)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:    "e2e-secret-long-enough-for-hmac-signing",
		Port:         "0",
		Env:          "test",
		TokenTTLDays: 14,
		AnonTTLDays:  14,
	}

	srv, err := server.NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)
	return app, db
}

type session struct {
	t   *testing.T
	app *fiber.App
	// cookies carried across requests like a browser would
	cookies map[string]*http.Cookie
}

func newSession(t *testing.T, app *fiber.App) *session {
	return &session{t: t, app: app, cookies: make(map[string]*http.Cookie)}
}

func (s *session) do(method, path string, body any) *http.Response {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range s.cookies {
		req.AddCookie(ck)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	for _, ck := range resp.Cookies() {
		if ck.Value == "" || ck.Expires.Before(time.Now()) && !ck.Expires.IsZero() {
			delete(s.cookies, ck.Name)
			continue
		}
		s.cookies[ck.Name] = ck
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func TestPublishingJourney(t *testing.T) {
	app, db := newTestApp(t)

	// An admin account exists out of band.
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Username: "admin",
		Email:    "admin@bloggr.local",
		Password: string(hash),
		Role:     models.UserRoleAdmin,
	}).Error)

	admin := newSession(t, app)
	resp := admin.do(http.MethodPost, "/api/auth/login", fiber.Map{
		"email": "admin@bloggr.local", "password": "password123",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The admin stocks the tag catalog.
	resp = admin.do(http.MethodPost, "/api/tags", fiber.Map{
		"name": "Go", "category": "programming",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// A writer signs up; new accounts start as readers.
	writer := newSession(t, app)
	resp = writer.do(http.MethodPost, "/api/auth/signup", fiber.Map{
		"username": "carol", "email": "carol@example.com", "password": "Str0ng&Secure!",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = writer.do(http.MethodPost, "/api/posts", fiber.Map{
		"title": "Too Soon", "content": "not yet",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The admin grants the author role; the writer logs in again to pick up
	// a token carrying the new role.
	resp = admin.do(http.MethodPatch, "/api/users/carol/role", fiber.Map{"role": "author"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = writer.do(http.MethodPost, "/api/auth/login", fiber.Map{
		"email": "carol@example.com", "password": "Str0ng&Secure!",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = writer.do(http.MethodPost, "/api/posts", fiber.Map{
		"title":   "Shipping My First Post",
		"content": "Some long-form writing about shipping software.",
		"status":  "published",
		"tags":    []string{"go"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.Post
	decode(t, resp, &post)
	require.Equal(t, "shipping-my-first-post", post.Slug)

	// An anonymous visitor reads the post; the read lands in the ledger.
	visitor := newSession(t, app)
	resp = visitor.do(http.MethodGet, "/api/posts/"+post.Slug, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, visitor.cookies["bloggr_anon"], "visitor should be minted an anon cookie")

	assert.Eventually(t, func() bool {
		var n int64
		db.Model(&models.PostRead{}).Where("post_id = ?", post.ID).Count(&n)
		return n == 1
	}, 2*time.Second, 10*time.Millisecond)

	// A reader signs up and engages with the post and its author.
	reader := newSession(t, app)
	resp = reader.do(http.MethodPost, "/api/auth/signup", fiber.Map{
		"username": "dave", "email": "dave@example.com", "password": "Str0ng&Secure!",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = reader.do(http.MethodPost, "/api/posts/"+post.Slug+"/like", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = reader.do(http.MethodPost, "/api/posts/"+post.Slug+"/bookmark", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = reader.do(http.MethodPost, "/api/posts/"+post.Slug+"/comments", fiber.Map{
		"content": "Congrats on shipping!",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = reader.do(http.MethodPost, "/api/users/carol/follow", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = reader.do(http.MethodGet, "/api/posts/"+post.Slug, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rendered models.Post
	decode(t, resp, &rendered)
	assert.Equal(t, 1, rendered.LikeCount)
	assert.Equal(t, 1, rendered.BookmarkCount)
	assert.Equal(t, 1, rendered.CommentCount)
	assert.True(t, rendered.Liked)
	assert.True(t, rendered.Bookmarked)
	require.Len(t, rendered.Tags, 1)
	assert.Equal(t, "go", rendered.Tags[0].Slug)

	// Both the anonymous and the registered read are in by now.
	assert.Eventually(t, func() bool {
		var n int64
		db.Model(&models.PostRead{}).Where("post_id = ?", post.ID).Count(&n)
		return n == 2
	}, 2*time.Second, 10*time.Millisecond)

	// The author's public profile reflects the engagement.
	resp = visitor.do(http.MethodGet, "/api/users/carol", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile struct {
		Username      string `json:"username"`
		FollowerCount int    `json:"follower_count"`
		TotalReads    int64  `json:"total_reads"`
	}
	decode(t, resp, &profile)
	assert.Equal(t, "carol", profile.Username)
	assert.Equal(t, 1, profile.FollowerCount)
	assert.Equal(t, int64(2), profile.TotalReads)
}
