// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"bloggr/internal/models"
	"bloggr/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
// Query params: limit, offset, tag, author, sort (new|top)
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Identity: s.identity(c),
		Limit:    p.Limit,
		Offset:   p.Offset,
		Tag:      c.Query("tag"),
		Author:   c.Query("author"),
		Sort:     c.Query("sort"),
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts":  posts,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// SearchPosts handles GET /api/posts/search?q=
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query is required"))
	}

	p := parsePagination(c, 20)
	posts, err := s.postService.SearchPosts(c.Context(), query, p.Limit, p.Offset, s.identity(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts": posts,
		"query": query,
	})
}

// GetMyPosts handles GET /api/posts/me
// Returns the caller's own posts in any status; ?status= narrows the list.
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	status := models.PostStatus(c.Query("status"))

	posts, err := s.postService.ListOwnPosts(c.Context(), s.identity(c), status, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// GetBookmarks handles GET /api/posts/bookmarks
func (s *Server) GetBookmarks(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.ListBookmarks(c.Context(), s.identity(c), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// GetPost handles GET /api/posts/:slug
func (s *Server) GetPost(c *fiber.Ctx) error {
	ident := s.identity(c)
	post, err := s.postService.GetPost(c.Context(), c.Params("slug"), ident)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	// Read accounting happens off the request path. A failed or duplicate
	// record never affects the response the reader sees.
	if s.featureFlags.EnabledOrDefault(flagReadTracking, ident.UserID, true) {
		s.viewService.RecordReadAsync(c.UserContext(), post, ident)
	}

	return c.JSON(post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title      string   `json:"title"`
		Content    string   `json:"content"`
		CoverImage string   `json:"cover_image"`
		Status     string   `json:"status"`
		Tags       []string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		Identity:   s.identity(c),
		Title:      req.Title,
		Content:    req.Content,
		CoverImage: req.CoverImage,
		Status:     models.PostStatus(req.Status),
		Tags:       req.Tags,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:slug
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	var req struct {
		Title      string   `json:"title"`
		Content    string   `json:"content"`
		CoverImage string   `json:"cover_image"`
		Tags       []string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		Identity:   s.identity(c),
		Slug:       c.Params("slug"),
		Title:      req.Title,
		Content:    req.Content,
		CoverImage: req.CoverImage,
		Tags:       req.Tags,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(post)
}

// UpdatePostStatus handles PATCH /api/posts/:slug/status
func (s *Server) UpdatePostStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdateStatus(c.Context(), s.identity(c), c.Params("slug"), models.PostStatus(req.Status))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:slug
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.DeletePost(c.Context(), s.identity(c), c.Params("slug")); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// TogglePostLike handles POST /api/posts/:slug/like
func (s *Server) TogglePostLike(c *fiber.Ctx) error {
	state, err := s.postService.ToggleLike(c.Context(), s.identity(c), c.Params("slug"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"liked":      state.Member,
		"like_count": state.Count,
	})
}

// TogglePostBookmark handles POST /api/posts/:slug/bookmark
func (s *Server) TogglePostBookmark(c *fiber.Ctx) error {
	state, err := s.postService.ToggleBookmark(c.Context(), s.identity(c), c.Params("slug"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"bookmarked":     state.Member,
		"bookmark_count": state.Count,
	})
}
