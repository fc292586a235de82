// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"bloggr/internal/models"
	"bloggr/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	ident := s.identity(c)
	profile, err := s.userService.GetProfile(c.Context(), ident.Username, ident)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/users/me
// Absent fields stay untouched; present-but-empty fields clear the value.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		FirstName   *string  `json:"first_name"`
		LastName    *string  `json:"last_name"`
		Bio         *string  `json:"bio"`
		Avatar      *string  `json:"avatar"`
		SocialLinks []string `json:"social_links"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		Identity:    s.identity(c),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Bio:         req.Bio,
		Avatar:      req.Avatar,
		SocialLinks: req.SocialLinks,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	profile, err := s.userService.GetProfile(c.Context(), c.Params("username"), s.identity(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(profile)
}

// GetUserPosts handles GET /api/users/:username/posts
// Only published posts are listed; drafts stay private to their author.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Identity: s.identity(c),
		Limit:    p.Limit,
		Offset:   p.Offset,
		Author:   c.Params("username"),
		Sort:     c.Query("sort"),
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// UpdateUserRole handles PATCH /api/users/:username/role (admin only)
func (s *Server) UpdateUserRole(c *fiber.Ctx) error {
	var req struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateRole(c.Context(), s.identity(c), c.Params("username"), models.UserRole(req.Role))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(user)
}
