// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"bloggr/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetTags handles GET /api/tags
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.tagService.ListTags(c.Context())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"tags": tags})
}

// GetTag handles GET /api/tags/:slug
func (s *Server) GetTag(c *fiber.Ctx) error {
	tag, err := s.tagService.GetTag(c.Context(), c.Params("slug"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(tag)
}

// CreateTag handles POST /api/tags (admin only)
func (s *Server) CreateTag(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Category string `json:"category"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	tag, err := s.tagService.CreateTag(c.Context(), s.identity(c), req.Name, models.TagCategory(req.Category))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(tag)
}

// UpdateTag handles PUT /api/tags/:slug (admin only)
func (s *Server) UpdateTag(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Category string `json:"category"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	tag, err := s.tagService.UpdateTag(c.Context(), s.identity(c), c.Params("slug"), req.Name, models.TagCategory(req.Category))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(tag)
}

// DeleteTag handles DELETE /api/tags/:slug (admin only)
func (s *Server) DeleteTag(c *fiber.Ctx) error {
	if err := s.tagService.DeleteTag(c.Context(), s.identity(c), c.Params("slug")); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Tag deleted"})
}
