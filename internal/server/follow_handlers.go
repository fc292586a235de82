// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"bloggr/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FollowUser handles POST /api/users/:username/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	state, err := s.followService.Follow(c.Context(), s.identity(c), c.Params("username"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"following":      state.Following,
		"follower_count": state.FollowerCount,
	})
}

// UnfollowUser handles DELETE /api/users/:username/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	state, err := s.followService.Unfollow(c.Context(), s.identity(c), c.Params("username"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"following":      state.Following,
		"follower_count": state.FollowerCount,
	})
}

// GetFollowers handles GET /api/users/:username/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	users, err := s.followService.Followers(c.Context(), c.Params("username"), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"users": users})
}

// GetFollowing handles GET /api/users/:username/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	users, err := s.followService.Following(c.Context(), c.Params("username"), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"users": users})
}
