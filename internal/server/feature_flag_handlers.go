// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"github.com/gofiber/fiber/v2"
)

// Flag names gated at the handler layer. Unset flags default to enabled; the
// config entry is the kill switch.
const (
	flagSignup       = "signup"
	flagReadTracking = "read_tracking"
)

// GetFeatureFlags handles GET /api/admin/feature-flags (admin only)
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	ident := s.identity(c)
	return c.JSON(fiber.Map{
		"raw":      s.featureFlags.Raw(),
		"snapshot": s.featureFlags.Snapshot(ident.UserID),
	})
}
