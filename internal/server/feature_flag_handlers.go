package server

import (
	"github.com/AlexBaum-ai/NEURM-sub006/internal/featureflags"
	"github.com/gofiber/fiber/v2"
)

// FeatureFlagsResponse pairs the configured flag values with their evaluation for the caller.
type FeatureFlagsResponse struct {
	Raw       map[string]string `json:"raw"`
	Evaluated map[string]bool   `json:"evaluated"`
}

// GetFeatureFlags handles GET /api/feature-flags
// @Summary Evaluate engine feature flags for the current user
// @Description Percentage rollouts are bucketed by user id, so two users may see different values.
// @Tags flags
// @Produce json
// @Security BearerAuth
// @Success 200 {object} FeatureFlagsResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	flags := s.featureFlags
	if flags == nil {
		flags = featureflags.NewManager("")
	}
	return c.JSON(FeatureFlagsResponse{
		Raw:       flags.Raw(),
		Evaluated: flags.Snapshot(userID),
	})
}
