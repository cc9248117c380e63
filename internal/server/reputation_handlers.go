package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetReputation handles GET /api/users/:id/reputation
// @Summary Get a user's reputation
// @Description Returns the clamped total, level, per-category breakdown and unlocked permissions.
// @Tags reputation
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.Reputation
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/reputation [get]
func (s *Server) GetReputation(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	rep, err := s.reputation.GetReputation(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rep)
}

// GetReputationEvents handles GET /api/users/:id/reputation/events
// @Summary List a user's reputation events, newest first
// @Tags reputation
// @Produce json
// @Param id path int true "User ID"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} object{events=[]models.ReputationEvent,total=int}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/reputation/events [get]
func (s *Server) GetReputationEvents(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	events, total, err := s.reputation.History(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"events": events,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}
