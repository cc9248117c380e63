package server

import (
	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CastVoteRequest is the body of POST /api/votes.
type CastVoteRequest struct {
	VotableType string `json:"votable_type"`
	VotableID   uint   `json:"votable_id"`
	Direction   string `json:"direction"`
}

// CastVote handles POST /api/votes
// @Summary Cast, toggle or flip a vote
// @Description Casting the current direction again removes the vote; the opposite direction flips it.
// @Tags votes
// @Accept json
// @Produce json
// @Param request body CastVoteRequest true "Vote"
// @Success 200 {object} models.VoteResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /votes [post]
func (s *Server) CastVote(c *fiber.Ctx) error {
	var req CastVoteRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	result, err := s.votes.CastVote(c.UserContext(), service.CastVoteInput{
		VoterID:     currentUserID(c),
		VotableType: models.VotableType(req.VotableType),
		VotableID:   req.VotableID,
		Direction:   models.Direction(req.Direction),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// GetVoteState handles GET /api/votes/:type/:id
// @Summary Get the caller's vote on a topic or reply
// @Tags votes
// @Produce json
// @Param type path string true "topic or reply"
// @Param id path int true "Votable ID"
// @Success 200 {object} object{votable_type=string,votable_id=int,user_vote=int}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /votes/{type}/{id} [get]
func (s *Server) GetVoteState(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	kind := models.VotableType(c.Params("type"))

	value, err := s.votes.GetVoteState(c.UserContext(), currentUserID(c), kind, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"votable_type": kind,
		"votable_id":   id,
		"user_vote":    value,
	})
}

// GetMyVotes handles GET /api/votes/me?type=
// @Summary List the caller's live votes
// @Tags votes
// @Produce json
// @Param type query string false "topic or reply"
// @Success 200 {object} map[string]int
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /votes/me [get]
func (s *Server) GetMyVotes(c *fiber.Ctx) error {
	votes, err := s.votes.GetUserVotes(c.UserContext(), currentUserID(c), models.VotableType(c.Query("type")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(votes)
}
