package server

import (
	"github.com/AlexBaum-ai/NEURM-sub006/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateReplyRequest is the body of POST /api/topics/:id/replies.
type CreateReplyRequest struct {
	Content       string `json:"content"`
	ParentReplyID *uint  `json:"parent_reply_id,omitempty"`
	QuotedReplyID *uint  `json:"quoted_reply_id,omitempty"`
}

// UpdateReplyRequest is the body of PUT /api/replies/:id.
type UpdateReplyRequest struct {
	Content string `json:"content"`
}

// CreateReply handles POST /api/topics/:id/replies
// @Summary Reply to a topic or to another reply
// @Tags replies
// @Accept json
// @Produce json
// @Param id path int true "Topic ID"
// @Param request body CreateReplyRequest true "Reply"
// @Success 201 {object} models.Reply
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /topics/{id}/replies [post]
func (s *Server) CreateReply(c *fiber.Ctx) error {
	topicID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req CreateReplyRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	reply, err := s.threads.CreateReply(c.UserContext(), service.CreateReplyInput{
		AuthorID:      currentUserID(c),
		TopicID:       topicID,
		ParentReplyID: req.ParentReplyID,
		QuotedReplyID: req.QuotedReplyID,
		Content:       req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reply)
}

// GetThread handles GET /api/topics/:id/replies
// @Summary Get a topic's replies as a tree
// @Tags replies
// @Produce json
// @Param id path int true "Topic ID"
// @Success 200 {array} models.ReplyNode
// @Failure 404 {object} models.ErrorResponse
// @Router /topics/{id}/replies [get]
func (s *Server) GetThread(c *fiber.Ctx) error {
	topicID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	tree, err := s.threads.GetThread(c.UserContext(), topicID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tree)
}

// UpdateReply handles PUT /api/replies/:id
// @Summary Edit a reply
// @Description Authors may edit within the edit window; moderators at any time.
// @Tags replies
// @Accept json
// @Produce json
// @Param id path int true "Reply ID"
// @Param request body UpdateReplyRequest true "New content"
// @Success 200 {object} models.Reply
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /replies/{id} [put]
func (s *Server) UpdateReply(c *fiber.Ctx) error {
	replyID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req UpdateReplyRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	reply, err := s.threads.UpdateReply(c.UserContext(), service.UpdateReplyInput{
		EditorID: currentUserID(c),
		ReplyID:  replyID,
		Content:  req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reply)
}

// DeleteReply handles DELETE /api/replies/:id
// @Summary Soft-delete a reply
// @Tags replies
// @Param id path int true "Reply ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /replies/{id} [delete]
func (s *Server) DeleteReply(c *fiber.Ctx) error {
	replyID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.threads.DeleteReply(c.UserContext(), service.DeleteReplyInput{
		ActorID: currentUserID(c),
		ReplyID: replyID,
	}); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetReplyEdits handles GET /api/replies/:id/edits
func (s *Server) GetReplyEdits(c *fiber.Ctx) error {
	replyID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	edits, err := s.threads.ListEdits(c.UserContext(), replyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(edits)
}
