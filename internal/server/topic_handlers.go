package server

import (
	"time"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateTopicRequest is the body of POST /api/topics.
type CreateTopicRequest struct {
	CategoryID uint     `json:"category_id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Type       string   `json:"type"`
	Tags       []string `json:"tags"`
	IsDraft    bool     `json:"is_draft"`
}

// SetTopicStatusRequest is the body of PUT /api/topics/:id/status.
type SetTopicStatusRequest struct {
	Status string `json:"status"`
}

// CreateTopic handles POST /api/topics
// @Summary Create a topic
// @Tags topics
// @Accept json
// @Produce json
// @Param request body CreateTopicRequest true "Topic"
// @Success 201 {object} models.Topic
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /topics [post]
func (s *Server) CreateTopic(c *fiber.Ctx) error {
	var req CreateTopicRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	topic, err := s.topics.CreateTopic(c.UserContext(), service.CreateTopicInput{
		AuthorID:   currentUserID(c),
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Content:    req.Content,
		Type:       req.Type,
		Tags:       req.Tags,
		IsDraft:    req.IsDraft,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(topic)
}

// GetTopic handles GET /api/topics/:id
// @Summary Get a topic
// @Tags topics
// @Produce json
// @Param id path int true "Topic ID"
// @Success 200 {object} models.Topic
// @Failure 404 {object} models.ErrorResponse
// @Router /topics/{id} [get]
func (s *Server) GetTopic(c *fiber.Ctx) error {
	topicID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	topic, err := s.topics.GetTopic(c.UserContext(), topicID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(topic)
}

// GetUnanswered handles GET /api/topics/unanswered
// @Summary List open questions without an accepted answer
// @Tags topics
// @Produce json
// @Param category_id query int false "Category"
// @Param tag query string false "Tag"
// @Param from query string false "Created at or after (RFC3339)"
// @Param to query string false "Created at or before (RFC3339)"
// @Param sort query string false "newest, oldest, most_viewed or most_voted"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} models.UnansweredPage
// @Failure 400 {object} models.ErrorResponse
// @Router /topics/unanswered [get]
func (s *Server) GetUnanswered(c *fiber.Ctx) error {
	filter := models.UnansweredFilter{
		CategoryID: uint(max(c.QueryInt("category_id", 0), 0)),
		Tag:        c.Query("tag"),
		Sort:       c.Query("sort"),
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", 0),
	}
	var err error
	if filter.From, err = parseTimeQuery(c, "from"); err != nil {
		return nil
	}
	if filter.To, err = parseTimeQuery(c, "to"); err != nil {
		return nil
	}

	page, err := s.unanswered.GetUnanswered(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// parseTimeQuery reads an optional RFC3339 query parameter, writing a 400 on failure.
func parseTimeQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+name+" date, expected RFC3339"))
		return nil, errResponseWritten
	}
	return &t, nil
}

// AcceptAnswer handles POST /api/topics/:id/accept/:replyId
// @Summary Accept a reply as the answer to a question
// @Description Accepting a different reply moves the bonus from the previous answer.
// @Tags topics
// @Produce json
// @Param id path int true "Topic ID"
// @Param replyId path int true "Reply ID"
// @Success 200 {object} models.Topic
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /topics/{id}/accept/{replyId} [post]
func (s *Server) AcceptAnswer(c *fiber.Ctx) error {
	topicID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	replyID, err := parseID(c, "replyId")
	if err != nil {
		return nil
	}

	topic, err := s.topics.AcceptAnswer(c.UserContext(), currentUserID(c), topicID, replyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(topic)
}

// LockTopic handles POST /api/topics/:id/lock
// @Summary Lock a topic against new replies
// @Tags topics
// @Param id path int true "Topic ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /topics/{id}/lock [post]
func (s *Server) LockTopic(c *fiber.Ctx) error {
	return s.setLocked(c, true)
}

// UnlockTopic handles DELETE /api/topics/:id/lock
// @Summary Unlock a topic
// @Tags topics
// @Param id path int true "Topic ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /topics/{id}/lock [delete]
func (s *Server) UnlockTopic(c *fiber.Ctx) error {
	return s.setLocked(c, false)
}

func (s *Server) setLocked(c *fiber.Ctx, locked bool) error {
	topicID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.topics.SetLocked(c.UserContext(), currentUserID(c), topicID, locked); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetTopicStatus handles PUT /api/topics/:id/status
// @Summary Change a topic's status
// @Tags topics
// @Accept json
// @Param id path int true "Topic ID"
// @Param request body SetTopicStatusRequest true "Status"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /topics/{id}/status [put]
func (s *Server) SetTopicStatus(c *fiber.Ctx) error {
	topicID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req SetTopicStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	if err := s.topics.SetStatus(c.UserContext(), currentUserID(c), topicID, req.Status); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
