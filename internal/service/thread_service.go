package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/cache"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/featureflags"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/middleware"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/notifications"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/observability"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	// DefaultEditWindow is how long an author may edit a reply without moderation rights.
	DefaultEditWindow = 15 * time.Minute
	maxContentLen     = 10000
)

// ThreadService creates, edits and soft-deletes replies and renders reply trees.
type ThreadService struct {
	replies    repository.ReplyRepository
	topics     repository.TopicRepository
	reputation *ReputationService
	access     *AccessPolicy
	cache      *cache.Store
	notifier   *notifications.Notifier
	flags      *featureflags.Manager
	editWindow time.Duration
	now        func() time.Time
}

// ThreadServiceDeps groups the collaborators of a ThreadService.
type ThreadServiceDeps struct {
	Replies    repository.ReplyRepository
	Topics     repository.TopicRepository
	Reputation *ReputationService
	Access     *AccessPolicy
	Cache      *cache.Store
	Notifier   *notifications.Notifier
	Flags      *featureflags.Manager
	EditWindow time.Duration
	Now        func() time.Time
}

type CreateReplyInput struct {
	AuthorID      uint
	TopicID       uint
	ParentReplyID *uint
	QuotedReplyID *uint
	Content       string
}

type UpdateReplyInput struct {
	EditorID uint
	ReplyID  uint
	Content  string
}

type DeleteReplyInput struct {
	ActorID uint
	ReplyID uint
}

func NewThreadService(deps ThreadServiceDeps) *ThreadService {
	s := &ThreadService{
		replies:    deps.Replies,
		topics:     deps.Topics,
		reputation: deps.Reputation,
		access:     deps.Access,
		cache:      deps.Cache,
		notifier:   deps.Notifier,
		flags:      deps.Flags,
		editWindow: deps.EditWindow,
		now:        deps.Now,
	}
	if s.editWindow <= 0 {
		s.editWindow = DefaultEditWindow
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "", models.NewValidationError(fmt.Sprintf("Content too long (max %d characters)", maxContentLen))
	}
	return content, nil
}

// CreateReply attaches a reply to a topic, optionally under a parent reply. Depth is
// parent depth + 1 and may not exceed models.MaxReplyDepth.
func (s *ThreadService) CreateReply(ctx context.Context, in CreateReplyInput) (reply *models.Reply, err error) {
	ctx, finish := observability.StartServiceSpan(ctx, "ThreadService", "CreateReply",
		attribute.Int64("topic.id", int64(in.TopicID)))
	defer func() { finish(err) }()

	content, err := validateContent(in.Content)
	if err != nil {
		return nil, err
	}

	topic, err := s.topics.GetByID(ctx, in.TopicID)
	if err != nil {
		return nil, err
	}
	if topic.IsDraft {
		return nil, models.NewForbiddenError("Cannot reply to a draft topic")
	}
	if !topic.AcceptsReplies() {
		return nil, models.NewForbiddenError("Topic is locked or closed for replies")
	}

	depth := 0
	if in.ParentReplyID != nil {
		parent, err := s.replies.GetByID(ctx, *in.ParentReplyID)
		if err != nil {
			return nil, err
		}
		if parent.TopicID != topic.ID {
			return nil, models.NewValidationError("Parent reply belongs to a different topic")
		}
		if parent.IsDeleted {
			return nil, models.NewValidationError("Cannot reply to a deleted reply")
		}
		if parent.Depth+1 > models.MaxReplyDepth {
			return nil, models.NewValidationError("Maximum reply depth reached")
		}
		depth = parent.Depth + 1
	}
	if in.QuotedReplyID != nil {
		quoted, err := s.replies.GetByID(ctx, *in.QuotedReplyID)
		if err != nil {
			return nil, err
		}
		if quoted.TopicID != topic.ID {
			return nil, models.NewValidationError("Quoted reply must belong to the same topic")
		}
	}

	reply = &models.Reply{
		TopicID:       topic.ID,
		ParentReplyID: in.ParentReplyID,
		QuotedReplyID: in.QuotedReplyID,
		Depth:         depth,
		AuthorID:      in.AuthorID,
		Content:       content,
	}
	if err := s.replies.Create(ctx, reply); err != nil {
		return nil, models.NewInternalError(err)
	}

	s.reputation.Record(ctx, NewEvent(in.AuthorID, models.EventReplyCreated, false, "reply", reply.ID,
		fmt.Sprintf("reply:%d:created", reply.ID)))
	s.touchTopic(ctx, topic.ID, notifications.Event{
		Type:    notifications.EventReplyCreated,
		ActorID: in.AuthorID,
		Payload: map[string]interface{}{"reply_id": reply.ID, "depth": reply.Depth},
	})
	return reply, nil
}

// UpdateReply replaces reply content. Authors may edit within the edit window;
// moderators may edit at any time. Deleted replies cannot be edited.
func (s *ThreadService) UpdateReply(ctx context.Context, in UpdateReplyInput) (*models.Reply, error) {
	content, err := validateContent(in.Content)
	if err != nil {
		return nil, err
	}

	reply, err := s.replies.GetByID(ctx, in.ReplyID)
	if err != nil {
		return nil, err
	}
	if reply.IsDeleted {
		return nil, models.NewForbiddenError("Deleted replies cannot be edited")
	}

	now := s.now()
	withinWindow := now.Sub(reply.CreatedAt) <= s.editWindow
	if reply.AuthorID != in.EditorID || !withinWindow {
		moderator, err := s.access.CanModerate(ctx, in.EditorID)
		if err != nil {
			return nil, err
		}
		if !moderator {
			if reply.AuthorID != in.EditorID {
				return nil, models.NewForbiddenError("You can only edit your own replies")
			}
			return nil, models.NewForbiddenError(fmt.Sprintf("Edit window of %d minutes has expired", int(s.editWindow.Minutes())))
		}
	}

	var edit *models.ReplyEdit
	if s.flags.Enabled(featureflags.ReplyEditHistory, in.EditorID) {
		edit = &models.ReplyEdit{
			ReplyID:         reply.ID,
			EditorID:        in.EditorID,
			PreviousContent: reply.Content,
			EditedAt:        now,
		}
	}

	reply.Content = content
	reply.EditedAt = &now
	if err := s.replies.UpdateContent(ctx, reply, edit); err != nil {
		if models.ErrorCode(err) != "" {
			return nil, err
		}
		return nil, models.NewInternalError(err)
	}
	s.touchTopic(ctx, reply.TopicID, notifications.Event{})
	return reply, nil
}

// DeleteReply soft-deletes a reply; its position in the tree is kept so descendants
// stay attached. Deleting an already deleted reply succeeds.
func (s *ThreadService) DeleteReply(ctx context.Context, in DeleteReplyInput) error {
	reply, err := s.replies.GetByID(ctx, in.ReplyID)
	if err != nil {
		return err
	}
	if reply.AuthorID != in.ActorID {
		moderator, err := s.access.CanModerate(ctx, in.ActorID)
		if err != nil {
			return err
		}
		if !moderator {
			return models.NewForbiddenError("You can only delete your own replies")
		}
	}

	changed, err := s.replies.SoftDelete(ctx, reply.ID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if changed {
		s.touchTopic(ctx, reply.TopicID, notifications.Event{
			Type:    notifications.EventReplyDeleted,
			ActorID: in.ActorID,
			Payload: map[string]interface{}{"reply_id": reply.ID},
		})
	}
	return nil
}

// GetThread returns the topic's replies as a tree built from one flat query.
func (s *ThreadService) GetThread(ctx context.Context, topicID uint) ([]*models.ReplyNode, error) {
	topic, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return nil, err
	}
	replies, err := s.replies.ListByTopic(ctx, topicID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return BuildReplyTree(replies, topic.AcceptedReplyID), nil
}

// ListEdits returns a reply's edit history, oldest first.
func (s *ThreadService) ListEdits(ctx context.Context, replyID uint) ([]models.ReplyEdit, error) {
	if _, err := s.replies.GetByID(ctx, replyID); err != nil {
		return nil, err
	}
	edits, err := s.replies.ListEdits(ctx, replyID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return edits, nil
}

// touchTopic drops the cached topic and publishes event when it has a type.
func (s *ThreadService) touchTopic(ctx context.Context, topicID uint, event notifications.Event) {
	if err := s.cache.Delete(ctx, cache.TopicKey(topicID)); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to invalidate topic cache", slog.String("error", err.Error()))
	}
	if event.Type == "" {
		return
	}
	if err := s.notifier.PublishTopic(ctx, topicID, event); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish thread event", slog.String("error", err.Error()))
	}
}
