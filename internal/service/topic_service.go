package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/cache"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/featureflags"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/middleware"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/notifications"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/observability"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	maxTitleLen = 300
	maxTags     = 5
	maxTagLen   = 64
)

// TopicService owns the topic fields the engine depends on: acceptance, locking and status.
type TopicService struct {
	topics     repository.TopicRepository
	replies    repository.ReplyRepository
	reputation *ReputationService
	access     *AccessPolicy
	unanswered *UnansweredService
	cache      *cache.Store
	notifier   *notifications.Notifier
	flags      *featureflags.Manager
	newID      func() string
}

// TopicServiceDeps groups the collaborators of a TopicService.
type TopicServiceDeps struct {
	Topics     repository.TopicRepository
	Replies    repository.ReplyRepository
	Reputation *ReputationService
	Access     *AccessPolicy
	Unanswered *UnansweredService
	Cache      *cache.Store
	Notifier   *notifications.Notifier
	Flags      *featureflags.Manager
}

type CreateTopicInput struct {
	AuthorID   uint
	CategoryID uint
	Title      string
	Content    string
	Type       string
	Tags       []string
	IsDraft    bool
}

func NewTopicService(deps TopicServiceDeps) *TopicService {
	return &TopicService{
		topics:     deps.Topics,
		replies:    deps.Replies,
		reputation: deps.Reputation,
		access:     deps.Access,
		unanswered: deps.Unanswered,
		cache:      deps.Cache,
		notifier:   deps.Notifier,
		flags:      deps.Flags,
		newID:      uuid.NewString,
	}
}

// normalizeTags lowercases, trims and de-duplicates tags, keeping first-seen order.
func normalizeTags(raw []string) ([]models.TopicTag, error) {
	seen := make(map[string]struct{}, len(raw))
	tags := make([]models.TopicTag, 0, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if utf8.RuneCountInString(t) > maxTagLen {
			return nil, models.NewValidationError(fmt.Sprintf("Tag too long (max %d characters)", maxTagLen))
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, models.TopicTag{Tag: t})
	}
	if len(tags) > maxTags {
		return nil, models.NewValidationError(fmt.Sprintf("At most %d tags are allowed", maxTags))
	}
	return tags, nil
}

// CreateTopic stores a new topic and credits its author.
func (s *TopicService) CreateTopic(ctx context.Context, in CreateTopicInput) (topic *models.Topic, err error) {
	ctx, finish := observability.StartServiceSpan(ctx, "TopicService", "CreateTopic")
	defer func() { finish(err) }()

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, models.NewValidationError(fmt.Sprintf("Title too long (max %d characters)", maxTitleLen))
	}
	content, err := validateContent(in.Content)
	if err != nil {
		return nil, err
	}
	if in.CategoryID == 0 {
		return nil, models.NewValidationError("category_id is required")
	}
	kind := strings.ToLower(strings.TrimSpace(in.Type))
	switch kind {
	case "":
		kind = models.TopicTypeDiscussion
	case models.TopicTypeQuestion, models.TopicTypeDiscussion, models.TopicTypeAnnouncement:
	default:
		return nil, models.NewValidationError("type must be question, discussion or announcement")
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	topic = &models.Topic{
		AuthorID:   in.AuthorID,
		CategoryID: in.CategoryID,
		Title:      title,
		Content:    content,
		Type:       kind,
		Status:     models.TopicStatusOpen,
		IsDraft:    in.IsDraft,
		Tags:       tags,
	}
	if err := s.topics.Create(ctx, topic); err != nil {
		return nil, models.NewInternalError(err)
	}

	s.reputation.Record(ctx, NewEvent(in.AuthorID, models.EventTopicCreated, false, "topic", topic.ID,
		fmt.Sprintf("topic:%d:created", topic.ID)))
	if topic.IsQuestion() && !topic.IsDraft {
		s.unanswered.Invalidate(ctx, InvalidateQuestionCreated)
	}
	return topic, nil
}

// GetTopic returns a topic through the topic cache. viewerID is 0 for anonymous readers.
func (s *TopicService) GetTopic(ctx context.Context, topicID, viewerID uint) (*models.Topic, error) {
	var topic models.Topic
	_, err := s.cache.Aside(ctx, cache.TopicKey(topicID), &topic, cache.TopicTTL, func() error {
		t, err := s.topics.GetByID(ctx, topicID)
		if err != nil {
			return err
		}
		topic = *t
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.flags.Enabled(featureflags.ViewCounting, viewerID) {
		if err := s.topics.IncrementViews(ctx, topicID); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to count topic view",
				slog.Uint64("topic_id", uint64(topicID)), slog.String("error", err.Error()))
		}
	}
	return &topic, nil
}

// AcceptAnswer marks replyID as the topic's accepted answer. Changing the accepted answer
// moves the bonus from the previous reply author to the new one.
func (s *TopicService) AcceptAnswer(ctx context.Context, actorID, topicID, replyID uint) (topic *models.Topic, err error) {
	ctx, finish := observability.StartServiceSpan(ctx, "TopicService", "AcceptAnswer",
		attribute.Int64("topic.id", int64(topicID)), attribute.Int64("reply.id", int64(replyID)))
	defer func() { finish(err) }()

	topic, err = s.topics.GetByID(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if !topic.IsQuestion() {
		return nil, models.NewValidationError("Only questions can have an accepted answer")
	}
	if topic.AuthorID != actorID {
		moderator, err := s.access.CanModerate(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !moderator {
			return nil, models.NewForbiddenError("Only the topic author or a moderator can accept an answer")
		}
	}

	reply, err := s.replies.GetByID(ctx, replyID)
	if err != nil {
		return nil, err
	}
	if reply.TopicID != topic.ID {
		return nil, models.NewValidationError("Reply does not belong to this topic")
	}
	if reply.IsDeleted {
		return nil, models.NewValidationError("Deleted replies cannot be accepted")
	}
	if topic.AcceptedReplyID != nil && *topic.AcceptedReplyID == replyID {
		return topic, nil
	}

	previous := topic.AcceptedReplyID
	ok, err := s.topics.SetAcceptedReply(ctx, topic.ID, previous, replyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewConflictError("Accepted answer changed concurrently, please retry", nil)
	}

	transition := s.newID()
	var events []*models.ReputationEvent
	if previous != nil {
		prev, err := s.replies.GetByID(ctx, *previous)
		switch {
		case err != nil:
			middleware.Logger.ErrorContext(ctx, "previous accepted reply not found, bonus not reversed",
				slog.Uint64("reply_id", uint64(*previous)), slog.String("error", err.Error()))
		case prev.AuthorID != topic.AuthorID:
			events = append(events, NewEvent(prev.AuthorID, models.EventAnswerAccepted, true, "reply", prev.ID,
				fmt.Sprintf("accept:%s:reversal", transition)))
		}
	}
	if reply.AuthorID != topic.AuthorID {
		events = append(events, NewEvent(reply.AuthorID, models.EventAnswerAccepted, false, "reply", reply.ID,
			fmt.Sprintf("accept:%s:new", transition)))
	}
	s.reputation.Record(ctx, events...)

	topic.AcceptedReplyID = &replyID
	topic.Status = models.TopicStatusResolved
	s.topicChanged(ctx, topic.ID, InvalidateAnswerAccepted, notifications.Event{
		Type:    notifications.EventAnswerAccepted,
		ActorID: actorID,
		Payload: map[string]interface{}{"reply_id": replyID, "reply_author_id": reply.AuthorID},
	})
	return topic, nil
}

// SetLocked locks or unlocks a topic. Moderators only.
func (s *TopicService) SetLocked(ctx context.Context, actorID, topicID uint, locked bool) error {
	moderator, err := s.access.CanModerate(ctx, actorID)
	if err != nil {
		return err
	}
	if !moderator {
		return models.NewForbiddenError("Only moderators can lock topics")
	}
	if err := s.topics.SetLocked(ctx, topicID, locked); err != nil {
		return err
	}

	eventType := notifications.EventTopicUnlocked
	if locked {
		eventType = notifications.EventTopicLocked
	}
	s.topicChanged(ctx, topicID, InvalidateTopicLocked, notifications.Event{Type: eventType, ActorID: actorID})
	return nil
}

// SetStatus moves a topic between open, resolved, closed and archived. The author or a
// moderator may change it.
func (s *TopicService) SetStatus(ctx context.Context, actorID, topicID uint, status string) error {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case models.TopicStatusOpen, models.TopicStatusResolved, models.TopicStatusClosed, models.TopicStatusArchived:
	default:
		return models.NewValidationError("status must be open, resolved, closed or archived")
	}

	topic, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return err
	}
	if topic.AuthorID != actorID {
		moderator, err := s.access.CanModerate(ctx, actorID)
		if err != nil {
			return err
		}
		if !moderator {
			return models.NewForbiddenError("Only the topic author or a moderator can change its status")
		}
	}
	if err := s.topics.SetStatus(ctx, topicID, status); err != nil {
		return err
	}
	s.topicChanged(ctx, topicID, InvalidateStatusChanged, notifications.Event{})
	return nil
}

func (s *TopicService) topicChanged(ctx context.Context, topicID uint, reason string, event notifications.Event) {
	if err := s.cache.Delete(ctx, cache.TopicKey(topicID)); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to invalidate topic cache", slog.String("error", err.Error()))
	}
	s.unanswered.Invalidate(ctx, reason)
	if event.Type == "" {
		return
	}
	if err := s.notifier.PublishTopic(ctx, topicID, event); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish topic event", slog.String("error", err.Error()))
	}
}
