package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/cache"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/middleware"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/observability"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/repository"
)

// Invalidation triggers for the unanswered queue.
const (
	InvalidateQuestionCreated = "question_created"
	InvalidateAnswerAccepted  = "answer_accepted"
	InvalidateTopicLocked     = "topic_locked"
	InvalidateStatusChanged   = "status_changed"
)

// UnansweredService serves the cached queue of open questions without an accepted answer.
type UnansweredService struct {
	topics repository.TopicRepository
	cache  *cache.Store
	ttl    time.Duration
}

// NewUnansweredService builds the service. A non-positive ttl uses cache.UnansweredTTL.
func NewUnansweredService(topics repository.TopicRepository, store *cache.Store, ttl time.Duration) *UnansweredService {
	if ttl <= 0 {
		ttl = cache.UnansweredTTL
	}
	return &UnansweredService{topics: topics, cache: store, ttl: ttl}
}

// GetUnanswered returns one page of the queue. Results are cached per normalized filter.
func (s *UnansweredService) GetUnanswered(ctx context.Context, filter models.UnansweredFilter) (page *models.UnansweredPage, err error) {
	ctx, finish := observability.StartServiceSpan(ctx, "UnansweredService", "GetUnanswered")
	defer func() { finish(err) }()

	filter, err = filter.Normalize()
	if err != nil {
		return nil, err
	}

	key := cache.UnansweredKey(filter.Signature())
	page = &models.UnansweredPage{}
	found, cacheErr := s.cache.GetJSON(ctx, key, page)
	switch {
	case cacheErr != nil:
		observability.UnansweredCacheLookups.WithLabelValues("error").Inc()
		middleware.Logger.WarnContext(ctx, "unanswered cache read failed",
			slog.String("key", key), slog.String("error", cacheErr.Error()))
	case found:
		observability.UnansweredCacheLookups.WithLabelValues("hit").Inc()
		return page, nil
	default:
		observability.UnansweredCacheLookups.WithLabelValues("miss").Inc()
	}

	topics, total, err := s.topics.ListUnanswered(ctx, filter)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if topics == nil {
		topics = []models.Topic{}
	}
	page = &models.UnansweredPage{Items: topics, Total: total, Page: filter.Page, Limit: filter.Limit}

	if err := s.cache.SetJSON(ctx, key, page, s.ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "unanswered cache write failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}
	return page, nil
}

// Invalidate drops every cached queue page. Failures are logged; entries then expire
// on their own within the TTL.
func (s *UnansweredService) Invalidate(ctx context.Context, reason string) {
	if s == nil || !s.cache.Enabled() {
		return
	}
	n, err := s.cache.DeleteByPrefix(ctx, cache.UnansweredKeyPrefix)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "unanswered cache invalidation failed",
			slog.String("reason", reason), slog.String("error", err.Error()))
		return
	}
	observability.UnansweredCacheInvalidations.WithLabelValues(reason).Inc()
	middleware.Logger.DebugContext(ctx, "unanswered cache invalidated",
		slog.String("reason", reason), slog.Int("keys", n))
}
