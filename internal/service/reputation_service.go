package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/middleware"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/observability"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// ReputationService maintains the reputation event log and the derived read model.
type ReputationService struct {
	repo       repository.ReputationRepository
	users      repository.UserRepository
	dispatcher *RetryDispatcher
}

// NewReputationService wires the service and its retry dispatcher. Callers own the
// dispatcher lifecycle through Start and Close.
func NewReputationService(repo repository.ReputationRepository, opts ...RetryOption) *ReputationService {
	s := &ReputationService{repo: repo}
	s.dispatcher = NewRetryDispatcher(func(ctx context.Context, event *models.ReputationEvent) error {
		_, err := s.ApplyEvent(ctx, event)
		return err
	}, opts...)
	return s
}

// WithUsers makes reads reject ids that are not registered users. Without it every id
// reads as a user with no events.
func (s *ReputationService) WithUsers(users repository.UserRepository) *ReputationService {
	s.users = users
	return s
}

// requireUser returns NotFound when userID is not a registered user.
func (s *ReputationService) requireUser(ctx context.Context, userID uint) error {
	if s.users == nil {
		return nil
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return models.NewNotFoundError("User", userID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Start launches background retries.
func (s *ReputationService) Start() {
	s.dispatcher.Start()
}

// Close drains pending retries.
func (s *ReputationService) Close() {
	s.dispatcher.Close(retryDrainTimeout)
}

// NewEvent builds an event worth the fixed points for eventType. Reversals negate
// the points of the event they compensate.
func NewEvent(userID uint, eventType string, reversal bool, refType string, refID uint, key string) *models.ReputationEvent {
	points, _ := models.PointsFor(eventType)
	if reversal {
		points = -points
	}
	return &models.ReputationEvent{
		UserID:         userID,
		EventType:      eventType,
		Points:         points,
		ReferenceType:  refType,
		ReferenceID:    refID,
		IdempotencyKey: key,
	}
}

// ApplyEvent appends event and updates the running total. Applying an event whose
// idempotency key was already used is a no-op that reports false.
func (s *ReputationService) ApplyEvent(ctx context.Context, event *models.ReputationEvent) (applied bool, err error) {
	ctx, finish := observability.StartServiceSpan(ctx, "ReputationService", "ApplyEvent",
		attribute.String("reputation.event_type", event.EventType),
		attribute.Int("reputation.points", event.Points))
	defer func() { finish(err) }()

	if err := validateEvent(event); err != nil {
		return false, err
	}

	applied, err = s.repo.Apply(ctx, event)
	if err != nil {
		return false, fmt.Errorf("apply reputation event %s: %w", event.IdempotencyKey, err)
	}
	if applied {
		observability.ReputationEvents.WithLabelValues(event.EventType).Inc()
	}
	return applied, nil
}

func validateEvent(event *models.ReputationEvent) error {
	if event.UserID == 0 {
		return models.NewValidationError("reputation event requires a user")
	}
	if event.IdempotencyKey == "" {
		return models.NewValidationError("reputation event requires an idempotency key")
	}
	points, ok := models.PointsFor(event.EventType)
	if !ok {
		return models.NewValidationError(fmt.Sprintf("unknown reputation event type %q", event.EventType))
	}
	if event.Points != points && event.Points != -points {
		return models.NewValidationError(fmt.Sprintf("%s is worth %d points, got %d", event.EventType, points, event.Points))
	}
	return nil
}

// Record applies events on behalf of a triggering action. It never fails: events that
// cannot be written now are handed to the retry dispatcher.
func (s *ReputationService) Record(ctx context.Context, events ...*models.ReputationEvent) {
	for _, event := range events {
		if event == nil {
			continue
		}
		if _, err := s.ApplyEvent(ctx, event); err != nil {
			if models.IsCode(err, models.CodeValidation) {
				middleware.Logger.ErrorContext(ctx, "invalid reputation event discarded",
					slog.String("idempotency_key", event.IdempotencyKey), slog.String("error", err.Error()))
				continue
			}
			observability.ReputationApplyFailures.WithLabelValues("sync").Inc()
			middleware.Logger.WarnContext(ctx, "reputation write failed, scheduling retry",
				slog.String("idempotency_key", event.IdempotencyKey),
				slog.Uint64("user_id", uint64(event.UserID)),
				slog.String("error", err.Error()))
			s.dispatcher.Enqueue(event)
		}
	}
}

// GetReputation returns the clamped total, level, breakdown and permissions of a user.
func (s *ReputationService) GetReputation(ctx context.Context, userID uint) (models.Reputation, error) {
	state, err := s.repo.Get(ctx, userID)
	if err != nil {
		return models.Reputation{}, models.NewInternalError(err)
	}
	if state == nil {
		if err := s.requireUser(ctx, userID); err != nil {
			return models.Reputation{}, err
		}
	}
	return models.NewReputation(userID, state), nil
}

// History returns the user's event log, newest first.
func (s *ReputationService) History(ctx context.Context, userID uint, limit, offset int) ([]models.ReputationEvent, int64, error) {
	events, total, err := s.repo.ListEvents(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	if total == 0 {
		if err := s.requireUser(ctx, userID); err != nil {
			return nil, 0, err
		}
	}
	return events, total, nil
}

// Rebuild recomputes a user's running totals from the event log.
func (s *ReputationService) Rebuild(ctx context.Context, userID uint) (models.Reputation, error) {
	state, err := s.repo.Rebuild(ctx, userID)
	if err != nil {
		return models.Reputation{}, models.NewInternalError(err)
	}
	middleware.Logger.InfoContext(ctx, "reputation rebuilt from event log",
		slog.Uint64("user_id", uint64(userID)), slog.Int("raw_total", state.RawTotal))
	return models.NewReputation(userID, state), nil
}
