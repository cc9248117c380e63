package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReputationRepository persists the reputation event log and the running totals.
type ReputationRepository interface {
	Apply(ctx context.Context, event *models.ReputationEvent) (bool, error)
	Get(ctx context.Context, userID uint) (*models.UserReputation, error)
	ListEvents(ctx context.Context, userID uint, limit, offset int) ([]models.ReputationEvent, int64, error)
	Rebuild(ctx context.Context, userID uint) (*models.UserReputation, error)
}

type reputationRepository struct {
	db *gorm.DB
}

// NewReputationRepository returns a new ReputationRepository implementation.
func NewReputationRepository(db *gorm.DB) ReputationRepository {
	return &reputationRepository{db: db}
}

// Apply appends event and adds its points to the user's running totals in one
// transaction. It reports false without touching the totals when an event with the
// same idempotency key already exists.
func (r *reputationRepository) Apply(ctx context.Context, event *models.ReputationEvent) (bool, error) {
	column := models.BreakdownColumn(event.EventType)
	if column == "" {
		return false, fmt.Errorf("unknown reputation event type %q", event.EventType)
	}

	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			DoNothing: true,
		}).Create(event)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		state := models.UserReputation{UserID: event.UserID, RawTotal: event.Points, UpdatedAt: time.Now()}
		addToBreakdown(&state, event.EventType, event.Points)

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"raw_total":  gorm.Expr("user_reputations.raw_total + ?", event.Points),
				column:       gorm.Expr("user_reputations."+column+" + ?", event.Points),
				"updated_at": state.UpdatedAt,
			}),
		}).Create(&state).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func addToBreakdown(state *models.UserReputation, eventType string, points int) {
	switch eventType {
	case models.EventTopicCreated:
		state.TopicPoints += points
	case models.EventReplyCreated:
		state.ReplyPoints += points
	case models.EventUpvoteReceived:
		state.UpvotePoints += points
	case models.EventDownvoteReceived:
		state.DownvotePoints += points
	case models.EventAnswerAccepted:
		state.AcceptedPoints += points
	}
}

// Get returns the stored totals, or nil for a user without events.
func (r *reputationRepository) Get(ctx context.Context, userID uint) (*models.UserReputation, error) {
	var state models.UserReputation
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&state).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

func (r *reputationRepository) ListEvents(ctx context.Context, userID uint, limit, offset int) ([]models.ReputationEvent, int64, error) {
	var (
		events []models.ReputationEvent
		total  int64
	)
	q := r.db.WithContext(ctx).Model(&models.ReputationEvent{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// Rebuild recomputes the running totals from the event log and overwrites the stored row.
func (r *reputationRepository) Rebuild(ctx context.Context, userID uint) (*models.UserReputation, error) {
	type sumRow struct {
		EventType string
		Points    int
	}

	state := &models.UserReputation{UserID: userID}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []sumRow
		if err := tx.Model(&models.ReputationEvent{}).
			Select("event_type, COALESCE(SUM(points), 0) AS points").
			Where("user_id = ?", userID).
			Group("event_type").
			Scan(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			state.RawTotal += row.Points
			addToBreakdown(state, row.EventType, row.Points)
		}
		state.UpdatedAt = time.Now()

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"raw_total", "topic_points", "reply_points", "upvote_points",
				"downvote_points", "accepted_points", "updated_at",
			}),
		}).Select("*").Create(state).Error
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}
