package repository

import (
	"context"
	"time"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"

	"gorm.io/gorm"
)

// TopicRepository defines persistence operations for the topic fields this engine owns.
type TopicRepository interface {
	Create(ctx context.Context, topic *models.Topic) error
	GetByID(ctx context.Context, id uint) (*models.Topic, error)
	ListUnanswered(ctx context.Context, filter models.UnansweredFilter) ([]models.Topic, int64, error)
	SetAcceptedReply(ctx context.Context, topicID uint, previous *uint, replyID uint) (bool, error)
	SetLocked(ctx context.Context, topicID uint, locked bool) error
	SetStatus(ctx context.Context, topicID uint, status string) error
	IncrementViews(ctx context.Context, topicID uint) error
}

type topicRepository struct {
	db *gorm.DB
}

// NewTopicRepository returns a new TopicRepository implementation.
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) Create(ctx context.Context, topic *models.Topic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

func (r *topicRepository) GetByID(ctx context.Context, id uint) (*models.Topic, error) {
	var topic models.Topic
	err := r.db.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tag ASC") }).
		First(&topic, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Topic", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &topic, nil
}

// ListUnanswered returns one page of open questions without an accepted answer.
func (r *topicRepository) ListUnanswered(ctx context.Context, filter models.UnansweredFilter) ([]models.Topic, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Topic{}).
		Where("topics.type = ?", models.TopicTypeQuestion).
		Where("topics.accepted_reply_id IS NULL").
		Where("topics.is_locked = ?", false).
		Where("topics.is_draft = ?", false).
		Where("topics.status IN ?", []string{models.TopicStatusOpen, models.TopicStatusResolved})

	if filter.CategoryID != 0 {
		base = base.Where("topics.category_id = ?", filter.CategoryID)
	}
	if filter.Tag != "" {
		base = base.Where("EXISTS (SELECT 1 FROM topic_tags tt WHERE tt.topic_id = topics.id AND tt.tag = ?)", filter.Tag)
	}
	if filter.From != nil {
		base = base.Where("topics.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		base = base.Where("topics.created_at <= ?", *filter.To)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var topics []models.Topic
	err := applyUnansweredSort(base.Session(&gorm.Session{}), filter.Sort).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tag ASC") }).
		Limit(filter.Limit).
		Offset(filter.Offset()).
		Find(&topics).Error
	if err != nil {
		return nil, 0, err
	}
	return topics, total, nil
}

func applyUnansweredSort(q *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case models.SortOldest:
		return q.Order("topics.created_at ASC").Order("topics.id ASC")
	case models.SortMostViewed:
		return q.Order("topics.view_count DESC").Order("topics.created_at DESC").Order("topics.id DESC")
	case models.SortMostVoted:
		return q.Order("topics.score DESC").Order("topics.created_at DESC").Order("topics.id DESC")
	default:
		return q.Order("topics.created_at DESC").Order("topics.id DESC")
	}
}

// SetAcceptedReply marks replyID as the accepted answer and resolves the topic, provided
// the currently accepted reply still equals previous. It reports false when another
// writer changed the accepted answer first.
func (r *topicRepository) SetAcceptedReply(ctx context.Context, topicID uint, previous *uint, replyID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Topic{}).Where("id = ?", topicID)
	if previous == nil {
		q = q.Where("accepted_reply_id IS NULL")
	} else {
		q = q.Where("accepted_reply_id = ?", *previous)
	}
	res := q.Updates(map[string]interface{}{
		"accepted_reply_id": replyID,
		"status":            models.TopicStatusResolved,
		"updated_at":        time.Now(),
	})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *topicRepository) SetLocked(ctx context.Context, topicID uint, locked bool) error {
	return r.updateTopic(ctx, topicID, map[string]interface{}{"is_locked": locked})
}

func (r *topicRepository) SetStatus(ctx context.Context, topicID uint, status string) error {
	return r.updateTopic(ctx, topicID, map[string]interface{}{"status": status})
}

func (r *topicRepository) IncrementViews(ctx context.Context, topicID uint) error {
	return r.db.WithContext(ctx).Model(&models.Topic{}).Where("id = ?", topicID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

func (r *topicRepository) updateTopic(ctx context.Context, topicID uint, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Topic{}).Where("id = ?", topicID).Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Topic", topicID)
	}
	return nil
}
