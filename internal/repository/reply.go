package repository

import (
	"context"
	"time"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"

	"gorm.io/gorm"
)

// ReplyRepository defines persistence operations for replies and their edit history.
type ReplyRepository interface {
	Create(ctx context.Context, reply *models.Reply) error
	GetByID(ctx context.Context, id uint) (*models.Reply, error)
	ListByTopic(ctx context.Context, topicID uint) ([]models.Reply, error)
	UpdateContent(ctx context.Context, reply *models.Reply, edit *models.ReplyEdit) error
	SoftDelete(ctx context.Context, id uint) (bool, error)
	ListEdits(ctx context.Context, replyID uint) ([]models.ReplyEdit, error)
}

type replyRepository struct {
	db *gorm.DB
}

// NewReplyRepository returns a new ReplyRepository implementation.
func NewReplyRepository(db *gorm.DB) ReplyRepository {
	return &replyRepository{db: db}
}

// Create inserts the reply and bumps the topic's reply counter in one transaction.
func (r *replyRepository) Create(ctx context.Context, reply *models.Reply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		return tx.Model(&models.Topic{}).Where("id = ?", reply.TopicID).
			UpdateColumn("reply_count", gorm.Expr("reply_count + ?", 1)).Error
	})
}

func (r *replyRepository) GetByID(ctx context.Context, id uint) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).First(&reply, id).Error; err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Reply", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &reply, nil
}

// ListByTopic returns every reply of a topic, deleted ones included, in creation order.
func (r *replyRepository) ListByTopic(ctx context.Context, topicID uint) ([]models.Reply, error) {
	var replies []models.Reply
	err := r.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("created_at ASC").Order("id ASC").
		Find(&replies).Error
	return replies, err
}

// UpdateContent stores reply.Content and reply.EditedAt, and appends edit when non-nil.
// Deleted replies are left untouched.
func (r *replyRepository) UpdateContent(ctx context.Context, reply *models.Reply, edit *models.ReplyEdit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Reply{}).
			Where("id = ? AND is_deleted = ?", reply.ID, false).
			Updates(map[string]interface{}{
				"content":    reply.Content,
				"edited_at":  reply.EditedAt,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewForbiddenError("Deleted replies cannot be edited")
		}
		if edit != nil {
			return tx.Create(edit).Error
		}
		return nil
	})
}

// SoftDelete flags the reply and replaces its content with the tombstone. It reports
// whether the row changed; deleting twice is a no-op.
func (r *replyRepository) SoftDelete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Reply{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"content":    models.DeletedReplyContent,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *replyRepository) ListEdits(ctx context.Context, replyID uint) ([]models.ReplyEdit, error) {
	var edits []models.ReplyEdit
	err := r.db.WithContext(ctx).Where("reply_id = ?", replyID).Order("edited_at ASC").Order("id ASC").Find(&edits).Error
	return edits, err
}
