package repository

import (
	"context"
	"fmt"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteRepository persists vote rows and votable scores. Mutations are expected to run
// inside Transaction so the votable row lock covers lookup and write.
type VoteRepository interface {
	Transaction(ctx context.Context, fn func(tx VoteRepository) error) error
	LockVotable(ctx context.Context, kind models.VotableType, id uint) (*models.Votable, error)
	GetVotable(ctx context.Context, kind models.VotableType, id uint) (*models.Votable, error)
	Get(ctx context.Context, userID uint, kind models.VotableType, votableID uint) (*models.Vote, error)
	Create(ctx context.Context, vote *models.Vote) error
	UpdateValue(ctx context.Context, voteID uint, value int) error
	Delete(ctx context.Context, voteID uint) error
	AdjustScore(ctx context.Context, kind models.VotableType, id uint, delta int) (int, error)
	ListByUser(ctx context.Context, userID uint, kind models.VotableType) ([]models.Vote, error)
	SumValues(ctx context.Context, kind models.VotableType, id uint) (int, error)
}

type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository returns a new VoteRepository implementation.
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Transaction(ctx context.Context, fn func(tx VoteRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&voteRepository{db: tx})
	})
}

func votableTable(kind models.VotableType) (string, error) {
	switch kind {
	case models.VotableTopic:
		return "topics", nil
	case models.VotableReply:
		return "replies", nil
	}
	return "", models.NewValidationError(fmt.Sprintf("unknown votable type %q", kind))
}

func (r *voteRepository) LockVotable(ctx context.Context, kind models.VotableType, id uint) (*models.Votable, error) {
	return r.loadVotable(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), kind, id)
}

func (r *voteRepository) GetVotable(ctx context.Context, kind models.VotableType, id uint) (*models.Votable, error) {
	return r.loadVotable(r.db.WithContext(ctx), kind, id)
}

func (r *voteRepository) loadVotable(db *gorm.DB, kind models.VotableType, id uint) (*models.Votable, error) {
	v := &models.Votable{Type: kind, ID: id}
	switch kind {
	case models.VotableTopic:
		var topic models.Topic
		if err := db.Select("id", "author_id", "score").First(&topic, id).Error; err != nil {
			if isNotFound(err) {
				return nil, models.NewNotFoundError("Topic", id)
			}
			return nil, err
		}
		v.OwnerID, v.TopicID, v.Score = topic.AuthorID, topic.ID, topic.Score
	case models.VotableReply:
		var reply models.Reply
		if err := db.Select("id", "topic_id", "author_id", "score").First(&reply, id).Error; err != nil {
			if isNotFound(err) {
				return nil, models.NewNotFoundError("Reply", id)
			}
			return nil, err
		}
		v.OwnerID, v.TopicID, v.Score = reply.AuthorID, reply.TopicID, reply.Score
	default:
		return nil, models.NewValidationError(fmt.Sprintf("unknown votable type %q", kind))
	}
	return v, nil
}

// Get returns the voter's live vote, or nil when there is none.
func (r *voteRepository) Get(ctx context.Context, userID uint, kind models.VotableType, votableID uint) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND votable_type = ? AND votable_id = ?", userID, kind, votableID).
		Take(&vote).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}

func (r *voteRepository) Create(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

func (r *voteRepository) UpdateValue(ctx context.Context, voteID uint, value int) error {
	return r.db.WithContext(ctx).Model(&models.Vote{}).Where("id = ?", voteID).Update("value", value).Error
}

func (r *voteRepository) Delete(ctx context.Context, voteID uint) error {
	return r.db.WithContext(ctx).Delete(&models.Vote{}, voteID).Error
}

// AdjustScore applies delta in a single UPDATE and returns the new score.
func (r *voteRepository) AdjustScore(ctx context.Context, kind models.VotableType, id uint, delta int) (int, error) {
	table, err := votableTable(kind)
	if err != nil {
		return 0, err
	}
	db := r.db.WithContext(ctx)
	if err := db.Table(table).Where("id = ?", id).
		UpdateColumn("score", gorm.Expr("score + ?", delta)).Error; err != nil {
		return 0, err
	}
	var score int
	if err := db.Table(table).Select("score").Where("id = ?", id).Scan(&score).Error; err != nil {
		return 0, err
	}
	return score, nil
}

func (r *voteRepository) ListByUser(ctx context.Context, userID uint, kind models.VotableType) ([]models.Vote, error) {
	var votes []models.Vote
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if kind != "" {
		q = q.Where("votable_type = ?", kind)
	}
	err := q.Order("id ASC").Find(&votes).Error
	return votes, err
}

// SumValues returns the sum of live vote values on a votable.
func (r *voteRepository) SumValues(ctx context.Context, kind models.VotableType, id uint) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("votable_type = ? AND votable_id = ?", kind, id).
		Scan(&sum).Error
	return sum, err
}
