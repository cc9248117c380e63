package models

import "time"

// Topic types.
const (
	TopicTypeQuestion     = "question"
	TopicTypeDiscussion   = "discussion"
	TopicTypeAnnouncement = "announcement"
)

// Topic statuses.
const (
	TopicStatusOpen     = "open"
	TopicStatusResolved = "resolved"
	TopicStatusClosed   = "closed"
	TopicStatusArchived = "archived"
)

// Topic is a forum thread starter. It is votable.
type Topic struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	AuthorID        uint       `gorm:"not null;index" json:"author_id"`
	CategoryID      uint       `gorm:"not null;index" json:"category_id"`
	Title           string     `gorm:"size:300;not null" json:"title"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	Type            string     `gorm:"size:16;not null;default:discussion;index" json:"type"`
	Status          string     `gorm:"size:16;not null;default:open;index" json:"status"`
	IsLocked        bool       `gorm:"not null;default:false" json:"is_locked"`
	IsDraft         bool       `gorm:"not null;default:false" json:"is_draft"`
	AcceptedReplyID *uint      `json:"accepted_reply_id,omitempty"`
	Score           int        `gorm:"not null;default:0" json:"score"`
	ViewCount       int        `gorm:"not null;default:0" json:"view_count"`
	ReplyCount      int        `gorm:"not null;default:0" json:"reply_count"`
	Tags            []TopicTag `gorm:"foreignKey:TopicID" json:"tags,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TopicTag attaches a normalized tag to a topic.
type TopicTag struct {
	TopicID uint   `gorm:"primaryKey;autoIncrement:false" json:"-"`
	Tag     string `gorm:"primaryKey;size:64;index" json:"tag"`
}

// IsQuestion reports whether the topic can hold an accepted answer.
func (t *Topic) IsQuestion() bool {
	return t.Type == TopicTypeQuestion
}

// AcceptsReplies reports whether new replies may be attached.
func (t *Topic) AcceptsReplies() bool {
	return !t.IsLocked && !t.IsDraft && t.Status != TopicStatusArchived && t.Status != TopicStatusClosed
}

// TagNames returns the topic's tags as plain strings.
func (t *Topic) TagNames() []string {
	out := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		out = append(out, tag.Tag)
	}
	return out
}
