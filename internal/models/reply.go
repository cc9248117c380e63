package models

import "time"

// MaxReplyDepth is the deepest nesting level a reply may occupy (top-level replies are 0).
const MaxReplyDepth = 3

// DeletedReplyContent replaces the body of a soft-deleted reply.
const DeletedReplyContent = "[deleted]"

// Reply is an answer or comment inside a topic. It is votable and never physically
// deleted, so descendants always keep a valid parent.
type Reply struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	TopicID       uint       `gorm:"not null;index" json:"topic_id"`
	ParentReplyID *uint      `gorm:"index" json:"parent_reply_id,omitempty"`
	QuotedReplyID *uint      `json:"quoted_reply_id,omitempty"`
	Depth         int        `gorm:"not null;default:0" json:"depth"`
	AuthorID      uint       `gorm:"not null;index" json:"author_id"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	Score         int        `gorm:"not null;default:0" json:"score"`
	IsDeleted     bool       `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt     time.Time  `json:"created_at"`
	EditedAt      *time.Time `json:"edited_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ReplyEdit is one entry of a reply's edit history.
type ReplyEdit struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ReplyID         uint      `gorm:"not null;index" json:"reply_id"`
	EditorID        uint      `gorm:"not null" json:"editor_id"`
	PreviousContent string    `gorm:"type:text;not null" json:"previous_content"`
	EditedAt        time.Time `gorm:"not null" json:"edited_at"`
}

// ReplyNode is a reply with its children, built on demand for thread rendering.
type ReplyNode struct {
	*Reply
	IsAccepted bool         `json:"is_accepted"`
	Children   []*ReplyNode `json:"children"`
}
