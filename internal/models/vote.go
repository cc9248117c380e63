package models

import (
	"fmt"
	"time"
)

// VotableType distinguishes the two kinds of votable content.
type VotableType string

const (
	VotableTopic VotableType = "topic"
	VotableReply VotableType = "reply"
)

// Valid reports whether t names a known votable kind.
func (t VotableType) Valid() bool {
	return t == VotableTopic || t == VotableReply
}

// Direction is the caller's requested vote direction.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Sign returns +1 for up and -1 for down.
func (d Direction) Sign() int {
	if d == DirectionDown {
		return -1
	}
	return 1
}

// Valid reports whether d is up or down.
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// Vote is one user's live vote on a votable. "No vote" is the absence of a row.
type Vote struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"not null;uniqueIndex:idx_votes_user_votable,priority:1" json:"user_id"`
	VotableType VotableType `gorm:"size:16;not null;uniqueIndex:idx_votes_user_votable,priority:2;index:idx_votes_votable,priority:1" json:"votable_type"`
	VotableID   uint        `gorm:"not null;uniqueIndex:idx_votes_user_votable,priority:3;index:idx_votes_votable,priority:2" json:"votable_id"`
	Value       int         `gorm:"not null" json:"value"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Votable is the ledger's view of a topic or reply.
type Votable struct {
	Type    VotableType
	ID      uint
	OwnerID uint
	TopicID uint
	Score   int
}

// VoteKey formats the "<kind>:<id>" key used in per-user vote maps.
func VoteKey(t VotableType, id uint) string {
	return fmt.Sprintf("%s:%d", t, id)
}

// VoteTransition describes what a cast did to a voter's vote row.
type VoteTransition string

const (
	TransitionCreated VoteTransition = "created"
	TransitionRemoved VoteTransition = "removed"
	TransitionFlipped VoteTransition = "flipped"
)

// ConsumesQuota reports whether the transition counts as a net-new vote action.
func (t VoteTransition) ConsumesQuota() bool {
	return t == TransitionCreated || t == TransitionFlipped
}

// VoteResult is returned to callers after a cast.
type VoteResult struct {
	VotableType    VotableType    `json:"votable_type"`
	VotableID      uint           `json:"votable_id"`
	Score          int            `json:"score"`
	UserVote       int            `json:"user_vote"`
	Transition     VoteTransition `json:"transition"`
	QuotaRemaining int            `json:"quota_remaining"`
}
