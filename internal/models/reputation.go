package models

import "time"

// Reputation event types.
const (
	EventTopicCreated     = "topic_created"
	EventReplyCreated     = "reply_created"
	EventUpvoteReceived   = "upvote_received"
	EventDownvoteReceived = "downvote_received"
	EventAnswerAccepted   = "answer_accepted"
)

// Point values for each event type.
const (
	PointsTopicCreated     = 5
	PointsReplyCreated     = 2
	PointsUpvoteReceived   = 10
	PointsDownvoteReceived = -5
	PointsAnswerAccepted   = 25
)

// Permission thresholds on the clamped reputation total.
const (
	DownvoteThreshold   = 50
	EditOthersThreshold = 500
	ModerateThreshold   = 1000
)

// Reputation levels.
const (
	LevelNewcomer    = "Newcomer"
	LevelContributor = "Contributor"
	LevelExpert      = "Expert"
	LevelMaster      = "Master"
	LevelLegend      = "Legend"
)

var levelFloors = []struct {
	min  int
	name string
}{
	{2500, LevelLegend},
	{1000, LevelMaster},
	{500, LevelExpert},
	{100, LevelContributor},
	{0, LevelNewcomer},
}

// PointsFor returns the fixed point value of an event type and whether the type is known.
func PointsFor(eventType string) (int, bool) {
	switch eventType {
	case EventTopicCreated:
		return PointsTopicCreated, true
	case EventReplyCreated:
		return PointsReplyCreated, true
	case EventUpvoteReceived:
		return PointsUpvoteReceived, true
	case EventDownvoteReceived:
		return PointsDownvoteReceived, true
	case EventAnswerAccepted:
		return PointsAnswerAccepted, true
	}
	return 0, false
}

// VoteEventType maps a vote value to the event its owner receives.
func VoteEventType(value int) string {
	if value < 0 {
		return EventDownvoteReceived
	}
	return EventUpvoteReceived
}

// ClampTotal is the displayed total: the raw sum floored at zero.
func ClampTotal(raw int) int {
	if raw < 0 {
		return 0
	}
	return raw
}

// LevelFor derives the level from a clamped total.
func LevelFor(total int) string {
	for _, l := range levelFloors {
		if total >= l.min {
			return l.name
		}
	}
	return LevelNewcomer
}

// Permissions are derived from the clamped total at read time.
type Permissions struct {
	CanDownvote   bool `json:"can_downvote"`
	CanEditOthers bool `json:"can_edit_others"`
	CanModerate   bool `json:"can_moderate"`
}

// PermissionsFor derives permissions from a clamped total.
func PermissionsFor(total int) Permissions {
	return Permissions{
		CanDownvote:   total >= DownvoteThreshold,
		CanEditOthers: total >= EditOthersThreshold,
		CanModerate:   total >= ModerateThreshold,
	}
}

// ReputationEvent is an append-only ledger entry. Rows are never updated; a reversal
// is a new event with negated points.
type ReputationEvent struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	EventType      string    `gorm:"size:32;not null" json:"event_type"`
	Points         int       `gorm:"not null" json:"points"`
	ReferenceType  string    `gorm:"size:16" json:"reference_type,omitempty"`
	ReferenceID    uint      `json:"reference_id,omitempty"`
	IdempotencyKey string    `gorm:"size:128;not null;uniqueIndex" json:"-"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// UserReputation is the incrementally maintained running sum of a user's events.
// RawTotal is never clamped; level and permissions are not stored.
type UserReputation struct {
	UserID         uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	RawTotal       int       `gorm:"not null;default:0" json:"raw_total"`
	TopicPoints    int       `gorm:"not null;default:0" json:"topic_points"`
	ReplyPoints    int       `gorm:"not null;default:0" json:"reply_points"`
	UpvotePoints   int       `gorm:"not null;default:0" json:"upvote_points"`
	DownvotePoints int       `gorm:"not null;default:0" json:"downvote_points"`
	AcceptedPoints int       `gorm:"not null;default:0" json:"accepted_points"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BreakdownColumn returns the user_reputations column that accumulates eventType.
func BreakdownColumn(eventType string) string {
	switch eventType {
	case EventTopicCreated:
		return "topic_points"
	case EventReplyCreated:
		return "reply_points"
	case EventUpvoteReceived:
		return "upvote_points"
	case EventDownvoteReceived:
		return "downvote_points"
	case EventAnswerAccepted:
		return "accepted_points"
	}
	return ""
}

// ReputationBreakdown groups raw points per category.
type ReputationBreakdown struct {
	Topics    int `json:"topics"`
	Replies   int `json:"replies"`
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	Accepted  int `json:"accepted"`
}

// Reputation is the read model returned to callers.
type Reputation struct {
	UserID      uint                `json:"user_id"`
	Total       int                 `json:"total"`
	RawTotal    int                 `json:"raw_total"`
	Level       string              `json:"level"`
	Breakdown   ReputationBreakdown `json:"breakdown"`
	Permissions Permissions         `json:"permissions"`
}

// NewReputation builds the read model from stored state. A nil state is a user
// with no events yet.
func NewReputation(userID uint, state *UserReputation) Reputation {
	if state == nil {
		state = &UserReputation{UserID: userID}
	}
	total := ClampTotal(state.RawTotal)
	return Reputation{
		UserID:   userID,
		Total:    total,
		RawTotal: state.RawTotal,
		Level:    LevelFor(total),
		Breakdown: ReputationBreakdown{
			Topics:    state.TopicPoints,
			Replies:   state.ReplyPoints,
			Upvotes:   state.UpvotePoints,
			Downvotes: state.DownvotePoints,
			Accepted:  state.AcceptedPoints,
		},
		Permissions: PermissionsFor(total),
	}
}
