package cache

import (
	"fmt"
	"time"
)

const (
	TopicKeyPrefix      = "topic:%d"
	UnansweredKeyPrefix = "unanswered:"
	DailyVotesKeyPrefix = "votes:daily:%d"
)

const (
	TopicTTL      = 30 * time.Minute
	UnansweredTTL = 300 * time.Second
	DailyVotesTTL = 24 * time.Hour
)

func TopicKey(topicID uint) string {
	return fmt.Sprintf(TopicKeyPrefix, topicID)
}

// UnansweredKey prefixes a normalized filter signature.
func UnansweredKey(signature string) string {
	return UnansweredKeyPrefix + signature
}

func DailyVotesKey(userID uint) string {
	return fmt.Sprintf(DailyVotesKeyPrefix, userID)
}
