// Package notifications publishes forum activity events into Redis channels for
// downstream delivery.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Event types published by the engine.
const (
	EventVoteCast       = "vote.cast"
	EventReplyCreated   = "reply.created"
	EventReplyDeleted   = "reply.deleted"
	EventAnswerAccepted = "answer.accepted"
	EventTopicLocked    = "topic.locked"
	EventTopicUnlocked  = "topic.unlocked"
)

// Event is the JSON envelope written to every channel.
type Event struct {
	Type      string    `json:"type"`
	TopicID   uint      `json:"topic_id,omitempty"`
	ActorID   uint      `json:"actor_id,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb redis.UniversalClient
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb redis.UniversalClient) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, event Event) error {
	return n.publish(ctx, UserChannel(userID), event)
}

// PublishTopic sends an event to everyone following a topic.
func (n *Notifier) PublishTopic(ctx context.Context, topicID uint, event Event) error {
	event.TopicID = topicID
	return n.publish(ctx, TopicChannel(topicID), event)
}

func (n *Notifier) publish(ctx context.Context, channel string, event Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.rdb.Publish(ctx, channel, payload).Err()
}

// StartPatternSubscriber subscribes to topic and user channels and calls onMessage
// for each incoming message until ctx is cancelled.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "forum:topic:*", "notifications:user:*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in notification subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}

// TopicChannel derives the Redis channel name for a topic.
func TopicChannel(topicID uint) string {
	return "forum:topic:" + strconv.FormatUint(uint64(topicID), 10)
}
