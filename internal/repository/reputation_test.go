package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(userID uint, eventType string, key string) *models.ReputationEvent {
	points, _ := models.PointsFor(eventType)
	return &models.ReputationEvent{
		UserID:         userID,
		EventType:      eventType,
		Points:         points,
		ReferenceType:  "topic",
		ReferenceID:    1,
		IdempotencyKey: key,
	}
}

func TestReputationRepository_ApplyIsIdempotent(t *testing.T) {
	repo := NewReputationRepository(newTestDB(t))
	ctx := context.Background()

	applied, err := repo.Apply(ctx, event(1, models.EventUpvoteReceived, "vote:a:new"))
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = repo.Apply(ctx, event(1, models.EventUpvoteReceived, "vote:a:new"))
	require.NoError(t, err)
	assert.False(t, applied)

	state, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, 10, state.RawTotal)
	assert.Equal(t, 10, state.UpvotePoints)

	_, total, err := repo.ListEvents(ctx, 1, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestReputationRepository_NegativeRawTotalIsKept(t *testing.T) {
	repo := NewReputationRepository(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := repo.Apply(ctx, event(2, models.EventDownvoteReceived, fmt.Sprintf("down:%d", i)))
		require.NoError(t, err)
	}

	state, err := repo.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, -20, state.RawTotal)
	assert.Equal(t, -20, state.DownvotePoints)
	assert.Equal(t, 0, models.NewReputation(2, state).Total)
}

func TestReputationRepository_UnknownEventType(t *testing.T) {
	repo := NewReputationRepository(newTestDB(t))
	_, err := repo.Apply(context.Background(), &models.ReputationEvent{UserID: 1, EventType: "bogus", Points: 1, IdempotencyKey: "x"})
	assert.Error(t, err)
}

func TestReputationRepository_GetMissingUser(t *testing.T) {
	repo := NewReputationRepository(newTestDB(t))
	state, err := repo.Get(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestReputationRepository_ListEventsNewestFirst(t *testing.T) {
	repo := NewReputationRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Apply(ctx, event(3, models.EventTopicCreated, "topic:1"))
	require.NoError(t, err)
	_, err = repo.Apply(ctx, event(3, models.EventReplyCreated, "reply:1"))
	require.NoError(t, err)
	_, err = repo.Apply(ctx, event(3, models.EventAnswerAccepted, "accept:1"))
	require.NoError(t, err)

	events, total, err := repo.ListEvents(ctx, 3, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventAnswerAccepted, events[0].EventType)
	assert.Equal(t, models.EventReplyCreated, events[1].EventType)
}

func TestReputationRepository_Rebuild(t *testing.T) {
	db := newTestDB(t)
	repo := NewReputationRepository(db)
	ctx := context.Background()

	_, err := repo.Apply(ctx, event(4, models.EventTopicCreated, "topic:4"))
	require.NoError(t, err)
	_, err = repo.Apply(ctx, event(4, models.EventUpvoteReceived, "up:4"))
	require.NoError(t, err)

	// Simulate drift in the running totals.
	require.NoError(t, db.Model(&models.UserReputation{}).Where("user_id = ?", 4).
		Updates(map[string]interface{}{"raw_total": 999, "topic_points": 0}).Error)

	state, err := repo.Rebuild(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 15, state.RawTotal)

	stored, err := repo.Get(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 15, stored.RawTotal)
	assert.Equal(t, 5, stored.TopicPoints)
	assert.Equal(t, 10, stored.UpvotePoints)
}
