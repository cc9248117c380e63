package service

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/cache"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *forum) assertScoreMatchesVotes(t *testing.T, kind models.VotableType, id uint) {
	t.Helper()
	votable, err := f.votes.GetVotable(t.Context(), kind, id)
	require.NoError(t, err)
	sum, err := f.votes.SumValues(t.Context(), kind, id)
	require.NoError(t, err)
	assert.Equal(t, sum, votable.Score, "score must equal the sum of live votes")
}

func TestVoteService_ToggleAndFlip(t *testing.T) {
	f := newForum(t)
	author := f.user(t, "author")
	voter := f.user(t, "voter")
	f.setReputation(t, voter.ID, 50)
	topic := f.question(t, author.ID, "toggle")

	steps := []struct {
		dir        models.Direction
		score      int
		userVote   int
		transition models.VoteTransition
	}{
		{models.DirectionUp, 1, 1, models.TransitionCreated},
		{models.DirectionUp, 0, 0, models.TransitionRemoved},
		{models.DirectionDown, -1, -1, models.TransitionCreated},
		{models.DirectionUp, 1, 1, models.TransitionFlipped},
		{models.DirectionDown, -1, -1, models.TransitionFlipped},
		{models.DirectionDown, 0, 0, models.TransitionRemoved},
	}
	for i, step := range steps {
		res, err := f.vote(t, voter.ID, models.VotableTopic, topic.ID, step.dir)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.score, res.Score, "step %d", i)
		assert.Equal(t, step.userVote, res.UserVote, "step %d", i)
		assert.Equal(t, step.transition, res.Transition, "step %d", i)
		f.assertScoreMatchesVotes(t, models.VotableTopic, topic.ID)

		var rows int64
		require.NoError(t, f.db.Model(&models.Vote{}).
			Where("user_id = ? AND votable_type = ? AND votable_id = ?", voter.ID, models.VotableTopic, topic.ID).
			Count(&rows).Error)
		assert.LessOrEqual(t, rows, int64(1), "step %d", i)
	}

	state, err := f.voting.GetVoteState(t.Context(), voter.ID, models.VotableTopic, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, state)
}

func TestVoteService_ReputationFollowsVotes(t *testing.T) {
	f := newForum(t)
	author := f.user(t, "author")
	voter := f.user(t, "voter")
	f.setReputation(t, voter.ID, 50)
	topic := f.question(t, author.ID, "rep")
	reply := f.reply(t, author.ID, topic.ID, nil)
	base := f.reputationOf(t, author.ID).RawTotal
	require.Equal(t, models.PointsTopicCreated+models.PointsReplyCreated, base)

	_, err := f.vote(t, voter.ID, models.VotableReply, reply.ID, models.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, base+10, f.reputationOf(t, author.ID).RawTotal)

	_, err = f.vote(t, voter.ID, models.VotableReply, reply.ID, models.DirectionDown)
	require.NoError(t, err)
	assert.Equal(t, base-5, f.reputationOf(t, author.ID).RawTotal)

	_, err = f.vote(t, voter.ID, models.VotableReply, reply.ID, models.DirectionDown)
	require.NoError(t, err)
	rep := f.reputationOf(t, author.ID)
	assert.Equal(t, base, rep.RawTotal)
	assert.Equal(t, 0, rep.Breakdown.Upvotes)
	assert.Equal(t, 0, rep.Breakdown.Downvotes)
}

func TestVoteService_SelfVoteForbidden(t *testing.T) {
	f := newForum(t)
	author := f.user(t, "author")
	f.setReputation(t, author.ID, 5000)
	topic := f.question(t, author.ID, "mine")
	reply := f.reply(t, author.ID, topic.ID, nil)

	for _, dir := range []models.Direction{models.DirectionUp, models.DirectionDown} {
		_, err := f.vote(t, author.ID, models.VotableTopic, topic.ID, dir)
		assertCode(t, err, models.CodeForbidden)
		_, err = f.vote(t, author.ID, models.VotableReply, reply.ID, dir)
		assertCode(t, err, models.CodeForbidden)
	}
	f.assertScoreMatchesVotes(t, models.VotableTopic, topic.ID)
}

func TestVoteService_DownvoteThreshold(t *testing.T) {
	f := newForum(t)
	author := f.user(t, "author")
	topic := f.question(t, author.ID, "threshold")

	low := f.user(t, "low")
	f.setReputation(t, low.ID, 49)
	_, err := f.vote(t, low.ID, models.VotableTopic, topic.ID, models.DirectionDown)
	assertCode(t, err, models.CodeForbidden)
	assert.Contains(t, err.Error(), "50+ reputation")

	enough := f.user(t, "enough")
	f.setReputation(t, enough.ID, 50)
	res, err := f.vote(t, enough.ID, models.VotableTopic, topic.ID, models.DirectionDown)
	require.NoError(t, err)
	assert.Equal(t, -1, res.Score)

	_, err = f.vote(t, low.ID, models.VotableTopic, topic.ID, models.DirectionUp)
	require.NoError(t, err, "upvotes need no reputation")
}

func TestVoteService_Validation(t *testing.T) {
	f := newForum(t)
	voter := f.user(t, "voter")

	_, err := f.vote(t, 0, models.VotableTopic, 1, models.DirectionUp)
	assertCode(t, err, models.CodeUnauthorized)
	_, err = f.vote(t, voter.ID, "comment", 1, models.DirectionUp)
	assertCode(t, err, models.CodeValidation)
	_, err = f.vote(t, voter.ID, models.VotableTopic, 1, "sideways")
	assertCode(t, err, models.CodeValidation)
	_, err = f.vote(t, voter.ID, models.VotableTopic, 999, models.DirectionUp)
	assertCode(t, err, models.CodeNotFound)
}

func TestVoteService_DailyQuota(t *testing.T) {
	f := newForum(t)
	author := f.user(t, "author")
	voter := f.user(t, "voter")

	topics := make([]*models.Topic, 0, 51)
	for i := 0; i < 51; i++ {
		topics = append(topics, f.question(t, author.ID, "quota "+strconv.Itoa(i)))
	}

	for i := 0; i < 50; i++ {
		res, err := f.vote(t, voter.ID, models.VotableTopic, topics[i].ID, models.DirectionUp)
		require.NoError(t, err, "vote %d", i)
		assert.Equal(t, 49-i, res.QuotaRemaining)
	}

	_, err := f.vote(t, voter.ID, models.VotableTopic, topics[50].ID, models.DirectionUp)
	assertCode(t, err, models.CodeRateLimited)
	assert.Contains(t, err.Error(), "Daily vote limit of 50 reached")
	f.assertScoreMatchesVotes(t, models.VotableTopic, topics[50].ID)

	res, err := f.vote(t, voter.ID, models.VotableTopic, topics[0].ID, models.DirectionUp)
	require.NoError(t, err, "toggle-off is allowed at the limit")
	assert.Equal(t, models.TransitionRemoved, res.Transition)
	assert.Equal(t, 0, res.QuotaRemaining)

	count, err := f.mr.Get(cache.DailyVotesKey(voter.ID))
	require.NoError(t, err)
	assert.Equal(t, "50", count)
	assert.Greater(t, int64(f.mr.TTL(cache.DailyVotesKey(voter.ID))), int64(0))
}

func TestVoteService_ToggleOffDoesNotConsumeQuota(t *testing.T) {
	f := newForum(t, withVoteLimit(2))
	author := f.user(t, "author")
	voter := f.user(t, "voter")
	a := f.question(t, author.ID, "a")
	b := f.question(t, author.ID, "b")

	_, err := f.vote(t, voter.ID, models.VotableTopic, a.ID, models.DirectionUp)
	require.NoError(t, err)
	res, err := f.vote(t, voter.ID, models.VotableTopic, a.ID, models.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, 1, res.QuotaRemaining)

	res, err = f.vote(t, voter.ID, models.VotableTopic, b.ID, models.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, 0, res.QuotaRemaining)
}

func TestVoteService_QuotaStoreUnavailable(t *testing.T) {
	t.Run("fail open", func(t *testing.T) {
		f := newForum(t, func(f *forum) { f.quota = NewVoteQuota(nil, 50, false) })
		author := f.user(t, "author")
		voter := f.user(t, "voter")
		topic := f.question(t, author.ID, "open")

		res, err := f.vote(t, voter.ID, models.VotableTopic, topic.ID, models.DirectionUp)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Score)
	})

	t.Run("fail closed", func(t *testing.T) {
		f := newForum(t, func(f *forum) { f.quota = NewVoteQuota(nil, 50, true) })
		author := f.user(t, "author")
		voter := f.user(t, "voter")
		topic := f.question(t, author.ID, "closed")

		_, err := f.vote(t, voter.ID, models.VotableTopic, topic.ID, models.DirectionUp)
		assertCode(t, err, models.CodeUnavailable)
		f.assertScoreMatchesVotes(t, models.VotableTopic, topic.ID)
	})
}

func TestVoteService_ConcurrentVotesKeepScoreConsistent(t *testing.T) {
	f := newForum(t)
	author := f.user(t, "author")
	topic := f.question(t, author.ID, "busy")

	voters := make([]*models.User, 10)
	for i := range voters {
		voters[i] = f.user(t, "voter"+strconv.Itoa(i))
	}

	var wg sync.WaitGroup
	for _, v := range voters {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := f.voting.CastVote(context.Background(), CastVoteInput{
				VoterID: id, VotableType: models.VotableTopic, VotableID: topic.ID, Direction: models.DirectionUp,
			})
			assert.NoError(t, err)
		}(v.ID)
	}
	wg.Wait()

	f.assertScoreMatchesVotes(t, models.VotableTopic, topic.ID)
	votable, err := f.votes.GetVotable(t.Context(), models.VotableTopic, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, len(voters), votable.Score)
}

// flakyVotes fails the first failures transactions with a serialization error after
// the work inside them has run.
type flakyVotes struct {
	repository.VoteRepository
	failures int
	calls    int
}

func (r *flakyVotes) Transaction(ctx context.Context, fn func(tx repository.VoteRepository) error) error {
	r.calls++
	call := r.calls
	return r.VoteRepository.Transaction(ctx, func(tx repository.VoteRepository) error {
		if err := fn(tx); err != nil {
			return err
		}
		if call <= r.failures {
			return &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
		}
		return nil
	})
}

func useZeroConflictBackOff(t *testing.T) {
	prev := conflictBackOff
	conflictBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	t.Cleanup(func() { conflictBackOff = prev })
}

func TestVoteService_ConflictRetry(t *testing.T) {
	useZeroConflictBackOff(t)

	t.Run("retried attempt charges quota once", func(t *testing.T) {
		f := newForum(t)
		flaky := &flakyVotes{VoteRepository: f.votes, failures: 2}
		f.voting.votes = flaky
		author := f.user(t, "author")
		voter := f.user(t, "voter")
		topic := f.question(t, author.ID, "retry")

		res, err := f.vote(t, voter.ID, models.VotableTopic, topic.ID, models.DirectionUp)
		require.NoError(t, err)
		assert.Equal(t, 3, flaky.calls)
		assert.Equal(t, 1, res.Score)
		assert.Equal(t, 49, res.QuotaRemaining)
		f.assertScoreMatchesVotes(t, models.VotableTopic, topic.ID)
		assert.Equal(t, models.PointsTopicCreated+models.PointsUpvoteReceived, f.reputationOf(t, author.ID).RawTotal)
	})

	t.Run("exhausted retries report conflict and refund quota", func(t *testing.T) {
		f := newForum(t)
		flaky := &flakyVotes{VoteRepository: f.votes, failures: 10}
		f.voting.votes = flaky
		author := f.user(t, "author")
		voter := f.user(t, "voter")
		topic := f.question(t, author.ID, "conflict")

		_, err := f.vote(t, voter.ID, models.VotableTopic, topic.ID, models.DirectionUp)
		assertCode(t, err, models.CodeConflict)
		assert.Equal(t, maxConflictRetries+1, flaky.calls)
		f.assertScoreMatchesVotes(t, models.VotableTopic, topic.ID)

		remaining, err := f.quota.Remaining(t.Context(), voter.ID)
		require.NoError(t, err)
		assert.Equal(t, 50, remaining)
	})
}

func TestVoteService_GetUserVotes(t *testing.T) {
	f := newForum(t)
	author := f.user(t, "author")
	voter := f.user(t, "voter")
	topic := f.question(t, author.ID, "votes")
	reply := f.reply(t, author.ID, topic.ID, nil)

	_, err := f.vote(t, voter.ID, models.VotableTopic, topic.ID, models.DirectionUp)
	require.NoError(t, err)
	_, err = f.vote(t, voter.ID, models.VotableReply, reply.ID, models.DirectionUp)
	require.NoError(t, err)

	all, err := f.voting.GetUserVotes(t.Context(), voter.ID, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		models.VoteKey(models.VotableTopic, topic.ID): 1,
		models.VoteKey(models.VotableReply, reply.ID): 1,
	}, all)

	replies, err := f.voting.GetUserVotes(t.Context(), voter.ID, models.VotableReply)
	require.NoError(t, err)
	assert.Len(t, replies, 1)

	_, err = f.voting.GetUserVotes(t.Context(), voter.ID, "bogus")
	assertCode(t, err, models.CodeValidation)
}

func TestVoteService_InvalidatesTopicCache(t *testing.T) {
	f := newForum(t)
	author := f.user(t, "author")
	voter := f.user(t, "voter")
	topic := f.question(t, author.ID, "cached")

	_, err := f.topicSvc.GetTopic(t.Context(), topic.ID, 0)
	require.NoError(t, err)
	require.True(t, f.mr.Exists(cache.TopicKey(topic.ID)))

	_, err = f.vote(t, voter.ID, models.VotableTopic, topic.ID, models.DirectionUp)
	require.NoError(t, err)
	assert.False(t, f.mr.Exists(cache.TopicKey(topic.ID)))

	got, err := f.topicSvc.GetTopic(t.Context(), topic.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Score)
}
