package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/cache"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/middleware"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/observability"

	"github.com/redis/go-redis/v9"
)

// DefaultDailyVoteLimit is the number of net-new votes a user may cast per window.
const DefaultDailyVoteLimit = 50

// consumeScript increments the counter, starts the window on the first unit and
// takes the unit back when the limit is exceeded. Returns {allowed, count}.
var consumeScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
if n > tonumber(ARGV[1]) then
	redis.call('DECR', KEYS[1])
	return {0, n - 1}
end
return {1, n}
`)

// releaseScript refunds one unit without going below zero or touching the expiry.
var releaseScript = redis.NewScript(`
local n = tonumber(redis.call('GET', KEYS[1]) or '0')
if n > 0 then
	return redis.call('DECR', KEYS[1])
end
return 0
`)

// QuotaResult is the outcome of a quota check.
type QuotaResult struct {
	Allowed   bool
	Remaining int
	// Degraded is set when the store was unreachable and the fail-open policy applied.
	Degraded bool
}

// VoteQuota bounds net-new votes per user over a rolling window that starts with the
// first vote of the window.
type VoteQuota struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration
	policy middleware.FailPolicy
}

// NewVoteQuota builds a quota over rdb. rdb may be nil, in which case every check
// follows the failure policy.
func NewVoteQuota(rdb redis.Cmdable, limit int, failClosed bool) *VoteQuota {
	if limit <= 0 {
		limit = DefaultDailyVoteLimit
	}
	policy := middleware.FailOpen
	if failClosed {
		policy = middleware.FailClosed
	}
	return &VoteQuota{rdb: rdb, limit: limit, window: cache.DailyVotesTTL, policy: policy}
}

// Limit returns the configured number of votes per window.
func (q *VoteQuota) Limit() int {
	return q.limit
}

// TryConsume takes one unit of the user's quota.
func (q *VoteQuota) TryConsume(ctx context.Context, userID uint) (QuotaResult, error) {
	if q.rdb == nil {
		return q.unavailable(ctx, userID, errNoQuotaStore)
	}

	res, err := consumeScript.Run(ctx, q.rdb, []string{cache.DailyVotesKey(userID)}, q.limit, q.window.Milliseconds()).Int64Slice()
	if err != nil {
		return q.unavailable(ctx, userID, err)
	}
	if len(res) != 2 {
		return q.unavailable(ctx, userID, fmt.Errorf("unexpected quota reply %v", res))
	}

	count := int(res[1])
	return QuotaResult{Allowed: res[0] == 1, Remaining: max(q.limit-count, 0)}, nil
}

// Release refunds one unit after a vote that consumed quota failed to commit.
func (q *VoteQuota) Release(ctx context.Context, userID uint) error {
	if q.rdb == nil {
		return nil
	}
	return releaseScript.Run(ctx, q.rdb, []string{cache.DailyVotesKey(userID)}).Err()
}

// Remaining reports the unused quota without consuming any.
func (q *VoteQuota) Remaining(ctx context.Context, userID uint) (int, error) {
	if q.rdb == nil {
		return q.limit, nil
	}
	n, err := q.rdb.Get(ctx, cache.DailyVotesKey(userID)).Int()
	if errors.Is(err, redis.Nil) {
		return q.limit, nil
	}
	if err != nil {
		return 0, err
	}
	return max(q.limit-n, 0), nil
}

var errNoQuotaStore = errors.New("vote quota store not configured")

func (q *VoteQuota) unavailable(ctx context.Context, userID uint, cause error) (QuotaResult, error) {
	observability.VoteQuotaUnavailable.WithLabelValues(q.policy.String()).Inc()
	middleware.Logger.WarnContext(ctx, "vote quota store unavailable",
		slog.Uint64("voter_id", uint64(userID)),
		slog.String("policy", q.policy.String()),
		slog.String("error", cause.Error()),
	)
	if q.policy == middleware.FailClosed {
		return QuotaResult{}, models.NewUnavailableError("Vote quota is temporarily unavailable", cause)
	}
	return QuotaResult{Allowed: true, Remaining: q.limit, Degraded: true}, nil
}
