package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// VoteTransitions counts committed vote mutations by kind and transition.
	VoteTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_vote_transitions_total",
		Help: "Committed vote mutations by votable kind and transition (created, removed, flipped)",
	}, []string{"votable_type", "transition"})

	// VoteRejections counts rejected vote attempts by reason code.
	VoteRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_vote_rejections_total",
		Help: "Rejected vote attempts by error code",
	}, []string{"code"})

	// VoteConflictRetries counts transaction retries caused by storage conflicts.
	VoteConflictRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forum_vote_conflict_retries_total",
		Help: "Vote transactions retried after a transient storage conflict",
	})

	// VoteQuotaUnavailable counts quota checks that hit an unavailable store.
	VoteQuotaUnavailable = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_vote_quota_unavailable_total",
		Help: "Vote quota checks that could not reach Redis, by applied policy",
	}, []string{"policy"})

	// ReputationEvents counts applied reputation events by type.
	ReputationEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_reputation_events_total",
		Help: "Reputation events appended to the ledger by event type",
	}, []string{"event_type"})

	// ReputationApplyFailures counts failed reputation writes by stage (sync, retry, dropped).
	ReputationApplyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_reputation_apply_failures_total",
		Help: "Reputation event writes that failed, by stage",
	}, []string{"stage"})

	// UnansweredCacheLookups counts unanswered-queue cache lookups by result.
	UnansweredCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_unanswered_cache_lookups_total",
		Help: "Unanswered queue cache lookups by result (hit, miss, error)",
	}, []string{"result"})

	// UnansweredCacheInvalidations counts proactive unanswered-queue invalidations.
	UnansweredCacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_unanswered_cache_invalidations_total",
		Help: "Proactive unanswered queue invalidations by trigger",
	}, []string{"reason"})
)
