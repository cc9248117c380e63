package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/cache"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/featureflags"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/middleware"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/notifications"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/observability"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// VoteService is the vote ledger: one live vote per (voter, votable) and a score that
// always equals the sum of live votes.
type VoteService struct {
	votes      repository.VoteRepository
	quota      *VoteQuota
	reputation *ReputationService
	access     *AccessPolicy
	cache      *cache.Store
	notifier   *notifications.Notifier
	flags      *featureflags.Manager
	newID      func() string
}

// CastVoteInput describes a vote request.
type CastVoteInput struct {
	VoterID     uint
	VotableType models.VotableType
	VotableID   uint
	Direction   models.Direction
}

// VoteServiceDeps groups the collaborators of a VoteService.
type VoteServiceDeps struct {
	Votes      repository.VoteRepository
	Quota      *VoteQuota
	Reputation *ReputationService
	Access     *AccessPolicy
	Cache      *cache.Store
	Notifier   *notifications.Notifier
	Flags      *featureflags.Manager
}

func NewVoteService(deps VoteServiceDeps) *VoteService {
	return &VoteService{
		votes:      deps.Votes,
		quota:      deps.Quota,
		reputation: deps.Reputation,
		access:     deps.Access,
		cache:      deps.Cache,
		notifier:   deps.Notifier,
		flags:      deps.Flags,
		newID:      uuid.NewString,
	}
}

// voteOutcome is what one committed transaction did.
type voteOutcome struct {
	votable    *models.Votable
	transition models.VoteTransition
	prior      int
	value      int
	score      int
	events     []*models.ReputationEvent
}

// CastVote applies an up or down vote. Casting the current direction again removes
// the vote; casting the opposite direction flips it.
func (s *VoteService) CastVote(ctx context.Context, in CastVoteInput) (result *models.VoteResult, err error) {
	ctx, finish := observability.StartServiceSpan(ctx, "VoteService", "CastVote",
		attribute.String("votable.type", string(in.VotableType)),
		attribute.Int64("votable.id", int64(in.VotableID)),
		attribute.String("vote.direction", string(in.Direction)))
	defer func() {
		if code := models.ErrorCode(err); code != "" {
			observability.VoteRejections.WithLabelValues(code).Inc()
		}
		finish(err)
	}()

	if err := validateCastVote(in); err != nil {
		return nil, err
	}

	votable, err := s.votes.GetVotable(ctx, in.VotableType, in.VotableID)
	if err != nil {
		return nil, err
	}
	if votable.OwnerID == in.VoterID {
		return nil, models.NewForbiddenError("You cannot vote on your own content")
	}
	if in.Direction == models.DirectionDown {
		rep, err := s.access.Reputation(ctx, in.VoterID)
		if err != nil {
			return nil, err
		}
		if !rep.Permissions.CanDownvote {
			return nil, models.NewForbiddenError(fmt.Sprintf("Requires %d+ reputation to downvote", models.DownvoteThreshold))
		}
	}

	var (
		consumed  bool
		remaining = -1
		outcome   *voteOutcome
	)
	err = withConflictRetry(ctx, observability.VoteConflictRetries.Inc, func(ctx context.Context) error {
		outcome = nil
		return s.votes.Transaction(ctx, func(tx repository.VoteRepository) error {
			o, rem, took, err := s.applyVote(ctx, tx, in, consumed)
			consumed = consumed || took
			if rem >= 0 {
				remaining = rem
			}
			outcome = o
			return err
		})
	})

	if consumed && (err != nil || outcome == nil || !outcome.transition.ConsumesQuota()) {
		if relErr := s.quota.Release(ctx, in.VoterID); relErr != nil {
			middleware.Logger.WarnContext(ctx, "failed to release vote quota", slog.String("error", relErr.Error()))
		}
	}
	if err != nil {
		return nil, err
	}

	observability.VoteTransitions.WithLabelValues(string(in.VotableType), string(outcome.transition)).Inc()
	s.reputation.Record(ctx, outcome.events...)
	s.afterCommit(ctx, in, outcome)

	if remaining < 0 {
		if remaining, err = s.quota.Remaining(ctx, in.VoterID); err != nil {
			remaining = s.quota.Limit()
		}
	}

	return &models.VoteResult{
		VotableType:    in.VotableType,
		VotableID:      in.VotableID,
		Score:          outcome.score,
		UserVote:       outcome.value,
		Transition:     outcome.transition,
		QuotaRemaining: remaining,
	}, nil
}

// applyVote runs inside the transaction. alreadyConsumed carries quota taken by an
// earlier attempt of the same request so retries never charge twice.
func (s *VoteService) applyVote(ctx context.Context, tx repository.VoteRepository, in CastVoteInput, alreadyConsumed bool) (*voteOutcome, int, bool, error) {
	votable, err := tx.LockVotable(ctx, in.VotableType, in.VotableID)
	if err != nil {
		return nil, -1, false, err
	}
	existing, err := tx.Get(ctx, in.VoterID, in.VotableType, in.VotableID)
	if err != nil {
		return nil, -1, false, err
	}

	sign := in.Direction.Sign()
	o := &voteOutcome{votable: votable}
	switch {
	case existing == nil:
		o.transition, o.value = models.TransitionCreated, sign
	case existing.Value == sign:
		o.transition, o.prior, o.value = models.TransitionRemoved, existing.Value, 0
	default:
		o.transition, o.prior, o.value = models.TransitionFlipped, existing.Value, sign
	}

	remaining, took := -1, false
	if o.transition.ConsumesQuota() && !alreadyConsumed {
		res, err := s.quota.TryConsume(ctx, in.VoterID)
		if err != nil {
			return nil, -1, false, err
		}
		if !res.Allowed {
			return nil, res.Remaining, false, models.NewRateLimitedError(fmt.Sprintf("Daily vote limit of %d reached", s.quota.Limit()))
		}
		remaining, took = res.Remaining, true
	}

	switch o.transition {
	case models.TransitionCreated:
		err = tx.Create(ctx, &models.Vote{UserID: in.VoterID, VotableType: in.VotableType, VotableID: in.VotableID, Value: sign})
	case models.TransitionRemoved:
		err = tx.Delete(ctx, existing.ID)
	case models.TransitionFlipped:
		err = tx.UpdateValue(ctx, existing.ID, sign)
	}
	if err != nil {
		return nil, remaining, took, err
	}

	o.score, err = tx.AdjustScore(ctx, in.VotableType, in.VotableID, o.value-o.prior)
	if err != nil {
		return nil, remaining, took, err
	}

	transitionID := s.newID()
	refType := string(in.VotableType)
	if o.prior != 0 {
		o.events = append(o.events, NewEvent(votable.OwnerID, models.VoteEventType(o.prior), true, refType, in.VotableID,
			"vote:"+transitionID+":reversal"))
	}
	if o.value != 0 {
		o.events = append(o.events, NewEvent(votable.OwnerID, models.VoteEventType(o.value), false, refType, in.VotableID,
			"vote:"+transitionID+":new"))
	}
	return o, remaining, took, nil
}

func (s *VoteService) afterCommit(ctx context.Context, in CastVoteInput, o *voteOutcome) {
	if err := s.cache.Delete(ctx, cache.TopicKey(o.votable.TopicID)); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to invalidate topic cache", slog.String("error", err.Error()))
	}
	if !s.flags.Enabled(featureflags.VoteEvents, in.VoterID) {
		return
	}
	err := s.notifier.PublishTopic(ctx, o.votable.TopicID, notifications.Event{
		Type:    notifications.EventVoteCast,
		ActorID: in.VoterID,
		Payload: map[string]interface{}{
			"votable_type": in.VotableType,
			"votable_id":   in.VotableID,
			"score":        o.score,
		},
	})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish vote event", slog.String("error", err.Error()))
	}
}

func validateCastVote(in CastVoteInput) error {
	if in.VoterID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	if !in.VotableType.Valid() {
		return models.NewValidationError("votable_type must be topic or reply")
	}
	if in.VotableID == 0 {
		return models.NewValidationError("votable_id is required")
	}
	if !in.Direction.Valid() {
		return models.NewValidationError("direction must be up or down")
	}
	return nil
}

// GetVoteState returns -1, 0 or 1 for the voter's current vote on a votable.
func (s *VoteService) GetVoteState(ctx context.Context, voterID uint, kind models.VotableType, votableID uint) (int, error) {
	if !kind.Valid() {
		return 0, models.NewValidationError("votable_type must be topic or reply")
	}
	vote, err := s.votes.Get(ctx, voterID, kind, votableID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	if vote == nil {
		return 0, nil
	}
	return vote.Value, nil
}

// GetUserVotes maps "<kind>:<id>" to the voter's live vote. kind may be empty.
func (s *VoteService) GetUserVotes(ctx context.Context, voterID uint, kind models.VotableType) (map[string]int, error) {
	if kind != "" && !kind.Valid() {
		return nil, models.NewValidationError("type must be topic or reply")
	}
	votes, err := s.votes.ListByUser(ctx, voterID, kind)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make(map[string]int, len(votes))
	for _, v := range votes {
		out[models.VoteKey(v.VotableType, v.VotableID)] = v.Value
	}
	return out, nil
}
