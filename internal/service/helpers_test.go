package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/cache"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/database"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/featureflags"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/notifications"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// forum wires every service over SQLite and miniredis.
type forum struct {
	db  *gorm.DB
	mr  *miniredis.Miniredis
	rdb *redis.Client

	users   repository.UserRepository
	topics  repository.TopicRepository
	replies repository.ReplyRepository
	votes   repository.VoteRepository
	repRepo repository.ReputationRepository

	store      *cache.Store
	quota      *VoteQuota
	reputation *ReputationService
	access     *AccessPolicy
	voting     *VoteService
	threads    *ThreadService
	unanswered *UnansweredService
	topicSvc   *TopicService

	clock time.Time
}

type forumOption func(*forum)

func withVoteLimit(n int) forumOption {
	return func(f *forum) { f.quota = NewVoteQuota(f.rdb, n, false) }
}

func newForum(t *testing.T, opts ...forumOption) *forum {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := newTestDB(t)
	f := &forum{
		db:      db,
		mr:      mr,
		rdb:     rdb,
		users:   repository.NewUserRepository(db),
		topics:  repository.NewTopicRepository(db),
		replies: repository.NewReplyRepository(db),
		votes:   repository.NewVoteRepository(db),
		repRepo: repository.NewReputationRepository(db),
		store:   cache.NewStore(rdb),
		clock:   time.Now(),
	}
	f.quota = NewVoteQuota(rdb, DefaultDailyVoteLimit, false)
	for _, opt := range opts {
		opt(f)
	}

	flags := featureflags.NewManager("")
	notifier := notifications.NewNotifier(rdb)

	f.reputation = NewReputationService(f.repRepo)
	f.access = NewAccessPolicy(f.users, f.reputation)
	f.unanswered = NewUnansweredService(f.topics, f.store, 0)
	f.voting = NewVoteService(VoteServiceDeps{
		Votes:      f.votes,
		Quota:      f.quota,
		Reputation: f.reputation,
		Access:     f.access,
		Cache:      f.store,
		Notifier:   notifier,
		Flags:      flags,
	})
	f.threads = NewThreadService(ThreadServiceDeps{
		Replies:    f.replies,
		Topics:     f.topics,
		Reputation: f.reputation,
		Access:     f.access,
		Cache:      f.store,
		Notifier:   notifier,
		Flags:      flags,
		Now:        func() time.Time { return f.clock },
	})
	f.topicSvc = NewTopicService(TopicServiceDeps{
		Topics:     f.topics,
		Replies:    f.replies,
		Reputation: f.reputation,
		Access:     f.access,
		Unanswered: f.unanswered,
		Cache:      f.store,
		Notifier:   notifier,
		Flags:      flags,
	})
	return f
}

func (f *forum) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name}
	require.NoError(t, f.users.Create(t.Context(), u))
	return u
}

func (f *forum) staff(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Role: models.RoleModerator}
	require.NoError(t, f.users.Create(t.Context(), u))
	return u
}

// setReputation overwrites the user's running total.
func (f *forum) setReputation(t *testing.T, userID uint, raw int) {
	t.Helper()
	require.NoError(t, f.db.Save(&models.UserReputation{UserID: userID, RawTotal: raw}).Error)
}

func (f *forum) question(t *testing.T, authorID uint, title string) *models.Topic {
	t.Helper()
	topic, err := f.topicSvc.CreateTopic(t.Context(), CreateTopicInput{
		AuthorID:   authorID,
		CategoryID: 1,
		Title:      title,
		Content:    "What is the idiomatic way?",
		Type:       models.TopicTypeQuestion,
	})
	require.NoError(t, err)
	return topic
}

func (f *forum) reply(t *testing.T, authorID, topicID uint, parent *uint) *models.Reply {
	t.Helper()
	reply, err := f.threads.CreateReply(t.Context(), CreateReplyInput{
		AuthorID:      authorID,
		TopicID:       topicID,
		ParentReplyID: parent,
		Content:       "Here is how.",
	})
	require.NoError(t, err)
	return reply
}

func (f *forum) reputationOf(t *testing.T, userID uint) models.Reputation {
	t.Helper()
	rep, err := f.reputation.GetReputation(t.Context(), userID)
	require.NoError(t, err)
	return rep
}

func (f *forum) vote(t *testing.T, voterID uint, kind models.VotableType, id uint, dir models.Direction) (*models.VoteResult, error) {
	t.Helper()
	return f.voting.CastVote(t.Context(), CastVoteInput{VoterID: voterID, VotableType: kind, VotableID: id, Direction: dir})
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, models.ErrorCode(err), "unexpected error: %v", err)
}
