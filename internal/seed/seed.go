package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/cache"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/database"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/featureflags"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/middleware"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/notifications"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/repository"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/service"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers        int
	NumTopics       int
	RepliesPerTopic int
	VotesPerUser    int
	// QuestionRatio is the share of topics created as questions. Zero means 0.5.
	QuestionRatio float32
	// AcceptRatio is the share of answered questions that get an accepted reply.
	AcceptRatio float32
	MaxDays     int
	RandSeed    int64
}

func (o Options) questionRatio() float32 {
	if o.QuestionRatio <= 0 {
		return 0.5
	}
	return o.QuestionRatio
}

// Summary counts what a run produced.
type Summary struct {
	Users    int
	Topics   int
	Replies  int
	Votes    int
	Accepted int
	Skipped  int
}

// Seeder drives the forum services to populate a database, so every seeded vote,
// reply and acceptance leaves a consistent reputation ledger.
type Seeder struct {
	db         *gorm.DB
	opts       Options
	factory    *Factory
	reputation *service.ReputationService
	votes      *service.VoteService
	threads    *service.ThreadService
	topics     *service.TopicService
}

// NewSeeder wires services over db without Redis.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	userRepo := repository.NewUserRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	replyRepo := repository.NewReplyRepository(db)

	store := cache.NewStore(nil)
	flags := featureflags.NewManager("")
	notifier := notifications.NewNotifier(nil)
	reputation := service.NewReputationService(repository.NewReputationRepository(db)).WithUsers(userRepo)
	access := service.NewAccessPolicy(userRepo, reputation)

	return &Seeder{
		db:         db,
		opts:       opts,
		factory:    NewFactory(db, opts),
		reputation: reputation,
		votes: service.NewVoteService(service.VoteServiceDeps{
			Votes:      repository.NewVoteRepository(db),
			Quota:      service.NewVoteQuota(nil, service.DefaultDailyVoteLimit, false),
			Reputation: reputation,
			Access:     access,
			Cache:      store,
			Notifier:   notifier,
			Flags:      flags,
		}),
		threads: service.NewThreadService(service.ThreadServiceDeps{
			Replies:    replyRepo,
			Topics:     topicRepo,
			Reputation: reputation,
			Access:     access,
			Cache:      store,
			Notifier:   notifier,
			Flags:      flags,
		}),
		topics: service.NewTopicService(service.TopicServiceDeps{
			Topics:     topicRepo,
			Replies:    replyRepo,
			Reputation: reputation,
			Access:     access,
			Cache:      store,
			Notifier:   notifier,
			Flags:      flags,
		}),
	}
}

// ClearAll deletes every forum row, children first.
func (s *Seeder) ClearAll() error {
	middleware.Logger.Info("clearing existing forum data")
	persistent := database.PersistentModels()
	for i := len(persistent) - 1; i >= 0; i-- {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(persistent[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", persistent[i], err)
		}
	}
	return nil
}

// Run creates users, topics, threaded replies, votes and accepted answers.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	s.reputation.Start()
	defer s.reputation.Close()

	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		u, err := s.factory.CreateUser()
		if err != nil {
			return sum, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	if len(users) < 2 {
		return sum, fmt.Errorf("at least 2 users are required, got %d", len(users))
	}
	middleware.Logger.Info("seeded users", slog.Int("count", sum.Users))

	var allReplies []*models.Reply
	var topics []*models.Topic
	for i := 0; i < s.opts.NumTopics; i++ {
		author := users[i%len(users)]
		topic, err := s.topics.CreateTopic(ctx, s.factory.BuildTopic(author))
		if err != nil {
			return sum, fmt.Errorf("create topic: %w", err)
		}
		if err := s.factory.Backdate(topic); err != nil {
			return sum, fmt.Errorf("backdate topic %d: %w", topic.ID, err)
		}
		topics = append(topics, topic)

		replies, err := s.seedThread(ctx, topic, users)
		if err != nil {
			return sum, err
		}
		sum.Replies += len(replies)
		allReplies = append(allReplies, replies...)

		if topic.IsQuestion() && len(replies) > 0 && s.factory.Chance(s.opts.AcceptRatio) {
			answer := replies[0]
			if _, err := s.topics.AcceptAnswer(ctx, topic.AuthorID, topic.ID, answer.ID); err != nil {
				return sum, fmt.Errorf("accept answer on topic %d: %w", topic.ID, err)
			}
			sum.Accepted++
		}
	}
	sum.Topics = len(topics)
	middleware.Logger.Info("seeded topics", slog.Int("topics", sum.Topics), slog.Int("replies", sum.Replies))

	for _, voter := range users {
		for v := 0; v < s.opts.VotesPerUser; v++ {
			in := s.buildVote(voter, topics, allReplies)
			if in.VotableID == 0 {
				continue
			}
			if _, err := s.votes.CastVote(ctx, in); err != nil {
				// Self-votes and downvotes below the threshold are expected rejections.
				if models.IsCode(err, models.CodeForbidden) || models.IsCode(err, models.CodeRateLimited) {
					sum.Skipped++
					continue
				}
				return sum, fmt.Errorf("cast vote: %w", err)
			}
			sum.Votes++
		}
	}
	middleware.Logger.Info("seeded votes", slog.Int("votes", sum.Votes), slog.Int("skipped", sum.Skipped))
	return sum, nil
}

func (s *Seeder) seedThread(ctx context.Context, topic *models.Topic, users []*models.User) ([]*models.Reply, error) {
	replies := make([]*models.Reply, 0, s.opts.RepliesPerTopic)
	for r := 0; r < s.opts.RepliesPerTopic; r++ {
		author := s.factory.Pick(users, topic.AuthorID)
		var parent *models.Reply
		if len(replies) > 0 && s.factory.Chance(0.4) {
			parent = replies[len(replies)-1]
		}
		reply, err := s.threads.CreateReply(ctx, s.factory.BuildReply(author, topic.ID, parent))
		if err != nil {
			return nil, fmt.Errorf("create reply on topic %d: %w", topic.ID, err)
		}
		replies = append(replies, reply)
	}
	return replies, nil
}

func (s *Seeder) buildVote(voter *models.User, topics []*models.Topic, replies []*models.Reply) service.CastVoteInput {
	in := service.CastVoteInput{VoterID: voter.ID, Direction: models.DirectionUp}
	if s.factory.Chance(0.15) {
		in.Direction = models.DirectionDown
	}
	if len(replies) > 0 && s.factory.Chance(0.6) {
		reply := replies[s.factory.rng.Intn(len(replies))]
		in.VotableType, in.VotableID = models.VotableReply, reply.ID
		return in
	}
	if len(topics) > 0 {
		topic := topics[s.factory.rng.Intn(len(topics))]
		in.VotableType, in.VotableID = models.VotableTopic, topic.ID
	}
	return in
}
