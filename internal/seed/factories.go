// Package seed provides helpers to create demo data for the forum database. These
// helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var categories = []uint{1, 2, 3, 4, 5}

var tagPool = []string{
	"go", "postgres", "redis", "kubernetes", "docker", "testing", "performance",
	"security", "api", "frontend", "career", "tooling", "concurrency", "linux",
}

// Factory builds forum entities. Users are inserted directly; topics and replies are
// returned as service inputs so reputation flows through the normal write path.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(seed))}
}

// CreateUser constructs and persists a sample user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(1000, 9999)),
		Role:     models.RoleMember,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildTopic returns a topic input for author. Roughly half are questions.
func (f *Factory) BuildTopic(author *models.User) service.CreateTopicInput {
	kind := models.TopicTypeDiscussion
	title := gofakeit.Sentence(6)
	if f.rng.Float32() < f.opts.questionRatio() {
		kind = models.TopicTypeQuestion
		title = gofakeit.Question()
	}

	tags := make([]string, 0, 3)
	for i := f.rng.Intn(4); i > 0; i-- {
		tags = append(tags, tagPool[f.rng.Intn(len(tagPool))])
	}

	return service.CreateTopicInput{
		AuthorID:   author.ID,
		CategoryID: categories[f.rng.Intn(len(categories))],
		Title:      title,
		Content:    gofakeit.Paragraph(1, 3, 8, "\n"),
		Type:       kind,
		Tags:       tags,
	}
}

// BuildReply returns a reply input. parent may be nil for a top-level reply.
func (f *Factory) BuildReply(author *models.User, topicID uint, parent *models.Reply) service.CreateReplyInput {
	in := service.CreateReplyInput{
		AuthorID: author.ID,
		TopicID:  topicID,
		Content:  gofakeit.Paragraph(1, 2, 10, "\n"),
	}
	if parent != nil && parent.Depth < 3 {
		in.ParentReplyID = &parent.ID
	}
	return in
}

// Backdate spreads a topic's creation time over the last MaxDays days.
func (f *Factory) Backdate(topic *models.Topic) error {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	createdAt := time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
	topic.CreatedAt = createdAt
	return f.db.Model(&models.Topic{}).Where("id = ?", topic.ID).Update("created_at", createdAt).Error
}

// Pick returns a random user other than exclude, or nil if there is none.
func (f *Factory) Pick(users []*models.User, exclude uint) *models.User {
	if len(users) < 2 {
		return nil
	}
	for {
		u := users[f.rng.Intn(len(users))]
		if u.ID != exclude {
			return u
		}
	}
}

// Chance reports true with probability p.
func (f *Factory) Chance(p float32) bool {
	return f.rng.Float32() < p
}
