package repository

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/database"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// newTestDB opens a private in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%d?mode=memory&cache=shared", dbSeq.Add(1))
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

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Role: role}
	require.NoError(t, NewUserRepository(db).Create(t.Context(), u))
	return u
}

func seedTopic(t *testing.T, db *gorm.DB, topic *models.Topic) *models.Topic {
	t.Helper()
	if topic.Title == "" {
		topic.Title = "How do I test this?"
	}
	if topic.Content == "" {
		topic.Content = "body"
	}
	if topic.Status == "" {
		topic.Status = models.TopicStatusOpen
	}
	if topic.Type == "" {
		topic.Type = models.TopicTypeQuestion
	}
	require.NoError(t, NewTopicRepository(db).Create(t.Context(), topic))
	return topic
}
