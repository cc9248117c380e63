package database

import "github.com/AlexBaum-ai/NEURM-sub006/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Topic{},
		&models.TopicTag{},
		&models.Reply{},
		&models.ReplyEdit{},
		&models.Vote{},
		&models.ReputationEvent{},
		&models.UserReputation{},
	}
}
