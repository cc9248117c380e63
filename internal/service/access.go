// Package service implements the forum engine's business rules on top of the
// repositories and the Redis cache.
package service

import (
	"context"

	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/repository"
)

// AccessPolicy answers permission questions from the caller's role and reputation.
type AccessPolicy struct {
	users      repository.UserRepository
	reputation *ReputationService
}

// NewAccessPolicy builds an AccessPolicy.
func NewAccessPolicy(users repository.UserRepository, reputation *ReputationService) *AccessPolicy {
	return &AccessPolicy{users: users, reputation: reputation}
}

// Reputation returns the caller's current reputation read model.
func (p *AccessPolicy) Reputation(ctx context.Context, userID uint) (models.Reputation, error) {
	return p.reputation.GetReputation(ctx, userID)
}

// CanModerate reports whether the user holds a staff role or enough reputation to
// moderate. Unknown users are treated as members.
func (p *AccessPolicy) CanModerate(ctx context.Context, userID uint) (bool, error) {
	if p.users != nil {
		user, err := p.users.GetByID(ctx, userID)
		switch {
		case err == nil && user.IsStaff():
			return true, nil
		case err != nil && !models.IsCode(err, models.CodeNotFound):
			return false, err
		}
	}
	rep, err := p.reputation.GetReputation(ctx, userID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return false, nil
		}
		return false, err
	}
	return rep.Permissions.CanModerate, nil
}
