// Package repository provides data access layer for the application.
package repository

import (
	"context"
	"time"

	"github.com/amazongreen/storefront/internal/errs"
	"github.com/amazongreen/storefront/internal/models"
)

// BadgeRepository handles queries over earned challenge badges.
type BadgeRepository struct {
	db *DB
}

// NewBadgeRepository creates a new badge repository.
func NewBadgeRepository(db *DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// GetUserBadges retrieves all badges earned by a user, newest first.
func (r *BadgeRepository) GetUserBadges(ctx context.Context, userID uint) ([]models.UserBadge, error) {
	var userBadges []models.UserBadge
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date_earned DESC, id DESC").
		Find(&userBadges).Error
	if err != nil {
		return nil, errs.E(errs.Persistence, "badges.GetUserBadges", err)
	}
	return userBadges, nil
}

// HasUserEarnedBadge checks if a user already holds the badge for a challenge.
func (r *BadgeRepository) HasUserEarnedBadge(ctx context.Context, userID, challengeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserBadge{}).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Count(&count).Error
	if err != nil {
		return false, errs.E(errs.Persistence, "badges.HasUserEarnedBadge", err)
	}
	return count > 0, nil
}

// GetUsersWithBadge retrieves all users who completed a specific challenge.
func (r *BadgeRepository) GetUsersWithBadge(ctx context.Context, challengeID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN user_badges ON user_badges.user_id = users.id").
		Where("user_badges.challenge_id = ?", challengeID).
		Order("user_badges.date_earned ASC").
		Find(&users).Error
	if err != nil {
		return nil, errs.E(errs.Persistence, "badges.GetUsersWithBadge", err)
	}
	return users, nil
}

// GetBadgeHoldersCount returns the number of users who completed a challenge.
func (r *BadgeRepository) GetBadgeHoldersCount(ctx context.Context, challengeID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserBadge{}).
		Where("challenge_id = ?", challengeID).
		Count(&count).Error
	if err != nil {
		return 0, errs.E(errs.Persistence, "badges.GetBadgeHoldersCount", err)
	}
	return count, nil
}

// GetUserBadgeCount returns the total number of badges a user has earned.
func (r *BadgeRepository) GetUserBadgeCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserBadge{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, errs.E(errs.Persistence, "badges.GetUserBadgeCount", err)
	}
	return count, nil
}

// GetRecentlyAwardedBadges retrieves badges awarded since a point in time.
func (r *BadgeRepository) GetRecentlyAwardedBadges(ctx context.Context, since time.Time) ([]models.UserBadge, error) {
	var userBadges []models.UserBadge
	err := r.db.WithContext(ctx).
		Where("date_earned >= ?", since.UTC()).
		Order("date_earned DESC, id DESC").
		Find(&userBadges).Error
	if err != nil {
		return nil, errs.E(errs.Persistence, "badges.GetRecentlyAwardedBadges", err)
	}
	return userBadges, nil
}
