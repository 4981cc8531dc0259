package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/amazongreen/storefront/internal/errs"
	"github.com/amazongreen/storefront/internal/models"
)

// ChallengeRepository handles challenge catalog operations.
type ChallengeRepository struct {
	db *DB
}

// NewChallengeRepository creates a new challenge repository.
func NewChallengeRepository(db *DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// Create inserts a challenge. Period bounds are stored in UTC.
func (r *ChallengeRepository) Create(ctx context.Context, challenge *models.Challenge) error {
	challenge.StartDate = challenge.StartDate.UTC()
	challenge.EndDate = challenge.EndDate.UTC()
	if err := r.db.WithContext(ctx).Create(challenge).Error; err != nil {
		return errs.E(errs.Persistence, "challenges.Create", err)
	}
	return nil
}

// GetByID retrieves a challenge by its ID, active or not.
func (r *ChallengeRepository) GetByID(ctx context.Context, id uint) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.WithContext(ctx).First(&challenge, id).Error; err != nil {
		return nil, translate(fmt.Sprintf("challenges.GetByID(%d)", id), err, errs.ErrChallengeNotFound)
	}
	return &challenge, nil
}

// GetActive returns every active challenge, oldest first.
func (r *ChallengeRepository) GetActive(ctx context.Context) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("start_date ASC, id ASC").
		Find(&challenges).Error
	if err != nil {
		return nil, errs.E(errs.Persistence, "challenges.GetActive", err)
	}
	return challenges, nil
}

// GetAll returns the full catalog including retired challenges.
func (r *ChallengeRepository) GetAll(ctx context.Context) ([]models.Challenge, error) {
	var challenges []models.Challenge
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&challenges).Error; err != nil {
		return nil, errs.E(errs.Persistence, "challenges.GetAll", err)
	}
	return challenges, nil
}

// FindByPeriod returns the challenge for a frequency and exact period, or nil.
func (r *ChallengeRepository) FindByPeriod(ctx context.Context, frequency models.Frequency, start, end time.Time) (*models.Challenge, error) {
	var challenges []models.Challenge
	err := r.db.WithContext(ctx).
		Where("frequency = ? AND start_date = ? AND end_date = ?", frequency, start.UTC(), end.UTC()).
		Limit(1).
		Find(&challenges).Error
	if err != nil {
		return nil, errs.E(errs.Persistence, "challenges.FindByPeriod", err)
	}
	if len(challenges) == 0 {
		return nil, nil
	}
	return &challenges[0], nil
}

// RetireExpired deactivates active challenges whose period ended at or before
// now and removes them from every joined set, keeping joined ids pointed at
// active challenges. It returns the retired challenge ids.
func (r *ChallengeRepository) RetireExpired(ctx context.Context, now time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Challenge{}).
			Where("is_active = ? AND end_date <= ?", true, now.UTC()).
			Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("failed to find expired challenges: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Model(&models.Challenge{}).
			Where("id IN ?", ids).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate challenges: %w", err)
		}
		if err := tx.Where("challenge_id IN ?", ids).
			Delete(&models.UserChallenge{}).Error; err != nil {
			return fmt.Errorf("failed to release joined challenges: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, errs.E(errs.Persistence, "challenges.RetireExpired", err)
	}
	return ids, nil
}
