package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amazongreen/storefront/internal/errs"
	"github.com/amazongreen/storefront/internal/models"
)

// UserRepository handles user-related database operations.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. A duplicate email or phone yields ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.E(errs.Conflict, "users.Create", errs.ErrEmailTaken)
		}
		return errs.E(errs.Persistence, "users.Create", fmt.Errorf("failed to create user: %w", err))
	}
	return nil
}

// ExistsByEmailOrPhone reports whether a user already uses the email or phone.
func (r *UserRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR phone = ?", email, phone).
		Count(&count).Error
	if err != nil {
		return false, errs.E(errs.Persistence, "users.ExistsByEmailOrPhone", err)
	}
	return count > 0, nil
}

// GetByID retrieves a user profile without associations.
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(fmt.Sprintf("users.GetByID(%d)", id), err, errs.ErrUserNotFound)
	}
	return &user, nil
}

// GetByEmail retrieves a user by (already case-folded) email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate("users.GetByEmail", err, errs.ErrUserNotFound)
	}
	return &user, nil
}

// GetDocument retrieves a user with cart, orders, joined challenges and badges.
func (r *UserRepository) GetDocument(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Cart", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("placed_at ASC, id ASC") }).
		Preload("Orders.Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("CurrentChallenges", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Badges", func(db *gorm.DB) *gorm.DB { return db.Order("date_earned ASC, id ASC") }).
		First(&user, id).Error
	if err != nil {
		return nil, translate(fmt.Sprintf("users.GetDocument(%d)", id), err, errs.ErrUserNotFound)
	}
	return &user, nil
}

// SaveDocument persists the whole user document in one transaction: profile
// and aggregates, the cart, new orders, the joined set and new badges. Either
// everything is written or nothing is.
func (r *UserRepository) SaveDocument(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(user).Error; err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}
		if err := replaceCart(tx, user); err != nil {
			return err
		}

		for i := range user.Orders {
			if user.Orders[i].ID != 0 {
				continue
			}
			user.Orders[i].UserID = user.ID
			user.Orders[i].PlacedAt = user.Orders[i].PlacedAt.UTC()
			if err := tx.Create(&user.Orders[i]).Error; err != nil {
				return fmt.Errorf("failed to append order: %w", err)
			}
		}

		if err := syncJoined(tx, user); err != nil {
			return err
		}

		for i := range user.Badges {
			if user.Badges[i].ID != 0 {
				continue
			}
			user.Badges[i].UserID = user.ID
			user.Badges[i].DateEarned = user.Badges[i].DateEarned.UTC()
			if err := tx.Create(&user.Badges[i]).Error; err != nil {
				return fmt.Errorf("failed to award badge for challenge %d: %w", user.Badges[i].ChallengeID, err)
			}
		}
		return nil
	})
	if err != nil {
		return errs.E(errs.Persistence, fmt.Sprintf("users.SaveDocument(%d)", user.ID), err)
	}
	return nil
}

// SaveCart replaces the stored cart with user.Cart.
func (r *UserRepository) SaveCart(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceCart(tx, user)
	})
	if err != nil {
		return errs.E(errs.Persistence, fmt.Sprintf("users.SaveCart(%d)", user.ID), err)
	}
	return nil
}

// SaveJoined replaces the stored joined set with user.CurrentChallenges.
func (r *UserRepository) SaveJoined(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return syncJoined(tx, user)
	})
	if err != nil {
		return errs.E(errs.Persistence, fmt.Sprintf("users.SaveJoined(%d)", user.ID), err)
	}
	return nil
}

func replaceCart(tx *gorm.DB, user *models.User) error {
	if err := tx.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	if len(user.Cart) == 0 {
		return nil
	}
	for i := range user.Cart {
		user.Cart[i].ID = 0
		user.Cart[i].UserID = user.ID
	}
	if err := tx.Create(&user.Cart).Error; err != nil {
		return fmt.Errorf("failed to write cart: %w", err)
	}
	return nil
}

func syncJoined(tx *gorm.DB, user *models.User) error {
	ids := make([]uint, 0, len(user.CurrentChallenges))
	for _, uc := range user.CurrentChallenges {
		ids = append(ids, uc.ChallengeID)
	}

	del := tx.Where("user_id = ?", user.ID)
	if len(ids) > 0 {
		del = del.Where("challenge_id NOT IN ?", ids)
	}
	if err := del.Delete(&models.UserChallenge{}).Error; err != nil {
		return fmt.Errorf("failed to prune joined challenges: %w", err)
	}

	for i := range user.CurrentChallenges {
		if user.CurrentChallenges[i].ID != 0 {
			continue
		}
		user.CurrentChallenges[i].UserID = user.ID
		if err := tx.Create(&user.CurrentChallenges[i]).Error; err != nil {
			return fmt.Errorf("failed to join challenge %d: %w", user.CurrentChallenges[i].ChallengeID, err)
		}
	}
	return nil
}

// GetOrders returns a user's orders with items, newest first.
func (r *UserRepository) GetOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("placed_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, errs.E(errs.Persistence, "users.GetOrders", err)
	}
	return orders, nil
}

// GetOrder returns one of a user's orders.
func (r *UserRepository) GetOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&order, orderID).Error
	if err != nil {
		return nil, translate(fmt.Sprintf("users.GetOrder(%d)", orderID), err, errs.ErrOrderNotFound)
	}
	return &order, nil
}

// Standing is a user's leaderboard row.
type Standing struct {
	UserID      uint
	Name        string
	EcoScore    float64
	CarbonSaved float64
	MoneySaved  float64
	BadgeCount  int
}

// ListStandings returns aggregates and badge counts for every user.
func (r *UserRepository) ListStandings(ctx context.Context) ([]Standing, error) {
	var rows []Standing
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id AS user_id, users.name, users.eco_score, users.carbon_saved, users.money_saved, COUNT(user_badges.id) AS badge_count").
		Joins("LEFT JOIN user_badges ON user_badges.user_id = users.id").
		Group("users.id, users.name, users.eco_score, users.carbon_saved, users.money_saved").
		Scan(&rows).Error
	if err != nil {
		return nil, errs.E(errs.Persistence, "users.ListStandings", err)
	}
	return rows, nil
}
