// Package models defines domain models for the Amazon Green storefront.
package models

import (
	"time"
)

// User is a shopper's full document: profile, cart, order history, running
// sustainability aggregates, joined challenges and earned badges.
type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:255;not null" json:"name"`
	Phone            string    `gorm:"uniqueIndex;not null;size:20" json:"phone"`
	Email            string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash     string    `gorm:"column:password_hash;not null" json:"-"`
	EcoScore         float64   `gorm:"not null;default:0" json:"eco_score"`
	CarbonSaved      float64   `gorm:"not null;default:0" json:"carbon_saved"`
	MoneySaved       float64   `gorm:"not null;default:0" json:"money_saved"`
	CircularityScore float64   `gorm:"not null;default:0" json:"circularity_score"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Cart              []CartItem      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"cart"`
	Orders            []Order         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"orders"`
	CurrentChallenges []UserChallenge `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"current_challenges"`
	Badges            []UserBadge     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"badges"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// HasJoined reports whether the challenge is in the user's joined set.
func (u *User) HasJoined(challengeID uint) bool {
	for _, uc := range u.CurrentChallenges {
		if uc.ChallengeID == challengeID {
			return true
		}
	}
	return false
}

// HasBadgeFor reports whether a badge was already awarded for the challenge.
func (u *User) HasBadgeFor(challengeID uint) bool {
	for _, b := range u.Badges {
		if b.ChallengeID == challengeID {
			return true
		}
	}
	return false
}

// Join adds the challenge to the joined set. It is a no-op when the
// challenge is already joined or already badged.
func (u *User) Join(challengeID uint, at time.Time) bool {
	if u.HasJoined(challengeID) || u.HasBadgeFor(challengeID) {
		return false
	}
	u.CurrentChallenges = append(u.CurrentChallenges, UserChallenge{
		UserID:      u.ID,
		ChallengeID: challengeID,
		JoinedAt:    at,
	})
	return true
}

// Leave removes the challenge from the joined set.
func (u *User) Leave(challengeID uint) {
	kept := u.CurrentChallenges[:0]
	for _, uc := range u.CurrentChallenges {
		if uc.ChallengeID != challengeID {
			kept = append(kept, uc)
		}
	}
	u.CurrentChallenges = kept
}

// LatestOrder returns the most recently placed order, or nil.
func (u *User) LatestOrder() *Order {
	var latest *Order
	for i := range u.Orders {
		if latest == nil || !u.Orders[i].PlacedAt.Before(latest.PlacedAt) {
			latest = &u.Orders[i]
		}
	}
	return latest
}

// UserChallenge is one entry of the joined set.
type UserChallenge struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_challenge" json:"-"`
	ChallengeID uint      `gorm:"not null;uniqueIndex:idx_user_challenge" json:"challenge_id"`
	JoinedAt    time.Time `gorm:"not null" json:"joined_at"`
}

// TableName specifies the table name for UserChallenge model.
func (UserChallenge) TableName() string {
	return "user_challenges"
}

// UserBadge is a badge earned by completing a challenge. At most one exists
// per user and challenge.
type UserBadge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_badge_challenge" json:"user_id"`
	ChallengeID uint      `gorm:"not null;uniqueIndex:idx_user_badge_challenge" json:"challenge_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IconURL     string    `gorm:"column:icon_url;type:text" json:"icon_url"`
	DateEarned  time.Time `gorm:"not null" json:"date_earned"`
}

// TableName specifies the table name for UserBadge model.
func (UserBadge) TableName() string {
	return "user_badges"
}
