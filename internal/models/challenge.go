package models

import (
	"strings"
	"time"
)

// Frequency determines a challenge's evaluation window and rule.
type Frequency string

// Challenge frequencies.
const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Frequencies lists every frequency in rotation order.
var Frequencies = []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly}

// Title returns the capitalised frequency name.
func (f Frequency) Title() string {
	s := string(f)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ChallengeType is the declared metric of a challenge. It is informational;
// evaluation branches on Frequency.
type ChallengeType string

// Challenge types.
const (
	ChallengeTypeEcoScore    ChallengeType = "ecoScore"
	ChallengeTypeCO2Saved    ChallengeType = "co2Saved"
	ChallengeTypeMoneySaved  ChallengeType = "moneySaved"
	ChallengeTypeCircularity ChallengeType = "circularityScore"
)

// Challenge is a time-boxed goal with a reward badge template.
type Challenge struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"size:255;not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Type        ChallengeType `gorm:"size:32;not null" json:"type"`
	Frequency   Frequency     `gorm:"size:16;not null;index:idx_challenge_period" json:"frequency"`
	TargetValue float64       `json:"target_value"`
	RewardBadge RewardBadge   `gorm:"embedded;embeddedPrefix:reward_" json:"reward_badge"`
	IsActive    bool          `gorm:"not null;index" json:"is_active"`
	StartDate   time.Time     `gorm:"not null;index:idx_challenge_period" json:"start_date"`
	EndDate     time.Time     `gorm:"not null;index:idx_challenge_period" json:"end_date"`
	CreatedAt   time.Time     `json:"created_at"`
}

// TableName specifies the table name for Challenge model.
func (Challenge) TableName() string {
	return "challenges"
}

// RewardBadge is the badge template copied to a user on completion.
type RewardBadge struct {
	Name        string `gorm:"size:255" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IconURL     string `gorm:"column:icon_url;type:text" json:"icon_url"`
}

// Award builds the user badge for this challenge.
func (c *Challenge) Award(userID uint, at time.Time) UserBadge {
	return UserBadge{
		UserID:      userID,
		ChallengeID: c.ID,
		Name:        c.RewardBadge.Name,
		Description: c.RewardBadge.Description,
		IconURL:     c.RewardBadge.IconURL,
		DateEarned:  at,
	}
}
