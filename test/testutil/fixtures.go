package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amazongreen/storefront/internal/models"
	"github.com/amazongreen/storefront/internal/repository"
)

var phoneSeq atomic.Int64

// CreateUser inserts a user with unique contact details.
func CreateUser(t *testing.T, db *repository.DB, name string) *models.User {
	t.Helper()

	n := phoneSeq.Add(1)
	user := &models.User{
		Name:         name,
		Phone:        fmt.Sprintf("9%09d", n),
		Email:        fmt.Sprintf("%s%d@example.com", name, n),
		PasswordHash: "x",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

// CreateProduct inserts a catalog product.
func CreateProduct(t *testing.T, db *repository.DB, p models.Product) *models.Product {
	t.Helper()

	if p.SKU == "" {
		p.SKU = fmt.Sprintf("SKU-%d", phoneSeq.Add(1))
	}
	if p.Category == "" {
		p.Category = "General"
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	return &p
}

// CreateChallenge inserts an active challenge covering now.
func CreateChallenge(t *testing.T, db *repository.DB, freq models.Frequency, now time.Time) *models.Challenge {
	t.Helper()

	c := &models.Challenge{
		Name:      freq.Title() + " test challenge",
		Type:      models.ChallengeTypeEcoScore,
		Frequency: freq,
		RewardBadge: models.RewardBadge{
			Name:        freq.Title() + " Challenge Winner",
			Description: "Awarded for completing the " + string(freq) + " challenge",
		},
		IsActive:  true,
		StartDate: now.Add(-time.Hour).UTC(),
		EndDate:   now.Add(24 * time.Hour).UTC(),
	}
	if err := repository.NewChallengeRepository(db).Create(context.Background(), c); err != nil {
		t.Fatalf("Failed to create challenge: %v", err)
	}
	return c
}
