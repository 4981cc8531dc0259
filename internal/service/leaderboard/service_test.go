package leaderboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amazongreen/storefront/internal/errs"
	"github.com/amazongreen/storefront/internal/models"
	"github.com/amazongreen/storefront/internal/repository"
	"github.com/amazongreen/storefront/pkg/logger"
	"github.com/amazongreen/storefront/test/testutil"
)

// Mock repositories for testing
type mockStandingsRepository struct {
	standings []repository.Standing
	err       error
}

func (m *mockStandingsRepository) ListStandings(context.Context) ([]repository.Standing, error) {
	return m.standings, m.err
}

type mockBadgeRepository struct {
	counts map[uint]int64
	err    error
}

func (m *mockBadgeRepository) GetUserBadgeCount(_ context.Context, userID uint) (int64, error) {
	return m.counts[userID], m.err
}

type mockUserRepository struct {
	users map[uint]*models.User
}

func (m *mockUserRepository) GetDocument(_ context.Context, id uint) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, errs.E(errs.NotFound, "users.GetDocument", errs.ErrUserNotFound)
	}
	return user, nil
}

func setupTestService() (*Service, *mockStandingsRepository, *mockBadgeRepository, *mockUserRepository) {
	standings := &mockStandingsRepository{
		standings: []repository.Standing{
			{UserID: 1, Name: "alice", EcoScore: 70, CarbonSaved: 12, MoneySaved: 30, BadgeCount: 1},
			{UserID: 2, Name: "bob", EcoScore: 85, CarbonSaved: 4, MoneySaved: 90, BadgeCount: 3},
			{UserID: 3, Name: "charlie", EcoScore: 40, CarbonSaved: 20, MoneySaved: 10, BadgeCount: 0},
		},
	}
	badges := &mockBadgeRepository{counts: map[uint]int64{1: 1, 2: 3}}
	users := &mockUserRepository{users: map[uint]*models.User{}}
	svc := NewServiceWithInterfaces(standings, badges, users, logger.Nop())
	return svc, standings, badges, users
}

func TestGlobal(t *testing.T) {
	svc, _, _, _ := setupTestService()

	tests := []struct {
		metric string
		want   []string
	}{
		{"", []string{"charlie", "alice", "bob"}},
		{MetricCarbonSaved, []string{"charlie", "alice", "bob"}},
		{MetricEcoScore, []string{"bob", "alice", "charlie"}},
		{MetricMoneySaved, []string{"bob", "alice", "charlie"}},
		{MetricBadges, []string{"bob", "alice", "charlie"}},
	}

	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			entries, err := svc.Global(context.Background(), tt.metric, 0)
			require.NoError(t, err)

			names := make([]string, len(entries))
			for i, e := range entries {
				names[i] = e.Name
				assert.Equal(t, i+1, e.Rank)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestGlobal_LimitAndTies(t *testing.T) {
	svc, standings, _, _ := setupTestService()
	standings.standings = []repository.Standing{
		{UserID: 9, Name: "late", CarbonSaved: 5},
		{UserID: 4, Name: "early", CarbonSaved: 5},
		{UserID: 7, Name: "low", CarbonSaved: 1},
	}

	entries, err := svc.Global(context.Background(), MetricCarbonSaved, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "early", entries[0].Name)
	assert.Equal(t, "late", entries[1].Name)
}

func TestGlobal_Errors(t *testing.T) {
	svc, standings, _, _ := setupTestService()

	_, err := svc.Global(context.Background(), "reviews", 10)
	assert.True(t, errs.Is(err, errs.Validation))

	standings.err = errs.E(errs.Persistence, "users.ListStandings", errors.New("db down"))
	_, err = svc.Global(context.Background(), MetricEcoScore, 10)
	assert.True(t, errs.Is(err, errs.Persistence))
}

func TestGetUserRank(t *testing.T) {
	svc, _, _, _ := setupTestService()

	rank, err := svc.GetUserRank(context.Background(), 2, MetricEcoScore)
	require.NoError(t, err)
	assert.Equal(t, 1, rank)

	_, err = svc.GetUserRank(context.Background(), 42, MetricEcoScore)
	assert.ErrorIs(t, err, errs.ErrUserNotFound)
}

func TestGetUserStats(t *testing.T) {
	svc, _, badges, users := setupTestService()
	users.users[1] = &models.User{
		ID:          1,
		Name:        "alice",
		EcoScore:    70,
		CarbonSaved: 12,
		Orders:      []models.Order{{}, {}},
		Badges:      []models.UserBadge{{ChallengeID: 5, Name: "Daily Challenge Winner"}},
	}

	stats, err := svc.GetUserStats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.OrderCount)
	assert.Equal(t, int64(1), stats.BadgeCount)
	assert.Equal(t, 2, stats.Ranks[MetricCarbonSaved])
	assert.Equal(t, 2, stats.Ranks[MetricEcoScore])
	assert.Equal(t, 2, stats.Ranks[MetricBadges])

	// badge count falls back to the document when the count query fails
	badges.err = errors.New("timeout")
	stats, err = svc.GetUserStats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.BadgeCount)

	_, err = svc.GetUserStats(context.Background(), 99)
	assert.ErrorIs(t, err, errs.ErrUserNotFound)
}

func TestGlobal_Database(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(repository.NewUserRepository(db), repository.NewBadgeRepository(db), logger.Nop())

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	require.NoError(t, db.Model(alice).Update("carbon_saved", 8.5).Error)
	require.NoError(t, db.Model(bob).Update("carbon_saved", 2.0).Error)

	entries, err := svc.Global(context.Background(), MetricCarbonSaved, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, alice.ID, entries[0].UserID)
	assert.InDelta(t, 8.5, entries[0].CarbonSaved, 1e-9)

	stats, err := svc.GetUserStats(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Ranks[MetricCarbonSaved])
}
