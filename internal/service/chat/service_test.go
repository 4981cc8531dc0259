package chat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amazongreen/storefront/internal/errs"
	"github.com/amazongreen/storefront/internal/models"
	"github.com/amazongreen/storefront/internal/service/challenges"
	"github.com/amazongreen/storefront/pkg/logger"
	"github.com/amazongreen/storefront/test/mocks"
)

type stubStatus struct {
	status *challenges.Status
	err    error
}

func (s *stubStatus) StatusOf(context.Context, *models.User) (*challenges.Status, error) {
	return s.status, s.err
}

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func newTestService(completer *mocks.MockCompleter, user *models.User, products []models.Product, status *stubStatus) *Service {
	users := &mocks.MockUserRepository{
		GetDocumentFunc: func(_ context.Context, id uint) (*models.User, error) {
			if user == nil || id != user.ID {
				return nil, errs.E(errs.NotFound, "users.GetDocument", errs.ErrUserNotFound)
			}
			return user, nil
		},
	}
	if status == nil {
		status = &stubStatus{status: &challenges.Status{}}
	}
	svc := NewServiceWithInterfaces(users, &mocks.MockProductRepository{Products: products}, status, completer, time.UTC, logger.Nop())
	svc.SetClock(func() time.Time { return testNow })
	return svc
}

func TestHandle_Chat(t *testing.T) {
	completer := &mocks.MockCompleter{Responses: []string{"pizza", "  Try a reusable bottle!  "}}
	svc := newTestService(completer, nil, nil, nil)

	resp, err := svc.Handle(context.Background(), Request{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, IntentChat, resp.Intent)
	assert.Equal(t, "Try a reusable bottle!", resp.Reply)

	require.Len(t, completer.Requests, 2)
	classify := completer.Requests[0]
	assert.Equal(t, 5, classify.MaxTokens)
	assert.Equal(t, 0.0, classify.Temperature)
	assert.Equal(t, []string{"\n"}, classify.Stop)
	assert.Contains(t, classify.Prompt, `"hello"`)
	assert.Contains(t, completer.Requests[1].Prompt, "You are Green Partner")
}

func TestHandle_DataIntentRequiresUser(t *testing.T) {
	for _, intent := range []string{"cart_alternative", "my_challenges", "carbon_footprint"} {
		t.Run(intent, func(t *testing.T) {
			completer := &mocks.MockCompleter{Responses: []string{intent}}
			svc := newTestService(completer, nil, nil, nil)

			_, err := svc.Handle(context.Background(), Request{Message: "how am I doing"})
			assert.ErrorIs(t, err, errs.ErrMissingUserID)
			assert.True(t, errs.Is(err, errs.Validation))
			assert.Len(t, completer.Requests, 1)
		})
	}
}

func TestHandle_EmptyMessage(t *testing.T) {
	completer := &mocks.MockCompleter{}
	svc := newTestService(completer, nil, nil, nil)

	_, err := svc.Handle(context.Background(), Request{Message: "   "})
	assert.True(t, errs.Is(err, errs.Validation))
	assert.Empty(t, completer.Requests)
}

func TestHandle_CompletionFailure(t *testing.T) {
	completer := &mocks.MockCompleter{Err: errs.E(errs.ExternalService, "completion.Complete", errors.New("503"))}
	svc := newTestService(completer, nil, nil, nil)

	_, err := svc.Handle(context.Background(), Request{Message: "hi", UserID: 1})
	assert.True(t, errs.Is(err, errs.ExternalService))
}

func TestHandle_CartAlternative(t *testing.T) {
	user := &models.User{ID: 7, Orders: []models.Order{
		{PlacedAt: testNow.Add(-48 * time.Hour), Items: []models.OrderItem{{Name: "Old thing", Category: "Kitchen"}}},
		{PlacedAt: testNow.Add(-time.Hour), Items: []models.OrderItem{
			{Name: "Plastic toothbrush", Category: "Bath", EcoScore: 30},
			{Name: "Shampoo", Category: "Bath", EcoScore: 10},
		}},
	}}

	t.Run("suggests the greenest match", func(t *testing.T) {
		products := []models.Product{
			{ID: 1, Name: "Bamboo toothbrush", Category: "Bath", EcoScore: 92},
			{ID: 2, Name: "Steel scraper", Category: "Bath", EcoScore: 70},
			{ID: 3, Name: "Compost bin", Category: "Kitchen", EcoScore: 99},
		}
		completer := &mocks.MockCompleter{Responses: []string{"cart_alternative"}}
		svc := newTestService(completer, user, products, nil)

		resp, err := svc.Handle(context.Background(), Request{Message: "greener option?", UserID: 7})
		require.NoError(t, err)
		assert.Equal(t, IntentCartAlternative, resp.Intent)
		assert.Contains(t, resp.Reply, "Bamboo toothbrush")
		assert.Contains(t, resp.Reply, "Plastic toothbrush")
	})

	t.Run("already optimal", func(t *testing.T) {
		products := []models.Product{{ID: 4, Name: "Same score", Category: "Bath", EcoScore: 30}}
		completer := &mocks.MockCompleter{Responses: []string{"cart_alternative"}}
		svc := newTestService(completer, user, products, nil)

		resp, err := svc.Handle(context.Background(), Request{Message: "greener option?", UserID: 7})
		require.NoError(t, err)
		assert.Contains(t, resp.Reply, "already the most eco-friendly")
	})

	t.Run("electronics upgrade", func(t *testing.T) {
		shopper := &models.User{ID: 9, Orders: []models.Order{{
			PlacedAt: testNow.Add(-time.Hour),
			Items:    []models.OrderItem{{Name: "Incandescent lamp", Category: "Electronics", EcoScore: 40}},
		}}}
		products := []models.Product{
			{ID: 5, Name: "Incandescent lamp", Category: "Electronics", EcoScore: 40},
			{ID: 6, Name: "LED lamp", Category: "Electronics", EcoScore: 90},
		}
		completer := &mocks.MockCompleter{Responses: []string{"cart_alternative"}}
		svc := newTestService(completer, shopper, products, nil)

		resp, err := svc.Handle(context.Background(), Request{Message: "greener option?", UserID: 9})
		require.NoError(t, err)
		assert.Equal(t, "Instead of Incandescent lamp (eco score 40), try LED lamp with an eco score of 90.", resp.Reply)
	})

	t.Run("no orders", func(t *testing.T) {
		completer := &mocks.MockCompleter{Responses: []string{"cart_alternative"}}
		svc := newTestService(completer, &models.User{ID: 8}, nil, nil)

		resp, err := svc.Handle(context.Background(), Request{Message: "greener option?", UserID: 8})
		require.NoError(t, err)
		assert.Contains(t, resp.Reply, "no recent orders")
	})
}

func TestHandle_CarbonFootprint(t *testing.T) {
	user := &models.User{ID: 3, Orders: []models.Order{
		{PlacedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), Items: []models.OrderItem{
			{Name: "Soap", CarbonFootprint: 1.25, Quantity: 4},
			{Name: "Bag", CarbonFootprint: 0.5},
		}},
		{PlacedAt: time.Date(2026, 10, 13, 9, 0, 0, 0, time.UTC), Items: []models.OrderItem{
			{Name: "Lamp", CarbonFootprint: 3},
		}},
		{PlacedAt: time.Date(2026, 9, 30, 23, 59, 0, 0, time.UTC), Items: []models.OrderItem{
			{Name: "Last month", CarbonFootprint: 100},
		}},
	}}
	completer := &mocks.MockCompleter{Responses: []string{"carbon_footprint"}}
	svc := newTestService(completer, user, nil, nil)

	resp, err := svc.Handle(context.Background(), Request{Message: "my footprint", UserID: 3})
	require.NoError(t, err)
	assert.Equal(t, IntentCarbonFootprint, resp.Intent)
	require.Len(t, resp.Breakdown, 2)
	assert.InDelta(t, 1.75, resp.Breakdown[0].Subtotal, 1e-9)
	assert.Len(t, resp.Breakdown[0].Items, 2)
	assert.InDelta(t, 4.75, resp.Total, 1e-9)
	assert.Contains(t, resp.Reply, "4.75")
}

func TestHandle_CarbonFootprint_OnlyPriorMonths(t *testing.T) {
	user := &models.User{ID: 3, Orders: []models.Order{
		{PlacedAt: time.Date(2026, 9, 12, 10, 0, 0, 0, time.UTC), Items: []models.OrderItem{{Name: "Kettle", CarbonFootprint: 4}}},
		{PlacedAt: time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC), Items: []models.OrderItem{{Name: "Mug", CarbonFootprint: 1}}},
	}}
	completer := &mocks.MockCompleter{Responses: []string{"carbon_footprint"}}
	svc := newTestService(completer, user, nil, nil)

	resp, err := svc.Handle(context.Background(), Request{Message: "footprint", UserID: 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, resp.Total)
	assert.NotNil(t, resp.Breakdown)
	assert.Empty(t, resp.Breakdown)
	assert.Contains(t, resp.Reply, "0 kg CO2")

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"total":0`)
	assert.Contains(t, string(raw), `"breakdown":[]`)
}

func TestHandle_CarbonFootprint_LocalMonth(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 2026-09-30 20:00 UTC is already October in UTC+5
	user := &models.User{ID: 3, Orders: []models.Order{
		{PlacedAt: time.Date(2026, 9, 30, 20, 0, 0, 0, time.UTC), Items: []models.OrderItem{{Name: "Early", CarbonFootprint: 2}}},
	}}
	completer := &mocks.MockCompleter{Responses: []string{"carbon_footprint"}}
	svc := newTestService(completer, user, nil, nil)
	svc.location = loc

	resp, err := svc.Handle(context.Background(), Request{Message: "footprint", UserID: 3})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, resp.Total, 1e-9)
}

func TestHandle_MyChallenges(t *testing.T) {
	status := &stubStatus{status: &challenges.Status{
		Challenges: []challenges.ChallengeStatus{
			{Challenge: models.Challenge{ID: 1, Name: "Daily"}, Completed: true},
			{Challenge: models.Challenge{ID: 2, Name: "Weekly"}},
		},
		Badges: []models.UserBadge{{ChallengeID: 1, Name: "Daily Challenge Winner"}},
	}}
	completer := &mocks.MockCompleter{Responses: []string{"my_challenges"}}
	svc := newTestService(completer, &models.User{ID: 5}, nil, status)

	resp, err := svc.Handle(context.Background(), Request{Message: "challenges?", UserID: 5})
	require.NoError(t, err)
	assert.Equal(t, IntentMyChallenges, resp.Intent)
	assert.Len(t, resp.Challenges, 2)
	assert.Len(t, resp.Badges, 1)
	assert.Contains(t, resp.Reply, "completed 1")

	status.err = errs.E(errs.Persistence, "challenges.GetAll", errors.New("db down"))
	_, err = svc.Handle(context.Background(), Request{Message: "challenges?", UserID: 5})
	assert.True(t, errs.Is(err, errs.Persistence))
}

func TestHandle_UnknownUser(t *testing.T) {
	completer := &mocks.MockCompleter{Responses: []string{"my_challenges"}}
	svc := newTestService(completer, nil, nil, nil)

	_, err := svc.Handle(context.Background(), Request{Message: "x", UserID: 404})
	assert.ErrorIs(t, err, errs.ErrUserNotFound)
}
