package groupbuy

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amazongreen/storefront/internal/errs"
	"github.com/amazongreen/storefront/internal/models"
	"github.com/amazongreen/storefront/internal/repository"
	"github.com/amazongreen/storefront/pkg/logger"
	"github.com/amazongreen/storefront/test/testutil"
)

type recordingNotifier struct {
	completed []uint
}

func (n *recordingNotifier) AnnounceChallenge(context.Context, *models.Challenge) error { return nil }

func (n *recordingNotifier) AnnounceGroupComplete(_ context.Context, g *models.Group) error {
	n.completed = append(n.completed, g.ID)
	return nil
}

func setup(t *testing.T) (*Service, *repository.DB, *recordingNotifier) {
	t.Helper()
	db := testutil.NewDB(t)
	n := &recordingNotifier{}
	svc := NewService(repository.NewGroupRepository(db), repository.NewProductRepository(db), n, logger.Nop())
	return svc, db, n
}

func TestGroupLifecycle(t *testing.T) {
	svc, db, n := setup(t)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "admin")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	product := testutil.CreateProduct(t, db, models.Product{Name: "Bamboo brush", Price: 99, GroupBuyEligible: true})

	group, err := svc.Create(ctx, admin.ID, "  Brush buddies ", product.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "Brush buddies", group.Name)
	assert.Equal(t, models.GroupStatusPending, group.Status)
	assert.Len(t, group.Code, 36)
	assert.Equal(t, 2, group.Pending())

	group, err = svc.Join(ctx, group.ID, bob.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusPending, group.Status)

	// joining twice changes nothing
	group, err = svc.Join(ctx, group.ID, bob.ID, nil)
	require.NoError(t, err)
	assert.Len(t, group.Members, 2)

	group, err = svc.Join(ctx, group.ID, carol.ID, []Item{{ProductID: product.ID, Count: 2}})
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusComplete, group.Status)
	assert.Equal(t, []uint{group.ID}, n.completed)

	late := testutil.CreateUser(t, db, "late")
	_, err = svc.Join(ctx, group.ID, late.ID, nil)
	assert.ErrorIs(t, err, errs.ErrGroupFull)
	assert.True(t, errs.Is(err, errs.Conflict))

	stored, err := svc.Get(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Members, 3)

	complete, err := svc.List(ctx, models.GroupStatusComplete)
	require.NoError(t, err)
	assert.Len(t, complete, 1)
	pending, err := svc.List(ctx, models.GroupStatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCreate_Validation(t *testing.T) {
	svc, db, _ := setup(t)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "admin")
	eligible := testutil.CreateProduct(t, db, models.Product{Name: "Jute bag", Price: 10, GroupBuyEligible: true})
	plain := testutil.CreateProduct(t, db, models.Product{Name: "Pen", Price: 5})

	_, err := svc.Create(ctx, admin.ID, "", eligible.ID, 3)
	assert.True(t, errs.Is(err, errs.Validation))

	_, err = svc.Create(ctx, admin.ID, "solo", eligible.ID, 1)
	assert.True(t, errs.Is(err, errs.Validation))

	_, err = svc.Create(ctx, admin.ID, "pens", plain.ID, 3)
	assert.True(t, errs.Is(err, errs.Validation))

	_, err = svc.Create(ctx, admin.ID, "ghost", 999, 3)
	assert.ErrorIs(t, err, errs.ErrProductNotFound)
}

func TestJoin_UnknownGroup(t *testing.T) {
	svc, db, _ := setup(t)
	user := testutil.CreateUser(t, db, "u")

	_, err := svc.Join(context.Background(), 42, user.ID, nil)
	assert.ErrorIs(t, err, errs.ErrGroupNotFound)
}

func TestList_UnknownStatus(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.List(context.Background(), "archived")
	assert.True(t, errs.Is(err, errs.Validation))
}

func TestGroupMessages(t *testing.T) {
	svc, db, _ := setup(t)
	ctx := context.Background()
	start := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	tick := start
	svc.SetClock(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	})

	admin := testutil.CreateUser(t, db, "admin")
	bob := testutil.CreateUser(t, db, "bob")
	outsider := testutil.CreateUser(t, db, "outsider")
	product := testutil.CreateProduct(t, db, models.Product{Name: "Jute bag", Price: 10, GroupBuyEligible: true})

	group, err := svc.Create(ctx, admin.ID, "Bags", product.ID, 3)
	require.NoError(t, err)
	_, err = svc.Join(ctx, group.ID, bob.ID, nil)
	require.NoError(t, err)

	msg, err := svc.PostMessage(ctx, group.ID, admin.ID, "  who wants the large size?  ")
	require.NoError(t, err)
	assert.Equal(t, "who wants the large size?", msg.Content)
	assert.Equal(t, "admin", msg.SenderName)
	_, err = svc.PostMessage(ctx, group.ID, bob.ID, "me")
	require.NoError(t, err)

	t.Run("members read history oldest first", func(t *testing.T) {
		msgs, err := svc.Messages(ctx, group.ID, bob.ID)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "who wants the large size?", msgs[0].Content)
		assert.Equal(t, "me", msgs[1].Content)
		assert.Equal(t, "bob", msgs[1].SenderName)
		assert.True(t, msgs[0].SentAt.Before(msgs[1].SentAt))
	})

	t.Run("non-members cannot post or read", func(t *testing.T) {
		_, err := svc.PostMessage(ctx, group.ID, outsider.ID, "hello")
		assert.ErrorIs(t, err, errs.ErrNotGroupMember)
		assert.True(t, errs.Is(err, errs.Forbidden))

		_, err = svc.Messages(ctx, group.ID, outsider.ID)
		assert.ErrorIs(t, err, errs.ErrNotGroupMember)
	})

	t.Run("content is validated", func(t *testing.T) {
		_, err := svc.PostMessage(ctx, group.ID, admin.ID, "   ")
		assert.True(t, errs.Is(err, errs.Validation))

		_, err = svc.PostMessage(ctx, group.ID, admin.ID, strings.Repeat("x", MaxMessageLength+1))
		assert.True(t, errs.Is(err, errs.Validation))
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := svc.PostMessage(ctx, 999, admin.ID, "hi")
		assert.ErrorIs(t, err, errs.ErrGroupNotFound)
	})
}
