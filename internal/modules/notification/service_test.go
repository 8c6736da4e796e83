package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evea/internal/database"
	"evea/internal/domain"
	"evea/internal/pkg/utils"
)

func TestNotify_StoresOncePerEvent(t *testing.T) {
	db := database.OpenTest(t)
	hub := NewHub(nil)
	t.Cleanup(hub.Close)
	svc := NewService(db, hub, nil)
	ctx := context.Background()

	u := &domain.User{FullName: "Customer", Email: "c@example.com", PasswordHash: "x", Role: domain.RoleCustomer}
	require.NoError(t, db.Create(u).Error)

	n := &domain.Notification{UserID: u.ID, Type: domain.NotifOrderPlaced, Title: "Order placed"}
	require.NoError(t, svc.Notify(ctx, "01JEVENT0000000000000000A1", n))
	require.NoError(t, svc.Notify(ctx, "01JEVENT0000000000000000A1", &domain.Notification{
		UserID: u.ID, Type: domain.NotifOrderPlaced, Title: "Order placed",
	}))
	require.NoError(t, svc.Notify(ctx, "01JEVENT0000000000000000B2", &domain.Notification{
		UserID: u.ID, Type: domain.NotifNewReview, Title: "New review", Data: map[string]any{"rating": 5},
	}))

	list, err := svc.List(ctx, u.ID, false, utils.NewPage(1, 20))
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)
	assert.EqualValues(t, 2, list.UnreadCount)
	require.Len(t, list.Notifications, 2)
	assert.Equal(t, domain.NotifNewReview, list.Notifications[0].Type)
	assert.EqualValues(t, 5, list.Notifications[0].Data["rating"])
}

func TestMarkRead(t *testing.T) {
	db := database.OpenTest(t)
	svc := NewService(db, nil, nil)
	ctx := context.Background()

	var users []*domain.User
	for _, email := range []string{"a@example.com", "b@example.com"} {
		u := &domain.User{FullName: "User", Email: email, PasswordHash: "x", Role: domain.RoleCustomer}
		require.NoError(t, db.Create(u).Error)
		users = append(users, u)
	}
	a, b := users[0], users[1]

	first := &domain.Notification{UserID: a.ID, Type: domain.NotifOrderPlaced, Title: "one"}
	require.NoError(t, svc.Notify(ctx, "", first))
	require.NoError(t, svc.Notify(ctx, "", &domain.Notification{UserID: a.ID, Type: domain.NotifOrderPlaced, Title: "two"}))
	require.NoError(t, svc.Notify(ctx, "", &domain.Notification{UserID: a.ID, Type: domain.NotifOrderPlaced, Title: "three"}))

	assert.ErrorIs(t, svc.MarkRead(ctx, b.ID, first.ID), ErrNotFound)
	assert.ErrorIs(t, svc.MarkRead(ctx, a.ID, 9999), ErrNotFound)
	require.NoError(t, svc.MarkRead(ctx, a.ID, first.ID))

	unread, err := svc.List(ctx, a.ID, true, utils.NewPage(1, 20))
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread.Total)
	for _, n := range unread.Notifications {
		assert.NotEqual(t, first.ID, n.ID)
	}

	updated, err := svc.MarkAllRead(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	count, err := svc.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	empty, err := svc.List(ctx, b.ID, false, utils.NewPage(1, 20))
	require.NoError(t, err)
	assert.NotNil(t, empty.Notifications)
	assert.Empty(t, empty.Notifications)
}
