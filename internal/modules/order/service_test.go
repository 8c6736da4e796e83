package order

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"evea/internal/database"
	"evea/internal/domain"
	"evea/internal/outbox"
	"evea/internal/pkg/utils"
)

type testEnv struct {
	db       *gorm.DB
	svc      *Service
	customer *domain.User
	category *domain.Category
	seq      int
}

type seller struct {
	user   *domain.User
	vendor *domain.Vendor
	card   *domain.VendorCard
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := database.OpenTest(t)
	env := &testEnv{db: db, svc: NewService(db, nil)}
	env.category = &domain.Category{Name: "Music", Slug: "music"}
	require.NoError(t, db.Create(env.category).Error)
	env.customer = env.user(t, domain.RoleCustomer)
	return env
}

func (e *testEnv) user(t *testing.T, role domain.UserRole) *domain.User {
	t.Helper()
	e.seq++
	u := &domain.User{FullName: fmt.Sprintf("User %d", e.seq), Email: fmt.Sprintf("user%d@example.com", e.seq), PasswordHash: "x", Role: role}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) seller(t *testing.T, title string, price int64) *seller {
	t.Helper()
	u := e.user(t, domain.RoleVendor)
	v := &domain.Vendor{UserID: u.ID, BusinessName: title, RegistrationStep: domain.StepApproved, VerificationStatus: domain.VendorApproved}
	require.NoError(t, e.db.Create(v).Error)
	c := &domain.VendorCard{VendorID: v.ID, CategoryID: e.category.ID, Title: title, PriceFrom: decimal.NewFromInt(price), IsPublished: true}
	require.NoError(t, e.db.Create(c).Error)
	return &seller{user: u, vendor: v, card: c}
}

func (e *testEnv) addToCart(t *testing.T, card *domain.VendorCard, qty int, eventDate *time.Time) {
	t.Helper()
	require.NoError(t, e.db.Create(&domain.CartItem{UserID: e.customer.ID, VendorCardID: card.ID, Quantity: qty, EventDate: eventDate}).Error)
}

func (e *testEnv) count(t *testing.T, model any, where ...any) int64 {
	t.Helper()
	q := e.db.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	var n int64
	require.NoError(t, q.Count(&n).Error)
	return n
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t)
	band := env.seller(t, "Dhol Beats", 12000)
	dj := env.seller(t, "DJ Nights", 5000)
	date := time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)
	env.addToCart(t, band.card, 2, nil)
	env.addToCart(t, dj.card, 1, &date)

	orders, err := env.svc.Checkout(context.Background(), env.customer.ID, "Gate 3")
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, band.vendor.ID, orders[0].VendorID)
	assert.True(t, decimal.NewFromInt(24000).Equal(orders[0].Amount), orders[0].Amount.String())
	assert.Equal(t, domain.OrderPending, orders[0].Status)
	assert.Equal(t, "Gate 3", orders[0].Notes)
	assert.True(t, decimal.NewFromInt(5000).Equal(orders[1].Amount))
	require.NotNil(t, orders[1].EventDate)

	assert.Zero(t, env.count(t, &domain.CartItem{}))
	assert.EqualValues(t, 2, env.count(t, &domain.Order{}))

	var events []domain.OutboxEvent
	require.NoError(t, env.db.Where("topic = ?", outbox.TopicOrderPlaced).Order("created_at, id").Find(&events).Error)
	require.Len(t, events, 2)
	p, err := outbox.Decode[outbox.OrderEvent](&events[0])
	require.NoError(t, err)
	assert.Equal(t, band.user.ID, p.VendorUserID)
	assert.Equal(t, env.customer.ID, p.CustomerID)
	assert.Equal(t, "24000.00", p.Amount)
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Checkout(context.Background(), env.customer.ID, "")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_UnavailableCardWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	ok := env.seller(t, "Dhol Beats", 12000)
	gone := env.seller(t, "Gone Band", 3000)
	env.addToCart(t, ok.card, 1, nil)
	env.addToCart(t, gone.card, 1, nil)
	require.NoError(t, env.db.Model(gone.card).Update("is_published", false).Error)

	_, err := env.svc.Checkout(context.Background(), env.customer.ID, "")
	assert.ErrorIs(t, err, ErrCardUnavailable)

	assert.Zero(t, env.count(t, &domain.Order{}))
	assert.Zero(t, env.count(t, &domain.OutboxEvent{}))
	assert.EqualValues(t, 2, env.count(t, &domain.CartItem{}))
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	band := env.seller(t, "Dhol Beats", 12000)
	other := env.seller(t, "DJ Nights", 5000)
	env.addToCart(t, band.card, 1, nil)
	orders, err := env.svc.Checkout(context.Background(), env.customer.ID, "")
	require.NoError(t, err)
	id := orders[0].ID
	ctx := context.Background()

	_, err = env.svc.UpdateStatus(ctx, other.vendor.ID, id, domain.OrderConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.svc.UpdateStatus(ctx, band.vendor.ID, 999, domain.OrderConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.svc.UpdateStatus(ctx, band.vendor.ID, id, domain.OrderCompleted)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	o, err := env.svc.UpdateStatus(ctx, band.vendor.ID, id, domain.OrderConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderConfirmed, o.Status)

	o, err = env.svc.UpdateStatus(ctx, band.vendor.ID, id, domain.OrderCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCompleted, o.Status)

	_, err = env.svc.UpdateStatus(ctx, band.vendor.ID, id, domain.OrderCancelled)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	var events []domain.OutboxEvent
	require.NoError(t, env.db.Where("topic = ?", outbox.TopicOrderStatusChanged).Order("created_at, id").Find(&events).Error)
	require.Len(t, events, 2)
	p, err := outbox.Decode[outbox.OrderEvent](&events[1])
	require.NoError(t, err)
	assert.Equal(t, "completed", p.Status)
	assert.Equal(t, env.customer.ID, p.CustomerID)
	assert.Equal(t, "Dhol Beats", p.CardTitle)
}

func TestListings(t *testing.T) {
	env := newTestEnv(t)
	band := env.seller(t, "Dhol Beats", 12000)
	dj := env.seller(t, "DJ Nights", 5000)
	env.addToCart(t, band.card, 1, nil)
	env.addToCart(t, dj.card, 1, nil)
	orders, err := env.svc.Checkout(context.Background(), env.customer.ID, "")
	require.NoError(t, err)
	_, err = env.svc.UpdateStatus(context.Background(), band.vendor.ID, orders[0].ID, domain.OrderCancelled)
	require.NoError(t, err)

	mine, err := env.svc.ListForCustomer(context.Background(), env.customer.ID, utils.NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 2, mine.Total)

	list, err := env.svc.ListForVendor(context.Background(), band.vendor.ID, domain.OrderCancelled, utils.NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
	list, err = env.svc.ListForVendor(context.Background(), band.vendor.ID, domain.OrderPending, utils.NewPage(1, 10))
	require.NoError(t, err)
	assert.Zero(t, list.Total)
	assert.NotNil(t, list.Orders)
}

func TestVendorDesk_SuspendedVendor(t *testing.T) {
	env := newTestEnv(t)
	band := env.seller(t, "Dhol Beats", 12000)
	env.addToCart(t, band.card, 1, nil)
	orders, err := env.svc.Checkout(context.Background(), env.customer.ID, "")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, env.db.Model(band.vendor).Update("verification_status", domain.VendorSuspended).Error)

	_, err = env.svc.UpdateStatus(ctx, band.vendor.ID, orders[0].ID, domain.OrderConfirmed)
	assert.ErrorIs(t, err, ErrVendorInactive)
	_, err = env.svc.ListForVendor(ctx, band.vendor.ID, "", utils.NewPage(1, 10))
	assert.ErrorIs(t, err, ErrVendorInactive)

	var o domain.Order
	require.NoError(t, env.db.First(&o, orders[0].ID).Error)
	assert.Equal(t, domain.OrderPending, o.Status)
	assert.Zero(t, env.count(t, &domain.OutboxEvent{}, "topic = ?", outbox.TopicOrderStatusChanged))
}
