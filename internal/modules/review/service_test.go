package review

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"evea/internal/database"
	"evea/internal/domain"
	"evea/internal/outbox"
)

type testEnv struct {
	db     *gorm.DB
	svc    *Service
	owner  *domain.User
	card   *domain.VendorCard
	hidden *domain.VendorCard
	seq    int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := database.OpenTest(t)
	env := &testEnv{db: db, svc: NewService(db, nil)}

	cat := &domain.Category{Name: "Decor", Slug: "decor"}
	require.NoError(t, db.Create(cat).Error)
	env.owner = env.user(t, "Owner", domain.RoleVendor)
	v := &domain.Vendor{UserID: env.owner.ID, BusinessName: "Marigold Decor", RegistrationStep: domain.StepApproved, VerificationStatus: domain.VendorApproved}
	require.NoError(t, db.Create(v).Error)
	env.card = &domain.VendorCard{VendorID: v.ID, CategoryID: cat.ID, Title: "Marigold Decor", PriceFrom: decimal.NewFromInt(9000), IsPublished: true}
	require.NoError(t, db.Create(env.card).Error)

	other := env.user(t, "Other owner", domain.RoleVendor)
	ov := &domain.Vendor{UserID: other.ID, BusinessName: "Suspended Co", RegistrationStep: domain.StepApproved, VerificationStatus: domain.VendorSuspended}
	require.NoError(t, db.Create(ov).Error)
	env.hidden = &domain.VendorCard{VendorID: ov.ID, CategoryID: cat.ID, Title: "Suspended Co"}
	require.NoError(t, db.Create(env.hidden).Error)
	return env
}

func (e *testEnv) user(t *testing.T, name string, role domain.UserRole) *domain.User {
	t.Helper()
	e.seq++
	u := &domain.User{FullName: name, Email: fmt.Sprintf("user%d@example.com", e.seq), PasswordHash: "x", Role: role}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) reloadCard(t *testing.T) domain.VendorCard {
	t.Helper()
	var c domain.VendorCard
	require.NoError(t, e.db.First(&c, e.card.ID).Error)
	return c
}

func TestCreate_RecomputesRating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i, stars := range []int{5, 5, 4} {
		u := env.user(t, fmt.Sprintf("Guest %d", i), domain.RoleCustomer)
		rv, rating, err := env.svc.Create(ctx, u.ID, env.card.ID, CreateReviewRequest{Rating: stars, Comment: "  Lovely work  "})
		require.NoError(t, err)
		assert.Equal(t, "Lovely work", rv.Comment)
		assert.Equal(t, u.FullName, rv.User.FullName)
		assert.Equal(t, i+1, rating.ReviewCount)
	}

	card := env.reloadCard(t)
	assert.Equal(t, 3, card.ReviewCount)
	assert.InDelta(t, 4.67, card.Rating, 0.001)

	var events []domain.OutboxEvent
	require.NoError(t, env.db.Where("topic = ?", outbox.TopicReviewCreated).Order("created_at, id").Find(&events).Error)
	require.Len(t, events, 3)
	p, err := outbox.Decode[outbox.ReviewCreated](&events[0])
	require.NoError(t, err)
	assert.Equal(t, env.owner.ID, p.VendorUserID)
	assert.Equal(t, "Guest 0", p.ReviewerName)
	assert.Equal(t, "Marigold Decor", p.CardTitle)
}

func TestCreate_DuplicateRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "Guest", domain.RoleCustomer)

	_, _, err := env.svc.Create(ctx, u.ID, env.card.ID, CreateReviewRequest{Rating: 5})
	require.NoError(t, err)
	_, _, err = env.svc.Create(ctx, u.ID, env.card.ID, CreateReviewRequest{Rating: 1})
	assert.ErrorIs(t, err, ErrConflict)

	card := env.reloadCard(t)
	assert.Equal(t, 1, card.ReviewCount)
	assert.InDelta(t, 5.0, card.Rating, 0.001)

	var n int64
	require.NoError(t, env.db.Model(&domain.OutboxEvent{}).Where("topic = ?", outbox.TopicReviewCreated).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestCreate_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "Guest", domain.RoleCustomer)

	_, _, err := env.svc.Create(ctx, env.owner.ID, env.card.ID, CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = env.svc.Create(ctx, u.ID, env.hidden.ID, CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = env.svc.Create(ctx, u.ID, 999, CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByCard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 3; i++ {
		u := env.user(t, fmt.Sprintf("Guest %d", i), domain.RoleCustomer)
		rv, _, err := env.svc.Create(ctx, u.ID, env.card.ID, CreateReviewRequest{Rating: 4})
		require.NoError(t, err)
		last = rv.ID
	}

	reviews, total, err := env.svc.ListByCard(ctx, env.card.ID, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, reviews, 2)
	assert.Equal(t, last, reviews[0].ID)
	require.NotNil(t, reviews[0].User)

	_, _, err = env.svc.ListByCard(ctx, env.hidden.ID, 10, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}
