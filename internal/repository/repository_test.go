package repository

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
)

type fixture struct {
	db       *gorm.DB
	category domain.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := database.OpenTest(t)
	cat := domain.Category{Name: "Photography", Slug: "photography", SortOrder: 1}
	require.NoError(t, db.Create(&cat).Error)
	return &fixture{db: db, category: cat}
}

func (f *fixture) vendor(t *testing.T, business string) domain.Vendor {
	t.Helper()
	u := domain.User{
		FullName:     business + " Owner",
		Email:        fmt.Sprintf("%d@%s.test", time.Now().UnixNano(), "evea"),
		PasswordHash: "x",
		Role:         domain.RoleVendor,
	}
	require.NoError(t, f.db.Create(&u).Error)
	v := domain.Vendor{
		UserID:             u.ID,
		BusinessName:       business,
		City:               "Mumbai",
		RegistrationStep:   domain.StepRegistered,
		VerificationStatus: domain.VendorPending,
	}
	require.NoError(t, f.db.Create(&v).Error)
	return v
}

func (f *fixture) card(t *testing.T, v domain.Vendor, title string, mutate func(*domain.VendorCard)) domain.VendorCard {
	t.Helper()
	c := domain.VendorCard{
		VendorID:    v.ID,
		CategoryID:  f.category.ID,
		Title:       title,
		City:        v.City,
		PriceFrom:   decimal.NewFromInt(10000),
		IsPublished: true,
	}
	if mutate != nil {
		mutate(&c)
	}
	require.NoError(t, f.db.Create(&c).Error)
	return c
}

func TestVendorRepository_CompareAndSet(t *testing.T) {
	f := newFixture(t)
	repo := NewVendorRepository(f.db)
	ctx := context.Background()
	v := f.vendor(t, "Acme Events")

	err := repo.CompareAndSet(ctx, v.ID, domain.StepRegistered, domain.VendorPending, map[string]any{
		"registration_step": domain.StepDetailsSubmitted,
	})
	require.NoError(t, err)

	// A second writer still holding the old (step, status) loses.
	err = repo.CompareAndSet(ctx, v.ID, domain.StepRegistered, domain.VendorPending, map[string]any{
		"registration_step": domain.StepDetailsSubmitted,
	})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := repo.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepDetailsSubmitted, got.RegistrationStep)
	require.NotNil(t, got.User)
}

func TestVendorRepository_BusinessNameTakenIgnoresCase(t *testing.T) {
	f := newFixture(t)
	f.vendor(t, "Acme Events")

	taken, err := NewVendorRepository(f.db).BusinessNameTaken(context.Background(), "  ACME events ")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestVendorRepository_ListForReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.vendor(t, "Alpha")
	b := f.vendor(t, "Beta")
	f.vendor(t, "Gamma") // still at step 1

	for _, v := range []domain.Vendor{a, b} {
		require.NoError(t, f.db.Model(&domain.Vendor{}).Where("id = ?", v.ID).
			Update("registration_step", domain.StepDocumentsUploaded).Error)
	}

	vendors, total, err := NewVendorRepository(f.db).ListForReview(ctx, domain.VendorPending, 1, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, vendors, 1)
	assert.Equal(t, "Alpha", vendors[0].BusinessName)
}

func TestVendorCardRepository_ListFiltersAndSorts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewVendorCardRepository(f.db)

	cheap := f.card(t, f.vendor(t, "Cheap"), "Cheap Clicks", func(c *domain.VendorCard) {
		c.PriceFrom = decimal.NewFromInt(5000)
		c.Rating = 3.5
	})
	top := f.card(t, f.vendor(t, "Top"), "Top Shots", func(c *domain.VendorCard) {
		c.PriceFrom = decimal.NewFromInt(50000)
		c.Rating = 4.9
	})
	featured := f.card(t, f.vendor(t, "Star"), "Star Studio", func(c *domain.VendorCard) {
		c.PriceFrom = decimal.NewFromInt(20000)
		c.Rating = 4.0
		c.IsFeatured = true
	})
	f.card(t, f.vendor(t, "Hidden"), "Hidden Gem", func(c *domain.VendorCard) {
		c.IsPublished = false
	})
	require.NoError(t, f.db.Model(&domain.VendorCard{}).Where("title = ?", "Hidden Gem").Update("is_published", false).Error)

	cards, total, err := repo.List(ctx, CardFilter{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, cards, 3)
	assert.Equal(t, []int64{featured.ID, top.ID, cheap.ID}, []int64{cards[0].ID, cards[1].ID, cards[2].ID})
	require.NotNil(t, cards[0].Category)

	cards, _, err = repo.List(ctx, CardFilter{Sort: SortPriceAsc, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, cheap.ID, cards[0].ID)

	min := decimal.NewFromInt(10000)
	max := decimal.NewFromInt(30000)
	cards, total, err = repo.List(ctx, CardFilter{MinPrice: &min, MaxPrice: &max, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, featured.ID, cards[0].ID)

	cards, _, err = repo.List(ctx, CardFilter{MinRating: 4.5, CategorySlug: "photography", City: "mumbai", Limit: 10})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, top.ID, cards[0].ID)
}

func TestVendorCardRepository_SearchRanksAndDedupes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewVendorCardRepository(f.db)

	// Matches on title, description and business name but must appear once.
	multi := f.card(t, f.vendor(t, "Lens Masters"), "Lens Wedding", func(c *domain.VendorCard) {
		c.Description = "lens work"
		c.Rating = 4.2
	})
	featured := f.card(t, f.vendor(t, "Aperture"), "Wedding lens crew", func(c *domain.VendorCard) {
		c.IsFeatured = true
		c.Rating = 3.0
	})
	f.card(t, f.vendor(t, "Caterer"), "Biryani House", nil)

	cards, err := repo.Search(ctx, "LENS", 20)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, featured.ID, cards[0].ID)
	assert.Equal(t, multi.ID, cards[1].ID)

	// Category name matches every card in it.
	cards, err = repo.Search(ctx, "photo", 20)
	require.NoError(t, err)
	assert.Len(t, cards, 3)

	// Wildcards in user input are literal.
	cards, err = repo.Search(ctx, "%", 20)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestVendorCardRepository_RefreshRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	card := f.card(t, f.vendor(t, "Rated"), "Rated Card", nil)

	for i, rating := range []int{5, 4, 4} {
		u := domain.User{FullName: "R", Email: fmt.Sprintf("r%d@x.com", i), PasswordHash: "x", Role: domain.RoleCustomer}
		require.NoError(t, f.db.Create(&u).Error)
		require.NoError(t, f.db.Create(&domain.Review{VendorCardID: card.ID, UserID: u.ID, Rating: rating}).Error)
	}

	repo := NewVendorCardRepository(f.db)
	require.NoError(t, repo.RefreshRating(ctx, card.ID))

	got, err := repo.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.33, got.Rating, 0.001)
	assert.Equal(t, 3, got.ReviewCount)
}

func TestVendorCardRepository_DedupeByVendor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.db.Exec("DROP INDEX idx_vendor_cards_vendor_id").Error)

	v := f.vendor(t, "Dupes")
	f.card(t, v, "Old", nil)
	newest := f.card(t, v, "New", nil)
	other := f.card(t, f.vendor(t, "Single"), "Only", nil)

	removed, err := NewVendorCardRepository(f.db).DedupeByVendor(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	var ids []int64
	require.NoError(t, f.db.Model(&domain.VendorCard{}).Order("id").Pluck("id", &ids).Error)
	assert.Equal(t, []int64{newest.ID, other.ID}, ids)
}

func TestCartRepository_AddIncrementsQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	card := f.card(t, f.vendor(t, "Cart"), "Cart Card", nil)
	repo := NewCartRepository(f.db)

	first := &domain.CartItem{UserID: 1, VendorCardID: card.ID, Quantity: 1}
	require.NoError(t, repo.Add(ctx, first))

	again := &domain.CartItem{UserID: 1, VendorCardID: card.ID, Quantity: 2, Notes: "evening"}
	require.NoError(t, repo.Add(ctx, again))
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 3, again.Quantity)
	assert.Equal(t, "evening", again.Notes)

	items, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].VendorCard)

	assert.ErrorIs(t, repo.Delete(ctx, 2, first.ID), gorm.ErrRecordNotFound, "other users cannot delete the item")
	require.NoError(t, repo.Clear(ctx, 1))
	items, err = repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFavoriteRepository_AddIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	card := f.card(t, f.vendor(t, "Fav"), "Fav Card", nil)
	repo := NewFavoriteRepository(f.db)

	a, err := repo.Add(ctx, 9, card.ID)
	require.NoError(t, err)
	b, err := repo.Add(ctx, 9, card.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	list, total, err := repo.ListByUser(ctx, 9, 20, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].VendorCard)

	removed, err := repo.Remove(ctx, 9, card.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Remove(ctx, 9, card.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestNotificationRepository_EventIDDedupes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewNotificationRepository(f.db)
	eventID := "01HZXEVENT0000000000000000"

	n1 := &domain.Notification{UserID: 3, Type: domain.NotifOrderPlaced, Title: "New order", EventID: &eventID}
	created, err := repo.Create(ctx, n1)
	require.NoError(t, err)
	assert.True(t, created)

	n2 := &domain.Notification{UserID: 3, Type: domain.NotifOrderPlaced, Title: "New order", EventID: &eventID}
	created, err = repo.Create(ctx, n2)
	require.NoError(t, err)
	assert.False(t, created)

	count, err := repo.UnreadCount(ctx, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, repo.MarkRead(ctx, 3, n1.ID))
	assert.ErrorIs(t, repo.MarkRead(ctx, 4, n1.ID), gorm.ErrRecordNotFound)
}

func TestVerificationTokenRepository_MarkUsedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewVerificationTokenRepository(f.db)

	tok := &domain.EmailVerificationToken{UserID: 1, TokenHash: "abc", ExpiresAt: time.Now().UTC().Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, tok))

	require.NoError(t, repo.MarkUsed(ctx, tok.ID, time.Now().UTC()))
	assert.ErrorIs(t, repo.MarkUsed(ctx, tok.ID, time.Now().UTC()), ErrConflict)

	expired := &domain.EmailVerificationToken{UserID: 1, TokenHash: "old", ExpiresAt: time.Now().UTC().Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, expired))
	n, err := repo.DeleteExpired(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
