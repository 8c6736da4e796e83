// Package seed loads reference data (categories, the first admin) and an
// optional demo catalogue into a fresh database. Every step is idempotent.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"evea/internal/domain"
	"evea/internal/pkg/password"
	"evea/internal/repository"
)

type Options struct {
	AdminEmail    string
	AdminPassword string
	// Demo adds approved vendors with published cards.
	Demo bool
}

type Result struct {
	Categories   int
	AdminCreated bool
	DemoVendors  int
}

var Categories = []domain.Category{
	{Name: "Photography", Slug: "photography", Icon: "camera", SortOrder: 1, Description: "Wedding, pre-wedding and event photographers"},
	{Name: "Catering", Slug: "catering", Icon: "utensils", SortOrder: 2, Description: "Caterers and live food counters"},
	{Name: "Decoration", Slug: "decoration", Icon: "sparkles", SortOrder: 3, Description: "Stage, floral and theme decor"},
	{Name: "Venues", Slug: "venues", Icon: "building", SortOrder: 4, Description: "Banquet halls, lawns and resorts"},
	{Name: "Music & DJ", Slug: "music-dj", Icon: "music", SortOrder: 5, Description: "DJs, live bands and sound"},
	{Name: "Makeup & Mehendi", Slug: "makeup-mehendi", Icon: "brush", SortOrder: 6, Description: "Bridal makeup and mehendi artists"},
	{Name: "Event Planners", Slug: "planners", Icon: "clipboard", SortOrder: 7, Description: "Full-service planners and coordinators"},
	{Name: "Invitations", Slug: "invitations", Icon: "mail", SortOrder: 8, Description: "Printed and digital invitations"},
}

type demoVendor struct {
	email    string
	business string
	category string
	city     string
	state    string
	price    int64
	rating   float64
	reviews  int
	featured bool
}

var demoVendors = []demoVendor{
	{"royal.lens@demo.evea.in", "Royal Lens Studio", "photography", "Mumbai", "Maharashtra", 45000, 4.8, 120, true},
	{"pixel.tales@demo.evea.in", "Pixel Tales", "photography", "Pune", "Maharashtra", 30000, 4.5, 64, false},
	{"spice.route@demo.evea.in", "Spice Route Caterers", "catering", "Delhi", "Delhi", 80000, 4.6, 210, true},
	{"petal.pop@demo.evea.in", "Petal Pop Decor", "decoration", "Jaipur", "Rajasthan", 60000, 4.3, 38, false},
	{"beat.box@demo.evea.in", "Beat Box DJs", "music-dj", "Bengaluru", "Karnataka", 25000, 4.7, 95, false},
	{"henna.house@demo.evea.in", "Henna House", "makeup-mehendi", "Hyderabad", "Telangana", 15000, 4.9, 150, true},
}

// Run seeds db. Existing rows are left untouched except categories, whose
// display fields are refreshed.
func Run(ctx context.Context, db *gorm.DB, opts Options, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	res := &Result{}

	categories := repository.NewCategoryRepository(db)
	bySlug := make(map[string]int64, len(Categories))
	for _, c := range Categories {
		c := c
		if err := categories.Upsert(ctx, &c); err != nil {
			return nil, fmt.Errorf("upsert category %s: %w", c.Slug, err)
		}
		res.Categories++
	}
	list, err := categories.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		bySlug[c.Slug] = c.ID
	}

	if opts.AdminEmail != "" {
		created, err := ensureUser(ctx, db, opts.AdminEmail, opts.AdminPassword, "Evea Admin", domain.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
		res.AdminCreated = created != nil
		if created != nil {
			log.Info("admin created", zap.String("email", created.Email))
		}
	}

	if opts.Demo {
		for _, dv := range demoVendors {
			ok, err := seedVendor(ctx, db, dv, bySlug[dv.category])
			if err != nil {
				return nil, fmt.Errorf("seed vendor %s: %w", dv.business, err)
			}
			if ok {
				res.DemoVendors++
			}
		}
	}
	return res, nil
}

// ensureUser returns the created user, or nil when the email is taken.
func ensureUser(ctx context.Context, db *gorm.DB, email, pass, name string, role domain.UserRole) (*domain.User, error) {
	users := repository.NewUserRepository(db)
	exists, err := users.EmailExists(ctx, email)
	if err != nil || exists {
		return nil, err
	}
	if len(pass) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	hash, err := password.Hash(pass)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		FullName:        name,
		Email:           strings.ToLower(email),
		PasswordHash:    hash,
		Role:            role,
		IsActive:        true,
		EmailVerified:   true,
		EmailVerifiedAt: &now,
	}
	if err := users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func seedVendor(ctx context.Context, db *gorm.DB, dv demoVendor, categoryID int64) (bool, error) {
	if categoryID == 0 {
		return false, fmt.Errorf("unknown category %q", dv.category)
	}
	seeded := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := ensureUser(ctx, tx, dv.email, "demo-vendor-123", dv.business+" Owner", domain.RoleVendor)
		if err != nil || u == nil {
			return err
		}
		now := time.Now().UTC()
		v := &domain.Vendor{
			UserID:             u.ID,
			BusinessName:       dv.business,
			City:               dv.city,
			State:              dv.state,
			RegistrationStep:   domain.StepApproved,
			VerificationStatus: domain.VendorApproved,
			ApprovedAt:         &now,
		}
		if err := tx.Create(v).Error; err != nil {
			return err
		}
		price := decimal.NewFromInt(dv.price)
		if err := tx.Create(&domain.VendorService{
			VendorID:          v.ID,
			CategoryID:        categoryID,
			ServiceType:       dv.category,
			BasicPackagePrice: decimal.NewNullDecimal(price),
		}).Error; err != nil {
			return err
		}
		seeded = true
		return repository.NewVendorCardRepository(tx).Create(ctx, &domain.VendorCard{
			VendorID:    v.ID,
			CategoryID:  categoryID,
			Title:       dv.business,
			Description: fmt.Sprintf("%s in %s", dv.business, dv.city),
			City:        dv.city,
			State:       dv.state,
			PriceFrom:   price,
			Rating:      dv.rating,
			ReviewCount: dv.reviews,
			IsFeatured:  dv.featured,
			IsPublished: true,
		})
	})
	return seeded, err
}
