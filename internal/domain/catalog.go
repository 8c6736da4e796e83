package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Slug        string    `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Icon        string    `json:"icon,omitempty" gorm:"size:100"`
	SortOrder   int       `json:"sortOrder" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Category) TableName() string { return "categories" }

// VendorCard is the published listing customers browse. One per vendor.
type VendorCard struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	VendorID    int64           `json:"vendorId" gorm:"uniqueIndex;not null"`
	CategoryID  int64           `json:"categoryId" gorm:"index;not null"`
	Title       string          `json:"title" gorm:"size:160;not null"`
	Description string          `json:"description,omitempty" gorm:"type:text"`
	City        string          `json:"city" gorm:"size:100;index"`
	State       string          `json:"state" gorm:"size:100"`
	PriceFrom   decimal.Decimal `json:"priceFrom" gorm:"type:numeric(12,2);not null;default:0"`
	Rating      float64         `json:"rating" gorm:"not null;default:0;index"`
	ReviewCount int             `json:"reviewCount" gorm:"not null;default:0"`
	IsFeatured  bool            `json:"isFeatured" gorm:"not null;default:false;index"`
	IsPublished bool            `json:"isPublished" gorm:"not null;default:false;index"`
	ImageURL    string          `json:"imageUrl,omitempty" gorm:"size:1024"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (VendorCard) TableName() string { return "vendor_cards" }
