package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	UserID       int64      `json:"userId" gorm:"not null;uniqueIndex:idx_cart_user_card"`
	VendorCardID int64      `json:"vendorCardId" gorm:"not null;uniqueIndex:idx_cart_user_card"`
	Quantity     int        `json:"quantity" gorm:"not null;default:1"`
	EventDate    *time.Time `json:"eventDate,omitempty"`
	Notes        string     `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	VendorCard *VendorCard `json:"vendorCard,omitempty" gorm:"foreignKey:VendorCardID"`
}

func (CartItem) TableName() string { return "cart_items" }

type UserFavorite struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	UserID       int64     `json:"userId" gorm:"not null;uniqueIndex:idx_favorite_user_card"`
	VendorCardID int64     `json:"vendorCardId" gorm:"not null;index;uniqueIndex:idx_favorite_user_card"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`

	VendorCard *VendorCard `json:"vendorCard,omitempty" gorm:"foreignKey:VendorCardID"`
}

func (UserFavorite) TableName() string { return "user_favorites" }

type Review struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	VendorCardID int64     `json:"vendorCardId" gorm:"not null;index;uniqueIndex:idx_review_card_user"`
	UserID       int64     `json:"userId" gorm:"not null;uniqueIndex:idx_review_card_user"`
	Rating       int       `json:"rating" gorm:"not null"`
	Comment      string    `json:"comment,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Review) TableName() string { return "reviews" }

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderCancelled OrderStatus = "cancelled"
	OrderCompleted OrderStatus = "completed"
)

// CanMoveTo reports whether a vendor may move an order from s to next.
func (s OrderStatus) CanMoveTo(next OrderStatus) bool {
	switch s {
	case OrderPending:
		return next == OrderConfirmed || next == OrderCancelled
	case OrderConfirmed:
		return next == OrderCompleted || next == OrderCancelled
	}
	return false
}

type Order struct {
	ID           int64           `json:"id" gorm:"primaryKey"`
	UserID       int64           `json:"userId" gorm:"index;not null"`
	VendorID     int64           `json:"vendorId" gorm:"index;not null"`
	VendorCardID int64           `json:"vendorCardId" gorm:"index;not null"`
	Quantity     int             `json:"quantity" gorm:"not null"`
	EventDate    *time.Time      `json:"eventDate,omitempty"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Status       OrderStatus     `json:"status" gorm:"size:20;not null;index"`
	Notes        string          `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`

	VendorCard *VendorCard `json:"vendorCard,omitempty" gorm:"foreignKey:VendorCardID"`
}

func (Order) TableName() string { return "orders" }
