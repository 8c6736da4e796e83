package domain

import "time"

type NotificationType string

const (
	NotifVendorApproved     NotificationType = "vendor_approved"
	NotifVendorRejected     NotificationType = "vendor_rejected"
	NotifVendorSuspended    NotificationType = "vendor_suspended"
	NotifVendorReinstated   NotificationType = "vendor_reinstated"
	NotifOrderPlaced        NotificationType = "order_placed"
	NotifOrderStatusChanged NotificationType = "order_status_changed"
	NotifNewReview          NotificationType = "new_review"
)

type Notification struct {
	ID      int64            `json:"id" gorm:"primaryKey"`
	UserID  int64            `json:"userId" gorm:"index;not null"`
	Type    NotificationType `json:"type" gorm:"size:40;not null"`
	Title   string           `json:"title" gorm:"size:255;not null"`
	Message string           `json:"message,omitempty" gorm:"type:text"`
	IsRead  bool             `json:"isRead" gorm:"not null;default:false;index"`
	Data    map[string]any   `json:"data,omitempty" gorm:"serializer:json"`
	// EventID is the outbox event that produced the row; redelivery of the
	// same event does not create a second notification.
	EventID   *string   `json:"-" gorm:"size:26;uniqueIndex"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Notification) TableName() string { return "notifications" }
