package outbox

import "time"

type VerificationRequested struct {
	UserID    int64     `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type EmailVerified struct {
	UserID   int64  `json:"userId"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	IsVendor bool   `json:"isVendor"`
}

// VendorLifecycle covers approve, reject, suspend and reinstate.
type VendorLifecycle struct {
	VendorID     int64  `json:"vendorId"`
	UserID       int64  `json:"userId"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	BusinessName string `json:"businessName"`
	AdminID      int64  `json:"adminId"`
	Reason       string `json:"reason,omitempty"`
	TempPassword string `json:"tempPassword,omitempty"`
}

type OrderEvent struct {
	OrderID      int64  `json:"orderId"`
	CustomerID   int64  `json:"customerId"`
	VendorID     int64  `json:"vendorId"`
	VendorUserID int64  `json:"vendorUserId"`
	CardTitle    string `json:"cardTitle"`
	Amount       string `json:"amount"`
	Status       string `json:"status"`
}

type ReviewCreated struct {
	ReviewID     int64  `json:"reviewId"`
	VendorCardID int64  `json:"vendorCardId"`
	CardTitle    string `json:"cardTitle"`
	VendorUserID int64  `json:"vendorUserId"`
	Rating       int    `json:"rating"`
	ReviewerName string `json:"reviewerName"`
}
