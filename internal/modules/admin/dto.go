package admin

import (
	"time"

	"evea/internal/domain"
)

// VendorActionRequest is the body of approve, verify-documents and reinstate.
// AdminID is accepted from older clients and ignored; the acting admin is
// always the session principal.
type VendorActionRequest struct {
	VendorID int64  `json:"vendorId" binding:"required,gt=0"`
	AdminID  int64  `json:"adminId"`
	Notes    string `json:"notes" binding:"omitempty,max=2000"`
}

type RejectRequest struct {
	VendorID        int64  `json:"vendorId" binding:"required,gt=0"`
	AdminID         int64  `json:"adminId"`
	RejectionReason string `json:"rejectionReason"`
}

type SuspendRequest struct {
	VendorID int64  `json:"vendorId" binding:"required,gt=0"`
	Reason   string `json:"reason" binding:"omitempty,max=2000"`
}

type DocumentReviewRequest struct {
	Status string `json:"status" binding:"required,oneof=verified rejected"`
	Notes  string `json:"notes" binding:"omitempty,max=2000"`
}

type ContactInfo struct {
	ID            int64  `json:"id"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

func contactOf(u *domain.User) *ContactInfo {
	if u == nil {
		return nil
	}
	return &ContactInfo{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		Phone:         u.PhoneValue(),
		EmailVerified: u.EmailVerified,
	}
}

// PendingVendor is one row of the review queue. User, Service and
// DocumentCount are nil when that part could not be loaded.
type PendingVendor struct {
	ID                 int64                     `json:"id"`
	BusinessName       string                    `json:"businessName"`
	City               string                    `json:"city"`
	State              string                    `json:"state"`
	RegistrationStep   int                       `json:"registrationStep"`
	VerificationStatus domain.VerificationStatus `json:"verificationStatus"`
	CreatedAt          time.Time                 `json:"createdAt"`
	User               *ContactInfo              `json:"user"`
	Service            *domain.VendorService     `json:"service"`
	DocumentCount      *int64                    `json:"documentCount"`
}

type PendingList struct {
	Vendors []PendingVendor `json:"vendors"`
	Total   int64           `json:"total"`
}

type VendorDetail struct {
	Vendor    *domain.Vendor          `json:"vendor"`
	State     string                  `json:"state"`
	User      *ContactInfo            `json:"user"`
	Service   *domain.VendorService   `json:"service"`
	Documents []domain.VendorDocument `json:"documents"`
	Reviews   []domain.AdminReview    `json:"reviews"`
}

type ApproveResult struct {
	VendorID     int64  `json:"vendorId"`
	BusinessName string `json:"businessName"`
}

type StatisticsResponse struct {
	TotalUsers       int64 `json:"totalUsers"`
	TotalVendors     int64 `json:"totalVendors"`
	PendingReview    int64 `json:"pendingReview"`
	ApprovedVendors  int64 `json:"approvedVendors"`
	PublishedCards   int64 `json:"publishedCards"`
	TotalOrders      int64 `json:"totalOrders"`
	OrdersToday      int64 `json:"ordersToday"`
	FailedOutboxJobs int64 `json:"failedOutboxJobs"`
}
