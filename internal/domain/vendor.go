package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type VerificationStatus string

const (
	VendorPending   VerificationStatus = "pending"
	VendorVerified  VerificationStatus = "verified"
	VendorApproved  VerificationStatus = "approved"
	VendorRejected  VerificationStatus = "rejected"
	VendorSuspended VerificationStatus = "suspended"
)

// Registration steps. Step 4 is only reached through admin approval.
const (
	StepRegistered        = 1
	StepDetailsSubmitted  = 2
	StepDocumentsUploaded = 3
	StepApproved          = 4
)

type Vendor struct {
	ID                 int64              `json:"id" gorm:"primaryKey"`
	UserID             int64              `json:"userId" gorm:"uniqueIndex;not null"`
	BusinessName       string             `json:"businessName" gorm:"size:160;uniqueIndex;not null"`
	Address            string             `json:"address" gorm:"size:255"`
	City               string             `json:"city" gorm:"size:100;index"`
	State              string             `json:"state" gorm:"size:100"`
	PostalCode         string             `json:"postalCode" gorm:"size:10"`
	PanNumber          string             `json:"panNumber,omitempty" gorm:"size:10"`
	GSTNumber          string             `json:"gstNumber,omitempty" gorm:"column:gst_number;size:15"`
	AadharNumber       string             `json:"aadharNumber,omitempty" gorm:"size:12"`
	RegistrationStep   int                `json:"registrationStep" gorm:"not null;default:1;index"`
	VerificationStatus VerificationStatus `json:"verificationStatus" gorm:"size:20;not null;index"`
	ApprovedAt         *time.Time         `json:"approvedAt,omitempty"`
	ApprovedBy         *int64             `json:"approvedBy,omitempty"`
	RejectionReason    string             `json:"rejectionReason,omitempty" gorm:"type:text"`
	SuspendedAt        *time.Time         `json:"suspendedAt,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Vendor) TableName() string { return "vendors" }

// VendorService holds the pricing sheet submitted with business details.
type VendorService struct {
	ID                       int64               `json:"id" gorm:"primaryKey"`
	VendorID                 int64               `json:"vendorId" gorm:"uniqueIndex;not null"`
	CategoryID               int64               `json:"categoryId" gorm:"index;not null"`
	ServiceType              string              `json:"serviceType" gorm:"size:100;not null"`
	WeddingPriceMin          decimal.NullDecimal `json:"weddingPriceMin" gorm:"type:numeric(12,2)"`
	WeddingPriceMax          decimal.NullDecimal `json:"weddingPriceMax" gorm:"type:numeric(12,2)"`
	CorporatePriceMin        decimal.NullDecimal `json:"corporatePriceMin" gorm:"type:numeric(12,2)"`
	CorporatePriceMax        decimal.NullDecimal `json:"corporatePriceMax" gorm:"type:numeric(12,2)"`
	BirthdayPriceMin         decimal.NullDecimal `json:"birthdayPriceMin" gorm:"type:numeric(12,2)"`
	BirthdayPriceMax         decimal.NullDecimal `json:"birthdayPriceMax" gorm:"type:numeric(12,2)"`
	FestivalPriceMin         decimal.NullDecimal `json:"festivalPriceMin" gorm:"type:numeric(12,2)"`
	FestivalPriceMax         decimal.NullDecimal `json:"festivalPriceMax" gorm:"type:numeric(12,2)"`
	BasicPackagePrice        decimal.NullDecimal `json:"basicPackagePrice" gorm:"type:numeric(12,2)"`
	BasicPackageDetails      string              `json:"basicPackageDetails,omitempty" gorm:"type:text"`
	StandardPackagePrice     decimal.NullDecimal `json:"standardPackagePrice" gorm:"type:numeric(12,2)"`
	StandardPackageDetails   string              `json:"standardPackageDetails,omitempty" gorm:"type:text"`
	PremiumPackagePrice      decimal.NullDecimal `json:"premiumPackagePrice" gorm:"type:numeric(12,2)"`
	PremiumPackageDetails    string              `json:"premiumPackageDetails,omitempty" gorm:"type:text"`
	AdvancePaymentPercentage int                 `json:"advancePaymentPercentage" gorm:"not null;default:0"`
	CancellationPolicy       string              `json:"cancellationPolicy,omitempty" gorm:"type:text"`
	CreatedAt                time.Time           `json:"createdAt"`
	UpdatedAt                time.Time           `json:"updatedAt"`
}

func (VendorService) TableName() string { return "vendor_services" }

// StartingPrice is the lowest price quoted anywhere on the sheet. It becomes
// the price_from of the published vendor card.
func (s *VendorService) StartingPrice() decimal.Decimal {
	candidates := []decimal.NullDecimal{
		s.BasicPackagePrice, s.StandardPackagePrice, s.PremiumPackagePrice,
		s.WeddingPriceMin, s.CorporatePriceMin, s.BirthdayPriceMin, s.FestivalPriceMin,
	}
	var (
		lowest decimal.Decimal
		found  bool
	)
	for _, c := range candidates {
		if !c.Valid {
			continue
		}
		if !found || c.Decimal.LessThan(lowest) {
			lowest = c.Decimal
			found = true
		}
	}
	return lowest
}
