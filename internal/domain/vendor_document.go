package domain

import "time"

type DocumentType string

const (
	DocPanCard         DocumentType = "pan_card"
	DocAadharCard      DocumentType = "aadhar_card"
	DocGSTCertificate  DocumentType = "gst_certificate"
	DocBusinessLicense DocumentType = "business_license"
	DocBankProof       DocumentType = "bank_proof"
	DocAddressProof    DocumentType = "address_proof"
	DocPortfolio       DocumentType = "portfolio"
	DocOther           DocumentType = "other"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocPanCard, DocAadharCard, DocGSTCertificate, DocBusinessLicense,
		DocBankProof, DocAddressProof, DocPortfolio, DocOther:
		return true
	}
	return false
}

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentVerified DocumentStatus = "verified"
	DocumentRejected DocumentStatus = "rejected"
)

type VendorDocument struct {
	ID                 int64          `json:"id" gorm:"primaryKey"`
	VendorID           int64          `json:"vendorId" gorm:"index;not null"`
	DocumentType       DocumentType   `json:"documentType" gorm:"size:40;not null"`
	FileName           string         `json:"fileName" gorm:"size:255"`
	MimeType           string         `json:"mimeType" gorm:"size:100"`
	SizeBytes          int64          `json:"sizeBytes"`
	StorageDriver      string         `json:"storageDriver" gorm:"size:20;not null"`
	ExternalID         string         `json:"externalId" gorm:"size:512;not null"`
	ViewURL            string         `json:"viewUrl,omitempty" gorm:"size:1024"`
	DownloadURL        string         `json:"downloadUrl,omitempty" gorm:"size:1024"`
	VerificationStatus DocumentStatus `json:"verificationStatus" gorm:"size:20;not null;default:pending"`
	ReviewNotes        string         `json:"reviewNotes,omitempty" gorm:"type:text"`
	ReviewedAt         *time.Time     `json:"reviewedAt,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
}

func (VendorDocument) TableName() string { return "vendor_documents" }

type ReviewStatus string

const (
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
	ReviewPending  ReviewStatus = "pending"
)

// AdminReview is the audit record of one admin decision. Rows are never updated.
type AdminReview struct {
	ID                      int64        `json:"id" gorm:"primaryKey"`
	VendorID                int64        `json:"vendorId" gorm:"index;not null"`
	AdminID                 int64        `json:"adminId" gorm:"index;not null"`
	ReviewStatus            ReviewStatus `json:"reviewStatus" gorm:"size:20;not null"`
	ReviewNotes             string       `json:"reviewNotes,omitempty" gorm:"type:text"`
	DocumentsReviewed       bool         `json:"documentsReviewed"`
	BusinessDetailsReviewed bool         `json:"businessDetailsReviewed"`
	ServicesReviewed        bool         `json:"servicesReviewed"`
	CreatedAt               time.Time    `json:"createdAt"`
}

func (AdminReview) TableName() string { return "admin_reviews" }
