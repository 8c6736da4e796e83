package admin

import "errors"

var (
	ErrVendorNotFound   = errors.New("vendor not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrReasonTooShort   = errors.New("rejection reason too short")
	ErrMissingDetails   = errors.New("vendor has no business details")
	ErrConflict         = errors.New("vendor modified concurrently")
	ErrNotApproved      = errors.New("vendor is not approved")
)

const minRejectionReason = 10
