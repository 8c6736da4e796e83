package auth

import "errors"

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrPhoneAlreadyExists    = errors.New("phone already exists")
	ErrAccountPending        = errors.New("account pending approval")
	ErrAccountSuspended      = errors.New("account suspended")
	ErrAccountDisabled       = errors.New("account disabled")
	ErrNotVendor             = errors.New("not a vendor account")
	ErrGoogleDisabled        = errors.New("google sign-in not configured")
	ErrGoogleAuth            = errors.New("google authentication failed")
	ErrGoogleEmailUnverified = errors.New("google email not verified")
	ErrUnauthorized          = errors.New("unauthorized")
)
