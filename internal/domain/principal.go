package domain

// Principal is the authenticated caller decoded from the session cookie.
type Principal struct {
	UserID   int64
	Role     UserRole
	VendorID *int64
	Email    string
}

func (p *Principal) IsAdmin() bool  { return p != nil && p.Role == RoleAdmin }
func (p *Principal) IsVendor() bool { return p != nil && p.Role == RoleVendor && p.VendorID != nil }
