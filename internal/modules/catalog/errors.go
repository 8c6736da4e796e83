package catalog

import "errors"

var (
	ErrCardNotFound      = errors.New("vendor card not found")
	ErrQueryTooShort     = errors.New("search query too short")
	ErrInvalidSort       = errors.New("invalid sort option")
	ErrInvalidPriceRange = errors.New("minPrice exceeds maxPrice")
)
