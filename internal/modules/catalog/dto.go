package catalog

import (
	"evea/internal/domain"
	"evea/internal/repository"
)

const (
	minSearchLength    = 2
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

// CardQuery is the parsed form of the browse query string.
type CardQuery struct {
	Filter repository.CardFilter
	Page   int
	Limit  int
}

type CardList struct {
	Items []domain.VendorCard `json:"items"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

type SearchResult struct {
	Query      string              `json:"query"`
	Cards      []domain.VendorCard `json:"vendorCards"`
	Categories []domain.Category   `json:"categories"`
}
