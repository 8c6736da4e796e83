package favorite

import (
	"time"

	"github.com/shopspring/decimal"

	"evea/internal/domain"
)

// AddFavoriteRequest is the body of POST /favorites.
type AddFavoriteRequest struct {
	VendorCardID int64 `json:"vendorCardId" binding:"required,gt=0"`
}

type FavoriteResponse struct {
	ID           int64      `json:"id"`
	VendorCardID int64      `json:"vendorCardId"`
	VendorCard   *CardBrief `json:"vendorCard,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// CardBrief is the slice of a vendor card shown in the favourites list.
type CardBrief struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	City        string          `json:"city"`
	PriceFrom   decimal.Decimal `json:"priceFrom"`
	Rating      float64         `json:"rating"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	IsPublished bool            `json:"isPublished"`
}

type FavoriteListResponse struct {
	Favorites  []FavoriteResponse `json:"favorites"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"totalPages"`
}

func ToFavoriteResponse(f *domain.UserFavorite) FavoriteResponse {
	resp := FavoriteResponse{
		ID:           f.ID,
		VendorCardID: f.VendorCardID,
		CreatedAt:    f.CreatedAt,
	}
	if c := f.VendorCard; c != nil {
		resp.VendorCard = &CardBrief{
			ID:          c.ID,
			Title:       c.Title,
			City:        c.City,
			PriceFrom:   c.PriceFrom,
			Rating:      c.Rating,
			ImageURL:    c.ImageURL,
			IsPublished: c.IsPublished,
		}
	}
	return resp
}

func ToFavoriteListResponse(favorites []domain.UserFavorite, total int64, page, limit int) FavoriteListResponse {
	items := make([]FavoriteResponse, len(favorites))
	for i := range favorites {
		items[i] = ToFavoriteResponse(&favorites[i])
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return FavoriteListResponse{
		Favorites:  items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}
