package review

import (
	"time"

	"evea/internal/domain"
)

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment string `json:"comment" binding:"omitempty,max=2000"`
}

type ReviewResponse struct {
	ID           int64     `json:"id"`
	VendorCardID int64     `json:"vendorCardId"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	ReviewerName string    `json:"reviewerName"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func ToReviewResponse(rv *domain.Review) ReviewResponse {
	out := ReviewResponse{
		ID:           rv.ID,
		VendorCardID: rv.VendorCardID,
		Rating:       rv.Rating,
		Comment:      rv.Comment,
		CreatedAt:    rv.CreatedAt,
	}
	if rv.User != nil {
		out.ReviewerName = rv.User.FullName
		out.AvatarURL = rv.User.AvatarURL
	}
	return out
}

// CardRating is the card's aggregate after a review is written.
type CardRating struct {
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
}
