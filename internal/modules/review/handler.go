package review

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"evea/internal/middleware"
	"evea/internal/pkg/response"
	"evea/internal/pkg/utils"
	"evea/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	if public != nil {
		public.GET("/vendor-cards/:id/reviews", h.ListByCard)
	}
	if protected != nil {
		protected.POST("/vendor-cards/:id/reviews", h.Create)
	}
}

// Create writes a review.
// @Summary		Write a review
// @Description	One review per user per vendor card. The card's rating and review count are recomputed.
// @Tags		Reviews
// @Security	CookieAuth
// @Param		id		path	int					true	"Vendor card id"
// @Param		request	body	CreateReviewRequest	true	"Rating (1-5) and comment"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}	"Vendors cannot review their own card"
// @Failure		404	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{}	"Already reviewed"
// @Router		/vendor-cards/{id}/reviews [POST]
func (h *Handler) Create(c *gin.Context) {
	cardID, ok := utils.ParamID(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid vendor card id")
		return
	}
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.FirstMessage(err))
		return
	}

	rv, rating, err := h.svc.Create(c.Request.Context(), middleware.MustPrincipal(c).UserID, cardID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Vendor card not found")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You cannot review your own listing")
		case errors.Is(err, ErrConflict):
			response.Error(c, http.StatusConflict, "ALREADY_REVIEWED", "You have already reviewed this vendor")
		default:
			response.Internal(c, err)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"review":      ToReviewResponse(rv),
		"rating":      rating.Rating,
		"reviewCount": rating.ReviewCount,
	})
}

// ListByCard returns a page of reviews.
// @Summary		Reviews of a vendor card
// @Tags		Reviews
// @Param		id		path	int	true	"Vendor card id"
// @Param		page	query	int	false	"Page"
// @Param		limit	query	int	false	"Page size"
// @Success		200	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/vendor-cards/{id}/reviews [GET]
func (h *Handler) ListByCard(c *gin.Context) {
	cardID, ok := utils.ParamID(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid vendor card id")
		return
	}
	page := utils.PageFromQuery(c)

	reviews, total, err := h.svc.ListByCard(c.Request.Context(), cardID, page.Limit, page.Offset())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Vendor card not found")
			return
		}
		response.Internal(c, err)
		return
	}

	items := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		items[i] = ToReviewResponse(&reviews[i])
	}
	response.Success(c, http.StatusOK, gin.H{
		"reviews": items,
		"total":   total,
		"page":    page.Page,
		"limit":   page.Limit,
	})
}
