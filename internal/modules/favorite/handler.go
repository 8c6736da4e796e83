package favorite

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"evea/internal/middleware"
	"evea/internal/pkg/response"
	"evea/internal/pkg/utils"
	"evea/internal/pkg/validator"
	"evea/internal/repository"
)

// Handler serves the signed-in user's favourite vendor cards.
type Handler struct {
	favorites *repository.FavoriteRepository
	cards     *repository.VendorCardRepository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		favorites: repository.NewFavoriteRepository(db),
		cards:     repository.NewVendorCardRepository(db),
	}
}

// RegisterRoutes mounts /favorites on a group that already requires a session.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	favorites := rg.Group("/favorites")
	{
		favorites.GET("", h.GetFavorites)
		favorites.POST("", h.AddFavorite)
		favorites.DELETE("/:vendorCardId", h.RemoveFavorite)
		favorites.GET("/:vendorCardId/check", h.CheckFavorite)
	}
}

// GetFavorites lists the user's favourites, newest first.
// @Summary		List favourites
// @Tags		Favorite
// @Security	CookieAuth
// @Param		page	query	int	false	"Page"	default(1)
// @Param		limit	query	int	false	"Page size"	default(20)
// @Success		200	{object}	FavoriteListResponse
// @Failure		401	{object}	map[string]interface{}
// @Router		/favorites [GET]
func (h *Handler) GetFavorites(c *gin.Context) {
	p := middleware.MustPrincipal(c)
	page := utils.PageFromQuery(c)

	favorites, total, err := h.favorites.ListByUser(c.Request.Context(), p.UserID, page.Limit, page.Offset())
	if err != nil {
		response.Internal(c, err)
		return
	}

	list := ToFavoriteListResponse(favorites, total, page.Page, page.Limit)
	response.Success(c, http.StatusOK, gin.H{
		"favorites":  list.Favorites,
		"total":      list.Total,
		"page":       list.Page,
		"limit":      list.Limit,
		"totalPages": list.TotalPages,
	})
}

// AddFavorite saves a vendor card. Adding the same card again is a no-op.
// @Summary		Add favourite
// @Tags		Favorite
// @Security	CookieAuth
// @Param		request	body	AddFavoriteRequest	true	"Vendor card"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}	"Vendor card not found"
// @Router		/favorites [POST]
func (h *Handler) AddFavorite(c *gin.Context) {
	var req AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.FirstMessage(err))
		return
	}
	ctx := c.Request.Context()

	if _, err := h.cards.GetPublished(ctx, req.VendorCardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Vendor card not found")
			return
		}
		response.Internal(c, err)
		return
	}

	fav, err := h.favorites.Add(ctx, middleware.MustPrincipal(c).UserID, req.VendorCardID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"favorite": ToFavoriteResponse(fav)})
}

// RemoveFavorite drops a vendor card from the favourites.
// @Summary		Remove favourite
// @Tags		Favorite
// @Security	CookieAuth
// @Param		vendorCardId	path	int	true	"Vendor card id"
// @Success		200	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}	"Not in favourites"
// @Router		/favorites/{vendorCardId} [DELETE]
func (h *Handler) RemoveFavorite(c *gin.Context) {
	cardID, ok := utils.ParamID(c, "vendorCardId")
	if !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid vendor card id")
		return
	}

	removed, err := h.favorites.Remove(c.Request.Context(), middleware.MustPrincipal(c).UserID, cardID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	if !removed {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Vendor card is not in favorites")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Removed from favorites"})
}

// CheckFavorite reports whether the card is in the user's favourites.
// @Summary		Check favourite
// @Tags		Favorite
// @Security	CookieAuth
// @Param		vendorCardId	path	int	true	"Vendor card id"
// @Success		200	{object}	map[string]interface{}
// @Router		/favorites/{vendorCardId}/check [GET]
func (h *Handler) CheckFavorite(c *gin.Context) {
	cardID, ok := utils.ParamID(c, "vendorCardId")
	if !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid vendor card id")
		return
	}

	isFavorite, err := h.favorites.Exists(c.Request.Context(), middleware.MustPrincipal(c).UserID, cardID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"isFavorite": isFavorite})
}
