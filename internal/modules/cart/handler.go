package cart

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
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts /cart on a group that already requires a session.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/cart")
	{
		g.GET("", h.Get)
		g.POST("", h.Add)
		g.PATCH("/:id", h.Update)
		g.DELETE("/:id", h.Remove)
		g.DELETE("", h.Clear)
	}
}

// Get returns the cart with its subtotal.
// @Summary		Cart
// @Tags		Cart
// @Security	CookieAuth
// @Success		200	{object}	map[string]interface{}
// @Router		/cart [GET]
func (h *Handler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), middleware.MustPrincipal(c).UserID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cart": view})
}

// Add puts a vendor card in the cart.
// @Summary		Add to cart
// @Tags		Cart
// @Security	CookieAuth
// @Param		request	body	AddItemRequest	true	"Vendor card, quantity, event date (YYYY-MM-DD) and notes"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/cart [POST]
func (h *Handler) Add(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.FirstMessage(err))
		return
	}

	item, err := h.service.Add(c.Request.Context(), middleware.MustPrincipal(c).UserID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"item": item})
}

// @Summary		Update cart quantity
// @Tags		Cart
// @Security	CookieAuth
// @Param		id		path	int					true	"Cart item id"
// @Param		request	body	UpdateItemRequest	true	"New quantity"
// @Success		200	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/cart/{id} [PATCH]
func (h *Handler) Update(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid cart item id")
		return
	}
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.FirstMessage(err))
		return
	}

	item, err := h.service.UpdateQuantity(c.Request.Context(), middleware.MustPrincipal(c).UserID, id, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"item": item})
}

// @Summary		Remove cart item
// @Tags		Cart
// @Security	CookieAuth
// @Param		id	path	int	true	"Cart item id"
// @Success		200	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/cart/{id} [DELETE]
func (h *Handler) Remove(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid cart item id")
		return
	}
	if err := h.service.Remove(c.Request.Context(), middleware.MustPrincipal(c).UserID, id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Item removed"})
}

// @Summary		Empty cart
// @Tags		Cart
// @Security	CookieAuth
// @Success		200	{object}	map[string]interface{}
// @Router		/cart [DELETE]
func (h *Handler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), middleware.MustPrincipal(c).UserID); err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Cart cleared"})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrCardNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Vendor card not found")
	case errors.Is(err, ErrItemNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Cart item not found")
	case errors.Is(err, ErrEventDateInPast):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "eventDate must not be in the past")
	case errors.Is(err, ErrQuantityTooLarge):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "quantity must be at most 100")
	default:
		response.Internal(c, err)
	}
}
