package order

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"evea/internal/domain"
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

// RegisterRoutes mounts the customer endpoints on customer (session required)
// and the order desk on vendor (vendor session required).
func (h *Handler) RegisterRoutes(customer, vendor *gin.RouterGroup) {
	if customer != nil {
		customer.POST("/orders/checkout", h.Checkout)
		customer.GET("/orders", h.MyOrders)
	}
	if vendor != nil {
		vendor.GET("/orders", h.VendorOrders)
		vendor.PATCH("/orders/:id", h.UpdateStatus)
	}
}

// Checkout converts the cart into orders.
// @Summary		Checkout
// @Description	Creates one pending order per cart item and empties the cart.
// @Tags		Orders
// @Security	CookieAuth
// @Param		request	body	CheckoutRequest	false	"Notes for every order"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}	"Cart empty"
// @Failure		409	{object}	map[string]interface{}	"A listing is no longer available"
// @Router		/orders/checkout [POST]
func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.FirstMessage(err))
			return
		}
	}

	orders, err := h.service.Checkout(c.Request.Context(), middleware.MustPrincipal(c).UserID, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"orders": orders})
}

// @Summary		My orders
// @Tags		Orders
// @Security	CookieAuth
// @Param		page	query	int	false	"Page"
// @Param		limit	query	int	false	"Page size"
// @Success		200	{object}	map[string]interface{}
// @Router		/orders [GET]
func (h *Handler) MyOrders(c *gin.Context) {
	page := utils.PageFromQuery(c)
	list, err := h.service.ListForCustomer(c.Request.Context(), middleware.MustPrincipal(c).UserID, page)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"orders": list.Orders,
		"total":  list.Total,
		"page":   page.Page,
		"limit":  page.Limit,
	})
}

// VendorOrders lists orders received by the signed-in vendor.
// @Summary		Vendor orders
// @Tags		Orders
// @Security	CookieAuth
// @Param		status	query	string	false	"pending, confirmed, cancelled or completed"
// @Success		200	{object}	map[string]interface{}
// @Router		/vendor/orders [GET]
func (h *Handler) VendorOrders(c *gin.Context) {
	status := domain.OrderStatus(c.Query("status"))
	switch status {
	case "", domain.OrderPending, domain.OrderConfirmed, domain.OrderCancelled, domain.OrderCompleted:
	default:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "status must be one of: pending confirmed cancelled completed")
		return
	}

	page := utils.PageFromQuery(c)
	p := middleware.MustPrincipal(c)
	list, err := h.service.ListForVendor(c.Request.Context(), *p.VendorID, status, page)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"orders": list.Orders,
		"total":  list.Total,
		"page":   page.Page,
		"limit":  page.Limit,
	})
}

// UpdateStatus confirms, cancels or completes an order.
// @Summary		Update order status
// @Tags		Orders
// @Security	CookieAuth
// @Param		id		path	int					true	"Order id"
// @Param		request	body	UpdateStatusRequest	true	"New status"
// @Success		200	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}	"Transition not allowed"
// @Failure		403	{object}	map[string]interface{}	"Vendor suspended"
// @Failure		404	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{}
// @Router		/vendor/orders/{id} [PATCH]
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid order id")
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.FirstMessage(err))
		return
	}

	p := middleware.MustPrincipal(c)
	o, err := h.service.UpdateStatus(c.Request.Context(), *p.VendorID, id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"order": o})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart):
		response.Error(c, http.StatusBadRequest, "CART_EMPTY", "Cart is empty")
	case errors.Is(err, ErrCardUnavailable):
		response.Error(c, http.StatusConflict, "LISTING_UNAVAILABLE", "A vendor in your cart is no longer available")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
	case errors.Is(err, ErrInvalidStatusTransition):
		response.Error(c, http.StatusBadRequest, "INVALID_STATE", "Order cannot move to that status")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", "Order was updated by another request")
	case errors.Is(err, ErrVendorInactive):
		response.Error(c, http.StatusForbidden, "VENDOR_INACTIVE", "Vendor account is not active")
	default:
		response.Internal(c, err)
	}
}
