package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"evea/internal/domain"
	"evea/internal/domain/onboarding"
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

// RegisterRoutes mounts the admin endpoints on a group that is already behind
// RequireAuth and AdminOnly.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	vendors := admin.Group("/vendors")
	{
		vendors.GET("/pending", h.ListPending)
		vendors.GET("/:id", h.GetVendor)
		vendors.POST("/approve", h.Approve)
		vendors.POST("/reject", h.Reject)
		vendors.POST("/verify-documents", h.VerifyDocuments)
		vendors.POST("/suspend", h.Suspend)
		vendors.POST("/reinstate", h.Reinstate)
		vendors.POST("/reissue-credentials", h.ReissueCredentials)
	}
	admin.PATCH("/documents/:id", h.ReviewDocument)
	admin.GET("/statistics", h.Statistics)
}

// ListPending returns the review queue.
// @Summary		Vendors awaiting review
// @Description	Applications at step 3 with status pending (or verified with status=verified), with contact info, pricing sheet and document count.
// @Tags		Admin - Vendor review
// @Security	CookieAuth
// @Param		status	query	string	false	"pending (default) or verified"
// @Param		page	query	int		false	"Page (default 1)"
// @Param		limit	query	int		false	"Page size (default 20, max 100)"
// @Success		200	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Router		/admin/vendors/pending [GET]
func (h *Handler) ListPending(c *gin.Context) {
	page := utils.PageFromQuery(c)

	list, err := h.service.ListPending(c.Request.Context(), c.DefaultQuery("status", "pending"), page)
	if err != nil {
		response.Internal(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"vendors": list.Vendors,
		"total":   list.Total,
		"page":    page.Page,
		"limit":   page.Limit,
	})
}

// GetVendor returns one application in full.
// @Summary		Vendor application detail
// @Tags		Admin - Vendor review
// @Security	CookieAuth
// @Param		id	path	int	true	"Vendor id"
// @Success		200	{object}	VendorDetail
// @Failure		404	{object}	map[string]interface{}
// @Router		/admin/vendors/{id} [GET]
func (h *Handler) GetVendor(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid vendor id")
		return
	}

	detail, err := h.service.Detail(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"application": detail})
}

// Approve activates a vendor.
// @Summary		Approve vendor
// @Description	Activates the vendor account, publishes its card and emails a temporary password.
// @Tags		Admin - Vendor review
// @Security	CookieAuth
// @Param		request	body	VendorActionRequest	true	"Vendor id and optional notes"
// @Success		200	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}	"Vendor already approved or not ready for review"
// @Failure		404	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{}
// @Router		/admin/vendors/approve [POST]
func (h *Handler) Approve(c *gin.Context) {
	var req VendorActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.FirstMessage(err))
		return
	}

	admin := middleware.MustPrincipal(c)
	res, err := h.service.Approve(c.Request.Context(), admin.UserID, req.VendorID, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"vendorId":     res.VendorID,
		"businessName": res.BusinessName,
		"message":      "Vendor approved successfully",
	})
}

// Reject closes an application with a reason.
// @Summary		Reject vendor
// @Tags		Admin - Vendor review
// @Security	CookieAuth
// @Param		request	body	RejectRequest	true	"Vendor id and rejection reason (at least 10 characters)"
// @Success		200	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/admin/vendors/reject [POST]
func (h *Handler) Reject(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.FirstMessage(err))
		return
	}

	admin := middleware.MustPrincipal(c)
	if err := h.service.Reject(c.Request.Context(), admin.UserID, req.VendorID, req.RejectionReason); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Vendor application rejected"})
}

func (h *Handler) VerifyDocuments(c *gin.Context) {
	var req VendorActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.FirstMessage(err))
		return
	}

	admin := middleware.MustPrincipal(c)
	n, err := h.service.VerifyDocuments(c.Request.Context(), admin.UserID, req.VendorID, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verifiedDocuments": n})
}

// ReviewDocument sets the status of one document.
// @Summary		Review document
// @Tags		Admin - Vendor review
// @Security	CookieAuth
// @Param		id		path	int						true	"Document id"
// @Param		request	body	DocumentReviewRequest	true	"verified or rejected, with notes"
// @Success		200	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/admin/documents/{id} [PATCH]
func (h *Handler) ReviewDocument(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid document id")
		return
	}
	var req DocumentReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.FirstMessage(err))
		return
	}

	doc, err := h.service.ReviewDocument(c.Request.Context(), id, domain.DocumentStatus(req.Status), req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"document": doc})
}

func (h *Handler) Suspend(c *gin.Context) {
	var req SuspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.FirstMessage(err))
		return
	}

	admin := middleware.MustPrincipal(c)
	if err := h.service.Suspend(c.Request.Context(), admin.UserID, req.VendorID, req.Reason); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Vendor suspended"})
}

func (h *Handler) Reinstate(c *gin.Context) {
	var req SuspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.FirstMessage(err))
		return
	}

	admin := middleware.MustPrincipal(c)
	if err := h.service.Reinstate(c.Request.Context(), admin.UserID, req.VendorID, req.Reason); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Vendor reinstated"})
}

// ReissueCredentials emails an approved vendor a new temporary password.
// @Summary		Reissue vendor credentials
// @Description	Replaces the vendor's password with a new temporary one and queues the credentials email again.
// @Tags		Admin - Vendor review
// @Security	CookieAuth
// @Param		request	body	VendorActionRequest	true	"Vendor id"
// @Success		200	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}	"Vendor is not approved"
// @Failure		404	{object}	map[string]interface{}
// @Router		/admin/vendors/reissue-credentials [POST]
func (h *Handler) ReissueCredentials(c *gin.Context) {
	var req VendorActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.FirstMessage(err))
		return
	}

	admin := middleware.MustPrincipal(c)
	res, err := h.service.ReissueCredentials(c.Request.Context(), admin.UserID, req.VendorID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"vendorId":     res.VendorID,
		"businessName": res.BusinessName,
		"message":      "New credentials sent",
	})
}

// Statistics returns platform counters for the admin dashboard.
// @Summary		Platform statistics
// @Tags		Admin - Statistics
// @Security	CookieAuth
// @Success		200	{object}	StatisticsResponse
// @Router		/admin/statistics [GET]
func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"statistics": stats})
}

func writeError(c *gin.Context, err error) {
	var transErr *onboarding.TransitionError

	switch {
	case errors.As(err, &transErr):
		response.Error(c, http.StatusBadRequest, "INVALID_STATE", transErr.Error())
	case errors.Is(err, ErrReasonTooShort):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR",
			"Rejection reason must be at least 10 characters")
	case errors.Is(err, ErrNotApproved):
		response.Error(c, http.StatusBadRequest, "INVALID_STATE", "Vendor is not approved")
	case errors.Is(err, ErrMissingDetails):
		response.Error(c, http.StatusBadRequest, "INVALID_STATE", "Vendor has not submitted business details")
	case errors.Is(err, ErrVendorNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Vendor not found")
	case errors.Is(err, ErrDocumentNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Document not found")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", "Vendor was modified concurrently, please retry")
	default:
		response.Internal(c, err)
	}
}
