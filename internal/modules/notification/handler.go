package notification

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"evea/internal/middleware"
	"evea/internal/pkg/jwt"
	"evea/internal/pkg/response"
	"evea/internal/pkg/utils"
)

type Handler struct {
	service  *Service
	hub      *Hub
	jwt      *jwt.Service
	upgrader websocket.Upgrader
}

// NewHandler builds the handler. Browser websocket handshakes are accepted
// only from allowedOrigins; clients that send no Origin header are allowed.
func NewHandler(service *Service, hub *Hub, jwtService *jwt.Service, allowedOrigins ...string) *Handler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins[o] = true
		}
	}
	return &Handler{
		service: service,
		hub:     hub,
		jwt:     jwtService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins[origin]
			},
		},
	}
}

// RegisterRoutes mounts the REST endpoints on protected (which must require
// auth) and the websocket endpoint on api. Browsers cannot set headers on a
// websocket handshake, so /ws authenticates itself from the session cookie
// or a ?token= query parameter.
func (h *Handler) RegisterRoutes(api, protected *gin.RouterGroup) {
	g := protected.Group("/notifications")
	{
		g.GET("", h.List)
		g.GET("/unread-count", h.UnreadCount)
		g.PATCH("/:id/read", h.MarkRead)
		g.POST("/read-all", h.MarkAllRead)
		g.PATCH("/read-all", h.MarkAllRead)
	}
	api.GET("/notifications/ws", h.Connect)
}

// List returns the caller's notifications, newest first.
// @Summary		List notifications
// @Tags		Notifications
// @Security	CookieAuth
// @Param		unread	query	bool	false	"Only unread notifications"
// @Param		page	query	int		false	"Page (default 1)"
// @Param		limit	query	int		false	"Page size (default 20, max 100)"
// @Success		200	{object}	map[string]interface{}
// @Router		/notifications [GET]
func (h *Handler) List(c *gin.Context) {
	p := middleware.MustPrincipal(c)
	page := utils.PageFromQuery(c)
	unreadOnly := c.Query("unread") == "true" || c.Query("unread") == "1"

	list, err := h.service.List(c.Request.Context(), p.UserID, unreadOnly, page)
	if err != nil {
		response.Internal(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"notifications": list.Notifications,
		"total":         list.Total,
		"unreadCount":   list.UnreadCount,
		"page":          page.Page,
		"limit":         page.Limit,
	})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	n, err := h.service.UnreadCount(c.Request.Context(), middleware.MustPrincipal(c).UserID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unreadCount": n})
}

// MarkRead marks one notification as read.
// @Summary		Mark notification read
// @Tags		Notifications
// @Security	CookieAuth
// @Param		id	path	int	true	"Notification ID"
// @Success		200	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/notifications/{id}/read [PATCH]
func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid notification ID")
		return
	}

	err := h.service.MarkRead(c.Request.Context(), middleware.MustPrincipal(c).UserID, id)
	if errors.Is(err, ErrNotFound) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")
		return
	}
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	n, err := h.service.MarkAllRead(c.Request.Context(), middleware.MustPrincipal(c).UserID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": n})
}

// Connect upgrades to a websocket that receives new notifications as
// {"type":"notification","payload":{...}} frames.
// @Summary		Notification stream
// @Tags		Notifications
// @Param		token	query	string	false	"Session token when no cookie is sent"
// @Success		101
// @Failure		401	{object}	map[string]interface{}
// @Router		/notifications/ws [GET]
func (h *Handler) Connect(c *gin.Context) {
	var userID int64
	if p, ok := middleware.PrincipalFrom(c); ok {
		userID = p.UserID
	} else if token := c.Query("token"); token != "" && h.jwt != nil {
		claims, err := h.jwt.ValidateToken(token)
		if err == nil {
			userID = claims.Principal().UserID
		}
	}
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		return
	}
	h.hub.ServeWS(conn, userID)
}
