package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"evea/internal/middleware"
	"evea/internal/pkg/response"
	"evea/internal/pkg/validator"
)

const (
	stateCookie    = "evea_oauth_state"
	stateCookieTTL = 600
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service     *Service
	cookie      middleware.SessionCookie
	frontendURL string
}

func NewHandler(service *Service, cookie middleware.SessionCookie, frontendURL string) *Handler {
	return &Handler{service: service, cookie: cookie, frontendURL: frontendURL}
}

// RegisterRoutes mounts the auth endpoints. guard wraps the credential
// endpoints (typically the rate limiter).
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, guard ...gin.HandlerFunc) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", with(guard, h.Register)...)
		authGroup.POST("/login", with(guard, h.Login)...)
		authGroup.POST("/vendor-login", with(guard, h.VendorLogin)...)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", middleware.RequireAuth(), h.Me)
		authGroup.GET("/google", h.GoogleStart)
		authGroup.GET("/google/callback", h.GoogleCallback)
	}
	api.POST("/vendor-login", with(guard, h.VendorLogin)...)
}

// Register creates a customer account.
// @Summary		Register customer
// @Description	Creates an active customer account, sends a verification email and sets the session cookie.
// @Tags		Auth
// @Param		request	body	RegisterRequest	true	"Name, email, optional phone and password"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}	"Validation error or email already registered"
// @Router		/auth/register [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.FirstMessage(err))
		return
	}

	sess, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	h.cookie.Set(c, sess.Token)
	response.Success(c, http.StatusCreated, sess.body())
}

// Login signs in with email and password.
// @Summary		Login
// @Tags		Auth
// @Param		request	body	LoginRequest	true	"Email and password"
// @Success		200	{object}	map[string]interface{}	"Session cookie set"
// @Failure		401	{object}	map[string]interface{}	"Invalid email or password"
// @Failure		403	{object}	map[string]interface{}	"Account pending approval or suspended"
// @Router		/auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.FirstMessage(err))
		return
	}

	sess, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	h.cookie.Set(c, sess.Token)
	response.Success(c, http.StatusOK, sess.body())
}

// VendorLogin signs in an approved vendor.
// @Summary		Vendor login
// @Tags		Auth
// @Param		request	body	LoginRequest	true	"Email and the password from the approval email"
// @Success		200	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Router		/vendor-login [POST]
func (h *Handler) VendorLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.FirstMessage(err))
		return
	}

	sess, err := h.service.VendorLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	h.cookie.Set(c, sess.Token)
	response.Success(c, http.StatusOK, sess.body())
}

func (h *Handler) Logout(c *gin.Context) {
	h.cookie.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the signed-in user.
// @Summary		Current user
// @Tags		Auth
// @Security	CookieAuth
// @Success		200	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Router		/auth/me [GET]
func (h *Handler) Me(c *gin.Context) {
	user, vendor, err := h.service.Me(c.Request.Context(), middleware.MustPrincipal(c))
	if err != nil {
		writeError(c, err)
		return
	}

	body := gin.H{"user": ToUserResponse(user)}
	if vendor != nil {
		body["vendor"] = toVendorSummary(vendor)
	}
	response.Success(c, http.StatusOK, body)
}

// GoogleStart redirects to the Google consent screen.
// @Summary		Google sign-in
// @Tags		Auth
// @Success		302
// @Failure		404	{object}	map[string]interface{}	"Google sign-in not configured"
// @Router		/auth/google [GET]
func (h *Handler) GoogleStart(c *gin.Context) {
	state := uuid.NewString()
	url, err := h.service.GoogleAuthURL(state)
	if err != nil {
		writeError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, stateCookieTTL, "/", "", h.cookie.Secure, true)
	c.Redirect(http.StatusFound, url)
}

// GoogleCallback completes Google sign-in.
// @Summary		Google sign-in callback
// @Tags		Auth
// @Param		code	query	string	true	"Authorization code"
// @Param		state	query	string	true	"State issued by /auth/google"
// @Success		302
// @Failure		400	{object}	map[string]interface{}	"State mismatch"
// @Failure		401	{object}	map[string]interface{}	"Google authentication failed"
// @Router		/auth/google/callback [GET]
func (h *Handler) GoogleCallback(c *gin.Context) {
	want, _ := c.Cookie(stateCookie)
	got := c.Query("state")
	c.SetCookie(stateCookie, "", -1, "/", "", h.cookie.Secure, true)
	if want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		response.Error(c, http.StatusBadRequest, "INVALID_STATE", "Invalid OAuth state")
		return
	}
	code := c.Query("code")
	if code == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "code is required")
		return
	}

	sess, err := h.service.GoogleCallback(c.Request.Context(), code)
	if err != nil {
		writeError(c, err)
		return
	}

	h.cookie.Set(c, sess.Token)
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		response.Success(c, http.StatusOK, sess.body())
		return
	}
	c.Redirect(http.StatusFound, h.frontendURL)
}

func with(guard []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	return append(append([]gin.HandlerFunc{}, guard...), h)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, ErrEmailAlreadyExists):
		response.Error(c, http.StatusBadRequest, "EMAIL_EXISTS", "Email already registered")
	case errors.Is(err, ErrPhoneAlreadyExists):
		response.Error(c, http.StatusBadRequest, "PHONE_EXISTS", "Phone number already registered")
	case errors.Is(err, ErrAccountPending):
		response.Error(c, http.StatusForbidden, "ACCOUNT_PENDING", "Account pending approval")
	case errors.Is(err, ErrAccountSuspended):
		response.Error(c, http.StatusForbidden, "ACCOUNT_SUSPENDED", "Account has been suspended")
	case errors.Is(err, ErrAccountDisabled):
		response.Error(c, http.StatusForbidden, "ACCOUNT_DISABLED", "Account is disabled")
	case errors.Is(err, ErrNotVendor):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Vendor account required")
	case errors.Is(err, ErrGoogleDisabled):
		response.Error(c, http.StatusNotFound, "NOT_CONFIGURED", "Google sign-in is not configured")
	case errors.Is(err, ErrGoogleEmailUnverified):
		response.Error(c, http.StatusUnauthorized, "EMAIL_NOT_VERIFIED", "Google email is not verified")
	case errors.Is(err, ErrGoogleAuth):
		response.Error(c, http.StatusUnauthorized, "GOOGLE_AUTH_FAILED", "Google authentication failed")
	case errors.Is(err, ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	default:
		response.Internal(c, err)
	}
}
