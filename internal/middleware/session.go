package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"evea/internal/config"
	"evea/internal/domain"
	"evea/internal/pkg/jwt"
	"evea/internal/pkg/response"
)

const (
	ctxPrincipal    = "principal"
	ctxSessionError = "session_error"
)

// SessionCookie writes and clears the HTTP-only session cookie.
type SessionCookie struct {
	Name     string
	Path     string
	Secure   bool
	SameSite http.SameSite
	TTL      time.Duration
}

func NewSessionCookie(cfg config.AuthConfig) SessionCookie {
	sameSite := http.SameSiteLaxMode
	switch strings.ToLower(cfg.CookieSameSite) {
	case "strict":
		sameSite = http.SameSiteStrictMode
	case "none":
		sameSite = http.SameSiteNoneMode
	}
	return SessionCookie{
		Name:     cfg.CookieName,
		Path:     cfg.CookiePath,
		Secure:   cfg.CookieSecure,
		SameSite: sameSite,
		TTL:      cfg.SessionTTL,
	}
}

func (s SessionCookie) Set(c *gin.Context, token string) {
	c.SetSameSite(s.SameSite)
	c.SetCookie(s.Name, token, int(s.TTL.Seconds()), s.Path, "", s.Secure, true)
}

func (s SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(s.SameSite)
	c.SetCookie(s.Name, "", -1, s.Path, "", s.Secure, true)
}

// Session decodes the session cookie (or a Bearer token) once per request and
// stores the typed principal. Anonymous requests pass through; RequireAuth
// decides whether a route needs a principal.
func Session(jwtService *jwt.Service, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie(cookieName)
		}
		if token == "" {
			c.Next()
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			c.Set(ctxSessionError, true)
			c.Next()
			return
		}

		p := claims.Principal()
		c.Set(ctxPrincipal, &p)
		c.Set("user_id", p.UserID)
		c.Set("role", string(p.Role))
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(c *gin.Context) (*domain.Principal, bool) {
	v, ok := c.Get(ctxPrincipal)
	if !ok {
		return nil, false
	}
	p, ok := v.(*domain.Principal)
	return p, ok && p != nil
}

// MustPrincipal is for handlers mounted behind RequireAuth.
func MustPrincipal(c *gin.Context) *domain.Principal {
	p, ok := PrincipalFrom(c)
	if !ok {
		panic("middleware: principal missing; route is not behind RequireAuth")
	}
	return p
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFrom(c); ok {
			c.Next()
			return
		}
		if c.GetBool(ctxSessionError) {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Session is invalid or has expired")
			return
		}
		response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	}
}
