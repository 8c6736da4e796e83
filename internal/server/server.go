// Package server assembles the HTTP API: middleware chain, route groups per
// audience and the in-process outbox dispatcher.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"evea/internal/config"
	"evea/internal/middleware"
	"evea/internal/modules/admin"
	"evea/internal/modules/auth"
	"evea/internal/modules/cart"
	"evea/internal/modules/catalog"
	"evea/internal/modules/favorite"
	"evea/internal/modules/notification"
	"evea/internal/modules/order"
	"evea/internal/modules/review"
	"evea/internal/modules/vendor"
	"evea/internal/outbox"
	"evea/internal/pkg/jwt"
	"evea/internal/pkg/mailer"
	"evea/internal/pkg/metrics"
	"evea/internal/pkg/queue"
	"evea/internal/pkg/response"
	"evea/internal/pkg/storage"
)

// Deps are the process-wide resources the API is built from. Redis and
// Google may be nil.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Log       *zap.Logger
	Redis     *redis.Client
	Store     storage.Store
	Mailer    mailer.Mailer
	Publisher queue.Publisher
	Google    auth.GoogleExchanger
}

type Server struct {
	Router     *gin.Engine
	Dispatcher *outbox.Dispatcher
	Hub        *notification.Hub
	JWT        *jwt.Service
}

func New(d Deps) *Server {
	cfg := d.Config
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if config.IsProdLike(cfg.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}

	jwtService := jwt.New(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	cookie := middleware.NewSessionCookie(cfg.Auth)
	hub := notification.NewHub(d.Log.Named("ws"))
	notifications := notification.NewService(d.DB, hub, d.Log)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(d.Log),
		metrics.Middleware(),
		middleware.CORS(cfg.FrontendURL),
		middleware.Session(jwtService, cookie.Name),
	)

	r.GET("/healthz", health(d.DB))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	if local, ok := d.Store.(*storage.LocalStore); ok && strings.HasPrefix(cfg.Storage.PublicURL, "/") {
		r.Static(cfg.Storage.PublicURL, local.BaseDir())
	}

	limiter := middleware.RateLimit(cfg.RateLimit, d.Redis, d.Log)
	browseCache := middleware.ResponseCache(d.Redis, cfg.Redis.CacheTTL)

	api := r.Group("/api")
	protected := api.Group("", middleware.RequireAuth())
	vendorDesk := api.Group("/vendor", middleware.RequireAuth(), middleware.VendorOnly())
	adminGroup := api.Group("/admin", middleware.RequireAuth(), middleware.AdminOnly())

	authService := auth.NewService(d.DB, jwtService, d.Google, cfg.Auth.VerificationTokenTTL, d.Log)
	auth.NewHandler(authService, cookie, cfg.FrontendURL).RegisterRoutes(api, limiter)

	vendorService := vendor.NewService(d.DB, d.Store, vendor.Config{
		VerificationTTL: cfg.Auth.VerificationTokenTTL,
		ResendCooldown:  cfg.Auth.VerifyResendCooldown,
	}, d.Log)
	vendor.NewHandler(vendorService).RegisterRoutes(api, limiter)

	adminService := admin.NewService(d.DB, d.Log)
	adminService.OnListingsChanged(func(ctx context.Context) {
		if err := middleware.PurgeResponseCache(ctx, d.Redis); err != nil {
			d.Log.Warn("failed to purge browse cache", zap.Error(err))
		}
	})
	admin.NewHandler(adminService).RegisterRoutes(adminGroup)

	catalog.NewHandler(catalog.NewService(d.DB, d.Log)).RegisterRoutes(api, browseCache)
	review.NewHandler(review.NewService(d.DB, d.Log)).RegisterRoutes(api, protected)
	favorite.NewHandler(d.DB).RegisterRoutes(protected)
	cart.NewHandler(cart.NewService(d.DB, d.Log)).RegisterRoutes(protected)
	order.NewHandler(order.NewService(d.DB, d.Log)).RegisterRoutes(protected, vendorDesk)
	notification.NewHandler(notifications, hub, jwtService, allowedOrigins(cfg.FrontendURL)...).
		RegisterRoutes(api, protected)

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})

	return &Server{
		Router:     r,
		Dispatcher: NewDispatcher(d, notifications),
		Hub:        hub,
		JWT:        jwtService,
	}
}

// NewDispatcher builds an outbox dispatcher with every topic handler bound.
// The API passes its hub-backed notifier; the standalone worker passes one
// without a hub, so its notifications reach users on their next fetch.
func NewDispatcher(d Deps, notifier outbox.Notifier) *outbox.Dispatcher {
	disp := outbox.NewDispatcher(d.DB, d.Log.Named("outbox"), outbox.Config{
		BatchSize:   d.Config.Outbox.BatchSize,
		MaxAttempts: d.Config.Outbox.MaxAttempts,
	})
	outbox.RegisterHandlers(disp, outbox.Deps{
		Mailer:      d.Mailer,
		Notifier:    notifier,
		Publisher:   d.Publisher,
		FrontendURL: d.Config.FrontendURL,
		Log:         d.Log,
	})
	return disp
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}

func allowedOrigins(frontendURL string) []string {
	var out []string
	for o := range middleware.AllowedOrigins(frontendURL) {
		out = append(out, o)
	}
	return out
}
