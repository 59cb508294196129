package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"chorescape-server/config"
	"chorescape-server/middleware"
	"chorescape-server/models"
	"chorescape-server/services"
	ws "chorescape-server/websocket"
)

// Deps carries everything handlers need. Constructed once at startup
// and shared by every route group.
type Deps struct {
	Cfg       *config.Config
	DB        *gorm.DB
	Hub       *ws.Hub
	Bookings  *services.BookingService
	Identity  *services.IdentityService
	Uploader  *services.Uploader
	Analytics *services.AnalyticsService
}

// Setup builds the engine with the full middleware stack and every
// route group mounted under /api.
func Setup(cfg *config.Config, db *gorm.DB, hub *ws.Hub, uploader *services.Uploader) *gin.Engine {
	d := &Deps{
		Cfg:       cfg,
		DB:        db,
		Hub:       hub,
		Bookings:  services.NewBookingService(db, hub),
		Identity:  services.NewIdentityService(cfg),
		Uploader:  uploader,
		Analytics: services.NewAnalyticsService(db),
	}

	gin.SetMode(cfg.Server.GinMode)
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(cfg))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.BodyLimitMiddleware(cfg.Server.BodyLimitMB))

	r.Use(middleware.RateLimitMiddleware())

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/api")
	RegisterAuthRoutes(api, d)
	RegisterPublicServiceRoutes(api, d)
	RegisterBookingRoutes(api, d)
	RegisterAddressRoutes(api, d)
	RegisterChoreRoutes(api, d)
	RegisterQuoteRoutes(api, d)
	RegisterShopRoutes(api, d)
	RegisterContactRoutes(api, d)
	RegisterCareerRoutes(api, d)
	RegisterWorkerRoutes(api, d)
	RegisterWorkerApplicationRoutes(api, d)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAuth(cfg.Identity.JWTSecret))
	admin.Use(middleware.RequireRole(db, models.RoleAdmin))
	RegisterAdminBookingRoutes(admin, d)
	RegisterAdminServiceRoutes(admin, d)
	RegisterAdminShopRoutes(admin, d)
	RegisterAdminUserRoutes(admin, d)
	RegisterAdminWorkerRoutes(admin, d)
	RegisterAdminMiscRoutes(admin, d)
	RegisterAdminAnalyticsRoutes(admin, d)
	admin.GET("/events", ws.ServeWS(hub))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found", "data": []interface{}{}})
	})

	return r
}
