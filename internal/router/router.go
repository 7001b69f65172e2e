package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/miniuni/miniuni-web/internal/config"
	"github.com/miniuni/miniuni-web/internal/handler"
	"github.com/miniuni/miniuni-web/internal/metrics"
	"github.com/miniuni/miniuni-web/internal/middleware"
	"github.com/miniuni/miniuni-web/internal/response"
	"github.com/miniuni/miniuni-web/web"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Dashboard *handler.DashboardHandler
	Auth      *handler.AuthHandler
	Student   *handler.StudentHandler
	Admin     *handler.AdminHandler
	System    *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background work such as the rate limiter's sweeper.
func SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	sessions middleware.SessionReader,
	m *metrics.Metrics,
	handlers *Handlers,
	log zerolog.Logger,
) (*gin.Engine, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware(log))

	// Workbooks are zip files already; promhttp compresses on its own.
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality:   middleware.DefaultBrotliConfig.Quality,
		MinLength: middleware.DefaultBrotliConfig.MinLength,
		Skipper:   middleware.SkipPaths("/metrics", "/admin/enrollments.xlsx"),
	}))

	// Stylesheet and script, cached for a day.
	staticGroup := router.Group("/static")
	staticGroup.Use(middleware.CacheControl(86400))
	{
		staticGroup.StaticFS("/", http.FS(web.Static()))
	}

	// ─── Ops ───────────────────────────────────────────────────────────
	router.GET("/health", handlers.System.Health)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	// ─── Pages (tab cookie + session) ──────────────────────────────────
	pages := router.Group("/")
	pages.Use(
		middleware.NoStore(),
		middleware.Tab(middleware.TabConfig{
			CookieName: cfg.TabCookieName,
			Secret:     []byte(cfg.TabCookieSecret),
			Secure:     cfg.TabCookieSecure,
		}),
		middleware.LoadSession(sessions),
	)

	// Rate limiter for login routes (LOGIN_RATE_LIMIT requests per minute per IP).
	loginLimiter := middleware.NewRateLimiter(ctx, cfg.LoginRateLimit, time.Minute)

	{
		pages.GET("/", handlers.Dashboard.Root)
		pages.POST("/login", loginLimiter.Middleware(), handlers.Auth.Login)
		pages.POST("/demo/:role", loginLimiter.Middleware(), handlers.Auth.Demo)
		pages.POST("/logout", middleware.RequireSession(), handlers.Auth.Logout)
	}

	// ─── Student ───────────────────────────────────────────────────────
	student := pages.Group("/student")
	student.Use(middleware.RequireStudent())
	{
		student.POST("/enroll/:id", handlers.Student.Enroll)
	}

	// ─── Admin ─────────────────────────────────────────────────────────
	admin := pages.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/courses", handlers.Admin.CreateCourse)
		admin.GET("/courses/:id/delete", handlers.Admin.ConfirmDelete)
		admin.POST("/courses/:id/delete", handlers.Admin.DeleteCourse)
		admin.GET("/enrollments.xlsx", handlers.Admin.ExportEnrollments)
	}

	return router, nil
}
